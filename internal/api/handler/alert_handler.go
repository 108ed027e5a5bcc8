package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safebase/safebase/internal/api/dto"
	"github.com/safebase/safebase/internal/core/service"
)

type AlertHandler struct {
	alertService *service.AlertService
}

func NewAlertHandler(alertService *service.AlertService) *AlertHandler {
	return &AlertHandler{alertService: alertService}
}

// ListAlerts handles GET /alerts
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	alerts, err := h.alertService.List(c.Request.Context(), 0)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAlertResponses(alerts))
}

// UnreadCount handles GET /alerts/unread-count
func (h *AlertHandler) UnreadCount(c *gin.Context) {
	count, err := h.alertService.UnreadCount(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UnreadCountResponse{Count: count})
}

// MarkRead handles PUT /alerts/:id/read
func (h *AlertHandler) MarkRead(c *gin.Context) {
	if err := h.alertService.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// MarkAllRead handles PUT /alerts/read-all
func (h *AlertHandler) MarkAllRead(c *gin.Context) {
	if err := h.alertService.MarkAllRead(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
