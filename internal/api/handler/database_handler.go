package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safebase/safebase/internal/api/dto"
	"github.com/safebase/safebase/internal/core/domain"
	"github.com/safebase/safebase/internal/core/service"
)

type DatabaseHandler struct {
	databaseService *service.DatabaseService
}

func NewDatabaseHandler(databaseService *service.DatabaseService) *DatabaseHandler {
	return &DatabaseHandler{databaseService: databaseService}
}

func toSpec(req dto.DatabaseRequest) service.DatabaseSpec {
	return service.DatabaseSpec{
		Name:     req.Name,
		Type:     domain.DatabaseType(req.Type),
		Host:     req.Host,
		Port:     req.Port,
		Username: req.Username,
		Password: req.Password,
		Database: req.Database,
	}
}

// CreateDatabase handles POST /databases
func (h *DatabaseHandler) CreateDatabase(c *gin.Context) {
	var req dto.DatabaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	db, err := h.databaseService.Create(c.Request.Context(), toSpec(req))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToDatabaseResponse(db))
}

// ListDatabases handles GET /databases
func (h *DatabaseHandler) ListDatabases(c *gin.Context) {
	dbs, err := h.databaseService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDatabaseResponses(dbs))
}

// GetDatabase handles GET /databases/:id
func (h *DatabaseHandler) GetDatabase(c *gin.Context) {
	db, err := h.databaseService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDatabaseResponse(db))
}

// UpdateDatabase handles PUT /databases/:id
func (h *DatabaseHandler) UpdateDatabase(c *gin.Context) {
	var req dto.DatabaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	db, err := h.databaseService.Update(c.Request.Context(), c.Param("id"), toSpec(req))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDatabaseResponse(db))
}

// DeleteDatabase handles DELETE /databases/:id
func (h *DatabaseHandler) DeleteDatabase(c *gin.Context) {
	if err := h.databaseService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
