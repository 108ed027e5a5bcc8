package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safebase/safebase/internal/api/dto"
	"github.com/safebase/safebase/internal/core/service"
)

// respondError writes the uniform error body with the status implied
// by the service error kind.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch service.KindOf(err) {
	case service.KindValidation:
		status = http.StatusBadRequest
	case service.KindUnauthorized:
		status = http.StatusUnauthorized
	case service.KindConflict:
		status = http.StatusConflict
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindConnection:
		status = http.StatusBadGateway
	}
	c.JSON(status, dto.ErrorResponse{Error: err.Error()})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
}
