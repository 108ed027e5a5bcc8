package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safebase/safebase/internal/api/dto"
	"github.com/safebase/safebase/internal/core/domain"
	"github.com/safebase/safebase/internal/core/repository"
	"github.com/safebase/safebase/internal/core/service"
)

type BackupHandler struct {
	backupService *service.BackupService
}

func NewBackupHandler(backupService *service.BackupService) *BackupHandler {
	return &BackupHandler{backupService: backupService}
}

// CreateManualBackup handles POST /backups/manual. The backup record is
// returned in_progress while the dump runs in the background.
func (h *BackupHandler) CreateManualBackup(c *gin.Context) {
	var req dto.ManualBackupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	backup, err := h.backupService.Run(c.Request.Context(), req.DatabaseID, domain.BackupOriginManual)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToBackupResponse(backup))
}

// ListBackups handles GET /backups with an optional databaseId filter
func (h *BackupHandler) ListBackups(c *gin.Context) {
	var filter repository.BackupFilter
	if databaseID := c.Query("databaseId"); databaseID != "" {
		filter.DatabaseID = &databaseID
	}

	backups, err := h.backupService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBackupResponses(backups))
}

// GetBackup handles GET /backups/:id
func (h *BackupHandler) GetBackup(c *gin.Context) {
	backup, err := h.backupService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBackupResponse(backup))
}

// RestoreBackup handles POST /backups/:id/restore
func (h *BackupHandler) RestoreBackup(c *gin.Context) {
	if err := h.backupService.Restore(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "restore completed"})
}
