package api

import (
	"errors"
	"net/http"

	"github.com/rifkihafidz/liftly/internal/service"

	"github.com/gin-gonic/gin"
)

// ExportHandler holds the export service dependency.
type ExportHandler struct {
	exportService service.ExportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportService service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ExportWorkouts godoc
// @Summary Export the user's full workout history
// @Description Uploads a JSON export to object storage and returns a
// @Description temporary download URL.
// @Tags Export
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.ExportResult
// @Failure 404 {object} gin.H "User not found"
// @Router /export/workouts [post]
func (h *ExportHandler) ExportWorkouts(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	result, err := h.exportService.ExportWorkouts(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to export workouts")
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
