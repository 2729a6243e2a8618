package handlers

import (
	"net/http"

	"parking/internal/domain/models"
	"parking/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// GET /api/settings
func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"settings": h.Settings.Current()})
}

// PUT /api/settings
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req models.Settings
	if !BindJSONOrError(c, &req) {
		return
	}
	saved, err := h.Settings.Save(c.Request.Context(), middleware.GetRequestID(c), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "settings saved", "settings": saved})
}
