package handlers

import (
	"net/http"

	"parking/internal/domain"
	"parking/internal/http/middleware"
	"parking/internal/services"

	"github.com/gin-gonic/gin"
)

// GET /api/dashboard?q=
func (h *Handler) GetDashboard(c *gin.Context) {
	snap := h.Poller.Snapshot(c.Query("q"))
	if snap.RefreshedAt.IsZero() {
		if err := h.Poller.Refresh(c.Request.Context()); err != nil {
			RespondDomainError(c, err)
			return
		}
		snap = h.Poller.Snapshot(c.Query("q"))
	}
	c.JSON(http.StatusOK, snap)
}

// POST /api/dashboard/refresh
func (h *Handler) RefreshDashboard(c *gin.Context) {
	if err := h.Poller.Refresh(c.Request.Context()); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Poller.Snapshot(c.Query("q")))
}

type switchViewRequest struct {
	View string `json:"view"`
}

// PUT /api/session/view
func (h *Handler) SwitchView(c *gin.Context) {
	var req switchViewRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	v, ok := services.ParseView(req.View)
	if !ok {
		RespondDomainError(c, domain.ValidationError{Field: "view", Msg: "view must be dashboard, register, reports or admin"})
		return
	}
	_, authed := middleware.GetAdmin(c)
	if err := h.Session.SwitchView(v, authed); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": h.Session.View(), "polling": h.Poller.Running()})
}
