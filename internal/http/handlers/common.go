package handlers

import (
	"net/http"
	"time"

	"parking/internal/http/middleware"
	"parking/internal/repositories"
	"parking/internal/services"

	"github.com/gin-gonic/gin"
)

// Deps are the long-lived collaborators shared by every request.
type Deps struct {
	Store    repositories.Backend
	Settings *services.SettingsService
	Auth     *services.AuthService
	Poller   *services.DashboardPoller
	Session  *services.Session
	Location *time.Location
	Now      func() time.Time
}

type Handler struct {
	Deps
}

func New(d Deps) *Handler {
	if d.Location == nil {
		d.Location = time.Local
	}
	return &Handler{Deps: d}
}

// tickets builds the request-scoped ticket service.
func (h *Handler) tickets(c *gin.Context) services.TicketService {
	return services.TicketService{
		Store:     h.Store,
		Settings:  h.Settings,
		Now:       h.Now,
		Location:  h.Location,
		RequestID: middleware.GetRequestID(c),
	}
}

func (h *Handler) reports(c *gin.Context) services.ReportsService {
	return services.ReportsService{
		Store:     h.Store,
		Location:  h.Location,
		RequestID: middleware.GetRequestID(c),
	}
}

// RespondError sends standard error payload with request_id included.
func RespondError(c *gin.Context, status int, message string, err error) {
	reqID := middleware.GetRequestID(c)
	payload := gin.H{
		"message":    message,
		"request_id": reqID,
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	c.JSON(status, payload)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		RespondError(c, http.StatusBadRequest, "empty body", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid payload", err)
		return false
	}
	return true
}

func sendPDF(c *gin.Context, disposition, filename string, data []byte) {
	c.Header("Content-Disposition", disposition+`; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
