package handlers

import (
	"net/http"
	"strings"
	"time"

	"parking/internal/domain"
	"parking/internal/services"
	"parking/internal/utils"

	"github.com/gin-gonic/gin"
)

type quoteRequest struct {
	VehicleClass string `json:"vehicle_class"`
	RateTier     string `json:"rate_tier"`
	EntryTime    string `json:"entry_time"`
	ExitTime     string `json:"exit_time"`
}

type createTicketRequest struct {
	Plate             string `json:"plate"`
	CustomerName      string `json:"customer_name"`
	Phone             string `json:"phone"`
	VehicleClass      string `json:"vehicle_class"`
	Spot              string `json:"spot"`
	EntryTime         string `json:"entry_time"`
	EstimatedExitTime string `json:"estimated_exit_time"`
	RateTier          string `json:"rate_tier"`
}

// parseFormTime treats a blank value as missing and leaves the required check
// to the service.
func (h *Handler) parseFormTime(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	t, err := utils.ParseDateTime(value, h.Location)
	if err != nil {
		return time.Time{}, domain.ValidationError{Field: field, Msg: "expected YYYY-MM-DDTHH:MM", Err: err}
	}
	return t, nil
}

// POST /api/tickets/quote
func (h *Handler) QuoteTicket(c *gin.Context) {
	var req quoteRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	entry, err := h.parseFormTime("entry_time", req.EntryTime)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	exit, err := h.parseFormTime("exit_time", req.ExitTime)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	q, err := h.tickets(c).Quote(services.QuoteInput{
		VehicleClass: req.VehicleClass,
		RateTier:     req.RateTier,
		EntryTime:    entry,
		ExitTime:     exit,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quote": q, "total_label": utils.FormatPesos(q.Total)})
}

// POST /api/tickets
func (h *Handler) CreateTicket(c *gin.Context) {
	var req createTicketRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	entry, err := h.parseFormTime("entry_time", req.EntryTime)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	exit, err := h.parseFormTime("estimated_exit_time", req.EstimatedExitTime)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	t, err := h.tickets(c).Register(c.Request.Context(), services.RegisterInput{
		Plate:             req.Plate,
		CustomerName:      req.CustomerName,
		Phone:             req.Phone,
		VehicleClass:      req.VehicleClass,
		Spot:              req.Spot,
		EntryTime:         entry,
		EstimatedExitTime: exit,
		RateTier:          req.RateTier,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if h.Poller != nil {
		_ = h.Poller.Refresh(c.Request.Context())
	}
	c.JSON(http.StatusCreated, gin.H{"message": "ticket registered", "ticket": t})
}

// GET /api/tickets?q=
func (h *Handler) ListTickets(c *gin.Context) {
	svc := h.tickets(c)
	tickets, err := svc.ListActive(c.Request.Context(), c.Query("q"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets, "count": len(tickets)})
}

// GET /api/tickets/:id
func (h *Handler) GetTicket(c *gin.Context) {
	t, err := h.tickets(c).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": t})
}

// POST /api/tickets/:id/settle
func (h *Handler) SettleTicket(c *gin.Context) {
	settlement, err := h.tickets(c).Settle(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if h.Poller != nil {
		_ = h.Poller.Refresh(c.Request.Context())
	}
	c.JSON(http.StatusOK, settlement)
}
