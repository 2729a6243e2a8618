package handlers

import (
	"net/http"

	"parking/internal/http/middleware"
	"parking/internal/services"

	"github.com/gin-gonic/gin"
)

// GET /api/tickets/:id/receipt returns the PDF, or JSON with ?format=json.
func (h *Handler) GetTicketReceipt(c *gin.Context) {
	id := c.Param("id")
	if c.Query("format") == "json" {
		r, err := h.tickets(c).Receipt(c.Request.Context(), id)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"receipt": r})
		return
	}

	docs := services.DocsService{Tickets: h.tickets(c), RequestID: middleware.GetRequestID(c)}
	pdf, filename, err := docs.ReceiptPDF(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendPDF(c, "inline", filename, pdf)
}
