package handlers

import (
	"net/http"

	"parking/internal/services"

	"github.com/gin-gonic/gin"
)

func reportFilter(c *gin.Context) services.ReportFilter {
	return services.ReportFilter{
		From:   c.Query("from"),
		To:     c.Query("to"),
		Status: c.Query("status"),
	}
}

// GET /api/reports?from=&to=&status=
func (h *Handler) GetReport(c *gin.Context) {
	r, err := h.reports(c).Generate(c.Request.Context(), reportFilter(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// GET /api/reports/export
func (h *Handler) ExportReport(c *gin.Context) {
	pdf, filename, err := h.reports(c).Export(c.Request.Context(), reportFilter(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendPDF(c, "attachment", filename, pdf)
}
