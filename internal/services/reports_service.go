package services

import (
	"context"
	"time"

	"parking/internal/domain"
	"parking/internal/domain/models"
	"parking/internal/repositories"
	"parking/internal/utils"
)

// ReportFilter selects tickets by entry day (inclusive, local time) and status.
// Empty dates leave that side of the range open.
type ReportFilter struct {
	From   string
	To     string
	Status string
}

type ReportSummary struct {
	Count         int   `json:"count"`
	PaidCount     int   `json:"paid_count"`
	PendingCount  int   `json:"pending_count"`
	PaidRevenue   int64 `json:"paid_revenue"`
	PendingAmount int64 `json:"pending_amount"`
}

type Report struct {
	From    string              `json:"from,omitempty"`
	To      string              `json:"to,omitempty"`
	Status  domain.TicketStatus `json:"status"`
	Tickets []models.Ticket     `json:"tickets"`
	Summary ReportSummary       `json:"summary"`
}

type ReportsService struct {
	Store     repositories.TicketStore
	Location  *time.Location
	RequestID string
}

func (s ReportsService) loc() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.Local
}

func (s ReportsService) buildQuery(f ReportFilter) (repositories.TicketQuery, domain.TicketStatus, error) {
	var q repositories.TicketQuery

	status, ok := domain.ParseTicketStatus(f.Status)
	if !ok {
		return q, "", domain.ValidationError{Field: "status", Msg: "status must be all, paid or pending"}
	}
	switch status {
	case domain.StatusPaid:
		q.Paid = repositories.BoolPtr(true)
	case domain.StatusPending:
		q.Paid = repositories.BoolPtr(false)
	}

	if f.From != "" {
		d, err := utils.ParseDate(f.From, s.loc())
		if err != nil {
			return q, "", domain.ValidationError{Field: "from", Msg: "from must be YYYY-MM-DD"}
		}
		from := utils.StartOfDay(d, s.loc())
		q.EntryFrom = &from
	}
	if f.To != "" {
		d, err := utils.ParseDate(f.To, s.loc())
		if err != nil {
			return q, "", domain.ValidationError{Field: "to", Msg: "to must be YYYY-MM-DD"}
		}
		before := utils.NextDay(d, s.loc())
		q.EntryBefore = &before
	}
	if q.EntryFrom != nil && q.EntryBefore != nil && !q.EntryBefore.After(*q.EntryFrom) {
		return q, "", domain.ValidationError{Field: "to", Msg: "to cannot be before from"}
	}
	return q, status, nil
}

// Generate runs the filtered query and totals it.
func (s ReportsService) Generate(ctx context.Context, f ReportFilter) (Report, error) {
	q, status, err := s.buildQuery(f)
	if err != nil {
		return Report{}, err
	}
	tickets, err := s.Store.Query(ctx, q)
	if err != nil {
		return Report{}, err
	}
	utils.LogEventf(s.RequestID, "reports", "generate", "from=%s to=%s status=%s rows=%d", f.From, f.To, status, len(tickets))
	return Report{
		From:    f.From,
		To:      f.To,
		Status:  status,
		Tickets: tickets,
		Summary: Summarize(tickets),
	}, nil
}

func Summarize(tickets []models.Ticket) ReportSummary {
	var sum ReportSummary
	for _, t := range tickets {
		sum.Count++
		if t.Paid {
			sum.PaidCount++
			sum.PaidRevenue += t.Total
		} else {
			sum.PendingCount++
			sum.PendingAmount += t.Total
		}
	}
	return sum
}

// Export renders the filtered report as a PDF.
func (s ReportsService) Export(ctx context.Context, f ReportFilter) ([]byte, string, error) {
	r, err := s.Generate(ctx, f)
	if err != nil {
		return nil, "", err
	}
	return buildReportPDF(r, s.loc())
}
