package services

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"parking/internal/domain"
	"parking/internal/domain/models"
)

func TestReportsGenerateAndExport(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := newTicketService(t)
	now := clock.Now()

	seed := []models.Ticket{
		sampleStored(now.Add(-2*time.Hour), true, 7500),
		sampleStored(now.Add(-time.Hour), false, 2500),
		sampleStored(now.AddDate(0, 0, -3), true, 20000),
	}
	seed[0].CustomerName = "José Pérez"
	for _, tk := range seed {
		if _, err := store.Insert(ctx, tk); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	reports := ReportsService{Store: svc.Store, Location: time.UTC}

	today := now.Format("2006-01-02")
	r, err := reports.Generate(ctx, ReportFilter{From: today, To: today, Status: "all"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if r.Summary.Count != 2 || r.Summary.PaidCount != 1 || r.Summary.PendingCount != 1 {
		t.Fatalf("unexpected summary %+v", r.Summary)
	}
	if r.Summary.PaidRevenue != 7500 || r.Summary.PendingAmount != 2500 {
		t.Fatalf("unexpected totals %+v", r.Summary)
	}

	paid, err := reports.Generate(ctx, ReportFilter{Status: "pagado"})
	if err != nil {
		t.Fatalf("Generate paid returned error: %v", err)
	}
	if paid.Status != domain.StatusPaid || paid.Summary.Count != 2 || paid.Summary.PaidRevenue != 27500 {
		t.Fatalf("unexpected paid report %+v", paid.Summary)
	}

	pdf, filename, err := reports.Export(ctx, ReportFilter{From: today, To: today})
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) || !strings.HasSuffix(filename, ".pdf") {
		t.Fatalf("Export returned invalid document %q", filename)
	}
}

func TestReportsIncludeSubSecondEntriesBeforeMidnight(t *testing.T) {
	ctx := context.Background()
	_, store, _ := newTicketService(t)
	loc := time.FixedZone("COT", -5*3600)

	late := time.Date(2026, 3, 9, 23, 59, 59, 400000000, loc)
	midnight := time.Date(2026, 3, 10, 0, 0, 0, 0, loc)
	for _, entry := range []time.Time{late, midnight} {
		if _, err := store.Insert(ctx, sampleStored(entry, true, 2500)); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	reports := ReportsService{Store: store, Location: loc}
	r, err := reports.Generate(ctx, ReportFilter{From: "2026-03-09", To: "2026-03-09"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if r.Summary.Count != 1 || !r.Tickets[0].EntryTime.Equal(late) {
		t.Fatalf("expected only the 23:59:59.4 entry, got %+v", r.Summary)
	}
}

func TestReportsRejectBadFilter(t *testing.T) {
	reports := ReportsService{Location: time.UTC}
	cases := []ReportFilter{
		{From: "10/03/2026"},
		{To: "yesterday"},
		{Status: "archived"},
		{From: "2026-03-10", To: "2026-03-01"},
	}
	for _, f := range cases {
		if _, err := reports.Generate(context.Background(), f); !domain.IsValidation(err) {
			t.Fatalf("filter %+v: expected validation error, got %v", f, err)
		}
	}
}

func TestDocsServiceReceiptPDF(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTicketService(t)

	tk, err := svc.Register(ctx, registerInput(clock.Now()))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	docs := DocsService{Tickets: svc}
	if _, _, err := docs.ReceiptPDF(ctx, tk.ID); !domain.IsConflict(err) {
		t.Fatalf("expected conflict for unpaid ticket, got %v", err)
	}

	clock.Advance(3 * time.Hour)
	if _, err := svc.Settle(ctx, tk.ID); err != nil {
		t.Fatalf("Settle returned error: %v", err)
	}
	pdf, filename, err := docs.ReceiptPDF(ctx, tk.ID)
	if err != nil {
		t.Fatalf("ReceiptPDF returned error: %v", err)
	}
	if len(pdf) == 0 || !strings.HasPrefix(filename, "RECIBO_ABC123_") {
		t.Fatalf("ReceiptPDF returned %d bytes, name %q", len(pdf), filename)
	}
}
