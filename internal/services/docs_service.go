package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"parking/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService produces the printable receipt of a settled ticket.
type DocsService struct {
	Tickets   TicketService
	RequestID string
}

func (s DocsService) ReceiptPDF(ctx context.Context, id string) ([]byte, string, error) {
	r, err := s.Tickets.Receipt(ctx, id)
	if err != nil {
		return nil, "", err
	}
	utils.LogEventf(s.RequestID, "docs", "receipt_pdf", "ticket_id=%s", id)
	return buildReceiptPDF(r)
}

var reportColumns = []struct {
	title string
	width float64
}{
	{"Placa", 24},
	{"Cliente", 46},
	{"Tipo", 20},
	{"Puesto", 16},
	{"Ingreso", 32},
	{"Total", 26},
	{"Estado", 20},
}

func buildReportPDF(r Report, loc *time.Location) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Reporte de parqueadero", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "REPORTE DE PARQUEADERO")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Periodo: %s a %s   Estado: %s", safe(r.From, "inicio"), safe(r.To, "hoy"), r.Status))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Generado: "+utils.FormatDateTime(time.Now(), loc))
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range reportColumns {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, t := range r.Tickets {
		status := "Pendiente"
		if t.Paid {
			status = "Pagado"
		}
		cells := []string{
			t.Plate,
			truncate(t.CustomerName, 26),
			string(t.VehicleClass),
			t.Spot,
			utils.FormatDateTime(t.EntryTime, loc),
			utils.FormatPesos(t.Total),
			status,
		}
		for i, c := range reportColumns {
			align := "L"
			if i == 5 {
				align = "R"
			}
			pdf.CellFormat(c.width, 6, tr(safe(cells[i], "-")), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(r.Tickets) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.Cell(0, 8, "Sin registros para el filtro seleccionado.")
		pdf.Ln(8)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 11)
	summary := []string{
		fmt.Sprintf("Registros: %d", r.Summary.Count),
		fmt.Sprintf("Pagados: %d (%s)", r.Summary.PaidCount, utils.FormatPesos(r.Summary.PaidRevenue)),
		fmt.Sprintf("Pendientes: %d (%s)", r.Summary.PendingCount, utils.FormatPesos(r.Summary.PendingAmount)),
	}
	for _, line := range summary {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	to := safe(r.To, utils.FormatDate(time.Now(), loc))
	filename := fmt.Sprintf("REPORTE_%s_%s.pdf", safeFilenamePart(safe(r.From, "inicio")), safeFilenamePart(to))
	return buf.Bytes(), filename, nil
}

func buildReceiptPDF(r Receipt) ([]byte, string, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: 80, Ht: 150},
	})
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Recibo", false)
	pdf.SetMargins(6, 6, 6)
	pdf.AddPage()

	lines := strings.Split(r.Text, "\n")
	for i, line := range lines {
		if i == 0 {
			pdf.SetFont("Courier", "B", 11)
		} else {
			pdf.SetFont("Courier", "", 9)
		}
		pdf.MultiCell(0, 5, tr(line), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("RECIBO_%s_%s.pdf", safeFilenamePart(r.Plate), r.ExitTime.Format("20060102_1504"))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "."
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
