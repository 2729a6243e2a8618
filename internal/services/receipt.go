package services

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"parking/internal/domain"
	"parking/internal/domain/models"
	"parking/internal/utils"
)

// defaultCountryCode is prefixed to bare 10-digit mobile numbers.
const defaultCountryCode = "57"

// Receipt is the human-readable settlement payload.
type Receipt struct {
	TicketID     string          `json:"ticket_id"`
	Plate        string          `json:"plate"`
	CustomerName string          `json:"customer_name"`
	Phone        string          `json:"phone"`
	VehicleClass string          `json:"vehicle_class"`
	Spot         string          `json:"spot"`
	EntryTime    time.Time       `json:"entry_time"`
	ExitTime     time.Time       `json:"exit_time"`
	Duration     string          `json:"duration"`
	RateTier     domain.RateTier `json:"rate_tier"`
	Quantity     int             `json:"quantity"`
	QuotedTotal  int64           `json:"quoted_total"`
	Total        int64           `json:"total"`
	TotalLabel   string          `json:"total_label"`
	Text         string          `json:"text"`
	WhatsAppURL  string          `json:"whatsapp_url,omitempty"`
}

// BuildReceipt renders the receipt for a settled ticket.
func BuildReceipt(t models.Ticket, exit time.Time, quantity int, loc *time.Location) Receipt {
	if loc == nil {
		loc = time.Local
	}
	r := Receipt{
		TicketID:     t.ID,
		Plate:        t.Plate,
		CustomerName: t.CustomerName,
		Phone:        t.Phone,
		VehicleClass: string(t.VehicleClass),
		Spot:         t.Spot,
		EntryTime:    t.EntryTime,
		ExitTime:     exit,
		Duration:     FormatElapsed(exit.Sub(t.EntryTime)),
		RateTier:     t.EffectiveRateTier(),
		Quantity:     quantity,
		QuotedTotal:  t.QuotedTotal,
		Total:        t.Total,
		TotalLabel:   utils.FormatPesos(t.Total),
	}

	lines := []string{
		"RECIBO DE PARQUEADERO",
		"--------------------------------",
		"Placa: " + r.Plate,
		"Cliente: " + r.CustomerName,
		"Ingreso: " + utils.FormatDateTime(r.EntryTime, loc),
		"Salida: " + utils.FormatDateTime(r.ExitTime, loc),
		"Tiempo: " + r.Duration,
		fmt.Sprintf("Tarifa: %s x%d", r.RateTier, r.Quantity),
		"TOTAL PAGADO: " + r.TotalLabel,
		"--------------------------------",
		"¡Gracias por confiar en nosotros!",
	}
	r.Text = strings.Join(lines, "\n")
	r.WhatsAppURL = WhatsAppLink(t.Phone, r.Text)
	return r
}

// FormatElapsed prints "1d 2h 5m"; the day part is omitted when zero.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d / (24 * time.Hour))
	hours := int(d % (24 * time.Hour) / time.Hour)
	minutes := int(d % time.Hour / time.Minute)
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// WhatsAppLink builds a wa.me share link, or "" when the phone has no digits.
func WhatsAppLink(phone, text string) string {
	digits := utils.DigitsOnly(phone)
	if digits == "" {
		return ""
	}
	if len(digits) == 10 && !strings.HasPrefix(digits, defaultCountryCode) {
		digits = defaultCountryCode + digits
	}
	return "https://wa.me/" + digits + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}
