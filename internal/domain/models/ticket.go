package models

import (
	"time"

	"parking/internal/domain"
)

const (
	// TicketSchemaLegacy marks records written before the rate tier existed.
	TicketSchemaLegacy = 1
	// TicketSchemaCurrent is written by every new registration.
	TicketSchemaCurrent = 2
)

// Ticket is one vehicle's parking session.
type Ticket struct {
	ID                string              `json:"id"`
	Plate             string              `json:"plate"`
	CustomerName      string              `json:"customer_name"`
	Phone             string              `json:"phone"`
	VehicleClass      domain.VehicleClass `json:"vehicle_class"`
	Spot              string              `json:"spot"`
	EntryTime         time.Time           `json:"entry_time"`
	EstimatedExitTime time.Time           `json:"estimated_exit_time"`
	RateTier          domain.RateTier     `json:"rate_tier,omitempty"`
	Total             int64               `json:"total"`
	QuotedTotal       int64               `json:"quoted_total"`
	Paid              bool                `json:"paid"`
	ActualExitTime    *time.Time          `json:"actual_exit_time,omitempty"`
	SchemaVersion     int                 `json:"schema_version"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// EffectiveRateTier falls back to hourly billing for legacy records.
func (t Ticket) EffectiveRateTier() domain.RateTier {
	if tier, ok := domain.ParseRateTier(string(t.RateTier)); ok {
		return tier
	}
	return domain.RateHourly
}

func (t Ticket) Active() bool {
	return !t.Paid
}

// TicketPatch lists the fields a settlement may write. Nil fields are left
// untouched. RequireUnpaid turns the write into a state-guarded transition.
type TicketPatch struct {
	Paid           *bool
	Total          *int64
	ActualExitTime *time.Time
	UpdatedAt      *time.Time
	RequireUnpaid  bool
}

// ActiveTicket is a dashboard row with its alert level evaluated at read time.
type ActiveTicket struct {
	Ticket
	Severity domain.Severity `json:"severity"`
}
