package domain

import "strings"

// VehicleClass is the billing class of a parked vehicle.
type VehicleClass string

const (
	VehicleCar        VehicleClass = "car"
	VehicleMotorcycle VehicleClass = "motorcycle"
)

// RateTier is the billing granularity chosen at registration.
type RateTier string

const (
	RateHourly  RateTier = "hourly"
	RateDaily   RateTier = "daily"
	RateMonthly RateTier = "monthly"
)

// ParseVehicleClass accepts canonical names plus the short/legacy spellings
// still present in older records ("carro", "moto").
func ParseVehicleClass(s string) (VehicleClass, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "car", "carro", "auto":
		return VehicleCar, true
	case "motorcycle", "moto", "motorbike":
		return VehicleMotorcycle, true
	default:
		return "", false
	}
}

// ParseRateTier accepts canonical names plus legacy "hour"/"day"/"month".
func ParseRateTier(s string) (RateTier, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hourly", "hour":
		return RateHourly, true
	case "daily", "day":
		return RateDaily, true
	case "monthly", "month":
		return RateMonthly, true
	default:
		return "", false
	}
}

// TicketStatus is used by report filters.
type TicketStatus string

const (
	StatusAll     TicketStatus = "all"
	StatusPaid    TicketStatus = "paid"
	StatusPending TicketStatus = "pending"
)

func ParseTicketStatus(s string) (TicketStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "todos":
		return StatusAll, true
	case "paid", "pagado":
		return StatusPaid, true
	case "pending", "pendiente", "active":
		return StatusPending, true
	default:
		return "", false
	}
}

// RequestContext carries authenticated admin info when available.
type RequestContext struct {
	Email   string `json:"email"`
	TokenID string `json:"tokenId"`
}
