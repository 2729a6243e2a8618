package domain

import (
	"math"
	"time"
)

type rateKey struct {
	Class VehicleClass
	Tier  RateTier
}

// RateTable holds the unit price for each (vehicle class, rate tier) pair.
type RateTable map[rateKey]int64

func NewRateTable() RateTable {
	return RateTable{}
}

// DefaultRateTable returns the factory rates in whole currency units.
func DefaultRateTable() RateTable {
	t := NewRateTable()
	t.Set(VehicleCar, RateHourly, 2500)
	t.Set(VehicleCar, RateDaily, 20000)
	t.Set(VehicleCar, RateMonthly, 400000)
	t.Set(VehicleMotorcycle, RateHourly, 1500)
	t.Set(VehicleMotorcycle, RateDaily, 12000)
	t.Set(VehicleMotorcycle, RateMonthly, 250000)
	return t
}

func (t RateTable) Set(class VehicleClass, tier RateTier, rate int64) {
	t[rateKey{Class: class, Tier: tier}] = rate
}

func (t RateTable) Rate(class VehicleClass, tier RateTier) (int64, bool) {
	rate, ok := t[rateKey{Class: class, Tier: tier}]
	return rate, ok
}

// Price is the raw Pricing Engine output. Total is not clamped.
type Price struct {
	Total    int64    `json:"total"`
	Quantity int      `json:"quantity"`
	Rate     int64    `json:"rate"`
	Duration Duration `json:"duration"`
}

// Charge applies the billing policy on top of the raw price: a span that is
// zero or negative is never charged.
func (p Price) Charge() int64 {
	if p.Duration.TotalHours <= 0 || p.Total < 0 {
		return 0
	}
	return p.Total
}

// ComputePrice multiplies the tier quantity by the configured rate. An
// unknown class or tier prices at zero instead of failing.
func ComputePrice(rates RateTable, class VehicleClass, tier RateTier, start, end time.Time) Price {
	d := ComputeDuration(start, end)
	out := Price{Duration: d}

	rate, ok := rates.Rate(class, tier)
	if !ok {
		return out
	}

	switch tier {
	case RateHourly:
		out.Quantity = d.Hours
	case RateDaily:
		out.Quantity = d.Days
	case RateMonthly:
		out.Quantity = d.Months
	default:
		return out
	}

	out.Rate = rate
	out.Total = int64(math.Round(float64(rate) * float64(out.Quantity)))
	return out
}
