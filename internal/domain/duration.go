package domain

import (
	"math"
	"time"
)

// DaysPerMonth is the flat month length used for monthly billing.
const DaysPerMonth = 30

// Duration is the elapsed time between entry and exit, rounded up per unit.
type Duration struct {
	TotalHours float64 `json:"totalHours"`
	Hours      int     `json:"hours"`
	Days       int     `json:"days"`
	Months     int     `json:"months"`
}

// ComputeDuration never fails; a negative span yields non-positive values
// and the caller decides what to charge.
func ComputeDuration(start, end time.Time) Duration {
	totalHours := end.Sub(start).Hours()
	days := int(math.Ceil(totalHours / 24))
	return Duration{
		TotalHours: totalHours,
		Hours:      int(math.Ceil(totalHours)),
		Days:       days,
		Months:     int(math.Ceil(float64(days) / DaysPerMonth)),
	}
}
