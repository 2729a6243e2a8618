package models

import (
	"time"

	"parking/internal/domain"
)

// Settings is the operator-editable configuration surface.
type Settings struct {
	TotalSpaces    int   `json:"totalSpaces"`
	CarHourlyRate  int64 `json:"carHourlyRate"`
	MotoHourlyRate int64 `json:"motoHourlyRate"`
	CarDayRate     int64 `json:"carDayRate"`
	MotoDayRate    int64 `json:"motoDayRate"`
	CarMonthRate   int64 `json:"carMonthRate"`
	MotoMonthRate  int64 `json:"motoMonthRate"`
	WarningMinutes int   `json:"warningMinutes"`
}

func DefaultSettings() Settings {
	return Settings{
		TotalSpaces:    50,
		CarHourlyRate:  2500,
		MotoHourlyRate: 1500,
		CarDayRate:     20000,
		MotoDayRate:    12000,
		CarMonthRate:   400000,
		MotoMonthRate:  250000,
		WarningMinutes: 60,
	}
}

// Rates builds the pricing table from the configured values.
func (s Settings) Rates() domain.RateTable {
	t := domain.NewRateTable()
	t.Set(domain.VehicleCar, domain.RateHourly, s.CarHourlyRate)
	t.Set(domain.VehicleCar, domain.RateDaily, s.CarDayRate)
	t.Set(domain.VehicleCar, domain.RateMonthly, s.CarMonthRate)
	t.Set(domain.VehicleMotorcycle, domain.RateHourly, s.MotoHourlyRate)
	t.Set(domain.VehicleMotorcycle, domain.RateDaily, s.MotoDayRate)
	t.Set(domain.VehicleMotorcycle, domain.RateMonthly, s.MotoMonthRate)
	return t
}

// MergeOver fills zero fields of s from base, so partially stored documents
// keep the defaults for anything they do not mention.
func (s Settings) MergeOver(base Settings) Settings {
	out := base
	if s.TotalSpaces != 0 {
		out.TotalSpaces = s.TotalSpaces
	}
	if s.CarHourlyRate != 0 {
		out.CarHourlyRate = s.CarHourlyRate
	}
	if s.MotoHourlyRate != 0 {
		out.MotoHourlyRate = s.MotoHourlyRate
	}
	if s.CarDayRate != 0 {
		out.CarDayRate = s.CarDayRate
	}
	if s.MotoDayRate != 0 {
		out.MotoDayRate = s.MotoDayRate
	}
	if s.CarMonthRate != 0 {
		out.CarMonthRate = s.CarMonthRate
	}
	if s.MotoMonthRate != 0 {
		out.MotoMonthRate = s.MotoMonthRate
	}
	if s.WarningMinutes != 0 {
		out.WarningMinutes = s.WarningMinutes
	}
	return out
}

func (s Settings) Validate() error {
	if s.TotalSpaces <= 0 {
		return domain.ValidationError{Field: "totalSpaces", Msg: "must be greater than 0"}
	}
	if s.WarningMinutes <= 0 {
		return domain.ValidationError{Field: "warningMinutes", Msg: "must be greater than 0"}
	}
	rates := []struct {
		field string
		v     int64
	}{
		{"carHourlyRate", s.CarHourlyRate},
		{"motoHourlyRate", s.MotoHourlyRate},
		{"carDayRate", s.CarDayRate},
		{"motoDayRate", s.MotoDayRate},
		{"carMonthRate", s.CarMonthRate},
		{"motoMonthRate", s.MotoMonthRate},
	}
	for _, r := range rates {
		if r.v <= 0 {
			return domain.ValidationError{Field: r.field, Msg: "must be greater than 0"}
		}
	}
	return nil
}

// AdminCredentials is the single operator account.
type AdminCredentials struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
