package services

import (
	"context"
	"time"

	"parking/internal/domain"
	"parking/internal/domain/models"
	"parking/internal/repositories"
	"parking/internal/utils"
)

// TicketService owns the ticket lifecycle: Active on registration, Paid on
// settlement, nothing after that.
type TicketService struct {
	Store     repositories.TicketStore
	Settings  SettingsProvider
	Now       func() time.Time
	Location  *time.Location
	RequestID string
}

type QuoteInput struct {
	VehicleClass string    `json:"vehicle_class"`
	RateTier     string    `json:"rate_tier"`
	EntryTime    time.Time `json:"entry_time"`
	ExitTime     time.Time `json:"exit_time"`
}

type Quote struct {
	VehicleClass domain.VehicleClass `json:"vehicle_class"`
	RateTier     domain.RateTier     `json:"rate_tier"`
	Quantity     int                 `json:"quantity"`
	Rate         int64               `json:"rate"`
	Total        int64               `json:"total"`
	Duration     domain.Duration     `json:"duration"`
}

type RegisterInput struct {
	Plate             string    `json:"plate"`
	CustomerName      string    `json:"customer_name"`
	Phone             string    `json:"phone"`
	VehicleClass      string    `json:"vehicle_class"`
	Spot              string    `json:"spot"`
	EntryTime         time.Time `json:"entry_time"`
	EstimatedExitTime time.Time `json:"estimated_exit_time"`
	RateTier          string    `json:"rate_tier"`
}

type Settlement struct {
	Ticket  models.Ticket `json:"ticket"`
	Receipt Receipt       `json:"receipt"`
}

type Stats struct {
	ActiveVehicles int   `json:"active_vehicles"`
	TotalSpaces    int   `json:"total_spaces"`
	FreeSpaces     int   `json:"free_spaces"`
	TodayRevenue   int64 `json:"today_revenue"`
}

func (s TicketService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s TicketService) loc() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.Local
}

func (s TicketService) settings() models.Settings {
	if s.Settings == nil {
		return models.DefaultSettings()
	}
	return s.Settings.Current()
}

func parseClassAndTier(class, tier string) (domain.VehicleClass, domain.RateTier, error) {
	vc, ok := domain.ParseVehicleClass(class)
	if !ok {
		if utils.TrimOrEmpty(class) == "" {
			return "", "", domain.ValidationError{Field: "vehicle_class", Msg: "vehicle class is required"}
		}
		return "", "", domain.ValidationError{Field: "vehicle_class", Msg: "unknown vehicle class"}
	}
	rt, ok := domain.ParseRateTier(tier)
	if !ok {
		if utils.TrimOrEmpty(tier) == "" {
			return "", "", domain.ValidationError{Field: "rate_tier", Msg: "rate tier is required"}
		}
		return "", "", domain.ValidationError{Field: "rate_tier", Msg: "unknown rate tier"}
	}
	return vc, rt, nil
}

// Quote prices a prospective stay. Non-positive spans quote zero.
func (s TicketService) Quote(in QuoteInput) (Quote, error) {
	vc, rt, err := parseClassAndTier(in.VehicleClass, in.RateTier)
	if err != nil {
		return Quote{}, err
	}
	if in.EntryTime.IsZero() {
		return Quote{}, domain.ValidationError{Field: "entry_time", Msg: "entry time is required"}
	}
	if in.ExitTime.IsZero() {
		return Quote{}, domain.ValidationError{Field: "exit_time", Msg: "exit time is required"}
	}

	p := domain.ComputePrice(s.settings().Rates(), vc, rt, in.EntryTime, in.ExitTime)
	return Quote{
		VehicleClass: vc,
		RateTier:     rt,
		Quantity:     p.Quantity,
		Rate:         p.Rate,
		Total:        p.Charge(),
		Duration:     p.Duration,
	}, nil
}

func (in RegisterInput) normalized() RegisterInput {
	in.Plate = utils.NormalizeCode(in.Plate)
	in.CustomerName = utils.NormalizeSpace(in.CustomerName)
	in.Phone = utils.TrimOrEmpty(in.Phone)
	in.Spot = utils.NormalizeCode(in.Spot)
	return in
}

func (in RegisterInput) validate() error {
	required := []struct {
		field string
		value string
	}{
		{"plate", in.Plate},
		{"customer_name", in.CustomerName},
		{"phone", in.Phone},
		{"vehicle_class", utils.TrimOrEmpty(in.VehicleClass)},
		{"spot", in.Spot},
	}
	for _, r := range required {
		if r.value == "" {
			return domain.ValidationError{Field: r.field, Msg: r.field + " is required"}
		}
	}
	if in.EntryTime.IsZero() {
		return domain.ValidationError{Field: "entry_time", Msg: "entry_time is required"}
	}
	if in.EstimatedExitTime.IsZero() {
		return domain.ValidationError{Field: "estimated_exit_time", Msg: "estimated_exit_time is required"}
	}
	if utils.TrimOrEmpty(in.RateTier) == "" {
		return domain.ValidationError{Field: "rate_tier", Msg: "rate_tier is required"}
	}
	if in.EstimatedExitTime.Before(in.EntryTime) {
		return domain.ValidationError{Field: "estimated_exit_time", Msg: "estimated exit cannot be before entry"}
	}
	return nil
}

// Register stores a new Active ticket priced on its estimated exit.
func (s TicketService) Register(ctx context.Context, in RegisterInput) (models.Ticket, error) {
	in = in.normalized()
	if err := in.validate(); err != nil {
		return models.Ticket{}, err
	}
	q, err := s.Quote(QuoteInput{
		VehicleClass: in.VehicleClass,
		RateTier:     in.RateTier,
		EntryTime:    in.EntryTime,
		ExitTime:     in.EstimatedExitTime,
	})
	if err != nil {
		return models.Ticket{}, err
	}

	now := s.now().UTC()
	t, err := s.Store.Insert(ctx, models.Ticket{
		Plate:             in.Plate,
		CustomerName:      in.CustomerName,
		Phone:             in.Phone,
		VehicleClass:      q.VehicleClass,
		Spot:              in.Spot,
		EntryTime:         in.EntryTime.UTC(),
		EstimatedExitTime: in.EstimatedExitTime.UTC(),
		RateTier:          q.RateTier,
		Total:             q.Total,
		QuotedTotal:       q.Total,
		SchemaVersion:     models.TicketSchemaCurrent,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		return models.Ticket{}, err
	}

	utils.LogEventf(s.RequestID, "ticket", "register", "id=%s plate=%s class=%s tier=%s quote=%d", t.ID, t.Plate, t.VehicleClass, t.RateTier, t.Total)
	return t, nil
}

// Settle charges the real elapsed time up to now and marks the ticket paid.
// A ticket that is already paid is rejected, so a retried request can never
// overwrite the charged amount.
func (s TicketService) Settle(ctx context.Context, id string) (Settlement, error) {
	t, err := s.Store.Get(ctx, id)
	if err != nil {
		return Settlement{}, err
	}
	if !t.Active() {
		return Settlement{}, domain.ConflictError{Resource: "ticket", Msg: "ticket is already paid"}
	}

	now := s.now().UTC()
	tier := t.EffectiveRateTier()
	p := domain.ComputePrice(s.settings().Rates(), t.VehicleClass, tier, t.EntryTime, now)
	total := p.Charge()
	paid := true

	if err := s.Store.Update(ctx, t.ID, models.TicketPatch{
		Paid:           &paid,
		Total:          &total,
		ActualExitTime: &now,
		UpdatedAt:      &now,
		RequireUnpaid:  true,
	}); err != nil {
		return Settlement{}, err
	}

	t.Paid = true
	t.Total = total
	t.ActualExitTime = &now
	t.UpdatedAt = now
	if t.RateTier == "" {
		utils.LogEventf(s.RequestID, "ticket", "settle", "id=%s legacy record billed as %s", t.ID, tier)
	}
	utils.LogEventf(s.RequestID, "ticket", "settle", "id=%s plate=%s quoted=%d charged=%d quantity=%d", t.ID, t.Plate, t.QuotedTotal, total, p.Quantity)

	return Settlement{
		Ticket:  t,
		Receipt: BuildReceipt(t, now, p.Quantity, s.loc()),
	}, nil
}

func (s TicketService) Get(ctx context.Context, id string) (models.Ticket, error) {
	return s.Store.Get(ctx, id)
}

// Receipt rebuilds the receipt of a paid ticket.
func (s TicketService) Receipt(ctx context.Context, id string) (Receipt, error) {
	t, err := s.Store.Get(ctx, id)
	if err != nil {
		return Receipt{}, err
	}
	if t.Active() || t.ActualExitTime == nil {
		return Receipt{}, domain.ConflictError{Resource: "ticket", Msg: "ticket is not paid yet"}
	}
	d := domain.ComputeDuration(t.EntryTime, *t.ActualExitTime)
	quantity := d.Hours
	switch t.EffectiveRateTier() {
	case domain.RateDaily:
		quantity = d.Days
	case domain.RateMonthly:
		quantity = d.Months
	}
	return BuildReceipt(t, *t.ActualExitTime, quantity, s.loc()), nil
}

// ActiveTickets reads every unpaid ticket, newest entry first.
func (s TicketService) ActiveTickets(ctx context.Context) ([]models.Ticket, error) {
	return s.Store.Query(ctx, repositories.TicketQuery{Paid: repositories.BoolPtr(false)})
}

// Annotate filters by plate or customer substring and classifies each ticket
// against the current clock.
func (s TicketService) Annotate(tickets []models.Ticket, search string) []models.ActiveTicket {
	search = utils.TrimOrEmpty(search)
	now := s.now()
	warning := s.settings().WarningMinutes

	out := make([]models.ActiveTicket, 0, len(tickets))
	for _, t := range tickets {
		if search != "" && !utils.ContainsFold(t.Plate, search) && !utils.ContainsFold(t.CustomerName, search) {
			continue
		}
		out = append(out, models.ActiveTicket{
			Ticket:   t,
			Severity: domain.Classify(t.EstimatedExitTime, now, warning),
		})
	}
	return out
}

func (s TicketService) ListActive(ctx context.Context, search string) ([]models.ActiveTicket, error) {
	tickets, err := s.ActiveTickets(ctx)
	if err != nil {
		return nil, err
	}
	return s.Annotate(tickets, search), nil
}

// Stats summarizes occupancy and today's revenue.
func (s TicketService) Stats(ctx context.Context) (Stats, error) {
	active, err := s.ActiveTickets(ctx)
	if err != nil {
		return Stats{}, err
	}
	return s.statsFor(ctx, len(active))
}

// statsFor counts revenue from paid tickets whose entry falls on the current
// local day.
func (s TicketService) statsFor(ctx context.Context, activeCount int) (Stats, error) {
	settings := s.settings()
	from := utils.StartOfDay(s.now(), s.loc())
	paid, err := s.Store.Query(ctx, repositories.TicketQuery{Paid: repositories.BoolPtr(true), EntryFrom: &from})
	if err != nil {
		return Stats{}, err
	}

	var revenue int64
	for _, t := range paid {
		revenue += t.Total
	}
	free := settings.TotalSpaces - activeCount
	if free < 0 {
		free = 0
	}
	return Stats{
		ActiveVehicles: activeCount,
		TotalSpaces:    settings.TotalSpaces,
		FreeSpaces:     free,
		TodayRevenue:   revenue,
	}, nil
}

// Reset wipes every ticket. Callers gate it behind an authenticated session.
func (s TicketService) Reset(ctx context.Context, confirmation string) error {
	if err := s.Store.DeleteAll(ctx, confirmation); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "ticket", "reset", "all tickets deleted")
	return nil
}
