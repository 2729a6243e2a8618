package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"parking/internal/domain"
	"parking/internal/domain/models"
	"parking/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type staticSettings models.Settings

func (s staticSettings) Current() models.Settings { return models.Settings(s) }

func newTicketService(t *testing.T) (TicketService, *repositories.LocalStore, *fakeClock) {
	t.Helper()
	store := repositories.NewMemoryStore()
	clock := newFakeClock(time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC))
	svc := TicketService{
		Store:    store,
		Settings: staticSettings(models.DefaultSettings()),
		Now:      clock.Now,
		Location: time.UTC,
	}
	return svc, store, clock
}

func registerInput(now time.Time) RegisterInput {
	return RegisterInput{
		Plate:             " abc123 ",
		CustomerName:      "  Ana   Gómez ",
		Phone:             "300 123 4567",
		VehicleClass:      "car",
		Spot:              "a1",
		EntryTime:         now,
		EstimatedExitTime: now.Add(2 * time.Hour),
		RateTier:          "hourly",
	}
}

func TestRegisterThenSettle(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTicketService(t)

	tk, err := svc.Register(ctx, registerInput(clock.Now()))
	require.NoError(t, err)
	assert.NotEmpty(t, tk.ID)
	assert.Equal(t, "ABC123", tk.Plate)
	assert.Equal(t, "Ana Gómez", tk.CustomerName)
	assert.Equal(t, "A1", tk.Spot)
	assert.Equal(t, int64(5000), tk.Total)
	assert.Equal(t, int64(5000), tk.QuotedTotal)
	assert.False(t, tk.Paid)
	assert.Nil(t, tk.ActualExitTime)

	clock.Advance(time.Hour)
	settled, err := svc.Settle(ctx, tk.ID)
	require.NoError(t, err)
	assert.True(t, settled.Ticket.Paid)
	assert.Equal(t, int64(2500), settled.Ticket.Total)
	assert.Equal(t, int64(5000), settled.Ticket.QuotedTotal)
	require.NotNil(t, settled.Ticket.ActualExitTime)
	assert.True(t, settled.Ticket.ActualExitTime.Equal(clock.Now()))

	assert.Equal(t, "1h 0m", settled.Receipt.Duration)
	assert.Equal(t, 1, settled.Receipt.Quantity)
	assert.Contains(t, settled.Receipt.Text, "TOTAL PAGADO: $ 2.500")
	assert.True(t, strings.HasPrefix(settled.Receipt.WhatsAppURL, "https://wa.me/573001234567?text="))

	stored, err := svc.Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.True(t, stored.Paid)
	assert.Equal(t, int64(2500), stored.Total)
}

func TestSettleTwiceConflicts(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTicketService(t)

	tk, err := svc.Register(ctx, registerInput(clock.Now()))
	require.NoError(t, err)
	clock.Advance(90 * time.Minute)

	first, err := svc.Settle(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), first.Ticket.Total)

	clock.Advance(5 * time.Hour)
	_, err = svc.Settle(ctx, tk.ID)
	assert.True(t, domain.IsConflict(err))

	stored, err := svc.Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), stored.Total)
}

func TestSettleUnknownTicket(t *testing.T) {
	svc, _, _ := newTicketService(t)
	_, err := svc.Settle(context.Background(), "missing")
	assert.True(t, domain.IsNotFound(err))
}

func TestSettleLegacyTicketFallsBackToHourly(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := newTicketService(t)

	entry := clock.Now().Add(-150 * time.Minute)
	legacy, err := store.Insert(ctx, models.Ticket{
		Plate:             "XYZ98A",
		CustomerName:      "Legacy",
		Phone:             "3000000000",
		VehicleClass:      domain.VehicleMotorcycle,
		Spot:              "M3",
		EntryTime:         entry,
		EstimatedExitTime: entry.Add(time.Hour),
		SchemaVersion:     models.TicketSchemaLegacy,
	})
	require.NoError(t, err)

	settled, err := svc.Settle(ctx, legacy.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4500), settled.Ticket.Total)
	assert.Equal(t, domain.RateHourly, settled.Receipt.RateTier)
}

func TestSettleLegacyLocalRecordUsesClassAlias(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTicketService(t)

	entry := clock.Now().Add(-2 * time.Hour)
	path := filepath.Join(t.TempDir(), "parking.json")
	doc := fmt.Sprintf(`{"tickets":[{"id":"old-1","plate":"ABC123","customer_name":"Ana",
		"phone":"3001234567","vehicle_class":"carro","spot":"A1","entry_time":%q,
		"estimated_exit_time":%q,"total":5000,"paid":false}]}`,
		entry.Format(time.RFC3339), entry.Add(2*time.Hour).Format(time.RFC3339))
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	store, err := repositories.OpenLocalStore(path)
	require.NoError(t, err)
	svc.Store = store

	settled, err := svc.Settle(ctx, "old-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), settled.Ticket.Total)
	assert.Equal(t, domain.RateHourly, settled.Receipt.RateTier)
}

func TestSettleImmediatelyChargesZero(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTicketService(t)

	tk, err := svc.Register(ctx, registerInput(clock.Now()))
	require.NoError(t, err)

	settled, err := svc.Settle(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), settled.Ticket.Total)
	assert.True(t, settled.Ticket.Paid)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, clock := newTicketService(t)
	now := clock.Now()

	cases := []struct {
		name  string
		field string
		edit  func(*RegisterInput)
	}{
		{"missing plate", "plate", func(in *RegisterInput) { in.Plate = "  " }},
		{"missing phone", "phone", func(in *RegisterInput) { in.Phone = "" }},
		{"unknown class", "vehicle_class", func(in *RegisterInput) { in.VehicleClass = "truck" }},
		{"missing tier", "rate_tier", func(in *RegisterInput) { in.RateTier = "" }},
		{"unknown tier", "rate_tier", func(in *RegisterInput) { in.RateTier = "weekly" }},
		{"missing entry", "entry_time", func(in *RegisterInput) { in.EntryTime = time.Time{} }},
		{"exit before entry", "estimated_exit_time", func(in *RegisterInput) { in.EstimatedExitTime = now.Add(-time.Minute) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := registerInput(now)
			tc.edit(&in)
			_, err := svc.Register(context.Background(), in)
			var verr domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestRegisterEqualExitQuotesZero(t *testing.T) {
	svc, _, clock := newTicketService(t)
	in := registerInput(clock.Now())
	in.EstimatedExitTime = in.EntryTime

	tk, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, int64(0), tk.Total)
}

func TestQuoteTiers(t *testing.T) {
	svc, _, clock := newTicketService(t)
	entry := clock.Now()

	q, err := svc.Quote(QuoteInput{VehicleClass: "moto", RateTier: "daily", EntryTime: entry, ExitTime: entry.Add(25 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, 2, q.Quantity)
	assert.Equal(t, int64(24000), q.Total)

	q, err = svc.Quote(QuoteInput{VehicleClass: "car", RateTier: "monthly", EntryTime: entry, ExitTime: entry.AddDate(0, 0, 31)})
	require.NoError(t, err)
	assert.Equal(t, 2, q.Quantity)
	assert.Equal(t, int64(800000), q.Total)
}

func TestListActiveSearchAndSeverity(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTicketService(t)
	now := clock.Now()

	overdue := registerInput(now.Add(-3 * time.Hour))
	overdue.Plate = "OVR001"
	overdue.CustomerName = "Carlos"
	warning := registerInput(now.Add(-time.Hour))
	warning.Plate = "WRN002"
	warning.CustomerName = "Diana"
	warning.EstimatedExitTime = now.Add(30 * time.Minute)
	normal := registerInput(now)
	normal.Plate = "NRM003"
	normal.CustomerName = "Carla"
	normal.EstimatedExitTime = now.Add(5 * time.Hour)

	for _, in := range []RegisterInput{overdue, warning, normal} {
		_, err := svc.Register(ctx, in)
		require.NoError(t, err)
	}

	all, err := svc.ListActive(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "NRM003", all[0].Plate)
	assert.Equal(t, domain.SeverityNormal, all[0].Severity)
	assert.Equal(t, domain.SeverityWarning, all[1].Severity)
	assert.Equal(t, domain.SeverityOverdue, all[2].Severity)

	found, err := svc.ListActive(ctx, "carl")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	byPlate, err := svc.ListActive(ctx, "wrn")
	require.NoError(t, err)
	require.Len(t, byPlate, 1)
	assert.Equal(t, "Diana", byPlate[0].CustomerName)
}

func TestStatsCountsTodayRevenue(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := newTicketService(t)
	now := clock.Now()

	paidToday := sampleStored(now.Add(-2*time.Hour), true, 7500)
	paidYesterday := sampleStored(now.Add(-26*time.Hour), true, 9000)
	active := sampleStored(now.Add(-time.Hour), false, 2500)
	for _, tk := range []models.Ticket{paidToday, paidYesterday, active} {
		_, err := store.Insert(ctx, tk)
		require.NoError(t, err)
	}

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ActiveVehicles)
	assert.Equal(t, 50, stats.TotalSpaces)
	assert.Equal(t, 49, stats.FreeSpaces)
	assert.Equal(t, int64(7500), stats.TodayRevenue)
}

func TestStatsFreeSpacesNeverNegative(t *testing.T) {
	svc, _, _ := newTicketService(t)
	settings := models.DefaultSettings()
	settings.TotalSpaces = 2
	svc.Settings = staticSettings(settings)

	stats, err := svc.statsFor(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.FreeSpaces)
}

func TestReceiptRequiresPaidTicket(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTicketService(t)

	tk, err := svc.Register(ctx, registerInput(clock.Now()))
	require.NoError(t, err)
	_, err = svc.Receipt(ctx, tk.ID)
	assert.True(t, domain.IsConflict(err))

	clock.Advance(26 * time.Hour)
	_, err = svc.Settle(ctx, tk.ID)
	require.NoError(t, err)

	r, err := svc.Receipt(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "1d 2h 0m", r.Duration)
	assert.Equal(t, 26, r.Quantity)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTicketService(t)
	_, err := svc.Register(ctx, registerInput(clock.Now()))
	require.NoError(t, err)

	assert.True(t, domain.IsValidation(svc.Reset(ctx, "borrar todo")))
	require.NoError(t, svc.Reset(ctx, repositories.ResetConfirmation))

	active, err := svc.ListActive(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, active)
}

func sampleStored(entry time.Time, paid bool, total int64) models.Ticket {
	tk := models.Ticket{
		Plate:             "TST000",
		CustomerName:      "Test",
		Phone:             "3000000000",
		VehicleClass:      domain.VehicleCar,
		Spot:              "B2",
		EntryTime:         entry,
		EstimatedExitTime: entry.Add(time.Hour),
		RateTier:          domain.RateHourly,
		Total:             total,
		QuotedTotal:       total,
		Paid:              paid,
		SchemaVersion:     models.TicketSchemaCurrent,
	}
	if paid {
		exit := entry.Add(time.Hour)
		tk.ActualExitTime = &exit
	}
	return tk
}
