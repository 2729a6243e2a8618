package repositories

import (
	"context"
	"strings"
	"time"

	"parking/internal/domain"
	"parking/internal/domain/models"
)

// ResetConfirmation must be supplied to DeleteAll.
const ResetConfirmation = "BORRAR"

const (
	ModeRemote = "remote"
	ModeLocal  = "local"
)

// TicketQuery filters tickets. Results are always ordered by entry time,
// newest first.
type TicketQuery struct {
	ID          string
	Paid        *bool
	EntryFrom   *time.Time
	// EntryBefore is exclusive.
	EntryBefore *time.Time
}

type TicketStore interface {
	Query(ctx context.Context, q TicketQuery) ([]models.Ticket, error)
	Get(ctx context.Context, id string) (models.Ticket, error)
	Insert(ctx context.Context, t models.Ticket) (models.Ticket, error)
	Update(ctx context.Context, id string, patch models.TicketPatch) error
	DeleteAll(ctx context.Context, confirmation string) error
}

type SettingsStore interface {
	// LoadSettings reports false when nothing has been saved yet.
	LoadSettings(ctx context.Context) (models.Settings, bool, error)
	SaveSettings(ctx context.Context, s models.Settings) error
}

type CredentialStore interface {
	GetCredentials(ctx context.Context) (models.AdminCredentials, bool, error)
	SaveCredentials(ctx context.Context, c models.AdminCredentials) error
}

// Backend is everything the service needs from one storage adapter.
type Backend interface {
	TicketStore
	SettingsStore
	CredentialStore
	Ping(ctx context.Context) error
	Mode() string
	Close() error
}

func checkResetConfirmation(confirmation string) error {
	if strings.TrimSpace(confirmation) != ResetConfirmation {
		return domain.ValidationError{Field: "confirmation", Msg: "confirmation code does not match"}
	}
	return nil
}

func BoolPtr(v bool) *bool { return &v }

var (
	_ Backend = SQLStore{}
	_ Backend = (*LocalStore)(nil)
)
