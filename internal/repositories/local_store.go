package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"parking/internal/domain"
	"parking/internal/domain/models"
	"parking/internal/utils"

	"github.com/google/uuid"
)

// LocalStore keeps every record in one JSON document on disk. It is the
// fallback when the hosted database cannot be reached at startup. An empty
// path keeps the data in memory only.
type LocalStore struct {
	path string

	mu  sync.Mutex
	doc localDocument
}

type localCredentials struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type localDocument struct {
	Tickets     []models.Ticket   `json:"tickets"`
	Settings    *models.Settings  `json:"settings,omitempty"`
	Credentials *localCredentials `json:"credentials,omitempty"`
}

// OpenLocalStore loads the document at path. A corrupt file is moved aside
// and the store starts empty.
func OpenLocalStore(path string) (*LocalStore, error) {
	s := &LocalStore{path: path}
	if path == "" {
		return s, nil
	}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read local store: %w", err)
	}

	if len(strings.TrimSpace(string(raw))) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.doc); err != nil {
		broken := path + ".corrupt-" + utils.NowUTC().Format("20060102T150405")
		log.Printf("[STORE] action=open msg=local store unreadable, starting empty: %v (kept as %s)", err, broken)
		_ = os.Rename(path, broken)
		s.doc = localDocument{}
	}
	for i := range s.doc.Tickets {
		s.doc.Tickets[i] = normalizeStored(s.doc.Tickets[i])
	}
	return s, nil
}

// normalizeStored reads older records into the current shape, the same way
// the SQL adapter does on scan.
func normalizeStored(t models.Ticket) models.Ticket {
	if vc, ok := domain.ParseVehicleClass(string(t.VehicleClass)); ok {
		t.VehicleClass = vc
	}
	if rt, ok := domain.ParseRateTier(string(t.RateTier)); ok {
		t.RateTier = rt
	}
	if t.QuotedTotal == 0 {
		t.QuotedTotal = t.Total
	}
	if t.SchemaVersion == 0 {
		t.SchemaVersion = models.TicketSchemaLegacy
	}
	return t
}

func NewMemoryStore() *LocalStore {
	return &LocalStore{}
}

func (s *LocalStore) Mode() string { return ModeLocal }

func (s *LocalStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *LocalStore) Close() error { return nil }

// persist must be called with mu held.
func (s *LocalStore) persist() error {
	if s.path == "" {
		return nil
	}
	raw, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode local store: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return domain.StoreUnavailableError{Op: "write local store", Err: err}
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return domain.StoreUnavailableError{Op: "write local store", Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return domain.StoreUnavailableError{Op: "write local store", Err: err}
	}
	return nil
}

func matches(t models.Ticket, q TicketQuery) bool {
	if q.ID != "" && t.ID != q.ID {
		return false
	}
	if q.Paid != nil && t.Paid != *q.Paid {
		return false
	}
	if q.EntryFrom != nil && t.EntryTime.Before(*q.EntryFrom) {
		return false
	}
	if q.EntryBefore != nil && !t.EntryTime.Before(*q.EntryBefore) {
		return false
	}
	return true
}

func cloneTicket(t models.Ticket) models.Ticket {
	if t.ActualExitTime != nil {
		v := *t.ActualExitTime
		t.ActualExitTime = &v
	}
	return t
}

func (s *LocalStore) Query(ctx context.Context, q TicketQuery) ([]models.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Ticket{}
	for _, t := range s.doc.Tickets {
		if matches(t, q) {
			out = append(out, cloneTicket(t))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EntryTime.After(out[j].EntryTime)
	})
	return out, nil
}

func (s *LocalStore) Get(ctx context.Context, id string) (models.Ticket, error) {
	if strings.TrimSpace(id) == "" {
		return models.Ticket{}, domain.ValidationError{Field: "id", Msg: "id is required"}
	}
	if err := ctx.Err(); err != nil {
		return models.Ticket{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		return cloneTicket(s.doc.Tickets[i]), nil
	}
	return models.Ticket{}, domain.NotFoundError{Resource: "ticket"}
}

func (s *LocalStore) indexOf(id string) int {
	for i := range s.doc.Tickets {
		if s.doc.Tickets[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *LocalStore) Insert(ctx context.Context, t models.Ticket) (models.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return models.Ticket{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if s.indexOf(t.ID) >= 0 {
		return models.Ticket{}, domain.ConflictError{Resource: "ticket", Msg: "duplicate id"}
	}
	now := utils.NowUTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	if t.SchemaVersion == 0 {
		t.SchemaVersion = models.TicketSchemaCurrent
	}

	s.doc.Tickets = append(s.doc.Tickets, cloneTicket(t))
	if err := s.persist(); err != nil {
		s.doc.Tickets = s.doc.Tickets[:len(s.doc.Tickets)-1]
		return models.Ticket{}, err
	}
	return t, nil
}

// Update holds the lock across the state check and the write, so a guarded
// settlement cannot race another one.
func (s *LocalStore) Update(ctx context.Context, id string, patch models.TicketPatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.NotFoundError{Resource: "ticket"}
	}
	prev := cloneTicket(s.doc.Tickets[i])
	if patch.RequireUnpaid && prev.Paid {
		return domain.ConflictError{Resource: "ticket", Msg: "ticket is already paid"}
	}

	next := cloneTicket(prev)
	if patch.Paid != nil {
		next.Paid = *patch.Paid
	}
	if patch.Total != nil {
		next.Total = *patch.Total
	}
	if patch.ActualExitTime != nil {
		v := *patch.ActualExitTime
		next.ActualExitTime = &v
	}
	if patch.UpdatedAt != nil {
		next.UpdatedAt = *patch.UpdatedAt
	}

	s.doc.Tickets[i] = next
	if err := s.persist(); err != nil {
		s.doc.Tickets[i] = prev
		return err
	}
	return nil
}

func (s *LocalStore) DeleteAll(ctx context.Context, confirmation string) error {
	if err := checkResetConfirmation(confirmation); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.doc.Tickets
	s.doc.Tickets = nil
	if err := s.persist(); err != nil {
		s.doc.Tickets = prev
		return err
	}
	return nil
}

func (s *LocalStore) LoadSettings(ctx context.Context) (models.Settings, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc.Settings == nil {
		return models.Settings{}, false, nil
	}
	return *s.doc.Settings, true, nil
}

func (s *LocalStore) SaveSettings(ctx context.Context, settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.doc.Settings
	s.doc.Settings = &settings
	if err := s.persist(); err != nil {
		s.doc.Settings = prev
		return err
	}
	return nil
}

func (s *LocalStore) GetCredentials(ctx context.Context) (models.AdminCredentials, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.doc.Credentials
	if c == nil {
		return models.AdminCredentials{}, false, nil
	}
	return models.AdminCredentials{
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}, true, nil
}

func (s *LocalStore) SaveCredentials(ctx context.Context, c models.AdminCredentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := utils.NowUTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}
	prev := s.doc.Credentials
	s.doc.Credentials = &localCredentials{
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if err := s.persist(); err != nil {
		s.doc.Credentials = prev
		return err
	}
	return nil
}
