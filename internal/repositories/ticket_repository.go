package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	intdb "parking/internal/db"
	"parking/internal/domain"
	"parking/internal/domain/models"
	"parking/internal/utils"

	"github.com/google/uuid"
)

// SQLStore is the hosted-database adapter (MySQL or PostgreSQL).
type SQLStore struct {
	DB      *sql.DB
	Dialect intdb.Dialect
}

func NewSQLStore(db *sql.DB, dialect intdb.Dialect) SQLStore {
	return SQLStore{DB: db, Dialect: dialect}
}

const ticketColumns = `id, plate, customer_name, phone, vehicle_class, spot,
       entry_time, estimated_exit_time,
       COALESCE(rate_tier,''),
       total,
       COALESCE(quoted_total,total),
       paid,
       actual_exit_time,
       COALESCE(schema_version,1),
       created_at, updated_at`

func (s SQLStore) q(query string) string {
	return intdb.Rebind(s.Dialect, query)
}

func (s SQLStore) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if intdb.IsUnavailable(err) {
		return domain.StoreUnavailableError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s SQLStore) Mode() string { return ModeRemote }

func (s SQLStore) Ping(ctx context.Context) error {
	if s.DB == nil {
		return domain.StoreUnavailableError{Op: "ping"}
	}
	return s.wrap("ping", s.DB.PingContext(ctx))
}

func (s SQLStore) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (models.Ticket, error) {
	var (
		t        models.Ticket
		class    string
		tier     string
		exitTime sql.NullTime
	)
	if err := row.Scan(
		&t.ID,
		&t.Plate,
		&t.CustomerName,
		&t.Phone,
		&class,
		&t.Spot,
		&t.EntryTime,
		&t.EstimatedExitTime,
		&tier,
		&t.Total,
		&t.QuotedTotal,
		&t.Paid,
		&exitTime,
		&t.SchemaVersion,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return models.Ticket{}, err
	}

	t.VehicleClass = domain.VehicleClass(class)
	if vc, ok := domain.ParseVehicleClass(class); ok {
		t.VehicleClass = vc
	}
	if rt, ok := domain.ParseRateTier(tier); ok {
		t.RateTier = rt
	}
	if exitTime.Valid {
		v := exitTime.Time
		t.ActualExitTime = &v
	}
	return t, nil
}

// Query returns matching tickets, newest entry first.
func (s SQLStore) Query(ctx context.Context, f TicketQuery) ([]models.Ticket, error) {
	where := []string{}
	args := []any{}
	if f.ID != "" {
		where = append(where, "id = ?")
		args = append(args, f.ID)
	}
	if f.Paid != nil {
		where = append(where, "paid = ?")
		args = append(args, *f.Paid)
	}
	if f.EntryFrom != nil {
		where = append(where, "entry_time >= ?")
		args = append(args, f.EntryFrom.UTC())
	}
	if f.EntryBefore != nil {
		where = append(where, "entry_time < ?")
		args = append(args, f.EntryBefore.UTC())
	}

	query := `SELECT ` + ticketColumns + ` FROM tickets`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY entry_time DESC`

	rows, err := s.DB.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, s.wrap("query tickets", err)
	}
	defer rows.Close()

	out := []models.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, s.wrap("scan ticket", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("query tickets", err)
	}
	return out, nil
}

func (s SQLStore) Get(ctx context.Context, id string) (models.Ticket, error) {
	if strings.TrimSpace(id) == "" {
		return models.Ticket{}, domain.ValidationError{Field: "id", Msg: "id is required"}
	}
	row := s.DB.QueryRowContext(ctx, s.q(`SELECT `+ticketColumns+` FROM tickets WHERE id = ? LIMIT 1`), id)
	t, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Ticket{}, domain.NotFoundError{Resource: "ticket", Err: err}
		}
		return models.Ticket{}, s.wrap("get ticket", err)
	}
	return t, nil
}

func (s SQLStore) Insert(ctx context.Context, t models.Ticket) (models.Ticket, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
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

	var exit any
	if t.ActualExitTime != nil {
		exit = t.ActualExitTime.UTC()
	}

	_, err := s.DB.ExecContext(ctx, s.q(`
		INSERT INTO tickets (
			id, plate, customer_name, phone, vehicle_class, spot,
			entry_time, estimated_exit_time, rate_tier, total, quoted_total,
			paid, actual_exit_time, schema_version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		t.ID, t.Plate, t.CustomerName, t.Phone, string(t.VehicleClass), t.Spot,
		t.EntryTime.UTC(), t.EstimatedExitTime.UTC(), intdb.NullIfEmpty(string(t.RateTier)), t.Total, t.QuotedTotal,
		t.Paid, exit, t.SchemaVersion, t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
	)
	if err != nil {
		return models.Ticket{}, s.wrap("insert ticket", err)
	}
	return t, nil
}

// Update writes the non-nil patch fields in one statement. With RequireUnpaid
// the write only lands while the ticket is still active.
func (s SQLStore) Update(ctx context.Context, id string, patch models.TicketPatch) error {
	sets := []string{}
	args := []any{}
	if patch.Paid != nil {
		sets = append(sets, "paid = ?")
		args = append(args, *patch.Paid)
	}
	if patch.Total != nil {
		sets = append(sets, "total = ?")
		args = append(args, *patch.Total)
	}
	if patch.ActualExitTime != nil {
		sets = append(sets, "actual_exit_time = ?")
		args = append(args, patch.ActualExitTime.UTC())
	}
	if patch.UpdatedAt != nil {
		sets = append(sets, "updated_at = ?")
		args = append(args, patch.UpdatedAt.UTC())
	}
	if len(sets) == 0 {
		return nil
	}

	query := `UPDATE tickets SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	args = append(args, id)
	if patch.RequireUnpaid {
		query += ` AND paid = ?`
		args = append(args, false)
	}

	res, err := s.DB.ExecContext(ctx, s.q(query), args...)
	if err != nil {
		return s.wrap("update ticket", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return s.wrap("update ticket", err)
	}
	if n > 0 {
		return nil
	}

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if patch.RequireUnpaid {
		return domain.ConflictError{Resource: "ticket", Msg: "ticket is already paid"}
	}
	return nil
}

func (s SQLStore) DeleteAll(ctx context.Context, confirmation string) error {
	if err := checkResetConfirmation(confirmation); err != nil {
		return err
	}
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM tickets`); err != nil {
		return s.wrap("delete tickets", err)
	}
	return nil
}

const settingsKey = "parking"

func (s SQLStore) LoadSettings(ctx context.Context) (models.Settings, bool, error) {
	var raw string
	err := s.DB.QueryRowContext(ctx, s.q(`SELECT value FROM parking_settings WHERE name = ? LIMIT 1`), settingsKey).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Settings{}, false, nil
		}
		return models.Settings{}, false, s.wrap("load settings", err)
	}
	var out models.Settings
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return models.Settings{}, false, fmt.Errorf("decode settings: %w", err)
	}
	return out, true, nil
}

func (s SQLStore) SaveSettings(ctx context.Context, settings models.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	now := utils.NowUTC()

	var existing string
	err = s.DB.QueryRowContext(ctx, s.q(`SELECT name FROM parking_settings WHERE name = ? LIMIT 1`), settingsKey).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.DB.ExecContext(ctx, s.q(`INSERT INTO parking_settings (name, value, updated_at) VALUES (?, ?, ?)`),
			settingsKey, string(raw), now)
	case err == nil:
		_, err = s.DB.ExecContext(ctx, s.q(`UPDATE parking_settings SET value = ?, updated_at = ? WHERE name = ?`),
			string(raw), now, settingsKey)
	}
	return s.wrap("save settings", err)
}

const credentialsRowID = 1

func (s SQLStore) GetCredentials(ctx context.Context) (models.AdminCredentials, bool, error) {
	var c models.AdminCredentials
	err := s.DB.QueryRowContext(ctx, s.q(`
		SELECT email, password_hash, created_at, updated_at
		FROM admin_credentials
		WHERE id = ? LIMIT 1`), credentialsRowID).Scan(&c.Email, &c.PasswordHash, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AdminCredentials{}, false, nil
		}
		return models.AdminCredentials{}, false, s.wrap("get credentials", err)
	}
	return c, true, nil
}

func (s SQLStore) SaveCredentials(ctx context.Context, c models.AdminCredentials) error {
	now := utils.NowUTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}

	var existingID int64
	err := s.DB.QueryRowContext(ctx, s.q(`SELECT id FROM admin_credentials WHERE id = ? LIMIT 1`), credentialsRowID).Scan(&existingID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.DB.ExecContext(ctx, s.q(`
			INSERT INTO admin_credentials (id, email, password_hash, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)`),
			credentialsRowID, c.Email, c.PasswordHash, c.CreatedAt.UTC(), c.UpdatedAt.UTC())
	case err == nil:
		_, err = s.DB.ExecContext(ctx, s.q(`
			UPDATE admin_credentials SET email = ?, password_hash = ?, updated_at = ?
			WHERE id = ?`),
			c.Email, c.PasswordHash, c.UpdatedAt.UTC(), credentialsRowID)
	}
	return s.wrap("save credentials", err)
}
