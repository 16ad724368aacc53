package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kenniferm/eunoia-backend/internal/domain"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS calls (
			call_id TEXT PRIMARY KEY,
			agent_id TEXT NOT NULL,
			status TEXT NOT NULL,
			end_reason TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			ended_at DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_calls_created ON calls(created_at)`,
		`CREATE TABLE IF NOT EXISTS appointments (
			appointment_id TEXT PRIMARY KEY,
			call_id TEXT NOT NULL,
			date TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_call ON appointments(call_id, created_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateCall records a new call.
func (s *SQLiteStore) CreateCall(ctx context.Context, call *domain.Call) error {
	if call.CreatedAt.IsZero() {
		call.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO calls (call_id, agent_id, status, created_at) VALUES (?, ?, ?, ?)`,
		call.CallID, call.AgentID, call.Status, call.CreatedAt)
	return err
}

// GetCall retrieves a call by ID.
func (s *SQLiteStore) GetCall(ctx context.Context, callID string) (*domain.Call, error) {
	var call domain.Call
	var endReason sql.NullString
	var endedAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT call_id, agent_id, status, end_reason, created_at, ended_at FROM calls WHERE call_id = ?`,
		callID).Scan(&call.CallID, &call.AgentID, &call.Status, &endReason, &call.CreatedAt, &endedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if endReason.Valid {
		call.EndReason = endReason.String
	}
	if endedAt.Valid {
		call.EndedAt = &endedAt.Time
	}
	return &call, nil
}

// ListCalls retrieves the most recent calls.
func (s *SQLiteStore) ListCalls(ctx context.Context, limit int) ([]domain.Call, error) {
	query := `SELECT call_id, agent_id, status, end_reason, created_at, ended_at FROM calls ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calls []domain.Call
	for rows.Next() {
		var call domain.Call
		var endReason sql.NullString
		var endedAt sql.NullTime
		if err := rows.Scan(&call.CallID, &call.AgentID, &call.Status, &endReason, &call.CreatedAt, &endedAt); err != nil {
			return nil, err
		}
		if endReason.Valid {
			call.EndReason = endReason.String
		}
		if endedAt.Valid {
			call.EndedAt = &endedAt.Time
		}
		calls = append(calls, call)
	}
	return calls, rows.Err()
}

// UpdateCallStatus updates the status of a call.
func (s *SQLiteStore) UpdateCallStatus(ctx context.Context, callID string, status domain.CallStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE calls SET status = ? WHERE call_id = ?`,
		status, callID)
	return err
}

// EndCall marks a call ended with the given reason.
func (s *SQLiteStore) EndCall(ctx context.Context, callID, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE calls SET status = ?, end_reason = ?, ended_at = ? WHERE call_id = ?`,
		domain.CallStatusEnded, reason, time.Now(), callID)
	return err
}

// CreateAppointment records a booked appointment.
func (s *SQLiteStore) CreateAppointment(ctx context.Context, appt *domain.Appointment) error {
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO appointments (appointment_id, call_id, date, created_at) VALUES (?, ?, ?, ?)`,
		appt.AppointmentID, appt.CallID, appt.Date, appt.CreatedAt)
	return err
}

// ListAppointments retrieves the most recent appointments.
func (s *SQLiteStore) ListAppointments(ctx context.Context, limit int) ([]domain.Appointment, error) {
	query := `SELECT appointment_id, call_id, date, created_at FROM appointments ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []domain.Appointment
	for rows.Next() {
		var appt domain.Appointment
		if err := rows.Scan(&appt.AppointmentID, &appt.CallID, &appt.Date, &appt.CreatedAt); err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	return appts, rows.Err()
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
