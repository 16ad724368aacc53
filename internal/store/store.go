// Package store defines the storage interface and implementations.
package store

import (
	"context"

	"github.com/kenniferm/eunoia-backend/internal/domain"
)

// Store defines the interface for data persistence. Lookup methods return
// (nil, nil) when the entity does not exist.
type Store interface {
	// Call operations
	CreateCall(ctx context.Context, call *domain.Call) error
	GetCall(ctx context.Context, callID string) (*domain.Call, error)
	ListCalls(ctx context.Context, limit int) ([]domain.Call, error)
	UpdateCallStatus(ctx context.Context, callID string, status domain.CallStatus) error
	EndCall(ctx context.Context, callID, reason string) error

	// Appointment operations
	CreateAppointment(ctx context.Context, appt *domain.Appointment) error
	ListAppointments(ctx context.Context, limit int) ([]domain.Appointment, error)

	Close() error
}
