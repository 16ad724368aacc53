package action

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kenniferm/eunoia-backend/internal/domain"
	"github.com/kenniferm/eunoia-backend/internal/store"
)

// RegisterBuiltins wires the built-in non-terminal executors into the
// registry. Terminal functions (end_call, transfer_call) are handled by the
// responder directly and have no executor here.
func RegisterBuiltins(r *Registry, st store.Store) {
	r.MustRegister(NameBookAppointment, bookAppointment(st))
}

// bookAppointment records the appointment for the call. The booking is the
// slow side effect behind the acknowledgement message; its outcome string
// feeds the narration pass.
func bookAppointment(st store.Store) ExecutorFunc {
	return func(ctx context.Context, callID string, call *FunctionCall) (string, error) {
		appt := &domain.Appointment{
			AppointmentID: "appt_" + uuid.New().String()[:8],
			CallID:        callID,
			Date:          call.StringArg("date"),
			CreatedAt:     time.Now(),
		}
		if err := st.CreateAppointment(ctx, appt); err != nil {
			return "", fmt.Errorf("failed to record appointment: %w", err)
		}
		if appt.Date == "" {
			return "Appointment booked successfully, date still to be confirmed", nil
		}
		return fmt.Sprintf("Appointment booked successfully for %s", appt.Date), nil
	}
}
