package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

type CreateParams struct {
	Name        string
	Date        time.Time
	Time        string
	Description string
}

// Repository contains all DB interactions needed by the chat flows and the
// read API.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	List(ctx context.Context, limit, offset int) ([]Appointment, error)
}
