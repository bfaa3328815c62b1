package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrProfileNotFound = errors.New("health profile not found")

type Repository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*HealthProfile, error)
}
