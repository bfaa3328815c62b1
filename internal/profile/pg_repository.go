package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*HealthProfile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT user_id, gender, date_of_birth, height_cm, weight_kg, notes, created_at, updated_at
		FROM health_profiles
		WHERE user_id = $1
	`, userID)

	var p HealthProfile
	err := row.Scan(
		&p.UserID,
		&p.Gender,
		&p.DateOfBirth,
		&p.HeightCM,
		&p.WeightKG,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	return &p, nil
}
