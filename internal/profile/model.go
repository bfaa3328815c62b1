package profile

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// HealthProfile is the per-user medical context fed into symptom answers.
// It is read-only here; profiles are managed elsewhere.
type HealthProfile struct {
	UserID      uuid.UUID
	Gender      string // M, F or O
	DateOfBirth time.Time
	HeightCM    int
	WeightKG    int
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *HealthProfile) Age(now time.Time) int {
	age := now.Year() - p.DateOfBirth.Year()
	if now.Month() < p.DateOfBirth.Month() ||
		(now.Month() == p.DateOfBirth.Month() && now.Day() < p.DateOfBirth.Day()) {
		age--
	}
	return age
}

// PromptContext renders the profile block appended to symptom questions.
func (p *HealthProfile) PromptContext() string {
	return fmt.Sprintf(`User health data:
Gender: %s;
Age: %d;
Weight: %d kilograms;
Height: %d centimeters;
Health condition notes: %s`,
		p.Gender, p.Age(time.Now()), p.WeightKG, p.HeightCM, p.Notes)
}
