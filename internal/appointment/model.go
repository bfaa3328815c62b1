package appointment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Appointment is the persisted record created when the booking dialogue
// completes. Records are never mutated after creation.
type Appointment struct {
	ID          uuid.UUID
	Name        string
	Date        time.Time // calendar date, midnight UTC
	Time        string    // time of day, "HH:MM"
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (a *Appointment) String() string {
	return fmt.Sprintf("%s on %s at %s", a.Name, a.Date.Format("2006-01-02"), a.Time)
}
