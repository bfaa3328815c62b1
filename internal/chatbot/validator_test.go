package chatbot

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAllFieldsPresent(t *testing.T) {
	v, err := Validate(`{"name": "Dentist", "date": "2026-05-05", "time": "14:30", "description": "cleaning"}`)
	require.NoError(t, err)

	assert.Equal(t, "Dentist", v.Name)
	assert.Equal(t, time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC), v.Date)
	assert.Equal(t, "14:30", v.Time)
	assert.Equal(t, "cleaning", v.Description)
}

func TestValidateDescriptionOptional(t *testing.T) {
	v, err := Validate(`{"name": "Checkup", "date": "2026-05-05", "time": "09:00"}`)
	require.NoError(t, err)
	assert.Empty(t, v.Description)
}

func TestValidateAccumulatesEveryFieldError(t *testing.T) {
	_, err := Validate(`{"name": "", "date": "", "time": ""}`)
	require.Error(t, err)

	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 3)

	fields := []string{errs[0].Field, errs[1].Field, errs[2].Field}
	assert.ElementsMatch(t, []string{"name", "date", "time"}, fields)

	assert.Contains(t, err.Error(), "Please provide a name that works for you.")
	assert.Contains(t, err.Error(), "Please provide a date that works for you.")
	assert.Contains(t, err.Error(), "Please provide a time that works for you.")
}

func TestValidateMalformedDateAndTime(t *testing.T) {
	_, err := Validate(`{"name": "Dentist", "date": "May 5th", "time": "2pm"}`)
	require.Error(t, err)

	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 2)

	assert.Contains(t, err.Error(), `date must be in the format "YYYY-MM-DD"`)
	assert.Contains(t, err.Error(), `time must be in the format "HH:MM"`)
}

func TestValidateMalformedJSONIsNotAValidationError(t *testing.T) {
	_, err := Validate(`not json at all`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedModelOutput)

	var errs ValidationErrors
	assert.False(t, errors.As(err, &errs))
}

func TestParseCandidateStripsCodeFence(t *testing.T) {
	c, err := ParseCandidate("```json\n{\"name\": \"Dentist\", \"date\": \"2026-05-05\", \"time\": \"14:30\", \"description\": \"\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "Dentist", c.Name)
	assert.Equal(t, "2026-05-05", c.Date)
}

func TestCandidateMergeKeepsEarlierSlots(t *testing.T) {
	prev := Candidate{Name: "Dentist", Time: "14:30"}
	cur := Candidate{Date: "2026-05-05"}

	merged := cur.Merge(prev)
	assert.Equal(t, "Dentist", merged.Name)
	assert.Equal(t, "2026-05-05", merged.Date)
	assert.Equal(t, "14:30", merged.Time)
}

func TestCandidateMergePrefersCurrentTurn(t *testing.T) {
	prev := Candidate{Name: "Dentist", Date: "2026-05-05"}
	cur := Candidate{Name: "Cardiologist"}

	merged := cur.Merge(prev)
	assert.Equal(t, "Cardiologist", merged.Name)
	assert.Equal(t, "2026-05-05", merged.Date)
}
