package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAge(t *testing.T) {
	p := &HealthProfile{DateOfBirth: time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)}

	assert.Equal(t, 36, p.Age(time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 36, p.Age(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)))
	// Birthday not reached yet this year.
	assert.Equal(t, 35, p.Age(time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 34, p.Age(time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)))
}

func TestPromptContext(t *testing.T) {
	p := &HealthProfile{
		Gender:      "F",
		DateOfBirth: time.Date(1985, 1, 2, 0, 0, 0, 0, time.UTC),
		HeightCM:    170,
		WeightKG:    62,
		Notes:       "pollen allergy",
	}

	got := p.PromptContext()
	assert.Contains(t, got, "User health data:")
	assert.Contains(t, got, "Gender: F;")
	assert.Contains(t, got, "Weight: 62 kilograms;")
	assert.Contains(t, got, "Height: 170 centimeters;")
	assert.Contains(t, got, "pollen allergy")
}
