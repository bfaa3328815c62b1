package chatbot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMalformedModelOutput marks extractor output that is not valid JSON.
// It indicates a bad model response, not missing user input, so it must
// never be surfaced as a clarification.
var ErrMalformedModelOutput = errors.New("model output is not valid JSON")

// Candidate is the raw per-turn extraction. Any field may be empty.
type Candidate struct {
	Name        string `json:"name"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description"`
}

// Merge fills this turn's empty fields from a previous candidate, so a slot
// the user already supplied survives a later turn in which the model omits it.
func (c Candidate) Merge(prev Candidate) Candidate {
	if c.Name == "" {
		c.Name = prev.Name
	}
	if c.Date == "" {
		c.Date = prev.Date
	}
	if c.Time == "" {
		c.Time = prev.Time
	}
	if c.Description == "" {
		c.Description = prev.Description
	}
	return c
}

// Serialize renders the candidate as key: value lines, used to write the
// attempted fields back into conversation memory on a clarification turn.
func (c Candidate) Serialize() string {
	return fmt.Sprintf("name: %s\ndate: %s\ntime: %s\ndescription: %s\n",
		c.Name, c.Date, c.Time, c.Description)
}

type FieldError struct {
	Field   string
	Message string
}

// ValidationErrors accumulates every missing or malformed field so a single
// clarification can address all of them at once.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, "\n")
}

// Validated is a candidate whose required fields are present and well-formed.
type Validated struct {
	Name        string
	Date        time.Time
	Time        string
	Description string
}

// ParseCandidate decodes raw extractor output, tolerating markdown code
// fences around the JSON object.
func ParseCandidate(raw string) (Candidate, error) {
	cleaned := stripCodeFence(raw)

	var c Candidate
	if err := json.Unmarshal([]byte(cleaned), &c); err != nil {
		return Candidate{}, fmt.Errorf("%w: %v", ErrMalformedModelOutput, err)
	}

	c.Name = strings.TrimSpace(c.Name)
	c.Date = strings.TrimSpace(c.Date)
	c.Time = strings.TrimSpace(c.Time)
	c.Description = strings.TrimSpace(c.Description)
	return c, nil
}

// Check validates every field and reports all problems together.
// A nil error means the returned Validated record is ready to persist.
func (c Candidate) Check() (*Validated, ValidationErrors) {
	var errs ValidationErrors

	if c.Name == "" {
		errs = append(errs, FieldError{
			Field:   "name",
			Message: "Please provide a name that works for you.",
		})
	}

	var date time.Time
	switch {
	case c.Date == "":
		errs = append(errs, FieldError{
			Field:   "date",
			Message: "Please provide a date that works for you.",
		})
	default:
		parsed, err := time.Parse("2006-01-02", c.Date)
		if err != nil {
			errs = append(errs, FieldError{
				Field:   "date",
				Message: `date must be in the format "YYYY-MM-DD"`,
			})
		} else {
			date = parsed
		}
	}

	switch {
	case c.Time == "":
		errs = append(errs, FieldError{
			Field:   "time",
			Message: "Please provide a time that works for you.",
		})
	default:
		if _, err := time.Parse("15:04", c.Time); err != nil {
			errs = append(errs, FieldError{
				Field:   "time",
				Message: `time must be in the format "HH:MM"`,
			})
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &Validated{
		Name:        c.Name,
		Date:        date,
		Time:        c.Time,
		Description: c.Description, // optional, defaults to empty
	}, nil
}

// Validate is the full contract: parse raw model output, then check fields.
// The error is either ErrMalformedModelOutput (wrapped) or ValidationErrors.
func Validate(raw string) (*Validated, error) {
	c, err := ParseCandidate(raw)
	if err != nil {
		return nil, err
	}
	v, errs := c.Check()
	if errs != nil {
		return nil, errs
	}
	return v, nil
}

func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
