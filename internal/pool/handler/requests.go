package handler

import (
	"strings"
	"time"

	"poolpay/internal/pool/models"
	dErrors "poolpay/pkg/domain-errors"
	"poolpay/pkg/money"
)

// CreatePoolRequest is the body of POST /pools. Goal is a major-unit decimal
// string so clients never deal with minor units.
type CreatePoolRequest struct {
	Title    string    `json:"title"`
	Goal     string    `json:"goal"`
	Currency string    `json:"currency"`
	Capacity int       `json:"capacity"`
	Deadline time.Time `json:"deadline"`

	goalMinor int64
}

// Validate normalises and validates the request.
func (r *CreatePoolRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	if r.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if len(r.Title) > models.MaxTitleLength {
		return dErrors.New(dErrors.CodeValidation, "title must be 128 characters or less")
	}
	if r.Currency != "" && len(r.Currency) != 3 {
		return dErrors.New(dErrors.CodeValidation, "currency must be a 3-letter ISO code")
	}
	if r.Capacity < 1 {
		return dErrors.New(dErrors.CodeValidation, "capacity must be at least 1")
	}
	if r.Deadline.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "deadline is required")
	}
	goal, err := money.ParseMajor(r.Goal, r.Currency)
	if err != nil {
		return err
	}
	if goal <= 0 {
		return dErrors.New(dErrors.CodeValidation, "goal must be positive")
	}
	r.goalMinor = goal
	return nil
}

// GoalMinor is the validated goal in minor units.
func (r *CreatePoolRequest) GoalMinor() int64 {
	return r.goalMinor
}
