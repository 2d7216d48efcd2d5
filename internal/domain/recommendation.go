package domain

import (
	"fmt"
	"time"
)

// Recommendation is one ranked suggestion for a user: either an internal
// document (DocumentID set) or an external paper (ExternalPaperID set), never
// both. A user's recommendation set is regenerated wholesale; only the
// feedback field is mutated after creation.
type Recommendation struct {
	ID              string
	UserID          string
	DocumentID      string // Set when the candidate is an internal document
	ExternalPaperID string // Set when the candidate is an external paper
	Title           string
	Authors         string
	Source          string
	URL             string
	Reason          string
	Score           float64
	Feedback        string // User-settable after creation; empty until then
	CreatedAt       time.Time
}

// ValidateRecommendation validates a Recommendation instance
func ValidateRecommendation(r *Recommendation) error {
	if r == nil {
		return fmt.Errorf("recommendation cannot be nil")
	}

	if r.ID == "" {
		return fmt.Errorf("recommendation ID is required")
	}

	if r.UserID == "" {
		return fmt.Errorf("recommendation UserID is required")
	}

	if r.Title == "" {
		return fmt.Errorf("recommendation Title is required")
	}

	if (r.DocumentID == "") == (r.ExternalPaperID == "") {
		return ErrAmbiguousTarget
	}

	if r.Score < 0 || r.Score > 1 {
		return ErrInvalidScore
	}

	return nil
}
