package domain

import (
	"fmt"
	"time"
)

// BehaviorType represents the kind of tracked user action
type BehaviorType string

const (
	BehaviorTypeView    BehaviorType = "VIEW"
	BehaviorTypeAnalyze BehaviorType = "ANALYZE"
	BehaviorTypeUpload  BehaviorType = "UPLOAD"
)

// BehaviorEvent is an append-only record of a user action. Events are never
// mutated or deleted; they feed both the personalization signal and the
// per-document popularity counter.
type BehaviorEvent struct {
	ID         string
	UserID     string
	DocumentID string // Empty for actions not tied to a document
	Type       BehaviorType
	Payload    string // Opaque JSON supplied by the caller
	CreatedAt  time.Time
}

// NewBehaviorEvent creates a new BehaviorEvent instance
func NewBehaviorEvent(id, userID, documentID string, behaviorType BehaviorType, payload string, createdAt time.Time) *BehaviorEvent {
	return &BehaviorEvent{
		ID:         id,
		UserID:     userID,
		DocumentID: documentID,
		Type:       behaviorType,
		Payload:    payload,
		CreatedAt:  createdAt,
	}
}

// ValidateBehaviorEvent validates a BehaviorEvent instance
func ValidateBehaviorEvent(e *BehaviorEvent) error {
	if e == nil {
		return fmt.Errorf("behavior event cannot be nil")
	}

	if e.ID == "" {
		return fmt.Errorf("behavior event ID is required")
	}

	if e.UserID == "" {
		return fmt.Errorf("behavior event UserID is required")
	}

	if !IsValidBehaviorType(e.Type) {
		return ErrInvalidBehaviorType
	}

	return nil
}

// IsValidBehaviorType checks if a BehaviorType is valid
func IsValidBehaviorType(t BehaviorType) bool {
	switch t {
	case BehaviorTypeView, BehaviorTypeAnalyze, BehaviorTypeUpload:
		return true
	}
	return false
}
