package domain

import (
	"strings"
	"time"
)

// AnalysisStatus represents the lifecycle state of a document analysis
type AnalysisStatus string

const (
	AnalysisStatusPending    AnalysisStatus = "PENDING"
	AnalysisStatusProcessing AnalysisStatus = "PROCESSING"
	AnalysisStatusCompleted  AnalysisStatus = "COMPLETED"
	AnalysisStatusFailed     AnalysisStatus = "FAILED"
)

// DocumentAnalysis holds the summarized sections produced by the analysis
// pipeline for a single document. The pipeline itself is an external
// collaborator; this subsystem only reads completed analyses to derive topic
// signatures.
type DocumentAnalysis struct {
	ID         string
	DocumentID string
	Background string
	Content    string
	Results    string
	Notes      string
	Status     AnalysisStatus
	Model      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TopicText concatenates the analysis sections into the free-text blob that
// keyword extraction runs over. Empty sections are skipped.
func (a *DocumentAnalysis) TopicText() string {
	parts := make([]string, 0, 4)
	for _, s := range []string{a.Background, a.Content, a.Results, a.Notes} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// IsValidAnalysisStatus checks if an AnalysisStatus is valid
func IsValidAnalysisStatus(s AnalysisStatus) bool {
	switch s {
	case AnalysisStatusPending, AnalysisStatusProcessing, AnalysisStatusCompleted, AnalysisStatusFailed:
		return true
	}
	return false
}
