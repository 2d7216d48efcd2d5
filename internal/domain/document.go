package domain

import (
	"fmt"
	"strings"
	"time"
)

// Document represents a stored document in the workspace. The recommendation
// engine only ever reads documents; upload and folder management live in the
// file service.
type Document struct {
	ID           string
	OwnerID      string
	FolderID     string // Optional containing folder
	GroupID      string // Optional department/group the document belongs to
	Name         string
	OriginalName string
	FileType     string
	MimeType     string
	SizeBytes    int64
	Shareable    bool // Visible beyond the owner (group/department library)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsPDF reports whether the document is of the recognized type for
// recommendation purposes. The declared file type is checked first, then the
// MIME type, then the filename suffix; all case-insensitive.
func (d *Document) IsPDF() bool {
	if d == nil {
		return false
	}
	if strings.Contains(strings.ToLower(d.FileType), "pdf") {
		return true
	}
	if strings.Contains(strings.ToLower(d.MimeType), "pdf") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(d.Name), ".pdf")
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	if d.OwnerID == "" {
		return fmt.Errorf("document OwnerID is required")
	}

	if d.Name == "" {
		return fmt.Errorf("document Name is required")
	}

	return nil
}
