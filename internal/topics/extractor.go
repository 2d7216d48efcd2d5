package topics

import (
	"context"
	"errors"

	"github.com/paperdesk/paperdesk/internal/domain"
)

// AnalysisReader is the slice of the analysis repository the extractor needs
type AnalysisReader interface {
	GetByDocumentID(ctx context.Context, documentID string) (*domain.DocumentAnalysis, error)
}

// Extractor builds topic signatures from completed document analyses
type Extractor struct {
	analyses AnalysisReader
}

// NewExtractor creates a new Extractor instance
func NewExtractor(analyses AnalysisReader) *Extractor {
	return &Extractor{analyses: analyses}
}

// Signatures returns a keyword set per document id. Documents whose analysis
// is missing, not yet COMPLETED, or yields no keywords are silently omitted;
// only infrastructure failures are returned as errors.
func (e *Extractor) Signatures(ctx context.Context, documentIDs []string) (map[string]KeywordSet, error) {
	signatures := make(map[string]KeywordSet)

	for _, id := range documentIDs {
		analysis, err := e.analyses.GetByDocumentID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrAnalysisNotFound) {
				continue
			}
			return nil, err
		}

		if analysis.Status != domain.AnalysisStatusCompleted {
			continue
		}

		keywords := ExtractKeywords(analysis.TopicText())
		if len(keywords) == 0 {
			continue
		}
		signatures[id] = keywords
	}

	return signatures, nil
}
