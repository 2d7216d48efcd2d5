package service

import (
	"context"
	"sort"

	"github.com/paperdesk/paperdesk/internal/domain"
	"github.com/paperdesk/paperdesk/internal/telemetry"
	"github.com/paperdesk/paperdesk/internal/topics"
)

// RelatedDocument pairs a shareable document with its best-match similarity
// against the requesting user's topic signatures.
type RelatedDocument struct {
	Document *domain.Document
	Score    float64
}

// RelatedDocuments ranks other users' shareable documents by Jaccard
// similarity against the topics of the requesting user's own documents. A
// candidate is scored by its best match across all of the user's signatures.
// Users without completed analyses get an empty result.
func (s *RecommendationService) RelatedDocuments(ctx context.Context, userID string, limit int) ([]RelatedDocument, error) {
	ctx, span := telemetry.StartSpan(ctx, "RecommendationService.RelatedDocuments", telemetry.SpanAttributes{
		UserID:    userID,
		Operation: "related",
	})
	defer span.End()

	if limit <= 0 {
		limit = maxBatchSize
	}

	own, err := s.documentRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	var ownIDs []string
	for _, d := range own {
		if d.IsPDF() {
			ownIDs = append(ownIDs, d.ID)
		}
	}
	if len(ownIDs) == 0 {
		return nil, nil
	}

	userSignatures, err := s.extractor.Signatures(ctx, ownIDs)
	if err != nil {
		return nil, err
	}
	if len(userSignatures) == 0 {
		return nil, nil
	}

	pool, err := s.documentRepo.ListShareable(ctx, "")
	if err != nil {
		return nil, err
	}

	candidates := make(map[string]*domain.Document)
	var candidateIDs []string
	for _, d := range pool {
		if d.OwnerID == userID || !d.IsPDF() {
			continue
		}
		candidates[d.ID] = d
		candidateIDs = append(candidateIDs, d.ID)
	}
	if len(candidateIDs) == 0 {
		return nil, nil
	}

	candidateSignatures, err := s.extractor.Signatures(ctx, candidateIDs)
	if err != nil {
		return nil, err
	}

	var related []RelatedDocument
	for id, sig := range candidateSignatures {
		score := topics.BestMatch(sig, userSignatures)
		if score == 0 {
			continue
		}
		related = append(related, RelatedDocument{Document: candidates[id], Score: score})
	}

	sort.SliceStable(related, func(i, j int) bool {
		if related[i].Score != related[j].Score {
			return related[i].Score > related[j].Score
		}
		return related[i].Document.CreatedAt.After(related[j].Document.CreatedAt)
	})
	if len(related) > limit {
		related = related[:limit]
	}
	return related, nil
}
