package service

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paperdesk/paperdesk/internal/cache"
	"github.com/paperdesk/paperdesk/internal/domain"
	"github.com/paperdesk/paperdesk/internal/pagination"
	"github.com/paperdesk/paperdesk/internal/papers"
	"github.com/paperdesk/paperdesk/internal/queue"
	"github.com/paperdesk/paperdesk/internal/telemetry"
	"github.com/paperdesk/paperdesk/internal/topics"
	"golang.org/x/sync/singleflight"
)

const (
	maxBatchSize  = 10
	maxQueryTerms = 5
	scoreStep     = 0.05

	tierPersonalizedScore = 0.90
	tierTrendingScore     = 0.70
	tierPopularScore      = 0.60
	tierOwnFilesScore     = 0.50

	// Seed fixtures carry external ids with this prefix and must never
	// surface to users.
	placeholderIDPrefix = "example"

	reasonPersonalized = "related to your uploaded document topics"
	reasonTrending     = "trending in the field"
	reasonPopular      = "popular among other users"
	reasonGroup        = "other users in your group"
	reasonOwnDocument  = "one of your own documents"
)

// DocumentRepositoryInterface defines the repository interface for document reads
type DocumentRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Document, error)
	ListShareable(ctx context.Context, groupID string) ([]*domain.Document, error)
}

// BehaviorRepositoryInterface defines the repository interface for the behavior log
type BehaviorRepositoryInterface interface {
	Create(ctx context.Context, e *domain.BehaviorEvent) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.BehaviorEvent, error)
	ListByUserPage(ctx context.Context, userID string, limit int, cursor *pagination.Cursor) ([]*domain.BehaviorEvent, error)
	CountViewAnalyze(ctx context.Context, documentID string) (int64, error)
}

// RecommendationRepositoryInterface defines the repository interface for recommendation persistence
type RecommendationRepositoryInterface interface {
	CreateBatch(ctx context.Context, recs []*domain.Recommendation) error
	DeleteByUser(ctx context.Context, userID string) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Recommendation, error)
	GetByID(ctx context.Context, id string) (*domain.Recommendation, error)
	UpdateFeedback(ctx context.Context, id, feedback string) error
}

// TopicExtractorInterface turns completed analyses into topic signatures
type TopicExtractorInterface interface {
	Signatures(ctx context.Context, documentIDs []string) (map[string]topics.KeywordSet, error)
}

// AnalysisQueueInterface hands recognized uploads to the analysis pipeline
type AnalysisQueueInterface interface {
	PublishAnalysisRequest(ctx context.Context, req queue.AnalysisRequest) error
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// RecommendationService is the fallback orchestrator: it decides which tier
// of the recommendation strategy applies for a user, merges and scores
// candidates, and owns the persisted recommendation set.
type RecommendationService struct {
	documentRepo       DocumentRepositoryInterface
	behaviorRepo       BehaviorRepositoryInterface
	recommendationRepo RecommendationRepositoryInterface
	extractor          TopicExtractorInterface
	searchers          []papers.Searcher
	trending           papers.TrendingSource
	txRunner           TxRunner
	cache              cache.RecommendationCache
	queue              AnalysisQueueInterface
	uuidGen            UUIDGenerator

	// generateGroup coalesces concurrent regenerations for the same user so
	// delete-then-insert steps never interleave.
	generateGroup singleflight.Group
}

func NewRecommendationService(
	documentRepo DocumentRepositoryInterface,
	behaviorRepo BehaviorRepositoryInterface,
	recommendationRepo RecommendationRepositoryInterface,
	extractor TopicExtractorInterface,
	searchers []papers.Searcher,
	trending papers.TrendingSource,
	txRunner TxRunner,
	recCache cache.RecommendationCache,
	queue AnalysisQueueInterface,
) *RecommendationService {
	return &RecommendationService{
		documentRepo:       documentRepo,
		behaviorRepo:       behaviorRepo,
		recommendationRepo: recommendationRepo,
		extractor:          extractor,
		searchers:          searchers,
		trending:           trending,
		txRunner:           txRunner,
		cache:              recCache,
		queue:              queue,
		uuidGen:            &DefaultUUIDGenerator{},
	}
}

// WithUUIDGenerator overrides UUID generation (for testing).
func (s *RecommendationService) WithUUIDGenerator(gen UUIDGenerator) *RecommendationService {
	s.uuidGen = gen
	return s
}

// scoredCandidate pairs a tier's candidate with the metadata the tier chose
// for it. External candidates carry a PaperCandidate, internal ones a
// Document.
type scoredCandidate struct {
	paper    *domain.PaperCandidate
	document *domain.Document
	reason   string
}

// Generate recomputes the user's recommendation batch: it walks the tiers in
// order, stops at the first tier that yields candidates, and atomically
// replaces the stored set. An empty batch is a valid outcome, not an error.
// Concurrent calls for the same user coalesce into a single run.
func (s *RecommendationService) Generate(ctx context.Context, userID string) ([]*domain.Recommendation, error) {
	result, err, _ := s.generateGroup.Do(userID, func() (interface{}, error) {
		return s.generate(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*domain.Recommendation), nil
}

func (s *RecommendationService) generate(ctx context.Context, userID string) ([]*domain.Recommendation, error) {
	ctx, span := telemetry.StartSpan(ctx, "RecommendationService.Generate", telemetry.SpanAttributes{
		UserID:    userID,
		Operation: "generate",
	})
	defer span.End()

	candidates, startScore, err := s.personalizedTier(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		candidates, startScore = s.trendingTier(ctx)
	}
	if len(candidates) == 0 {
		candidates, startScore, err = s.popularityTier(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	batch := s.buildBatch(userID, candidates, startScore)

	err = s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Recommendations().DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		return repos.Recommendations().CreateBatch(ctx, batch)
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	s.cache.Invalidate(ctx, userID)
	return batch, nil
}

// personalizedTier searches both providers with a query derived from the
// topics of the user's own recognized documents. Returns nothing when the
// user has no qualifying uploads or no completed analyses.
func (s *RecommendationService) personalizedTier(ctx context.Context, userID string) ([]scoredCandidate, float64, error) {
	docs, err := s.documentRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	var pdfIDs []string
	for _, d := range docs {
		if d.IsPDF() {
			pdfIDs = append(pdfIDs, d.ID)
		}
	}
	if len(pdfIDs) == 0 {
		return nil, 0, nil
	}

	signatures, err := s.extractor.Signatures(ctx, pdfIDs)
	if err != nil {
		return nil, 0, err
	}
	if len(signatures) == 0 {
		return nil, 0, nil
	}

	query := strings.Join(topics.QueryTerms(combineSignatures(signatures), maxQueryTerms), " ")
	if query == "" {
		return nil, 0, nil
	}

	var merged []scoredCandidate
	for _, searcher := range s.searchers {
		for _, p := range searcher.SearchByKeywords(ctx, query, maxBatchSize) {
			paper := p
			merged = append(merged, scoredCandidate{paper: &paper, reason: reasonPersonalized})
		}
	}
	return dedupeByTitle(merged), tierPersonalizedScore, nil
}

// trendingTier lists recent submissions in the seed categories. Provider
// failure or a disabled provider yields nothing and the next tier runs.
func (s *RecommendationService) trendingTier(ctx context.Context) ([]scoredCandidate, float64) {
	if s.trending == nil {
		return nil, 0
	}

	var merged []scoredCandidate
	for _, p := range s.trending.RecentByCategory(ctx, papers.DefaultTrendingCategories, maxBatchSize) {
		paper := p
		merged = append(merged, scoredCandidate{paper: &paper, reason: reasonTrending})
	}
	return dedupeByTitle(merged), tierTrendingScore
}

// popularityTier ranks shareable internal documents by VIEW and ANALYZE
// counts. The requesting user's own documents are excluded unless the whole
// pool is theirs, in which case their own files are ranked instead, skipping
// the newest one unless it is the only document.
func (s *RecommendationService) popularityTier(ctx context.Context, userID string) ([]scoredCandidate, float64, error) {
	pool, err := s.documentRepo.ListShareable(ctx, "")
	if err != nil {
		return nil, 0, err
	}

	var shareable []*domain.Document
	for _, d := range pool {
		if d.IsPDF() {
			shareable = append(shareable, d)
		}
	}
	if len(shareable) == 0 {
		return s.ownFilesFallback(ctx, userID)
	}

	var others []*domain.Document
	var own []*domain.Document
	for _, d := range shareable {
		if d.OwnerID == userID {
			own = append(own, d)
		} else {
			others = append(others, d)
		}
	}

	if len(others) > 0 {
		ranked, err := s.rankByPopularity(ctx, others)
		if err != nil {
			return nil, 0, err
		}
		candidates := make([]scoredCandidate, 0, len(ranked))
		for _, d := range ranked {
			reason := reasonPopular
			if d.GroupID != "" {
				reason = reasonGroup
			}
			candidates = append(candidates, scoredCandidate{document: d, reason: reason})
		}
		return capCandidates(candidates), tierPopularScore, nil
	}

	// The pool is entirely the user's own documents.
	if len(own) == 1 {
		return []scoredCandidate{{document: own[0], reason: reasonOwnDocument}}, tierOwnFilesScore, nil
	}

	newest := own[0]
	for _, d := range own[1:] {
		if d.CreatedAt.After(newest.CreatedAt) {
			newest = d
		}
	}
	var rest []*domain.Document
	for _, d := range own {
		if d.ID != newest.ID {
			rest = append(rest, d)
		}
	}

	ranked, err := s.rankByPopularity(ctx, rest)
	if err != nil {
		return nil, 0, err
	}
	candidates := make([]scoredCandidate, 0, len(ranked))
	for _, d := range ranked {
		candidates = append(candidates, scoredCandidate{document: d, reason: reasonOwnDocument})
	}
	return capCandidates(candidates), tierOwnFilesScore, nil
}

// ownFilesFallback is the last resort when nothing is shareable at all: the
// user's own recognized documents, newest first, skipping the newest one
// unless it is the only document.
func (s *RecommendationService) ownFilesFallback(ctx context.Context, userID string) ([]scoredCandidate, float64, error) {
	docs, err := s.documentRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	var own []*domain.Document
	for _, d := range docs {
		if d.IsPDF() {
			own = append(own, d)
		}
	}
	if len(own) == 0 {
		return nil, 0, nil
	}
	if len(own) == 1 {
		return []scoredCandidate{{document: own[0], reason: reasonOwnDocument}}, tierOwnFilesScore, nil
	}

	// ListByOwner returns newest first; drop the newest.
	sort.SliceStable(own, func(i, j int) bool {
		return own[i].CreatedAt.After(own[j].CreatedAt)
	})
	candidates := make([]scoredCandidate, 0, len(own)-1)
	for _, d := range own[1:] {
		candidates = append(candidates, scoredCandidate{document: d, reason: reasonOwnDocument})
	}
	return capCandidates(candidates), tierOwnFilesScore, nil
}

func (s *RecommendationService) rankByPopularity(ctx context.Context, docs []*domain.Document) ([]*domain.Document, error) {
	counts := make(map[string]int64, len(docs))
	for _, d := range docs {
		n, err := s.behaviorRepo.CountViewAnalyze(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		counts[d.ID] = n
	}

	ranked := make([]*domain.Document, len(docs))
	copy(ranked, docs)
	sort.SliceStable(ranked, func(i, j int) bool {
		if counts[ranked[i].ID] != counts[ranked[j].ID] {
			return counts[ranked[i].ID] > counts[ranked[j].ID]
		}
		return ranked[i].CreatedAt.After(ranked[j].CreatedAt)
	})
	return ranked, nil
}

// buildBatch turns ranked candidates into persisted recommendations with
// scores stepping down from the tier's start score.
func (s *RecommendationService) buildBatch(userID string, candidates []scoredCandidate, startScore float64) []*domain.Recommendation {
	now := time.Now().UTC()
	batch := make([]*domain.Recommendation, 0, len(candidates))
	for i, c := range candidates {
		if i >= maxBatchSize {
			break
		}
		score := startScore - scoreStep*float64(i)
		if score < 0 {
			score = 0
		}

		rec := &domain.Recommendation{
			ID:        s.uuidGen.NewString(),
			UserID:    userID,
			Score:     score,
			Reason:    c.reason,
			CreatedAt: now,
		}
		if c.paper != nil {
			rec.ExternalPaperID = c.paper.ExternalID
			rec.Title = c.paper.Title
			rec.Authors = c.paper.Authors
			rec.Source = c.paper.Source
			rec.URL = c.paper.URL
		} else {
			rec.DocumentID = c.document.ID
			rec.Title = c.document.Name
			rec.Source = domain.PaperSourceInternal
		}
		batch = append(batch, rec)
	}
	return batch
}

// dedupeByTitle drops placeholder entries and repeated titles, keeping the
// first occurrence in provider order.
func dedupeByTitle(candidates []scoredCandidate) []scoredCandidate {
	seen := make(map[string]struct{}, len(candidates))
	var out []scoredCandidate
	for _, c := range candidates {
		if c.paper != nil {
			if c.paper.ExternalID == "" || strings.HasPrefix(c.paper.ExternalID, placeholderIDPrefix) {
				continue
			}
		}
		key := normalizeTitle(candidateTitle(c))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return capCandidates(out)
}

func capCandidates(candidates []scoredCandidate) []scoredCandidate {
	if len(candidates) > maxBatchSize {
		return candidates[:maxBatchSize]
	}
	return candidates
}

func candidateTitle(c scoredCandidate) string {
	if c.paper != nil {
		return c.paper.Title
	}
	return c.document.Name
}

func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// combineSignatures flattens every keyword set into one text, sorted within
// each set so query derivation is deterministic.
func combineSignatures(signatures map[string]topics.KeywordSet) string {
	ids := make([]string, 0, len(signatures))
	for id := range signatures {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var parts []string
	for _, id := range ids {
		words := make([]string, 0, len(signatures[id]))
		for w := range signatures[id] {
			words = append(words, w)
		}
		sort.Strings(words)
		parts = append(parts, strings.Join(words, " "))
	}
	return strings.Join(parts, " ")
}

// ListForUser returns the user's current recommendations, reading through
// the cache.
func (s *RecommendationService) ListForUser(ctx context.Context, userID string) ([]*domain.Recommendation, error) {
	ctx, span := telemetry.StartSpan(ctx, "RecommendationService.ListForUser", telemetry.SpanAttributes{
		UserID:    userID,
		Operation: "list",
	})
	defer span.End()

	if recs, ok := s.cache.Get(ctx, userID); ok {
		return recs, nil
	}

	recs, err := s.recommendationRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, userID, recs)
	return recs, nil
}

// UpdateFeedback records the user's verdict on a single recommendation.
// Only the owner may update it.
func (s *RecommendationService) UpdateFeedback(ctx context.Context, userID, recommendationID, feedback string) error {
	ctx, span := telemetry.StartSpan(ctx, "RecommendationService.UpdateFeedback", telemetry.SpanAttributes{
		UserID:           userID,
		RecommendationID: recommendationID,
		Operation:        "feedback",
	})
	defer span.End()

	rec, err := s.recommendationRepo.GetByID(ctx, recommendationID)
	if err != nil {
		return err
	}
	if rec.UserID != userID {
		return domain.ErrNotRecommendationOwner
	}

	if err := s.recommendationRepo.UpdateFeedback(ctx, recommendationID, feedback); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, userID)
	return nil
}

// RecordBehaviorInput represents the input for appending a behavior event
type RecordBehaviorInput struct {
	UserID     string
	DocumentID string
	Type       domain.BehaviorType
	Payload    string
}

// RecordBehavior appends an event to the behavior log. An UPLOAD of a
// recognized document additionally enqueues an analysis request; queue
// failures are logged, never surfaced.
func (s *RecommendationService) RecordBehavior(ctx context.Context, input RecordBehaviorInput) (*domain.BehaviorEvent, error) {
	ctx, span := telemetry.StartSpan(ctx, "RecommendationService.RecordBehavior", telemetry.SpanAttributes{
		UserID:     input.UserID,
		DocumentID: input.DocumentID,
		Operation:  "record_behavior",
	})
	defer span.End()

	event := domain.NewBehaviorEvent(
		s.uuidGen.NewString(),
		input.UserID,
		input.DocumentID,
		input.Type,
		input.Payload,
		time.Now().UTC(),
	)
	if err := domain.ValidateBehaviorEvent(event); err != nil {
		return nil, err
	}

	if err := s.behaviorRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	if input.Type == domain.BehaviorTypeUpload && input.DocumentID != "" {
		doc, err := s.documentRepo.GetByID(ctx, input.DocumentID)
		if err != nil {
			log.Printf("service: behavior %s references unknown document %s: %v", event.ID, input.DocumentID, err)
			return event, nil
		}
		if doc.IsPDF() {
			req := queue.AnalysisRequest{
				DocumentID: doc.ID,
				UserID:     input.UserID,
				Filename:   doc.Name,
			}
			if err := s.queue.PublishAnalysisRequest(ctx, req); err != nil {
				log.Printf("service: analysis enqueue failed for document %s: %v", doc.ID, err)
			}
		}
	}

	return event, nil
}

const defaultHistoryPageSize = 50

// BehaviorHistory returns a page of the user's behavior log, newest first.
func (s *RecommendationService) BehaviorHistory(ctx context.Context, userID, cursor string, limit int) (*pagination.PageResult[*domain.BehaviorEvent], error) {
	if limit <= 0 {
		limit = defaultHistoryPageSize
	}

	decoded, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	// Fetch one extra row to detect whether another page exists.
	events, err := s.behaviorRepo.ListByUserPage(ctx, userID, limit+1, decoded)
	if err != nil {
		return nil, err
	}

	result := &pagination.PageResult[*domain.BehaviorEvent]{Items: events}
	if len(events) > limit {
		result.Items = events[:limit]
		result.HasMore = true
		last := result.Items[limit-1]
		result.Cursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}
	return result, nil
}
