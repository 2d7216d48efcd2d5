//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/paperdesk/paperdesk/internal/api/handlers"
	"github.com/paperdesk/paperdesk/internal/cache"
	"github.com/paperdesk/paperdesk/internal/domain"
	"github.com/paperdesk/paperdesk/internal/jobs"
	"github.com/paperdesk/paperdesk/internal/papers"
	"github.com/paperdesk/paperdesk/internal/queue"
	"github.com/paperdesk/paperdesk/internal/repository"
	"github.com/paperdesk/paperdesk/internal/server"
	"github.com/paperdesk/paperdesk/internal/service"
	"github.com/paperdesk/paperdesk/internal/testutil"
	"github.com/paperdesk/paperdesk/internal/topics"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	RedisC       *testutil.RedisContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	HTTPClient   *http.Client

	Documents *repository.DocumentRepository
	Analyses  *repository.AnalysisRepository
}

// stubSearcher serves a fixed result set regardless of query.
type stubSearcher struct {
	name    string
	results []domain.PaperCandidate
}

func (s *stubSearcher) Name() string { return s.name }

func (s *stubSearcher) SearchByKeywords(ctx context.Context, query string, limit int) []domain.PaperCandidate {
	if len(s.results) > limit {
		return s.results[:limit]
	}
	return s.results
}

// stubTrending serves a fixed recent-papers list.
type stubTrending struct {
	results []domain.PaperCandidate
}

func (s *stubTrending) RecentByCategory(ctx context.Context, categories []string, limit int) []domain.PaperCandidate {
	if len(s.results) > limit {
		return s.results[:limit]
	}
	return s.results
}

func externalCandidate(source, id, title string) domain.PaperCandidate {
	return domain.PaperCandidate{
		Title:      title,
		Authors:    "Doe, J.; Roe, R.",
		Source:     source,
		ExternalID: id,
		URL:        "https://papers.example.org/" + id,
	}
}

// SetupE2EEnv creates a full E2E test environment with containers and server
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	redisC := testutil.NewRedisContainer(ctx, t)

	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	serverURL, closer := startServer(t, pool, redisC.Addr())

	env := &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		RedisC:       redisC,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: closer,
		HTTPClient:   &http.Client{Timeout: 10 * time.Second},
		Documents:    repository.NewDocumentRepository(pool),
		Analyses:     repository.NewAnalysisRepository(pool),
	}

	t.Cleanup(env.Teardown)
	return env
}

// Teardown releases all environment resources
func (e *E2ETestEnv) Teardown() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RedisC != nil {
		e.RedisC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// SeedDocument inserts a document row directly
func (e *E2ETestEnv) SeedDocument(ownerID, name string, shareable bool) *domain.Document {
	e.T.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	doc := &domain.Document{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Name:         name,
		OriginalName: name,
		FileType:     "pdf",
		MimeType:     "application/pdf",
		SizeBytes:    2048,
		Shareable:    shareable,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := e.Documents.Create(e.Ctx, doc); err != nil {
		e.T.Fatalf("failed to seed document: %v", err)
	}
	return doc
}

// SeedCompletedAnalysis inserts a completed analysis for a document
func (e *E2ETestEnv) SeedCompletedAnalysis(documentID, topicText string) {
	e.T.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	analysis := &domain.DocumentAnalysis{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		Background: topicText,
		Status:     domain.AnalysisStatusCompleted,
		Model:      "stub-model",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.Analyses.Create(e.Ctx, analysis); err != nil {
		e.T.Fatalf("failed to seed analysis: %v", err)
	}
}

// APIResponse mirrors the server's response envelope
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

// Do performs an authenticated request against the test server
func (e *E2ETestEnv) Do(userID, method, path string, body interface{}) (int, *APIResponse) {
	e.T.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			e.T.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.ServerURL+path, reqBody)
	if err != nil {
		e.T.Fatalf("failed to create request: %v", err)
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		e.T.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		e.T.Fatalf("failed to read response body: %v", err)
	}

	var apiResp APIResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &apiResp); err != nil {
			e.T.Fatalf("failed to parse response %q: %v", raw, err)
		}
	}
	return resp.StatusCode, &apiResp
}

// schedulerDelay keeps the generate round-trip fast in tests.
const schedulerDelay = 100 * time.Millisecond

// startServer starts the HTTP server with the full production wiring, except
// the external paper providers which are replaced with stubs.
func startServer(t *testing.T, pool *pgxpool.Pool, redisAddr string) (string, func()) {
	documentRepo := repository.NewDocumentRepository(pool)
	analysisRepo := repository.NewAnalysisRepository(pool)
	behaviorRepo := repository.NewBehaviorRepository(pool)
	recommendationRepo := repository.NewRecommendationRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	recCache := cache.NewRedisCache(redisClient, time.Hour)
	analysisQueue := queue.NewRedisQueue(redisClient)

	searchers := []papers.Searcher{
		&stubSearcher{name: domain.PaperSourceArxiv, results: []domain.PaperCandidate{
			externalCandidate(domain.PaperSourceArxiv, "2401.01001", "Attention Mechanisms Revisited"),
			externalCandidate(domain.PaperSourceArxiv, "2401.01002", "Sparse Transformer Variants"),
		}},
		&stubSearcher{name: domain.PaperSourceSemanticScholar, results: []domain.PaperCandidate{
			externalCandidate(domain.PaperSourceSemanticScholar, "ss-9001", "Efficient Attention for Long Sequences"),
		}},
	}
	trending := &stubTrending{results: []domain.PaperCandidate{
		externalCandidate(domain.PaperSourceArxiv, "2402.02001", "A Survey of Diffusion Models"),
		externalCandidate(domain.PaperSourceArxiv, "2402.02002", "Benchmarking Graph Networks"),
	}}

	extractor := topics.NewExtractor(analysisRepo)

	recommendationSvc := service.NewRecommendationService(
		documentRepo,
		behaviorRepo,
		recommendationRepo,
		extractor,
		searchers,
		trending,
		txRunner,
		recCache,
		analysisQueue,
	)

	scheduler := jobs.NewScheduler(jobs.GeneratorFunc(func(ctx context.Context, userID string) error {
		_, err := recommendationSvc.Generate(ctx, userID)
		return err
	}), schedulerDelay)

	router := server.NewRouter(server.RouterConfig{
		RecommendationHandler: handlers.NewRecommendationHandler(recommendationSvc, scheduler),
		BehaviorHandler:       handlers.NewBehaviorHandler(recommendationSvc),
	})

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to pick a port: %v", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		scheduler.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
		redisClient.Close()
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
