package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/paperdesk/paperdesk/internal/api"
	"github.com/paperdesk/paperdesk/internal/api/middleware"
	"github.com/paperdesk/paperdesk/internal/domain"
	"github.com/paperdesk/paperdesk/internal/service"
)

type RecommendationService interface {
	ListForUser(ctx context.Context, userID string) ([]*domain.Recommendation, error)
	UpdateFeedback(ctx context.Context, userID, recommendationID, feedback string) error
	RelatedDocuments(ctx context.Context, userID string, limit int) ([]service.RelatedDocument, error)
}

// RegenerationScheduler queues a deferred recommendation refresh.
type RegenerationScheduler interface {
	Schedule(userID string)
}

type RecommendationHandler struct {
	svc       RecommendationService
	scheduler RegenerationScheduler
}

func NewRecommendationHandler(svc RecommendationService, scheduler RegenerationScheduler) *RecommendationHandler {
	return &RecommendationHandler{svc: svc, scheduler: scheduler}
}

type RecommendationResponse struct {
	ID              string  `json:"id"`
	DocumentID      string  `json:"document_id,omitempty"`
	ExternalPaperID string  `json:"external_paper_id,omitempty"`
	Title           string  `json:"title"`
	Authors         string  `json:"authors,omitempty"`
	Source          string  `json:"source"`
	URL             string  `json:"url,omitempty"`
	Reason          string  `json:"reason"`
	Score           float64 `json:"score"`
	Feedback        string  `json:"feedback,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

func recommendationToResponse(rec *domain.Recommendation) *RecommendationResponse {
	return &RecommendationResponse{
		ID:              rec.ID,
		DocumentID:      rec.DocumentID,
		ExternalPaperID: rec.ExternalPaperID,
		Title:           rec.Title,
		Authors:         rec.Authors,
		Source:          rec.Source,
		URL:             rec.URL,
		Reason:          rec.Reason,
		Score:           rec.Score,
		Feedback:        rec.Feedback,
		CreatedAt:       rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// List returns the user's current recommendations, best score first.
func (h *RecommendationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recs, err := h.svc.ListForUser(r.Context(), userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]*RecommendationResponse, 0, len(recs))
	for _, rec := range recs {
		resp = append(resp, recommendationToResponse(rec))
	}
	api.Success(w, http.StatusOK, resp)
}

// Generate schedules a deferred regeneration of the user's batch.
func (h *RecommendationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	h.scheduler.Schedule(userID)
	api.Success(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
}

type UpdateFeedbackRequest struct {
	Feedback string `json:"feedback"`
}

// UpdateFeedback records the user's verdict on one recommendation.
func (h *RecommendationHandler) UpdateFeedback(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recommendationID := chi.URLParam(r, "id")

	var req UpdateFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Feedback == "" {
		api.Error(w, http.StatusBadRequest, "feedback is required")
		return
	}

	if err := h.svc.UpdateFeedback(r.Context(), userID, recommendationID, req.Feedback); err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]string{"status": "updated"})
}

type RelatedDocumentResponse struct {
	DocumentID string  `json:"document_id"`
	Name       string  `json:"name"`
	OwnerID    string  `json:"owner_id"`
	Score      float64 `json:"score"`
}

// Related lists other users' shareable documents ranked by topic similarity.
func (h *RecommendationHandler) Related(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	related, err := h.svc.RelatedDocuments(r.Context(), userID, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]*RelatedDocumentResponse, 0, len(related))
	for _, rd := range related {
		resp = append(resp, &RelatedDocumentResponse{
			DocumentID: rd.Document.ID,
			Name:       rd.Document.Name,
			OwnerID:    rd.Document.OwnerID,
			Score:      rd.Score,
		})
	}
	api.Success(w, http.StatusOK, resp)
}
