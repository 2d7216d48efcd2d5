package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/paperdesk/paperdesk/internal/api"
	"github.com/paperdesk/paperdesk/internal/api/middleware"
	"github.com/paperdesk/paperdesk/internal/domain"
	"github.com/paperdesk/paperdesk/internal/pagination"
	"github.com/paperdesk/paperdesk/internal/service"
)

type BehaviorService interface {
	RecordBehavior(ctx context.Context, input service.RecordBehaviorInput) (*domain.BehaviorEvent, error)
	BehaviorHistory(ctx context.Context, userID, cursor string, limit int) (*pagination.PageResult[*domain.BehaviorEvent], error)
}

type BehaviorHandler struct {
	svc BehaviorService
}

func NewBehaviorHandler(svc BehaviorService) *BehaviorHandler {
	return &BehaviorHandler{svc: svc}
}

type RecordBehaviorRequest struct {
	DocumentID string          `json:"document_id,omitempty"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

type BehaviorEventResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	DocumentID string `json:"document_id,omitempty"`
	Type       string `json:"type"`
	CreatedAt  string `json:"created_at"`
}

// Record appends a behavior event for the requesting user.
func (h *BehaviorHandler) Record(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req RecordBehaviorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := h.svc.RecordBehavior(r.Context(), service.RecordBehaviorInput{
		UserID:     userID,
		DocumentID: req.DocumentID,
		Type:       domain.BehaviorType(req.Type),
		Payload:    string(req.Payload),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, behaviorEventToResponse(event))
}

// List returns a page of the requesting user's behavior log, newest first.
func (h *BehaviorHandler) List(w http.ResponseWriter, r *http.Request) {
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

	page, err := h.svc.BehaviorHistory(r.Context(), userID, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidCursor) {
			api.Error(w, http.StatusBadRequest, "invalid cursor")
			return
		}
		api.HandleError(w, err)
		return
	}

	items := make([]*BehaviorEventResponse, 0, len(page.Items))
	for _, event := range page.Items {
		items = append(items, behaviorEventToResponse(event))
	}

	api.Success(w, http.StatusOK, &pagination.PageResult[*BehaviorEventResponse]{
		Items:   items,
		Cursor:  page.Cursor,
		HasMore: page.HasMore,
	})
}

func behaviorEventToResponse(event *domain.BehaviorEvent) *BehaviorEventResponse {
	return &BehaviorEventResponse{
		ID:         event.ID,
		UserID:     event.UserID,
		DocumentID: event.DocumentID,
		Type:       string(event.Type),
		CreatedAt:  event.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
