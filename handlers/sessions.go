// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/quick-points/cliparse"
	"github.com/danielhkuo/quick-points/coordinator"
	"github.com/danielhkuo/quick-points/middleware"
	"github.com/danielhkuo/quick-points/models"
)

type SessionHandler struct {
	coord *coordinator.Coordinator
	cfg   cliparse.Config
}

func NewSessionHandler(coord *coordinator.Coordinator, cfg cliparse.Config) *SessionHandler {
	return &SessionHandler{coord: coord, cfg: cfg}
}

// Create handles POST /sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	result, err := h.coord.CreateSession(r.Context(), coordinator.CreateSessionParams{
		Name:      req.Name,
		OwnerID:   req.OwnerID,
		ProjectID: req.ProjectID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSessionResponse{
		SessionID:  result.ID,
		ShareToken: result.ShareToken,
		OwnerToken: result.OwnerToken,
		Name:       result.Name,
		ShareURL:   h.cfg.BaseURL + "/sessions/" + result.ShareToken,
	})
}

// Get handles GET /sessions/{token}
// Returns the session, its estimates, and statistics over them. This is the
// endpoint participants poll for updates.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	shareToken := r.PathValue("token")
	if shareToken == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "share token is required")
		return
	}

	detail, err := h.coord.GetSession(r.Context(), shareToken)
	if err != nil {
		writeError(w, err)
		return
	}

	estimates := make([]models.Estimate, 0, len(detail.Estimates))
	for _, e := range detail.Estimates {
		estimates = append(estimates, toEstimateModel(e))
	}

	middleware.JSONResponse(w, http.StatusOK, models.SessionDetailResponse{
		Session:             toSessionModel(detail.Session),
		Estimates:           estimates,
		Statistics:          toStatisticsModel(detail.Statistics),
		SubmittedStatistics: toStatisticsModel(detail.SubmittedStatistics),
	})
}

// ToggleReveal handles POST /sessions/{token}/reveal
func (h *SessionHandler) ToggleReveal(w http.ResponseWriter, r *http.Request) {
	shareToken := r.PathValue("token")
	ownerToken := r.Header.Get("X-Owner-Token")
	if ownerToken == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Owner-Token header required")
		return
	}

	// Body is optional: absent or empty means "toggle".
	var req models.ToggleRevealRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
	}

	result, err := h.coord.ToggleReveal(r.Context(), shareToken, ownerToken, req.Reveal)
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ToggleRevealResponse{
		SessionID:  result.ID,
		ShareToken: result.ShareToken,
		IsRevealed: result.IsRevealed,
	})
}

// Finalize handles POST /sessions/{token}/finalize
func (h *SessionHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	shareToken := r.PathValue("token")
	ownerToken := r.Header.Get("X-Owner-Token")
	if ownerToken == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Owner-Token header required")
		return
	}

	var req models.FinalizeSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	result, err := h.coord.FinalizeSession(r.Context(), shareToken, ownerToken, req.FinalEstimate)
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.FinalizeSessionResponse{
		SessionID:     result.ID,
		ShareToken:    result.ShareToken,
		Status:        string(result.Status),
		FinalEstimate: result.FinalEstimate,
	})
}

// Delete handles DELETE /sessions/{token}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	shareToken := r.PathValue("token")
	ownerToken := r.Header.Get("X-Owner-Token")
	if ownerToken == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Owner-Token header required")
		return
	}

	if err := h.coord.DeleteSession(r.Context(), shareToken, ownerToken); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ProjectSessions handles GET /projects/{id}/sessions
func (h *SessionHandler) ProjectSessions(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	if projectID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "project id is required")
		return
	}

	sessions, err := h.coord.ListProjectSessions(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}

	summaries := make([]models.SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, toSessionSummary(s))
	}

	middleware.JSONResponse(w, http.StatusOK, models.SessionListResponse{Sessions: summaries})
}
