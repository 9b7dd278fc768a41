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

type EstimateHandler struct {
	coord *coordinator.Coordinator
	cfg   cliparse.Config
}

func NewEstimateHandler(coord *coordinator.Coordinator, cfg cliparse.Config) *EstimateHandler {
	return &EstimateHandler{coord: coord, cfg: cfg}
}

// Submit handles POST /sessions/{token}/estimates
// Creates the caller's estimate or overwrites their previous one; many
// participants hit this simultaneously during a round.
func (h *EstimateHandler) Submit(w http.ResponseWriter, r *http.Request) {
	shareToken := r.PathValue("token")
	if shareToken == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "share token is required")
		return
	}

	var req models.SubmitEstimateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.UserID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}

	estimate, err := h.coord.SubmitEstimate(r.Context(), coordinator.SubmitEstimateParams{
		ShareToken: shareToken,
		UserID:     req.UserID,
		Nickname:   req.Nickname,
		Value:      req.Value,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitEstimateResponse{
		Estimate: toEstimateModel(estimate),
		Message:  "Estimate recorded",
	})
}
