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

type UserHandler struct {
	coord *coordinator.Coordinator
	cfg   cliparse.Config
}

func NewUserHandler(coord *coordinator.Coordinator, cfg cliparse.Config) *UserHandler {
	return &UserHandler{coord: coord, cfg: cfg}
}

// Register handles POST /users
// Creates the minimal identity record participants and owners are validated
// against.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterUserRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := h.coord.RegisterUser(r.Context(), req.Nickname)
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterUserResponse{
		UserID:   user.ID,
		Nickname: user.Nickname,
	})
}

// Sessions handles GET /users/{id}/sessions
// Lists the sessions a user owns, for a "my sessions" dashboard.
func (h *UserHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user id is required")
		return
	}

	sessions, err := h.coord.ListOwnerSessions(r.Context(), userID)
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
