// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quick-points/domain"
	"github.com/danielhkuo/quick-points/middleware"
	"github.com/danielhkuo/quick-points/models"
	"github.com/danielhkuo/quick-points/token"
)

// writeError maps domain errors onto HTTP status codes so that transports
// never have to inspect message text. Anything unrecognized is a 500.
func writeError(w http.ResponseWriter, err error) {
	var vErr *domain.ValidationError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, domain.ErrUnauthorized):
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid owner token")
	case errors.Is(err, domain.ErrSessionFinalized):
		middleware.ErrorResponse(w, http.StatusConflict, "Session is already finalized")
	case errors.Is(err, domain.ErrInvalidEstimateValue):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Estimate value out of range")
	case errors.Is(err, token.ErrInvalidToken):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Malformed token")
	case errors.As(err, &vErr):
		middleware.ErrorResponse(w, http.StatusBadRequest, vErr.Error())
	default:
		slog.Error("unhandled error", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal error")
	}
}

func toSessionModel(s domain.Session) models.Session {
	return models.Session{
		ID:            s.ID,
		Name:          s.Name,
		ShareToken:    s.ShareToken.String(),
		IsRevealed:    s.IsRevealed,
		Status:        string(s.Status),
		FinalEstimate: s.FinalEstimate,
		CreatedAt:     s.CreatedAt,
	}
}

func toSessionSummary(s domain.Session) models.SessionSummary {
	return models.SessionSummary{
		ID:            s.ID,
		Name:          s.Name,
		ShareToken:    s.ShareToken.String(),
		Status:        string(s.Status),
		IsRevealed:    s.IsRevealed,
		FinalEstimate: s.FinalEstimate,
		CreatedAt:     s.CreatedAt,
	}
}

func toEstimateModel(e domain.Estimate) models.Estimate {
	return models.Estimate{
		ID:        e.ID,
		SessionID: e.SessionID,
		UserID:    e.UserID,
		Nickname:  e.Nickname,
		Value:     e.Value,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func toStatisticsModel(s domain.Statistics) models.Statistics {
	return models.Statistics{
		Average: s.Average,
		Median:  s.Median,
		Min:     s.Min,
		Max:     s.Max,
		Count:   s.Count,
	}
}
