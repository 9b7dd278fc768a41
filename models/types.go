package models

import "time"

// Request types

type CreateSessionRequest struct {
	Name      string  `json:"name"`
	OwnerID   *string `json:"owner_id,omitempty"`
	ProjectID *string `json:"project_id,omitempty"`
}

type SubmitEstimateRequest struct {
	UserID   string  `json:"user_id"`
	Nickname string  `json:"nickname"`
	Value    float64 `json:"value"`
}

// Reveal is a pointer so that an absent field means "toggle" while an
// explicit false means "hide".
type ToggleRevealRequest struct {
	Reveal *bool `json:"reveal,omitempty"`
}

type FinalizeSessionRequest struct {
	FinalEstimate float64 `json:"final_estimate"`
}

type RegisterUserRequest struct {
	Nickname string `json:"nickname"`
}

// Response types

type CreateSessionResponse struct {
	SessionID  string `json:"session_id"`
	ShareToken string `json:"share_token"`
	OwnerToken string `json:"owner_token"`
	Name       string `json:"name,omitempty"`
	ShareURL   string `json:"share_url"`
}

type SubmitEstimateResponse struct {
	Estimate Estimate `json:"estimate"`
	Message  string   `json:"message"`
}

type ToggleRevealResponse struct {
	SessionID  string `json:"session_id"`
	ShareToken string `json:"share_token"`
	IsRevealed bool   `json:"is_revealed"`
}

type FinalizeSessionResponse struct {
	SessionID     string  `json:"session_id"`
	ShareToken    string  `json:"share_token"`
	Status        string  `json:"status"`
	FinalEstimate float64 `json:"final_estimate"`
}

type RegisterUserResponse struct {
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname"`
}

type SessionDetailResponse struct {
	Session             Session    `json:"session"`
	Estimates           []Estimate `json:"estimates"`
	Statistics          Statistics `json:"statistics"`
	SubmittedStatistics Statistics `json:"submitted_statistics"`
}

type SessionListResponse struct {
	Sessions []SessionSummary `json:"sessions"`
}

// Domain projections

// Session never carries the owner token: it is returned once at creation and
// never again.
type Session struct {
	ID            string    `json:"id"`
	Name          string    `json:"name,omitempty"`
	ShareToken    string    `json:"share_token"`
	IsRevealed    bool      `json:"is_revealed"`
	Status        string    `json:"status"`
	FinalEstimate *float64  `json:"final_estimate,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type SessionSummary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name,omitempty"`
	ShareToken    string    `json:"share_token"`
	Status        string    `json:"status"`
	IsRevealed    bool      `json:"is_revealed"`
	FinalEstimate *float64  `json:"final_estimate,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type Estimate struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Nickname  string    `json:"nickname"`
	Value     float64   `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Statistics struct {
	Average float64 `json:"average"`
	Median  float64 `json:"median"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Count   int     `json:"count"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
