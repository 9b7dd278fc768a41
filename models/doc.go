// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and projection types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateSessionRequest: name, owner_id, project_id
  - SubmitEstimateRequest: user_id, nickname, value
  - ToggleRevealRequest: reveal (absent = toggle)
  - FinalizeSessionRequest: final_estimate
  - RegisterUserRequest: nickname

# Response Types

Types for JSON responses:

  - CreateSessionResponse: session_id, share_token, owner_token, share_url
  - SessionDetailResponse: session, estimates, statistics
  - SubmitEstimateResponse: estimate, message
  - ToggleRevealResponse: session_id, share_token, is_revealed
  - FinalizeSessionResponse: session_id, share_token, status, final_estimate
  - RegisterUserResponse: user_id, nickname
  - SessionListResponse: sessions
  - ErrorResponse: error, message

# Projections

Session and Estimate mirror the domain entities for serialization. Session
deliberately omits the owner token - it is returned exactly once, in
CreateSessionResponse, and never again.
*/
package models
