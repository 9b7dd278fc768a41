// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package domain

import "time"

// User is the minimal identity record the engine needs: enough to validate
// that a submitted user_id or declared session owner actually exists. Full
// identity management (passwords, OAuth, profiles) lives outside this service.
type User struct {
	ID        string
	Nickname  string
	CreatedAt time.Time
}
