// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package token defines the opaque capability tokens that gate session access.

# Share Tokens

Share tokens are random 16-character strings (12 bytes of entropy, URL-safe
base64 without padding). Anyone holding a share token can read a session and
submit estimates to it:

	share, err := token.GenerateShareToken()

# Owner Tokens

Owner tokens are random 32-character strings (24 bytes of entropy). Holding
the owner token is what makes someone the session owner - reveal, hide,
finalize, and delete are all gated on it:

	owner, err := token.GenerateOwnerToken()
	owner.Matches(candidate) // constant-time comparison

There is no user account behind an owner token. This is a deliberate
capability-based design for a link-sharing product: whoever you send the
owner link to can control the session.

# Validation

Tokens arriving from the outside are validated before use. A string with
the wrong length or characters outside the A-Z a-z 0-9 - _ alphabet fails
with ErrInvalidToken:

	share, err := token.ParseShareToken(raw)
	if errors.Is(err, token.ErrInvalidToken) { ... }

Round-trip is guaranteed: ParseShareToken(GenerateShareToken().String())
yields the original value.
*/
package token
