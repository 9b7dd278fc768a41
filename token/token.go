// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package token

import (
	"crypto/hmac"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrInvalidToken is returned when a token string has the wrong length or
// contains characters outside the URL-safe base64 alphabet.
var ErrInvalidToken = errors.New("invalid token format")

const (
	// ShareTokenLength is the exact character length of a share token.
	ShareTokenLength = 16
	// OwnerTokenLength is the exact character length of an owner token.
	OwnerTokenLength = 32

	// 12 raw bytes encode to 16 base64url characters, 24 bytes to 32.
	shareTokenBytes = 12
	ownerTokenBytes = 24
)

// ShareToken grants read/participate access to an estimation session.
// The zero value is invalid; obtain one via GenerateShareToken or
// ParseShareToken.
type ShareToken struct {
	value string
}

// OwnerToken grants control (reveal/hide/finalize/delete) of a session.
// Anyone holding the string can control the session - this is deliberate,
// capability-style authorization for a link-sharing product. There is no
// user identity attached to it.
type OwnerToken struct {
	value string
}

// GenerateShareToken creates a random 16-character share token.
func GenerateShareToken() (ShareToken, error) {
	s, err := randomToken(shareTokenBytes)
	if err != nil {
		return ShareToken{}, fmt.Errorf("failed to generate share token: %w", err)
	}
	return ShareToken{value: s}, nil
}

// GenerateOwnerToken creates a random 32-character owner token.
func GenerateOwnerToken() (OwnerToken, error) {
	s, err := randomToken(ownerTokenBytes)
	if err != nil {
		return OwnerToken{}, fmt.Errorf("failed to generate owner token: %w", err)
	}
	return OwnerToken{value: s}, nil
}

// ParseShareToken validates a share token string received from a caller.
func ParseShareToken(s string) (ShareToken, error) {
	if err := validate(s, ShareTokenLength); err != nil {
		return ShareToken{}, err
	}
	return ShareToken{value: s}, nil
}

// ParseOwnerToken validates an owner token string received from a caller.
func ParseOwnerToken(s string) (OwnerToken, error) {
	if err := validate(s, OwnerTokenLength); err != nil {
		return OwnerToken{}, err
	}
	return OwnerToken{value: s}, nil
}

// String returns the raw token value.
func (t ShareToken) String() string { return t.value }

// String returns the raw token value.
func (t OwnerToken) String() string { return t.value }

// Matches reports whether candidate equals the token value.
// Uses constant-time comparison since owner tokens gate control operations.
func (t OwnerToken) Matches(candidate string) bool {
	return hmac.Equal([]byte(t.value), []byte(candidate))
}

func randomToken(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	// URL-safe base64 without padding
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func validate(s string, wantLen int) error {
	if len(s) != wantLen {
		return fmt.Errorf("%w: expected %d characters, got %d", ErrInvalidToken, wantLen, len(s))
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return fmt.Errorf("%w: character %q not in URL-safe alphabet", ErrInvalidToken, c)
		}
	}
	return nil
}
