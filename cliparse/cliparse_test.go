// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "DATABASE_URL", "DATABASE_TYPE", "BASE_URL"} {
		t.Setenv(key, "")
	}
}

func TestParseFlagsFromArgs(t *testing.T) {
	clearEnv(t)

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "test.db", "-t", "sqlite", "-b", "https://points.example.com"})
	if err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "test.db" {
		t.Errorf("Expected database test.db, got %q", cfg.DatabaseURL)
	}
	if cfg.BaseURL != "https://points.example.com" {
		t.Errorf("Expected explicit base URL, got %q", cfg.BaseURL)
	}
}

func TestParseFlagsDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "estimates.db")

	cfg, err := ParseFlags(nil)
	if err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	if cfg.Port != 3320 {
		t.Errorf("Expected default port 3320, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("Expected default type sqlite, got %q", cfg.DatabaseType)
	}
	if cfg.BaseURL != "http://localhost:3320" {
		t.Errorf("Expected derived base URL, got %q", cfg.BaseURL)
	}
}

func TestParseFlagsEnvFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://localhost/points")
	t.Setenv("DATABASE_TYPE", "postgres")

	cfg, err := ParseFlags(nil)
	if err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	if cfg.Port != 9000 || cfg.DatabaseType != "postgres" {
		t.Errorf("Env fallback not applied: %+v", cfg)
	}
}

func TestParseFlagsFlagBeatsEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "env.db")

	cfg, err := ParseFlags([]string{"-d", "flag.db"})
	if err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if cfg.DatabaseURL != "flag.db" {
		t.Errorf("Flag should beat env, got %q", cfg.DatabaseURL)
	}
}

func TestParseFlagsMissingDatabaseURL(t *testing.T) {
	clearEnv(t)

	if _, err := ParseFlags(nil); err == nil {
		t.Error("Expected error when DATABASE_URL is missing")
	}
}

func TestParseFlagsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "estimates.db")

	t.Run("invalid port env", func(t *testing.T) {
		t.Setenv("PORT", "not-a-number")
		if _, err := ParseFlags(nil); err == nil {
			t.Error("Expected error for bad PORT")
		}
	})

	t.Run("unsupported database type", func(t *testing.T) {
		if _, err := ParseFlags([]string{"-t", "oracle"}); err == nil {
			t.Error("Expected error for unsupported database type")
		}
	})
}
