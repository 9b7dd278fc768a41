// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quick Points API server.

Quick Points is an estimation session coordinator for planning poker:
a session owner shares a link, participants submit point estimates, the
owner reveals them, and the group commits a single final value.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=estimates.db go run main.go

Or with flags:

	go run main.go -p 3320 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file path or PostgreSQL connection string

Optional settings:

  - PORT (-p): Server port (default: 3320)
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"
  - BASE_URL (-b): Public base URL used in share links

# Architecture

The server uses a layered architecture with dependency injection:

  - domain: Session, estimate, and statistics entities with their invariants
  - token: Share and owner token generation and validation
  - coordinator: Application operations over the stores
  - store: Persistence interfaces, with sqlite and postgres drivers
  - handlers: HTTP request handlers (sessions, estimates, users)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
