// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP helpers shared by all handlers.

# Request Logging

WithLogging wraps a handler with start/completion logging via slog,
including method, path, and duration.

# JSON Helpers

JSONResponse and ErrorResponse write JSON bodies with the right headers;
ParseJSONBody decodes a request body into a struct:

	var req models.CreateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil { ... }

# CORS

The CORS middleware reflects the request origin and handles OPTIONS
preflight, allowing the X-Owner-Token header used by control operations.
*/
package middleware
