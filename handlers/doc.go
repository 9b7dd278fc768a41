// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers provides the HTTP layer over the session coordinator.

Handlers are deliberately thin: parse the request, call one coordinator
operation, map the result (or error) to JSON. All invariants live in the
domain and coordinator packages.

# Handlers

  - SessionHandler: create, get, reveal/hide, finalize, delete, project listing
  - EstimateHandler: estimate submission
  - UserHandler: registration and owner session listing

# Authorization

Read and participate operations are authorized by the share token in the URL
path. Control operations additionally require the X-Owner-Token header; a
mismatch is a 401.

# Error Mapping

Domain errors carry their own semantics, so status codes never depend on
message text:

	not found            -> 404
	owner token mismatch -> 401
	already finalized    -> 409
	bad input / tokens   -> 400
*/
package handlers
