// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles configuration from CLI flags and environment
variables.

Flags take precedence over environment variables. DATABASE_URL is the only
required setting; everything else has a sensible default.
*/
package cliparse
