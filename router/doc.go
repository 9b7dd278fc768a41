// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router wires HTTP routes to handlers using Go 1.22+ method routing.

Every route goes through the logging middleware; owner-gated routes expect
the X-Owner-Token header, enforced by the handlers themselves.
*/
package router
