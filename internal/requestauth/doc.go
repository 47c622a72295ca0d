// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package requestauth proves that an inbound skill request was sent by the
// voice platform and is fresh.
//
// Verification uses only material carried by the request: the signing
// certificate URL header, the signature header, the raw body and its
// declared timestamp. Checks run in a fixed order and stop at the first
// failure; any failure is terminal for the request.
//
//	application id -> fetch chain -> validate leaf -> verify signature -> freshness
//
// The leaf certificate's chain of trust up to a root is not verified; the
// URL shape check restricts downloads to the platform's distribution host.
package requestauth
