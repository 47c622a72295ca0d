// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package skill holds the wire model of the voice platform: the inbound
// request event and the outbound response envelope.
//
// Nothing in this package performs I/O or trusts its input. Events must be
// authenticated by internal/requestauth before they reach the dialog.
package skill
