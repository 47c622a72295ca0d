// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config provides configuration management for the skill service.
//
// Precedence is ENV > YAML file > defaults. The resulting AppConfig is
// treated as immutable; reloads build a new value and swap it in Holder.
package config
