// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// minShutdownTimeout keeps in-flight skill requests from being cut off by
// an overly aggressive operator setting.
const minShutdownTimeout = 3 * time.Second

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	// ListenAddr is the address to listen on (e.g., ":8088")
	ListenAddr string

	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request
	IdleTimeout time.Duration

	// MaxHeaderBytes bounds the request header size
	MaxHeaderBytes int

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown
	ShutdownTimeout time.Duration
}

// ServerConfigFrom derives the listener settings from the merged AppConfig,
// filling unset values with package defaults.
func ServerConfigFrom(cfg AppConfig) ServerConfig {
	out := ServerConfig{
		ListenAddr:      DefaultListenAddr,
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		MaxHeaderBytes:  DefaultMaxHeaderBytes,
		ShutdownTimeout: DefaultShutdownTimeout,
	}

	s := cfg.Server
	if s.ListenAddr != "" {
		out.ListenAddr = s.ListenAddr
	}
	if s.ReadTimeout > 0 {
		out.ReadTimeout = s.ReadTimeout
	}
	if s.WriteTimeout > 0 {
		out.WriteTimeout = s.WriteTimeout
	}
	if s.IdleTimeout > 0 {
		out.IdleTimeout = s.IdleTimeout
	}
	if s.MaxHeaderBytes > 0 {
		out.MaxHeaderBytes = s.MaxHeaderBytes
	}
	if s.ShutdownTimeout > 0 {
		out.ShutdownTimeout = s.ShutdownTimeout
	}
	if out.ShutdownTimeout < minShutdownTimeout {
		out.ShutdownTimeout = minShutdownTimeout
	}
	return out
}
