// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ManuGH/wwstay-skill/internal/config"
	"github.com/ManuGH/wwstay-skill/internal/log"
	xnet "github.com/ManuGH/wwstay-skill/internal/platform/net"
)

// PerformStartupChecks validates runtime-critical settings before the server starts.
func PerformStartupChecks(_ context.Context, cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Msg("running pre-flight startup checks")

	if err := checkListenAddr("listen", cfg.Server.ListenAddr); err != nil {
		return err
	}
	if cfg.Metrics.Enabled {
		if err := checkListenAddr("metrics", cfg.Metrics.Addr); err != nil {
			return err
		}
		if cfg.Metrics.Addr == cfg.Server.ListenAddr {
			return fmt.Errorf("metrics address %q collides with the API listen address", cfg.Metrics.Addr)
		}
	}

	if _, err := xnet.NormalizeHost(cfg.Verification.CertHost); err != nil {
		return fmt.Errorf("certificate host: %w", err)
	}

	checkBooking(logger, cfg.Booking)

	if cfg.Cache.Backend == "none" {
		logger.Warn().Msg("certificate cache disabled; every request downloads the signing chain")
	}

	logger.Info().Msg("all startup checks passed")
	return nil
}

func checkListenAddr(label, addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid %s address %q: %w", label, addr, err)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("invalid %s port %q in %q", label, port, addr)
	}
	return nil
}

func checkBooking(logger zerolog.Logger, b config.BookingConfig) {
	if b.Endpoint == "" {
		logger.Warn().Msg("booking endpoint not configured; finalized requests are not forwarded")
		return
	}
	if u, err := url.Parse(b.Endpoint); err == nil && u.Scheme == "http" {
		logger.Warn().Str("url", xnet.SanitizeURL(b.Endpoint)).Msg("booking endpoint uses plain http")
	}
}
