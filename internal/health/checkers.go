// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"fmt"
)

// PingChecker reports a dependency reachable through a ping function.
// Optional dependencies degrade instead of failing readiness.
type PingChecker struct {
	name     string
	ping     func(ctx context.Context) error
	optional bool
}

// NewPingChecker creates a checker named name around ping.
func NewPingChecker(name string, ping func(ctx context.Context) error, optional bool) *PingChecker {
	return &PingChecker{name: name, ping: ping, optional: optional}
}

func (c *PingChecker) Name() string { return c.name }

func (c *PingChecker) Check(ctx context.Context) CheckResult {
	if err := c.ping(ctx); err != nil {
		status := StatusUnhealthy
		if c.optional {
			status = StatusDegraded
		}
		return CheckResult{Status: status, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy, Message: "reachable"}
}

// BreakerChecker reports a circuit breaker. An open breaker degrades the
// service; the skill keeps answering while the downstream is skipped.
type BreakerChecker struct {
	name  string
	state func() string
}

// NewBreakerChecker creates a checker reading state on every check.
func NewBreakerChecker(name string, state func() string) *BreakerChecker {
	return &BreakerChecker{name: name, state: state}
}

func (c *BreakerChecker) Name() string { return c.name }

func (c *BreakerChecker) Check(context.Context) CheckResult {
	switch s := c.state(); s {
	case "closed":
		return CheckResult{Status: StatusHealthy, Message: "circuit closed"}
	default:
		return CheckResult{Status: StatusDegraded, Message: fmt.Sprintf("circuit %s", s)}
	}
}
