package permission

import (
	"context"
	"sync"

	"storekeep/internal/logger"

	"go.uber.org/zap"
)

// Capability is one of the device grants the app needs before its main
// shell becomes reachable.
type Capability string

const (
	CapabilityCamera       Capability = "camera"
	CapabilityMediaLibrary Capability = "media_library"
	CapabilityLocation     Capability = "location"
)

// All lists every capability the gate tracks.
var All = []Capability{CapabilityCamera, CapabilityMediaLibrary, CapabilityLocation}

// Status is the platform's answer for a single capability.
type Status struct {
	Granted     bool
	CanAskAgain bool
}

// Authorizer is the platform permission surface: Check queries the
// current grant without prompting, Request prompts the user.
type Authorizer interface {
	Check(ctx context.Context, c Capability) (Status, error)
	Request(ctx context.Context, c Capability) (Status, error)
}

// RequestOutcome reports what happened when the user asked for a
// capability.
type RequestOutcome struct {
	Granted       bool
	Reprompted    bool
	NeedsSettings bool
	Message       string
}

// Gate combines the three capability grants into one aggregate that
// decides whether the main shell mounts. On web-like platforms the
// gate is bypassed unconditionally.
type Gate struct {
	auth Authorizer
	web  bool

	mu      sync.RWMutex
	grants  map[Capability]bool
	checked bool
}

func NewGate(auth Authorizer, web bool) *Gate {
	return &Gate{
		auth:   auth,
		web:    web,
		grants: make(map[Capability]bool),
	}
}

// CheckAll queries the current grant of every capability without
// prompting and recomputes the aggregate. Platform errors count as not
// granted; the gate itself never fails.
func (g *Gate) CheckAll(ctx context.Context) bool {
	if g.web {
		g.mu.Lock()
		g.checked = true
		g.mu.Unlock()
		return true
	}

	results := make(map[Capability]bool, len(All))
	for _, c := range All {
		status, err := g.auth.Check(ctx, c)
		if err != nil {
			logger.FromCtx(ctx).Error("permission check failed",
				zap.String("capability", string(c)),
				zap.Error(err),
			)
			results[c] = false
			continue
		}
		results[c] = status.Granted
	}

	g.mu.Lock()
	g.grants = results
	g.checked = true
	g.mu.Unlock()

	return g.AllGranted()
}

// Request prompts for one capability. A denial that can still be asked
// again is re-prompted exactly once, after the explanatory message; a
// permanent denial is reported as needing the system settings instead.
func (g *Gate) Request(ctx context.Context, c Capability) RequestOutcome {
	if g.web {
		return RequestOutcome{Granted: true}
	}

	log := logger.FromCtx(ctx).With(zap.String("capability", string(c)))

	status, err := g.auth.Request(ctx, c)
	if err != nil {
		log.Error("permission request failed", zap.Error(err))
		// A grant recorded by an earlier check is no longer trustworthy.
		g.mu.Lock()
		g.grants[c] = false
		g.mu.Unlock()
		return RequestOutcome{Message: "Could not request permission. Please try again."}
	}

	outcome := RequestOutcome{Granted: status.Granted}

	if !status.Granted {
		if status.CanAskAgain {
			outcome.Reprompted = true
			outcome.Message = "This permission is needed to continue."

			retry, err := g.auth.Request(ctx, c)
			if err != nil {
				log.Error("permission re-request failed", zap.Error(err))
			} else {
				outcome.Granted = retry.Granted
				if !retry.Granted && !retry.CanAskAgain {
					outcome.NeedsSettings = true
					outcome.Message = "Permission denied. Please enable it in system settings."
				}
			}
		} else {
			outcome.NeedsSettings = true
			outcome.Message = "Permission denied. Please enable it in system settings."
		}
	}

	g.mu.Lock()
	g.grants[c] = outcome.Granted
	g.mu.Unlock()

	return outcome
}

// AllGranted is the aggregate AND of all three grants. Web platforms
// are always granted.
func (g *Gate) AllGranted() bool {
	if g.web {
		return true
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, c := range All {
		if !g.grants[c] {
			return false
		}
	}
	return true
}

// Checked reports whether the initial query has run.
func (g *Gate) Checked() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.checked
}

// Grants returns a copy of the per-capability grant map.
func (g *Gate) Grants() map[Capability]bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make(map[Capability]bool, len(g.grants))
	for c, granted := range g.grants {
		out[c] = granted
	}
	return out
}
