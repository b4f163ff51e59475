// File: internal/policy/weak.go
package policy

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/xkilldash9x/wardsim/api/schemas"
)

// WeakOptions tunes the deliberately insecure policy variant.
type WeakOptions struct {
	// Laxity is the probability that a sender absent from the registry is
	// accepted anyway. The identity-only lookup plus this coin flip is the
	// whole of weak-mode "authentication".
	Laxity float64
	// Rand supplies the laxity draw. It must be an independently seeded
	// stream so the channel's draw sequence stays comparable across modes.
	Rand *rand.Rand
}

// WeakPolicy accepts any registered identifier without comparing credentials
// and applies no RBAC check. Unknown identifiers are still accepted with
// probability Laxity, which is the vulnerability the experiments measure.
type WeakPolicy struct {
	registry *Registry
	laxity   float64
	rng      *rand.Rand
}

// NewWeakPolicy creates the weak variant.
func NewWeakPolicy(registry *Registry, opts WeakOptions) (*WeakPolicy, error) {
	if registry == nil {
		return nil, errors.New("registry cannot be nil")
	}
	if opts.Rand == nil {
		return nil, errors.New("rand source cannot be nil")
	}
	if opts.Laxity < 0.0 || opts.Laxity > 1.0 {
		return nil, fmt.Errorf("laxity must be between 0.0 and 1.0, got %v", opts.Laxity)
	}
	return &WeakPolicy{registry: registry, laxity: opts.Laxity, rng: opts.Rand}, nil
}

// Mode implements AccessPolicy.
func (p *WeakPolicy) Mode() schemas.PolicyMode { return schemas.ModeWeak }

// Decide implements AccessPolicy. A registered identifier is accepted
// unconditionally; the presented credential and the requested action are
// never examined.
func (p *WeakPolicy) Decide(msg schemas.Message) schemas.Decision {
	if _, known := p.registry.Lookup(msg.SenderID); known {
		return allow(schemas.ReasonOK)
	}
	// Accepted-without-authentication path: the reason stays unknown_device
	// so the records expose how often it happens.
	if p.rng.Float64() < p.laxity {
		return allow(schemas.ReasonUnknownDevice)
	}
	return deny(schemas.ReasonUnknownDevice)
}
