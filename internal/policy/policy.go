// File: internal/policy/policy.go
// Description: The access policy is the decision core of the simulator. The
// weak and secure variants implement one interface and are selected once at
// run configuration, so the controller never branches on mode per message.

package policy

import (
	"fmt"

	"github.com/xkilldash9x/wardsim/api/schemas"
)

// AccessPolicy maps a sender's identity claim and requested action to an
// allow/deny decision. Implementations are pure over the registry and
// permission data except for the weak variant's laxity draw.
type AccessPolicy interface {
	// Mode identifies the policy variant.
	Mode() schemas.PolicyMode
	// Decide evaluates one message. It must be called only for messages the
	// channel actually delivered.
	Decide(msg schemas.Message) schemas.Decision
}

// allow and deny keep the decision construction in one place.
func allow(reason schemas.Reason) schemas.Decision {
	return schemas.Decision{Allow: true, Reason: reason}
}

func deny(reason schemas.Reason) schemas.Decision {
	return schemas.Decision{Allow: false, Reason: reason}
}

// ForMode builds the policy variant for the requested mode.
func ForMode(mode schemas.PolicyMode, registry *Registry, table *PermissionTable, weak WeakOptions) (AccessPolicy, error) {
	switch mode {
	case schemas.ModeWeak:
		return NewWeakPolicy(registry, weak)
	case schemas.ModeSecure:
		return NewSecurePolicy(registry, table)
	default:
		return nil, fmt.Errorf("unsupported policy mode %q", mode)
	}
}
