// File: internal/policy/secure.go
package policy

import (
	"crypto/subtle"
	"errors"

	"github.com/xkilldash9x/wardsim/api/schemas"
)

// SecurePolicy verifies the sender's identity, compares the presented
// credential against the registry and enforces the role permission table.
type SecurePolicy struct {
	registry *Registry
	table    *PermissionTable
}

// NewSecurePolicy creates the secure variant.
func NewSecurePolicy(registry *Registry, table *PermissionTable) (*SecurePolicy, error) {
	if registry == nil {
		return nil, errors.New("registry cannot be nil")
	}
	if table == nil {
		return nil, errors.New("permission table cannot be nil")
	}
	return &SecurePolicy{registry: registry, table: table}, nil
}

// Mode implements AccessPolicy.
func (p *SecurePolicy) Mode() schemas.PolicyMode { return schemas.ModeSecure }

// Decide implements AccessPolicy. The checks run in fixed order: identity,
// credential, RBAC. An empty or missing credential is always a mismatch, and
// the RBAC check uses the registered role, never the role the sender claims.
func (p *SecurePolicy) Decide(msg schemas.Message) schemas.Decision {
	reg, known := p.registry.Lookup(msg.SenderID)
	if !known {
		return deny(schemas.ReasonUnknownDevice)
	}

	if reg.Credential == "" || !msg.HasCredential() {
		return deny(schemas.ReasonBadCredential)
	}
	if subtle.ConstantTimeCompare([]byte(reg.Credential), []byte(msg.Credential)) != 1 {
		return deny(schemas.ReasonBadCredential)
	}

	if !p.table.Allows(reg.Role, msg.Action) {
		return deny(schemas.ReasonRoleForbidden)
	}
	return allow(schemas.ReasonOK)
}
