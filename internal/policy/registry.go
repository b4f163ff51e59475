// File: internal/policy/registry.go
package policy

import (
	"fmt"

	"github.com/xkilldash9x/wardsim/api/schemas"
	"github.com/xkilldash9x/wardsim/internal/config"
)

// Registration is what the controller knows about a trusted device.
type Registration struct {
	Role       schemas.Role
	Credential string
}

// Registry maps device identifiers to their registered role and expected
// credential. It is populated before traffic starts and read-only during a
// run; rogue devices are never present.
type Registry struct {
	devices map[string]Registration
}

// NewRegistry builds a registry from a validated scenario fleet.
func NewRegistry(devices []config.ScenarioDevice) (*Registry, error) {
	if len(devices) == 0 {
		return nil, fmt.Errorf("cannot build a registry with no devices")
	}
	m := make(map[string]Registration, len(devices))
	for _, d := range devices {
		if _, dup := m[d.ID]; dup {
			return nil, fmt.Errorf("duplicate device id %q", d.ID)
		}
		m[d.ID] = Registration{Role: d.Role, Credential: d.Credential}
	}
	return &Registry{devices: m}, nil
}

// Lookup returns the registration for a device identifier.
func (r *Registry) Lookup(deviceID string) (Registration, bool) {
	reg, ok := r.devices[deviceID]
	return reg, ok
}

// Size returns the number of registered devices.
func (r *Registry) Size() int {
	return len(r.devices)
}
