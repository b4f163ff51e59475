// File: internal/config/scenario.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xkilldash9x/wardsim/api/schemas"
)

// RogueStrategy selects how the rogue agent presents credentials.
type RogueStrategy string

const (
	// StrategyNone omits the credential entirely.
	StrategyNone RogueStrategy = "none"
	// StrategyFabricated presents an invented credential under the rogue's
	// own identifier.
	StrategyFabricated RogueStrategy = "fabricated"
	// StrategyReplay reuses a registered device's identifier with a
	// fabricated credential.
	StrategyReplay RogueStrategy = "replay"
)

// ScenarioDevice declares one legitimate device in the registry.
type ScenarioDevice struct {
	ID         string       `yaml:"id"`
	Role       schemas.Role `yaml:"role"`
	Credential string       `yaml:"credential"`
}

// RogueSpec declares the rogue agent probing the controller.
type RogueSpec struct {
	ID          string        `yaml:"id"`
	ClaimedRole schemas.Role  `yaml:"claimed_role"`
	Strategy    RogueStrategy `yaml:"strategy"`
	Credential  string        `yaml:"credential"`
	// ReplayOf names the registered device whose identifier is reused when
	// the strategy is "replay". Empty means the first device in the fleet.
	ReplayOf string `yaml:"replay_of"`
}

// Scenario describes the closed world of a run: the permission table, the
// registered fleet and the rogue agent. It is loaded once per mode and
// read-only while traffic flows.
type Scenario struct {
	Permissions map[schemas.Role][]schemas.Action `yaml:"permissions"`
	Devices     []ScenarioDevice                  `yaml:"devices"`
	Rogue       RogueSpec                         `yaml:"rogue"`
}

var knownRoles = map[schemas.Role]struct{}{
	schemas.RoleSensor: {},
	schemas.RoleRobot:  {},
	schemas.RoleViewer: {},
	schemas.RoleRogue:  {},
}

var knownActions = map[schemas.Action]struct{}{
	schemas.ActionSendStatus: {},
	schemas.ActionMove:       {},
	schemas.ActionReadStatus: {},
	schemas.ActionShutdown:   {},
}

// DefaultScenario builds the standard fleet: numDevices devices named
// device_1..device_n with roles assigned round-robin across sensor, robot
// and viewer, each holding a per-device credential, plus a rogue claiming to
// be a robot with a fabricated credential.
func DefaultScenario(numDevices int) *Scenario {
	roleCycle := []schemas.Role{schemas.RoleSensor, schemas.RoleRobot, schemas.RoleViewer}

	devices := make([]ScenarioDevice, 0, numDevices)
	for i := 0; i < numDevices; i++ {
		id := fmt.Sprintf("device_%d", i+1)
		devices = append(devices, ScenarioDevice{
			ID:         id,
			Role:       roleCycle[i%len(roleCycle)],
			Credential: "key-" + id,
		})
	}

	return &Scenario{
		Permissions: DefaultPermissions(),
		Devices:     devices,
		Rogue: RogueSpec{
			ID:          "rogue_1",
			ClaimedRole: schemas.RoleRobot,
			Strategy:    StrategyFabricated,
			Credential:  "invalid-key",
		},
	}
}

// LoadScenario reads and validates a scenario file. Missing sections fall
// back to the defaults so a file can override just the fleet or just the
// permission table.
func LoadScenario(path string, numDevices int) (*Scenario, error) {
	sc := DefaultScenario(numDevices)
	if path == "" {
		return sc, sc.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %s: %w", path, err)
	}

	var loaded Scenario
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file %s: %w", path, err)
	}

	if loaded.Permissions != nil {
		sc.Permissions = loaded.Permissions
	}
	if loaded.Devices != nil {
		sc.Devices = loaded.Devices
	}
	if loaded.Rogue.ID != "" {
		sc.Rogue = loaded.Rogue
	}

	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("scenario file %s: %w", path, err)
	}
	return sc, nil
}

// Validate enforces the closed-world setup invariants. Violations are fatal
// configuration errors surfaced before any traffic is generated.
func (s *Scenario) Validate() error {
	if len(s.Devices) == 0 {
		return fmt.Errorf("scenario declares no devices")
	}
	if len(s.Permissions) == 0 {
		return fmt.Errorf("scenario declares no role permissions")
	}

	for role, actions := range s.Permissions {
		if _, ok := knownRoles[role]; !ok {
			return fmt.Errorf("permission table references undefined role %q", role)
		}
		for _, action := range actions {
			if _, ok := knownActions[action]; !ok {
				return fmt.Errorf("permission table grants undefined action %q to role %q", action, role)
			}
		}
	}

	seen := make(map[string]struct{}, len(s.Devices))
	for _, d := range s.Devices {
		if d.ID == "" {
			return fmt.Errorf("device with empty id")
		}
		if _, dup := seen[d.ID]; dup {
			return fmt.Errorf("duplicate device id %q", d.ID)
		}
		seen[d.ID] = struct{}{}

		if _, ok := knownRoles[d.Role]; !ok {
			return fmt.Errorf("device %q registered with undefined role %q", d.ID, d.Role)
		}
		if _, ok := s.Permissions[d.Role]; !ok {
			return fmt.Errorf("device %q has role %q with no entry in the permission table", d.ID, d.Role)
		}
	}

	r := s.Rogue
	if r.ID == "" {
		return fmt.Errorf("rogue device has empty id")
	}
	if _, registered := seen[r.ID]; registered {
		return fmt.Errorf("rogue id %q collides with a registered device", r.ID)
	}
	switch r.Strategy {
	case StrategyNone, StrategyFabricated, StrategyReplay:
	default:
		return fmt.Errorf("rogue strategy must be 'none', 'fabricated' or 'replay', got %q", r.Strategy)
	}
	if r.Strategy == StrategyReplay && r.ReplayOf != "" {
		if _, ok := seen[r.ReplayOf]; !ok {
			return fmt.Errorf("rogue replay target %q is not a registered device", r.ReplayOf)
		}
	}
	return nil
}
