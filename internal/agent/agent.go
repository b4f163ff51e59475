// File: internal/agent/agent.go
// Description: Traffic generators. A DeviceAgent emits the legitimate action
// mix for its role; the RogueAgent probes the controller with privileged
// actions under a configurable spoofing strategy.

package agent

import (
	"errors"
	"math/rand"
	"time"

	"github.com/xkilldash9x/wardsim/api/schemas"
	"github.com/xkilldash9x/wardsim/internal/config"
)

// Clock supplies message timestamps. Injected so tests can freeze time.
type Clock func() time.Time

// DeviceAgent is a legitimate device. Its identity is fixed at construction
// and every message it generates carries its correct credential.
type DeviceAgent struct {
	identity schemas.DeviceIdentity
	actions  []schemas.Action
	rng      *rand.Rand
	clock    Clock
}

// NewDeviceAgent creates a legitimate agent. The action set is the role's
// permitted set from the permission table and must not be empty.
func NewDeviceAgent(identity schemas.DeviceIdentity, actions []schemas.Action, rng *rand.Rand, clock Clock) (*DeviceAgent, error) {
	if identity.DeviceID == "" {
		return nil, errors.New("device id cannot be empty")
	}
	if len(actions) == 0 {
		return nil, errors.New("action set cannot be empty")
	}
	if rng == nil {
		return nil, errors.New("rng cannot be nil")
	}
	if clock == nil {
		clock = time.Now
	}
	return &DeviceAgent{identity: identity, actions: actions, rng: rng, clock: clock}, nil
}

// Identity returns the agent's immutable identity.
func (a *DeviceAgent) Identity() schemas.DeviceIdentity { return a.identity }

// Generate produces n messages drawing actions uniformly from the agent's
// legitimate set. The sequence is finite and a fresh call restarts it.
func (a *DeviceAgent) Generate(n int) []schemas.Message {
	msgs := make([]schemas.Message, 0, n)
	for i := 0; i < n; i++ {
		msgs = append(msgs, schemas.Message{
			SenderID:   a.identity.DeviceID,
			Role:       a.identity.Role,
			Action:     a.actions[a.rng.Intn(len(a.actions))],
			Credential: a.identity.Credential,
			SentAt:     a.clock(),
		})
	}
	return msgs
}

// RogueAgent impersonates its way toward a privileged action. Depending on
// the spoofing strategy it omits the credential, fabricates one, or replays
// a registered device's identifier.
type RogueAgent struct {
	spec     config.RogueSpec
	senderID string
	action   schemas.Action
	clock    Clock
}

// NewRogueAgent creates a rogue agent from a validated scenario spec.
// replayTarget is the registered identifier reused under the replay
// strategy; it is ignored for the other strategies.
func NewRogueAgent(spec config.RogueSpec, replayTarget string, clock Clock) (*RogueAgent, error) {
	if spec.ID == "" {
		return nil, errors.New("rogue id cannot be empty")
	}
	senderID := spec.ID
	if spec.Strategy == config.StrategyReplay {
		if replayTarget == "" {
			return nil, errors.New("replay strategy requires a replay target")
		}
		senderID = replayTarget
	}
	if clock == nil {
		clock = time.Now
	}
	return &RogueAgent{
		spec:     spec,
		senderID: senderID,
		action:   schemas.ActionShutdown,
		clock:    clock,
	}, nil
}

// SenderID returns the identifier the rogue presents on the wire.
func (a *RogueAgent) SenderID() string { return a.senderID }

// Generate produces n copies of the privileged request. The credential
// presented follows the spoofing strategy.
func (a *RogueAgent) Generate(n int) []schemas.Message {
	credential := ""
	if a.spec.Strategy != config.StrategyNone {
		credential = a.spec.Credential
	}

	msgs := make([]schemas.Message, 0, n)
	for i := 0; i < n; i++ {
		msgs = append(msgs, schemas.Message{
			SenderID:   a.senderID,
			Role:       a.spec.ClaimedRole,
			Action:     a.action,
			Credential: credential,
			SentAt:     a.clock(),
		})
	}
	return msgs
}
