// File: internal/controller/controller.go
// Description: The controller is the hub every message terminates at. It
// delegates transport to the channel, consults the configured access policy
// and turns each message into exactly one outcome.

package controller

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/wardsim/api/schemas"
	"github.com/xkilldash9x/wardsim/internal/policy"
)

// Channel abstracts the transport between agents and the controller. It
// matches netsim.Channel and lets tests substitute deterministic transports.
type Channel interface {
	Transmit(msg schemas.Message) (delay time.Duration, delivered bool)
}

// ActionExecutor is the integration point for an accepted action's side
// effect. The simulation core never executes real side effects; external
// collaborators (telemetry, a future device backend) can hook in here.
type ActionExecutor interface {
	Execute(msg schemas.Message)
}

// NopExecutor discards accepted actions.
type NopExecutor struct{}

// Execute implements ActionExecutor.
func (NopExecutor) Execute(schemas.Message) {}

// Controller receives messages through the channel and evaluates them under
// the configured access policy.
type Controller struct {
	channel  Channel
	policy   policy.AccessPolicy
	executor ActionExecutor
	// overhead models the credential/RBAC processing cost and is charged
	// only when the policy runs in secure mode.
	overhead time.Duration
	logger   *zap.Logger
}

// New creates a controller. All dependencies are required except the
// executor, which defaults to a no-op.
func New(channel Channel, accessPolicy policy.AccessPolicy, executor ActionExecutor, overhead time.Duration, logger *zap.Logger) (*Controller, error) {
	if channel == nil {
		return nil, errors.New("channel cannot be nil")
	}
	if accessPolicy == nil {
		return nil, errors.New("access policy cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if overhead < 0 {
		return nil, errors.New("security overhead must be non-negative")
	}
	if executor == nil {
		executor = NopExecutor{}
	}
	return &Controller{
		channel:  channel,
		policy:   accessPolicy,
		executor: executor,
		overhead: overhead,
		logger:   logger.With(zap.String("component", "controller")),
	}, nil
}

// Mode exposes the policy variant the controller enforces.
func (c *Controller) Mode() schemas.PolicyMode {
	return c.policy.Mode()
}

// Evaluate resolves a single message to its terminal outcome. Dropped
// messages short-circuit: the access policy is never consulted and no
// authentication latency is charged.
func (c *Controller) Evaluate(msg schemas.Message) schemas.Outcome {
	delay, delivered := c.channel.Transmit(msg)
	if !delivered {
		return schemas.Outcome{
			Message:  msg,
			Accepted: false,
			Reason:   schemas.ReasonDropped,
			Latency:  0,
		}
	}

	decision := c.policy.Decide(msg)

	latency := delay
	if c.policy.Mode() == schemas.ModeSecure {
		latency += c.overhead
	}

	if decision.Allow {
		c.executor.Execute(msg)
	} else {
		c.logger.Debug("message denied",
			zap.String("sender_id", msg.SenderID),
			zap.String("action", string(msg.Action)),
			zap.String("reason", string(decision.Reason)),
		)
	}

	return schemas.Outcome{
		Message:  msg,
		Accepted: decision.Allow,
		Reason:   decision.Reason,
		Latency:  latency,
	}
}
