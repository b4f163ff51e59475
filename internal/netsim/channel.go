// File: internal/netsim/channel.go
// Description: Simulates the network between device agents and the
// controller. The only behaviors modeled are stochastic loss and stochastic
// transit delay; there is no congestion, retransmission or reordering.

package netsim

import (
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/wardsim/api/schemas"
	"github.com/xkilldash9x/wardsim/internal/config"
)

// Channel applies loss and delay to messages in transit. All randomness
// comes from the injected generator, so runs are reproducible given a seed.
type Channel struct {
	cfg    config.NetworkConfig
	rng    *rand.Rand
	logger *zap.Logger
}

// New creates a channel. The generator must not be shared with components
// whose draw order is not fixed relative to this one.
func New(cfg config.NetworkConfig, rng *rand.Rand, logger *zap.Logger) (*Channel, error) {
	if rng == nil {
		return nil, errors.New("rng cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Channel{
		cfg:    cfg,
		rng:    rng,
		logger: logger.With(zap.String("component", "netsim")),
	}, nil
}

// Transmit simulates the transit of one message. When the message is lost
// delivered is false and the delay is zero; the message must not be handed
// to the controller. Otherwise delay carries the sampled transit latency.
// Loss and delay are expected outcomes, never errors.
func (c *Channel) Transmit(msg schemas.Message) (delay time.Duration, delivered bool) {
	if c.rng.Float64() < c.cfg.LossProbability {
		c.logger.Debug("message lost in transit",
			zap.String("sender_id", msg.SenderID),
			zap.String("action", string(msg.Action)),
		)
		return 0, false
	}
	return c.sampleDelay(), true
}

// sampleDelay draws a transit delay from the configured distribution.
// Normal samples are clamped to the configured bounds so a pathological
// draw cannot produce a negative or unbounded latency.
func (c *Channel) sampleDelay() time.Duration {
	minNs := float64(c.cfg.LatencyMin)
	maxNs := float64(c.cfg.LatencyMax)

	var ns float64
	switch c.cfg.Distribution {
	case config.DistNormal:
		ns = c.rng.NormFloat64()*float64(c.cfg.LatencyStddev) + float64(c.cfg.LatencyMean)
		if ns < minNs {
			ns = minNs
		}
		if ns > maxNs {
			ns = maxNs
		}
	default:
		ns = minNs + c.rng.Float64()*(maxNs-minNs)
	}
	return time.Duration(ns)
}
