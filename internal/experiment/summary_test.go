// File: internal/experiment/summary_test.go
package experiment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/wardsim/api/schemas"
)

func rec(source schemas.TrafficSource, accepted bool, reason schemas.Reason, latencyMs float64) schemas.Record {
	return schemas.Record{
		Source:    source,
		SenderID:  "device_1",
		Role:      schemas.RoleSensor,
		Action:    schemas.ActionSendStatus,
		Accepted:  accepted,
		Reason:    reason,
		LatencyMs: latencyMs,
	}
}

func TestSummarize(t *testing.T) {
	records := []schemas.Record{
		rec(schemas.SourceLegitimate, true, schemas.ReasonOK, 20),
		rec(schemas.SourceLegitimate, true, schemas.ReasonOK, 40),
		rec(schemas.SourceLegitimate, false, schemas.ReasonDropped, 0),
		rec(schemas.SourceRogue, true, schemas.ReasonUnknownDevice, 60),
		rec(schemas.SourceRogue, false, schemas.ReasonUnknownDevice, 80),
		rec(schemas.SourceRogue, false, schemas.ReasonDropped, 0),
	}

	s := Summarize("run-1", schemas.ModeWeak, records)

	assert.Equal(t, "run-1", s.RunID)
	assert.Equal(t, schemas.ModeWeak, s.Mode)
	assert.Equal(t, 6, s.TotalMessages)
	assert.Equal(t, 3, s.TotalLegitimate)
	assert.Equal(t, 3, s.TotalRogue)
	assert.Equal(t, 2, s.LegitimateAccepted)
	assert.Equal(t, 1, s.RogueAccepted)
	assert.Equal(t, 2, s.Dropped)

	// Latency averages exclude dropped messages entirely.
	assert.InDelta(t, 50.0, s.AvgLatencyAllMs, 1e-9)
	assert.InDelta(t, 30.0, s.AvgLatencyLegitMs, 1e-9)
	assert.InDelta(t, 70.0, s.AvgLatencyRogueMs, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize("run-2", schemas.ModeSecure, nil)

	assert.Zero(t, s.TotalMessages)
	assert.Zero(t, s.AvgLatencyAllMs, "no delivered messages means a zero average, not NaN")
}

func TestSummarizeAllDropped(t *testing.T) {
	records := []schemas.Record{
		rec(schemas.SourceLegitimate, false, schemas.ReasonDropped, 0),
		rec(schemas.SourceRogue, false, schemas.ReasonDropped, 0),
	}

	s := Summarize("run-3", schemas.ModeSecure, records)

	assert.Equal(t, 2, s.Dropped)
	assert.Zero(t, s.AvgLatencyAllMs)
	assert.Zero(t, s.AvgLatencyLegitMs)
	assert.Zero(t, s.AvgLatencyRogueMs)
}
