// File: internal/experiment/summary.go
package experiment

import (
	"github.com/xkilldash9x/wardsim/api/schemas"
)

// Summarize aggregates the per-message records of one run. Latency averages
// cover delivered messages only; drops carry no meaningful latency.
func Summarize(runID string, mode schemas.PolicyMode, records []schemas.Record) schemas.Summary {
	s := schemas.Summary{
		RunID:         runID,
		Mode:          mode,
		TotalMessages: len(records),
	}

	var sumAll, sumLegit, sumRogue float64
	var nAll, nLegit, nRogue int

	for _, rec := range records {
		legit := rec.Source == schemas.SourceLegitimate
		if legit {
			s.TotalLegitimate++
		} else {
			s.TotalRogue++
		}

		if rec.Reason == schemas.ReasonDropped {
			s.Dropped++
			continue
		}

		sumAll += rec.LatencyMs
		nAll++
		if legit {
			sumLegit += rec.LatencyMs
			nLegit++
			if rec.Accepted {
				s.LegitimateAccepted++
			}
		} else {
			sumRogue += rec.LatencyMs
			nRogue++
			if rec.Accepted {
				s.RogueAccepted++
			}
		}
	}

	s.AvgLatencyAllMs = avg(sumAll, nAll)
	s.AvgLatencyLegitMs = avg(sumLegit, nLegit)
	s.AvgLatencyRogueMs = avg(sumRogue, nRogue)
	return s
}

func avg(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
