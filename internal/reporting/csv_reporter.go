// File: internal/reporting/csv_reporter.go
package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xkilldash9x/wardsim/api/schemas"
)

// csvHeader is the stable column order of the per-message results artifact.
var csvHeader = []string{
	"source",
	"sender_id",
	"role",
	"action",
	"credential_presented",
	"accepted",
	"reason",
	"latency_ms",
}

// CSVReporter writes one row per message, preserving submission order.
type CSVReporter struct {
	writer io.WriteCloser
}

// NewCSVReporter creates a CSV reporter. It takes ownership of the writer.
func NewCSVReporter(w io.WriteCloser) *CSVReporter {
	return &CSVReporter{writer: w}
}

// Write implements Reporter.
func (r *CSVReporter) Write(envelope *schemas.Envelope) error {
	w := csv.NewWriter(r.writer)

	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, rec := range envelope.Records {
		row := []string{
			string(rec.Source),
			rec.SenderID,
			string(rec.Role),
			string(rec.Action),
			strconv.FormatBool(rec.CredentialPresented),
			strconv.FormatBool(rec.Accepted),
			string(rec.Reason),
			strconv.FormatFloat(rec.LatencyMs, 'f', 3, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv output: %w", err)
	}
	return nil
}

// Close implements Reporter.
func (r *CSVReporter) Close() error {
	return r.writer.Close()
}
