// File: internal/reporting/json_reporter.go
package reporting

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/wardsim/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONReporter writes the full run envelope, summary included, as a single
// indented JSON document.
type JSONReporter struct {
	writer io.WriteCloser
}

// NewJSONReporter creates a JSON reporter. It takes ownership of the writer.
func NewJSONReporter(w io.WriteCloser) *JSONReporter {
	return &JSONReporter{writer: w}
}

// Write implements Reporter.
func (r *JSONReporter) Write(envelope *schemas.Envelope) error {
	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(envelope); err != nil {
		return fmt.Errorf("failed to encode run envelope: %w", err)
	}
	return nil
}

// Close implements Reporter.
func (r *JSONReporter) Close() error {
	return r.writer.Close()
}
