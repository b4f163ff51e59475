// File: cmd/helpers_test.go
package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/viper"

	"github.com/xkilldash9x/wardsim/internal/observability"
)

// executeCommand runs the root command with the given args against pristine
// global state. Both viper and the logger singleton are process-global, so
// each invocation resets them for isolation.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	viper.Reset()
	observability.ResetForTest()
	cfgFile = ""
	t.Cleanup(func() {
		viper.Reset()
		observability.ResetForTest()
		cfgFile = ""
	})

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}
