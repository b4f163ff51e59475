// File: cmd/run.go
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/wardsim/api/schemas"
	"github.com/xkilldash9x/wardsim/internal/config"
	"github.com/xkilldash9x/wardsim/internal/experiment"
	"github.com/xkilldash9x/wardsim/internal/observability"
	"github.com/xkilldash9x/wardsim/internal/reporting"
)

// newRunCmd creates and configures the `run` command.
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Runs one experiment in the selected policy mode",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their viper keys so CLI values override the
			// config file and environment with the right precedence.
			if err := viper.BindPFlag("experiment.seed", cmd.Flags().Lookup("seed")); err != nil {
				return err
			}
			if err := viper.BindPFlag("experiment.num_devices", cmd.Flags().Lookup("devices")); err != nil {
				return err
			}
			if err := viper.BindPFlag("experiment.messages_per_device", cmd.Flags().Lookup("legit-per-device")); err != nil {
				return err
			}
			if err := viper.BindPFlag("experiment.rogue_messages", cmd.Flags().Lookup("rogue-messages")); err != nil {
				return err
			}
			if err := viper.BindPFlag("experiment.scenario_file", cmd.Flags().Lookup("scenario")); err != nil {
				return err
			}
			if err := viper.BindPFlag("output.path", cmd.Flags().Lookup("output")); err != nil {
				return err
			}
			return viper.BindPFlag("output.format", cmd.Flags().Lookup("format"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			mode := schemas.PolicyMode(viper.GetString("mode"))
			if !mode.Valid() {
				return fmt.Errorf("mode must be 'weak' or 'secure', got %q", mode)
			}

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}

			scenario, err := config.LoadScenario(cfg.Experiment.ScenarioFile, cfg.Experiment.NumDevices)
			if err != nil {
				return err
			}

			runner, err := experiment.NewRunner(cfg, scenario, logger)
			if err != nil {
				return err
			}

			result, err := runner.Run(ctx, mode)
			if err != nil {
				return err
			}

			printSummary(result.Summary)

			if cfg.Output.Path != "" {
				if err := writeReport(cfg.Output.Format, cfg.Output.Path, result); err != nil {
					return err
				}
				logger.Info("Results written", zap.String("path", cfg.Output.Path), zap.String("format", cfg.Output.Format))
			}
			return nil
		},
	}

	runCmd.Flags().StringP("mode", "m", "", "Policy mode for the controller: 'weak' or 'secure' (required)")
	runCmd.Flags().StringP("output", "o", "", "Output file path for per-message results. If unset, no file is written.")
	runCmd.Flags().StringP("format", "f", "csv", "Format for the results file ('csv' or 'json')")
	runCmd.Flags().Int64("seed", 1, "Seed for all random draws; matched seeds make runs comparable")
	runCmd.Flags().Int("devices", 3, "Number of legitimate devices in the fleet")
	runCmd.Flags().Int("legit-per-device", 50, "Number of legitimate messages per device")
	runCmd.Flags().Int("rogue-messages", 100, "Number of rogue messages to send")
	runCmd.Flags().String("scenario", "", "Optional scenario YAML overriding fleet, permissions and rogue strategy")

	_ = runCmd.MarkFlagRequired("mode")
	_ = viper.BindPFlag("mode", runCmd.Flags().Lookup("mode"))

	return runCmd
}

// writeReport persists the per-message results through a reporter.
func writeReport(format, path string, result *experiment.Result) error {
	reporter, err := reporting.New(format, path)
	if err != nil {
		return fmt.Errorf("failed to initialize reporter: %w", err)
	}
	defer func() {
		if err := reporter.Close(); err != nil {
			observability.GetLogger().Error("Failed to close reporter", zap.Error(err))
		}
	}()

	envelope := &schemas.Envelope{
		RunID:       result.RunID,
		Mode:        result.Mode,
		GeneratedAt: time.Now(),
		Summary:     result.Summary,
		Records:     result.Records,
	}
	if err := reporter.Write(envelope); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

// printSummary renders one run's aggregates for the terminal.
func printSummary(s schemas.Summary) {
	fmt.Printf("=== Summary for mode: %s ===\n", s.Mode)
	fmt.Printf("Total messages:           %d\n", s.TotalMessages)
	fmt.Printf("  Legitimate messages:    %d\n", s.TotalLegitimate)
	fmt.Printf("  Rogue messages:         %d\n", s.TotalRogue)
	fmt.Printf("  Dropped in transit:     %d\n", s.Dropped)
	fmt.Println()
	fmt.Printf("Legitimate accepted:      %d\n", s.LegitimateAccepted)
	fmt.Printf("Rogue accepted:           %d\n", s.RogueAccepted)
	fmt.Println()
	fmt.Printf("Average latency (all):    %.2f ms\n", s.AvgLatencyAllMs)
	fmt.Printf("Average latency (legit):  %.2f ms\n", s.AvgLatencyLegitMs)
	fmt.Printf("Average latency (rogue):  %.2f ms\n", s.AvgLatencyRogueMs)
	fmt.Println("===============================")
}
