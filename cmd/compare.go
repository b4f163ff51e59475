// File: cmd/compare.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xkilldash9x/wardsim/internal/config"
	"github.com/xkilldash9x/wardsim/internal/experiment"
	"github.com/xkilldash9x/wardsim/internal/observability"
)

// newCompareCmd creates the `compare` command, which runs both policy modes
// under matched seeds and prints their summaries side by side.
func newCompareCmd() *cobra.Command {
	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "Runs weak and secure modes with matched seeds and compares them",
		PreRunE: func(cmd *cobra.Command, args []string) error {
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
			return viper.BindPFlag("experiment.scenario_file", cmd.Flags().Lookup("scenario"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

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

			comparison, err := runner.Compare(ctx)
			if err != nil {
				return err
			}

			printSummary(comparison.Weak.Summary)
			fmt.Println()
			printSummary(comparison.Secure.Summary)
			fmt.Println()
			printContrast(comparison)
			return nil
		},
	}

	compareCmd.Flags().Int64("seed", 1, "Base seed shared by both runs")
	compareCmd.Flags().Int("devices", 3, "Number of legitimate devices in the fleet")
	compareCmd.Flags().Int("legit-per-device", 50, "Number of legitimate messages per device")
	compareCmd.Flags().Int("rogue-messages", 100, "Number of rogue messages to send")
	compareCmd.Flags().String("scenario", "", "Optional scenario YAML overriding fleet, permissions and rogue strategy")

	return compareCmd
}

// printContrast highlights the security/latency trade-off between the runs.
func printContrast(c *experiment.Comparison) {
	weak, secure := c.Weak.Summary, c.Secure.Summary
	fmt.Println("=== Weak vs secure ===")
	fmt.Printf("Rogue accepted:        %d -> %d\n", weak.RogueAccepted, secure.RogueAccepted)
	fmt.Printf("Legitimate accepted:   %d -> %d\n", weak.LegitimateAccepted, secure.LegitimateAccepted)
	fmt.Printf("Average latency (ms):  %.2f -> %.2f\n", weak.AvgLatencyAllMs, secure.AvgLatencyAllMs)
	fmt.Println("======================")
}
