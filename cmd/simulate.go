package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/voyagent/tripmend/qa/scenarios"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <scenario.yaml>",
	Short: "Replay a scenario file through a fresh session",
	Args:  cobra.ExactArgs(1),
	RunE:  simulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
}

func simulate(cmd *cobra.Command, args []string) error {
	sc, err := scenarios.Load(args[0])
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}
	res, err := scenarios.Run(sc)
	if err != nil {
		return fmt.Errorf("run scenario %s: %w", sc.Name, err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}
	if len(res.Failures) > 0 {
		return fmt.Errorf("scenario %s: %d expectation(s) failed", sc.Name, len(res.Failures))
	}
	return nil
}
