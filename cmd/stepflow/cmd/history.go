package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stepflow-ai/stepflow/internal/telemetry"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent workflow runs",
	RunE:  runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the full result JSON of a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20,
		"maximum number of runs to list")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	store, err := telemetry.OpenHistory(historyPath())
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs")
		return nil
	}

	fmt.Printf("%-36s  %-20s  %-16s  %-7s  %10s  %8s\n",
		"RUN", "WORKFLOW", "STATUS", "STEPS", "TOKENS", "DURATION")
	for _, run := range runs {
		fmt.Printf("%-36s  %-20s  %-16s  %3d/%-3d  %10d  %8v\n",
			run.RunID, run.WorkflowName, statusLabel(string(run.Status)),
			run.StepsDone, run.StepsTotal,
			run.Tokens.Total(), run.Duration.Round(time.Millisecond))
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := telemetry.OpenHistory(historyPath())
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	data, err := result.ToJSON()
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
