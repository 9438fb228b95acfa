package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/stepflow-ai/stepflow/internal/adapters/cli"
	"github.com/stepflow-ai/stepflow/internal/clip"
	"github.com/stepflow-ai/stepflow/internal/config"
	"github.com/stepflow-ai/stepflow/internal/core"
	"github.com/stepflow-ai/stepflow/internal/diagnostics"
	"github.com/stepflow-ai/stepflow/internal/engine"
	"github.com/stepflow-ai/stepflow/internal/telemetry"
)

var (
	runInput      string
	runWorkDir    string
	runOutPath    string
	runPartial    bool
	runCopy       bool
	runNoHistory  bool
	runNoPrefight bool
)

var runCmd = &cobra.Command{
	Use:   "run <workflow-file>",
	Short: "Execute a workflow definition",
	Long: `Run executes every step of a workflow file (TOML or YAML) in order,
feeding each step's output into the next step's input. By default a
failing step aborts the run; --partial records the failure and marks the
remaining steps as skipped instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runWorkflow,
}

func init() {
	runCmd.Flags().StringVarP(&runInput, "input", "i", "",
		"initial input for the first step")
	runCmd.Flags().StringVar(&runWorkDir, "workdir", "",
		"working directory for spawned CLIs")
	runCmd.Flags().StringVarP(&runOutPath, "out", "o", "",
		"write the result JSON to this file (atomic)")
	runCmd.Flags().BoolVar(&runPartial, "partial", false,
		"on step failure, return a partial result instead of aborting")
	runCmd.Flags().BoolVar(&runCopy, "copy", false,
		"copy the final output to the clipboard")
	runCmd.Flags().BoolVar(&runNoHistory, "no-history", false,
		"do not record this run in the history database")
	runCmd.Flags().BoolVar(&runNoPrefight, "no-preflight", false,
		"skip the resource preflight check before spawning CLIs")

	rootCmd.AddCommand(runCmd)
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	def, err := config.LoadWorkflow(args[0])
	if err != nil {
		return err
	}

	bridgeCfg := cli.Config{
		WorkDir:     runWorkDir,
		CheckBinary: true,
		Logger:      logger,
	}
	if !runNoPrefight {
		bridgeCfg.Preflight = diagnostics.NewChecker(
			diagnostics.DefaultMinFreeMemoryMB,
			diagnostics.DefaultMinFreeDiskMB,
			runWorkDir,
		)
	}

	clients := make(map[core.Provider]core.ProviderClient)
	for _, step := range def.Steps {
		if _, ok := clients[step.Provider]; ok {
			continue
		}
		client, err := cli.New(step.Provider, bridgeCfg)
		if err != nil {
			return err
		}
		clients[step.Provider] = client
	}

	runner := engine.NewStepRunner(clients, logger)
	executor := engine.New(def, runner,
		engine.WithInitialInput(runInput),
		engine.WithPartialResults(runPartial),
		engine.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	result, err := executor.Execute(ctx)
	if err != nil {
		return err
	}

	printSummary(result)

	if runOutPath != "" {
		if err := telemetry.WriteResult(runOutPath, result); err != nil {
			return err
		}
		fmt.Printf("Result written to %s\n", runOutPath)
	}

	if !runNoHistory {
		if err := recordHistory(cmd, result); err != nil {
			logger.Warn("could not record run history", "error", err)
		}
	}

	if runCopy {
		copyFinalOutput(result)
	}

	if result.Status != core.WorkflowStatusSuccess {
		return fmt.Errorf("workflow finished with status %s: %s", result.Status, result.Error)
	}
	return nil
}

func recordHistory(cmd *cobra.Command, result *core.WorkflowResult) error {
	store, err := telemetry.OpenHistory(historyPath())
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Record(cmd.Context(), result)
}

func historyPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "stepflow", "history.db")
}

func copyFinalOutput(result *core.WorkflowResult) {
	output := result.FinalOutput()
	if output == "" {
		return
	}
	res, err := clip.WriteAll(output)
	switch {
	case err != nil:
		fmt.Fprintf(os.Stderr, "could not copy output: %v\n", err)
	case res.Method == clip.MethodFile:
		fmt.Printf("Clipboard unavailable; output saved to %s\n", res.FilePath)
	default:
		fmt.Println("Final output copied to clipboard")
	}
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	outputHeader = lipgloss.NewStyle().Bold(true).Underline(true)
)

func printSummary(result *core.WorkflowResult) {
	fmt.Println()
	fmt.Println(headerStyle.Render(fmt.Sprintf("Workflow %s — %s", result.WorkflowName, statusLabel(string(result.Status)))))
	fmt.Println(dimStyle.Render(fmt.Sprintf("run %s, %v, %d tokens",
		result.RunID, result.TotalDuration.Round(time.Millisecond), result.TotalTokens.Total())))
	fmt.Println()

	for _, step := range result.Steps {
		line := fmt.Sprintf("  %-3d %-20s %-10s %8v  in:%d out:%d",
			step.Index+1, step.StepName, statusLabel(string(step.Status)),
			step.Duration.Round(time.Millisecond),
			step.Usage.InputTokens, step.Usage.OutputTokens)
		if step.RetryCount > 0 {
			line += fmt.Sprintf("  (retries: %d)", step.RetryCount)
		}
		fmt.Println(line)
		if step.Error != "" {
			fmt.Println(dimStyle.Render("      " + step.Error))
		}
	}

	if !quiet {
		if output := result.FinalOutput(); output != "" {
			fmt.Println()
			fmt.Println(outputHeader.Render("Final output"))
			fmt.Println(output)
		}
	}
}

func statusLabel(status string) string {
	switch status {
	case "success", "retried":
		return okStyle.Render(status)
	case "partial_success", "skipped":
		return warnStyle.Render(status)
	case "failed":
		return failStyle.Render(status)
	default:
		return status
	}
}
