package cmd

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stepflow-ai/stepflow/internal/adapters/cli"
	"github.com/stepflow-ai/stepflow/internal/core"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the provider CLIs are installed and responsive",
	Long: `Doctor pings every supported provider CLI. A failing check names the
missing command and how to install it; authentication must be done in
the CLI itself (claude login, codex login).`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	logger := newLogger()
	clients := cli.NewAll(cli.Config{Logger: logger})

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	type checkResult struct {
		provider core.Provider
		command  string
		err      error
	}

	var (
		mu      sync.Mutex
		results []checkResult
	)

	// Ping both CLIs concurrently; each check is independent.
	g, ctx := errgroup.WithContext(ctx)
	for provider, client := range clients {
		g.Go(func() error {
			err := client.Ping(ctx)
			mu.Lock()
			results = append(results, checkResult{
				provider: provider,
				command:  client.Name(),
				err:      err,
			})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(results, func(i, j int) bool {
		return results[i].provider < results[j].provider
	})

	fmt.Println("Checking provider CLIs...")
	fmt.Println()

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Printf("  ✗ %s (%s): %v\n", r.command, r.provider, r.err)
			continue
		}
		fmt.Printf("  ✓ %s (%s)\n", r.command, r.provider)
	}
	fmt.Println()

	if failed > 0 {
		return fmt.Errorf("%d of %d provider CLIs unavailable", failed, len(results))
	}
	fmt.Println("All provider CLIs available")
	return nil
}
