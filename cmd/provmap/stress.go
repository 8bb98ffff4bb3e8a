package main

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/spf13/cobra"

	"provmap/internal/observ"
	"provmap/internal/stress"
)

var stressCmd = &cobra.Command{
	Use:   "stress [flags]",
	Short: "Hammer a shared tracker pool from concurrent workers",
	Long: `Run random appends, writes, middleman copies, self copies and twin appends
from concurrent workers, then validate every tracker invariant`,
	Args: cobra.NoArgs,
	RunE: runStress,
}

func init() {
	stressCmd.Flags().Int("workers", 0, "concurrent workers (0=GOMAXPROCS)")
	stressCmd.Flags().Int("ops", 1000, "operations per worker")
	stressCmd.Flags().Int("trackers", 8, "default trackers in the pool")
	stressCmd.Flags().Int("max-index", 256, "index space of every tracker")
	stressCmd.Flags().Int64("seed", 1, "random seed")
	stressCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

func readStressConfig(cmd *cobra.Command) (stress.Config, error) {
	var cfg stress.Config
	var err error
	if cfg.Workers, err = cmd.Flags().GetInt("workers"); err != nil {
		return cfg, fmt.Errorf("failed to get workers flag: %w", err)
	}
	if cfg.Ops, err = cmd.Flags().GetInt("ops"); err != nil {
		return cfg, fmt.Errorf("failed to get ops flag: %w", err)
	}
	if cfg.Trackers, err = cmd.Flags().GetInt("trackers"); err != nil {
		return cfg, fmt.Errorf("failed to get trackers flag: %w", err)
	}
	if cfg.MaxIndex, err = cmd.Flags().GetInt("max-index"); err != nil {
		return cfg, fmt.Errorf("failed to get max-index flag: %w", err)
	}
	seed, err := cmd.Flags().GetInt64("seed")
	if err != nil {
		return cfg, fmt.Errorf("failed to get seed flag: %w", err)
	}
	if cfg.Seed, err = safecast.Conv[uint64](seed); err != nil {
		return cfg, fmt.Errorf("invalid --seed: %w", err)
	}
	return cfg, nil
}

// runStress executes the "stress" command, with a progress UI when stdout is
// a terminal.
func runStress(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	cfg, err := readStressConfig(cmd)
	if err != nil {
		return err
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	// the UI needs the final worker count up front
	if cfg.Workers <= 0 {
		cfg.Workers = stress.DefaultWorkers()
	}

	timer := observ.NewTimer()
	phase := timer.Begin("stress")
	var res *stress.Result
	if !quiet && shouldUseTUI(mode) {
		res, err = runStressWithUI(cmd.Context(), "provmap stress", cfg)
	} else {
		res, err = stress.Run(cmd.Context(), cfg, nil)
	}
	if res != nil {
		timer.EndOps(phase, res.Stats.Total(), fmt.Sprintf("%d workers", res.Config.Workers))
	} else {
		timer.End(phase, "failed")
	}
	if err != nil {
		return fmt.Errorf("stress: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "stress ok (seed %d)\n", res.Config.Seed)
		printStressStats(cmd.OutOrStdout(), res.Stats)
	}
	if showTimings {
		printTimings(cmd.ErrOrStderr(), timer)
	}
	return nil
}
