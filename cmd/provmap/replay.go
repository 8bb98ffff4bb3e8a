package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"provmap/internal/observ"
	"provmap/internal/report"
	"provmap/internal/scenario"
	"provmap/internal/snapshot"
	"provmap/internal/tracker"
	"provmap/internal/trace"
)

var replayCmd = &cobra.Command{
	Use:   "replay [flags] <scenario.toml>",
	Short: "Replay a scenario and report the provenance of its trackers",
	Long: `Replay the operations of a TOML scenario on fresh trackers, then report
where every unit of each expected tracker range came from`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

// ErrScenarioFailed is returned when --check finds mismatches.
var ErrScenarioFailed = errors.New("scenario expectations not met")

func init() {
	replayCmd.Flags().String("format", "pretty", "output format (pretty|json|msgpack)")
	replayCmd.Flags().Bool("simplify", false, "fuse adjacent regions before reporting")
	replayCmd.Flags().Bool("check", false, "verify the scenario expectations and fail on mismatch")
	replayCmd.Flags().Int("width", 32, "content column width in pretty output")
}

type replayOptions struct {
	format   string
	simplify bool
	check    bool
	width    int
	color    bool
	quiet    bool
	timings  bool
}

func readReplayOptions(cmd *cobra.Command) (replayOptions, error) {
	var opts replayOptions
	var err error
	if opts.format, err = cmd.Flags().GetString("format"); err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch opts.format {
	case "pretty", "json", "msgpack":
	default:
		return opts, fmt.Errorf("unsupported format %q (must be pretty, json or msgpack)", opts.format)
	}
	if opts.simplify, err = cmd.Flags().GetBool("simplify"); err != nil {
		return opts, fmt.Errorf("failed to get simplify flag: %w", err)
	}
	if opts.check, err = cmd.Flags().GetBool("check"); err != nil {
		return opts, fmt.Errorf("failed to get check flag: %w", err)
	}
	if opts.width, err = cmd.Flags().GetInt("width"); err != nil {
		return opts, fmt.Errorf("failed to get width flag: %w", err)
	}
	if opts.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return opts, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if opts.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if opts.color, err = colorEnabled(cmd); err != nil {
		return opts, err
	}
	return opts, nil
}

// runReplay executes the "replay" command: load, replay, optionally check
// and report every expectation's range (every tracker without expectations).
func runReplay(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	opts, err := readReplayOptions(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	ctx, span := trace.StartSpan(ctx, trace.ScopeCommand, "replay")
	defer span.End("")

	timer := observ.NewTimer()
	phase := timer.Begin("load")
	sc, err := scenario.Load(args[0])
	timer.End(phase, args[0])
	if err != nil {
		return err
	}

	phase = timer.Begin("replay")
	res, err := scenario.Run(ctx, sc)
	if err != nil {
		return fmt.Errorf("replay %s: %w", sc.Name, err)
	}
	timer.EndOps(phase, int64(res.Ops), sc.Name)

	var mismatches []scenario.Mismatch
	if opts.check {
		phase = timer.Begin("check")
		mismatches = res.Check()
		timer.End(phase, fmt.Sprintf("%d mismatches", len(mismatches)))
	}

	phase = timer.Begin("report")
	reports, err := buildReports(res, opts.simplify)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !opts.quiet || opts.format != "pretty" {
		if err := writeReports(out, reports, opts); err != nil {
			return err
		}
	}
	timer.End(phase, fmt.Sprintf("%d reports", len(reports)))

	if opts.timings {
		printTimings(cmd.ErrOrStderr(), timer)
	}
	if len(mismatches) > 0 {
		for _, m := range mismatches {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", sc.Name, m.Error())
		}
		span.WithExtra("mismatches", fmt.Sprint(len(mismatches)))
		return fmt.Errorf("%s: %w (%d)", sc.Name, ErrScenarioFailed, len(mismatches))
	}
	if opts.check && !opts.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: ok\n", sc.Name)
	}
	return nil
}

func buildReports(res *scenario.Result, simplify bool) ([]*report.Report, error) {
	var reports []*report.Report
	add := func(t tracker.Tracker, s *snapshot.Snapshot) error {
		if simplify {
			s = s.Simplify()
		}
		rep, err := report.Build(t, s, res.Names)
		if err != nil {
			return err
		}
		rep.Simplified = simplify
		reports = append(reports, rep)
		return nil
	}

	if len(res.Scenario.Expects) > 0 {
		for _, ex := range res.Scenario.Expects {
			s, err := res.Snapshot(ex)
			if err != nil {
				return nil, err
			}
			if err := add(res.Tracker(ex.Tracker), s); err != nil {
				return nil, err
			}
		}
		return reports, nil
	}
	for _, n := range res.Trackers {
		if !n.Tracker.IsContentMutable() {
			continue
		}
		s, err := snapshot.Of(n.Tracker)
		if err != nil {
			return nil, err
		}
		if err := add(n.Tracker, s); err != nil {
			return nil, err
		}
	}
	return reports, nil
}

func writeReports(out io.Writer, reports []*report.Report, opts replayOptions) error {
	switch opts.format {
	case "json":
		return report.WriteJSON(out, reports)
	case "msgpack":
		if f, ok := out.(*os.File); ok && isTerminal(f) {
			return fmt.Errorf("refusing to write msgpack to a terminal")
		}
		return report.WriteMsgpack(out, reports)
	default:
		return report.WritePretty(out, reports, report.PrettyOpts{Color: opts.color, Width: opts.width})
	}
}
