package main

import (
	"fmt"
	"io"

	"provmap/internal/observ"
	"provmap/internal/stress"
)

func printTimings(out io.Writer, timer *observ.Timer) {
	if out == nil || timer == nil {
		return
	}
	if _, err := io.WriteString(out, timer.Summary()); err != nil {
		panic(err)
	}
}

func printStressStats(out io.Writer, stats stress.Stats) {
	for k := stress.OpAppend; k <= stress.OpTwinAppend; k++ {
		if _, err := fmt.Fprintf(out, "  %-12s %8d\n", k, stats.Count(k)); err != nil {
			panic(err)
		}
	}
	if _, err := fmt.Fprintf(out, "  %-12s %8d\n  %-12s %8d\n  %-12s %8.1f ms\n",
		"total", stats.Total(), "markers", stats.Markers, "elapsed", toMillis(stats.Elapsed)); err != nil {
		panic(err)
	}
}
