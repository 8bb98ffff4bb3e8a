package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"provmap/internal/stress"
	"provmap/internal/ui"
)

type stressOutcome struct {
	result *stress.Result
	err    error
}

// runStressWithUI runs the stress harness in the background and renders its
// progress until the run finishes.
func runStressWithUI(ctx context.Context, title string, cfg stress.Config) (*stress.Result, error) {
	events := make(chan stress.Event, 256)
	outcomeCh := make(chan stressOutcome, 1)

	go func() {
		res, err := stress.Run(ctx, cfg, stress.ChannelSink{Ch: events})
		outcomeCh <- stressOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, cfg.Workers, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep the producer from blocking on a full channel
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
