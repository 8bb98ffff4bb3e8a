// Package trace provides the event tracing used by provmap.
//
// Tracing records what the engine and the CLI do: commands and scenario
// steps as spans, individual tracker writes, appends and twin switches as
// point events. It helps find out why a snapshot looks the way it does, and
// where a stress run hangs.
//
// # Usage
//
//	provmap replay --trace=- --trace-level=debug scenario.toml
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is off
//   - StreamTracer: writes every event immediately (text or NDJSON)
//   - RingTracer: keeps the last N events, dumped on panic
//   - MultiTracer: fans out to several tracers
//
// # Levels
//
//   - LevelOff: nothing
//   - LevelError: only crash dumps
//   - LevelPhase: commands
//   - LevelDetail: commands and scenario steps
//   - LevelDebug: everything, including per-tracker events
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeScenario, "run", parentID)
//	defer span.End("")
//
// Trackers take their tracer at creation with tracker.WithTracer.
package trace
