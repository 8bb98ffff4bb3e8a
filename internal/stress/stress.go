// Package stress hammers a shared pool of trackers from concurrent workers
// and then validates every structural invariant.
package stress

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync/atomic"
	"time"

	"fortio.org/safecast"
	"golang.org/x/sync/errgroup"

	"provmap/internal/growth"
	"provmap/internal/snapshot"
	"provmap/internal/testkit"
	"provmap/internal/trace"
	"provmap/internal/tracker"
)

// Config controls a stress run. Zero values pick defaults.
type Config struct {
	Workers  int    // concurrent workers, default DefaultWorkers()
	Ops      int    // operations per worker, default 1000
	Trackers int    // default trackers in the pool, default 8
	MaxIndex int    // index space of every tracker, default 256
	Seed     uint64 // per-worker random streams derive from it
}

// DefaultWorkers is the worker count used when Config.Workers is unset.
func DefaultWorkers() int { return runtime.GOMAXPROCS(0) }

func (c Config) normalized() Config {
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers()
	}
	if c.Ops <= 0 {
		c.Ops = 1000
	}
	if c.Trackers <= 0 {
		c.Trackers = 8
	}
	if c.MaxIndex <= 0 {
		c.MaxIndex = 256
	}
	return c
}

// Result summarizes a finished run.
type Result struct {
	Config Config
	Stats  Stats
}

var growths = []growth.Growth{growth.None, growth.None, growth.Double, growth.Half, growth.Of(3, 1), growth.Of(3, 2)}

type pool struct {
	origins []*tracker.OriginTracker
	tags    []*tracker.TagTracker
	sinks   []*tracker.DefaultTracker
	in, out *tracker.OriginTracker // twins
	counts  [opCount]atomic.Int64
}

func newPool(cfg Config, tracer trace.Tracer) (*pool, error) {
	opt := tracker.WithTracer(tracer)
	p := &pool{
		origins: []*tracker.OriginTracker{tracker.NewOrigin(opt), tracker.NewOrigin(opt)},
		tags:    []*tracker.TagTracker{tracker.NewTag("const", opt), tracker.NewTag("native", opt)},
		in:      tracker.NewOrigin(opt, tracker.WithoutContent()),
		out:     tracker.NewOrigin(opt, tracker.WithoutContent()),
	}
	for range cfg.Trackers {
		p.sinks = append(p.sinks, tracker.NewDefault(opt, tracker.WithoutContent()))
	}
	if err := p.in.InitTwin(p.out); err != nil {
		return nil, err
	}
	for _, o := range p.origins {
		if err := o.Append(make([]byte, cfg.MaxIndex)); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *pool) terminal(rng *rand.Rand) tracker.Tracker {
	if rng.IntN(4) == 0 {
		return p.tags[rng.IntN(len(p.tags))]
	}
	return p.origins[rng.IntN(len(p.origins))]
}

// Run executes cfg against a fresh pool. It returns the first worker failure
// or, once all workers are done, every invariant violation found.
func Run(ctx context.Context, cfg Config, sink ProgressSink) (*Result, error) {
	cfg = cfg.normalized()
	if sink == nil {
		sink = nopSink{}
	}
	tracer := trace.FromContext(ctx)
	ctx, span := trace.StartSpan(ctx, trace.ScopeCommand, "stress")
	defer span.End("")

	p, err := newPool(cfg, tracer)
	if err != nil {
		return nil, fmt.Errorf("stress: setup: %w", err)
	}
	started := time.Now()
	for w := range cfg.Workers {
		sink.OnEvent(Event{Worker: w, Stage: StageOps, Status: StatusQueued, Total: cfg.Ops})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for w := range cfg.Workers {
		g.Go(func() error {
			err := p.work(gctx, cfg, w, sink)
			status := StatusDone
			if err != nil {
				status = StatusError
			}
			sink.OnEvent(Event{Worker: w, Stage: StageOps, Status: status, Done: cfg.Ops, Total: cfg.Ops, Err: err, Elapsed: time.Since(started)})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		sink.OnEvent(Event{Worker: -1, Stage: StageOps, Status: StatusError, Err: err, Elapsed: time.Since(started)})
		return nil, err
	}

	sink.OnEvent(Event{Worker: -1, Stage: StageValidate, Status: StatusWorking})
	res := &Result{Config: cfg}
	for k := range p.counts {
		res.Stats.Ops[k] = p.counts[k].Load()
	}
	markers, err := p.validate()
	res.Stats.Markers = markers
	res.Stats.Elapsed = time.Since(started)
	status := StatusDone
	if err != nil {
		status = StatusError
	}
	sink.OnEvent(Event{Worker: -1, Stage: StageValidate, Status: status, Err: err, Elapsed: res.Stats.Elapsed})
	span.WithExtra("ops", fmt.Sprint(res.Stats.Total()))
	return res, err
}

func (p *pool) work(ctx context.Context, cfg Config, w int, sink ProgressSink) error {
	stream, err := safecast.Conv[uint64](w)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, stream))
	ctx, span := trace.StartSpan(ctx, trace.ScopeScenario, fmt.Sprintf("worker#%d", w))
	defer span.End("")

	every := max(1, cfg.Ops/20)
	for i := range cfg.Ops {
		if err := ctx.Err(); err != nil {
			return err
		}
		kind := OpKind(rng.IntN(int(opCount)))
		if err := p.do(kind, rng, cfg.MaxIndex); err != nil {
			return fmt.Errorf("worker %d op %d (%v): %w", w, i, kind, err)
		}
		p.counts[kind].Add(1)
		if (i+1)%every == 0 {
			sink.OnEvent(Event{Worker: w, Stage: StageOps, Status: StatusWorking, Done: i + 1, Total: cfg.Ops})
		}
	}
	return nil
}

func (p *pool) do(kind OpKind, rng *rand.Rand, maxIndex int) error {
	sink := p.sinks[rng.IntN(len(p.sinks))]
	index, length, sourceIndex := rng.IntN(maxIndex), rng.IntN(32), rng.IntN(maxIndex)
	g := growths[rng.IntN(len(growths))]

	switch kind {
	case OpAppend:
		return p.origins[rng.IntN(len(p.origins))].Append(make([]byte, 1+rng.IntN(8)))
	case OpWrite:
		return sink.SetSource(index, length, p.terminal(rng), sourceIndex, g)
	case OpCopy:
		from := p.sinks[rng.IntN(len(p.sinks))]
		return sink.SetSource(index, length, from, sourceIndex, g)
	case OpSelfCopy:
		return sink.SetSource(index, length, sink, sourceIndex, growth.None)
	case OpClear:
		return sink.SetSource(index, length, nil, 0, growth.None)
	case OpSnapshot:
		s, err := snapshot.OfRange(sink, index, length)
		if err != nil {
			return err
		}
		return testkit.CheckSnapshot(s, length)
	case OpTwinAppend:
		side := p.in
		if rng.IntN(2) == 0 {
			side = p.out
		}
		return side.Append(make([]byte, 1+rng.IntN(4)))
	default:
		return fmt.Errorf("unknown op %d", kind)
	}
}

// validate checks every sink and the twin markers. It returns the marker
// count and all violations found.
func (p *pool) validate() (int, error) {
	var errs []error
	for _, t := range p.sinks {
		if err := t.CheckInvariants(); err != nil {
			errs = append(errs, err)
			continue
		}
		s, err := snapshot.Of(t)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := testkit.CheckSnapshot(s, t.Length()); err != nil {
			errs = append(errs, fmt.Errorf("tracker#%d: %w", t.ID(), err))
		}
	}
	markers := p.in.Synchronization().Markers()
	if err := testkit.CheckMarkers(markers); err != nil {
		errs = append(errs, fmt.Errorf("twin markers: %w", err))
	}
	return len(markers), errors.Join(errs...)
}
