package scenario

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"provmap/internal/growth"
	"provmap/internal/snapshot"
	"provmap/internal/testkit"
	"provmap/internal/trace"
	"provmap/internal/tracker"
)

// Named is a scenario tracker with its declared name.
type Named struct {
	Name    string
	Kind    string
	Chars   bool
	Tracker tracker.Tracker
}

// Result is the tracker state after replaying a scenario.
type Result struct {
	Scenario *Scenario
	Names    *tracker.Registry
	Trackers []Named // declaration order
	Ops      int     // operations applied
}

type appender interface {
	Append(p []byte) error
	AppendChars(p []rune) error
}

type synchronized interface {
	Synchronization() *tracker.TwinSynchronization
}

// Run replays sc on fresh trackers. It stops at the first operation that
// fails unexpectedly, or when ctx is done. Tracker events go to the tracer
// in ctx.
func Run(ctx context.Context, sc *Scenario) (*Result, error) {
	tracer := trace.FromContext(ctx)
	ctx, span := trace.StartSpan(ctx, trace.ScopeScenario, "scenario:"+sc.Name)
	defer span.End("")

	res := &Result{Scenario: sc, Names: tracker.NewRegistry()}
	byName := make(map[string]Named, len(sc.Trackers))
	for _, d := range sc.Trackers {
		t, err := newTracker(d, tracer)
		if err != nil {
			return nil, fmt.Errorf("tracker %q: %w", d.Name, err)
		}
		if err := res.Names.Register(d.Name, t); err != nil {
			return nil, err
		}
		n := Named{Name: d.Name, Kind: d.Kind, Chars: d.Chars, Tracker: t}
		res.Trackers = append(res.Trackers, n)
		byName[d.Name] = n
	}

	for i, op := range sc.Ops {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		err := apply(op, byName)
		trace.Point(tracer, trace.ScopeScenario, "op:"+op.Do, fmt.Sprintf("#%d %s", i, op.Target), nil)
		if err := checkOpError(op, err); err != nil {
			return nil, fmt.Errorf("op %d (%s %s): %w", i, op.Do, op.Target, err)
		}
		res.Ops++
	}
	span.WithExtra("ops", fmt.Sprint(res.Ops))
	return res, nil
}

func newTracker(d TrackerDecl, tracer trace.Tracer) (tracker.Tracker, error) {
	opts := []tracker.Option{tracker.WithTracer(tracer)}
	if d.Chars {
		opts = append(opts, tracker.WithChars())
	}
	var t tracker.Tracker
	switch d.Kind {
	case KindOrigin:
		t = tracker.NewOrigin(opts...)
	case KindDefault:
		t = tracker.NewDefault(opts...)
	case KindTag:
		label := d.Label
		if label == "" {
			label = d.Name
		}
		return tracker.NewTag(label, opts...), nil
	default:
		return nil, fmt.Errorf("invalid kind %q", d.Kind)
	}
	if d.Content != "" {
		if err := appendContent(t, d.Chars, d.Content); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func appendContent(t tracker.Tracker, chars bool, content string) error {
	a, ok := t.(appender)
	if !ok {
		return fmt.Errorf("tracker#%d cannot append: %w", t.ID(), tracker.ErrUnsupported)
	}
	if chars {
		return a.AppendChars([]rune(content))
	}
	return a.Append([]byte(content))
}

func apply(op Op, byName map[string]Named) error {
	target := byName[op.Target]
	switch op.Do {
	case OpAppend:
		return appendContent(target.Tracker, target.Chars, op.Content)
	case OpSetSource, OpClear:
		w, ok := target.Tracker.(tracker.Writable)
		if !ok {
			return fmt.Errorf("tracker %q is not writable: %w", op.Target, tracker.ErrUnsupported)
		}
		if op.Do == OpClear {
			return w.SetSource(op.Index, op.Length, nil, 0, growth.None)
		}
		g, err := ParseGrowth(op.Growth)
		if err != nil {
			return err
		}
		return w.SetSource(op.Index, op.Length, byName[op.Source].Tracker, op.SourceIndex, g)
	case OpTwin:
		return target.Tracker.InitTwin(byName[op.Other].Tracker)
	default:
		return fmt.Errorf("invalid operation %q", op.Do)
	}
}

func checkOpError(op Op, err error) error {
	var want error
	switch op.Error {
	case "":
		return err
	case "unsupported":
		want = tracker.ErrUnsupported
	case "invalid_argument":
		want = tracker.ErrInvalidArgument
	}
	if err == nil {
		return fmt.Errorf("expected %s error, got none", op.Error)
	}
	if !errors.Is(err, want) {
		return fmt.Errorf("expected %s error, got: %w", op.Error, err)
	}
	return nil
}

// Tracker returns the tracker declared as name, or nil.
func (r *Result) Tracker(name string) tracker.Tracker {
	for _, n := range r.Trackers {
		if n.Name == name {
			return n.Tracker
		}
	}
	return nil
}

// Mismatch is a failed expectation. Expect is -1 for checks that apply to
// the whole run.
type Mismatch struct {
	Expect  int
	Tracker string
	Message string
}

func (m Mismatch) Error() string {
	if m.Expect < 0 {
		return fmt.Sprintf("%s: %s", m.Tracker, m.Message)
	}
	return fmt.Sprintf("expect %d (%s): %s", m.Expect, m.Tracker, m.Message)
}

// Check evaluates every expectation and the structural invariants of all
// default trackers. An empty result means the scenario passed.
func (r *Result) Check() []Mismatch {
	var out []Mismatch
	for _, n := range r.Trackers {
		if d, ok := n.Tracker.(*tracker.DefaultTracker); ok {
			if err := d.CheckInvariants(); err != nil {
				out = append(out, Mismatch{Expect: -1, Tracker: n.Name, Message: err.Error()})
			}
		}
	}
	for i, ex := range r.Scenario.Expects {
		for _, msg := range r.checkExpect(ex) {
			out = append(out, Mismatch{Expect: i, Tracker: ex.Tracker, Message: msg})
		}
	}
	return out
}

func (r *Result) checkExpect(ex Expect) []string {
	t := r.Tracker(ex.Tracker)
	var msgs []string

	if ex.Length != nil && t.Length() != *ex.Length {
		msgs = append(msgs, fmt.Sprintf("length = %d, want %d", t.Length(), *ex.Length))
	}

	if ex.Regions != nil {
		s, err := r.Snapshot(ex)
		if err != nil {
			return append(msgs, err.Error())
		}
		if err := testkit.CheckSnapshot(s, s.Length()); err != nil {
			msgs = append(msgs, err.Error())
		}
		want := make([]string, len(ex.Regions))
		for i, spec := range ex.Regions {
			// validated at load time
			parsed, _ := ParseRegion(spec)
			want[i] = parsed.String()
		}
		if got := FormatSnapshot(s, r.Names); !slices.Equal(got, want) {
			msgs = append(msgs, fmt.Sprintf("regions = [%s], want [%s]", strings.Join(got, ", "), strings.Join(want, ", ")))
		}
	}

	if ex.Markers != nil {
		var markers []tracker.Marker
		if syn, ok := t.(synchronized); ok && syn.Synchronization() != nil {
			markers = syn.Synchronization().Markers()
		}
		if err := testkit.CheckMarkers(markers); err != nil {
			msgs = append(msgs, err.Error())
		}
		got := make([]string, len(markers))
		for i, m := range markers {
			got[i] = FormatMarker(m, r.Names)
		}
		want := make([]string, len(ex.Markers))
		for i, spec := range ex.Markers {
			parsed, _ := ParseMarker(spec)
			want[i] = parsed.String()
		}
		if !slices.Equal(got, want) {
			msgs = append(msgs, fmt.Sprintf("markers = [%s], want [%s]", strings.Join(got, ", "), strings.Join(want, ", ")))
		}
	}
	return msgs
}

// Snapshot takes the snapshot an expectation describes.
func (r *Result) Snapshot(ex Expect) (*snapshot.Snapshot, error) {
	t := r.Tracker(ex.Tracker)
	if t == nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownTracker, ex.Tracker)
	}
	var (
		s   *snapshot.Snapshot
		err error
	)
	if len(ex.Range) == 2 {
		s, err = snapshot.OfRange(t, ex.Range[0], ex.Range[1])
	} else {
		s, err = snapshot.Of(t)
	}
	if err != nil {
		return nil, err
	}
	if ex.Simplify {
		s = s.Simplify()
	}
	return s, nil
}
