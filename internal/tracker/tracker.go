package tracker

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"provmap/internal/growth"
	"provmap/internal/trace"
)

// ID identifies a tracker within the process. IDs are assigned in creation
// order and are only meant for external reference.
type ID uint64

var lastID atomic.Uint64

func nextID() ID {
	return ID(lastID.Add(1))
}

// Tracker records what content passed through something and where it came
// from. The interface is sealed: the variants are OriginTracker,
// DefaultTracker and TagTracker.
type Tracker interface {
	// ID returns the process-unique tracker id.
	ID() ID
	// Length returns the known content length. It never shrinks.
	Length() int
	// IsContentMutable reports whether already written ranges may later
	// change source. Writes through a mutable source are resolved to that
	// source's own sources.
	IsContentMutable() bool
	// Twin returns the linked tracker, or nil.
	Twin() Tracker
	// InitTwin links this tracker and other symmetrically.
	InitTwin(other Tracker) error
	// Content returns the appended content in [index, index+length), clipped
	// to what is known.
	Content(index, length int) string
	// PushSourceTo reports the sources of this tracker's range starting at
	// index to target, as SetSource calls on the target range
	// [targetIndex, targetIndex+targetLength). g maps target units to units
	// of this tracker.
	PushSourceTo(index int, target Writable, targetIndex, targetLength int, g growth.Growth) error

	core() *base
}

// Writable receives provenance writes.
type Writable interface {
	// SetSource records that [index, index+length) came from source starting
	// at sourceIndex. A nil source means the provenance is unknown.
	SetSource(index, length int, source Tracker, sourceIndex int, g growth.Growth) error
}

// Option configures a tracker at creation.
type Option func(*options)

type options struct {
	chars     bool
	noContent bool
	tracer    trace.Tracer
}

// WithChars makes the tracker count content in runes instead of bytes.
func WithChars() Option {
	return func(o *options) { o.chars = true }
}

// WithoutContent makes appends only grow the length.
func WithoutContent() Option {
	return func(o *options) { o.noContent = true }
}

// WithTracer sets the tracer receiving tracker-scope events.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{tracer: trace.Nop}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// base carries what every variant shares: identity, length, content, the
// twin link and the per-tracker lock.
type base struct {
	id     ID
	self   Tracker
	length atomic.Int64
	tracer trace.Tracer

	mu      sync.RWMutex
	twin    Tracker              // guarded by mu
	twinSyn *TwinSynchronization // guarded by mu
	content content              // guarded by mu
}

func (b *base) init(self Tracker, o options) {
	b.id = nextID()
	b.self = self
	b.tracer = o.tracer
	b.content = content{chars: o.chars, enabled: !o.noContent}
}

func (b *base) core() *base { return b }

// ID returns the tracker id.
func (b *base) ID() ID { return b.id }

// Length returns the known content length.
func (b *base) Length() int { return int(b.length.Load()) }

// growLocked raises the length to n. Writers hold b.mu.
func (b *base) growLocked(n int) {
	if int64(n) > b.length.Load() {
		b.length.Store(int64(n))
	}
}

// Twin returns the linked tracker, or nil.
func (b *base) Twin() Tracker {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.twin
}

// Synchronization returns the twin synchronization shared with the twin, or
// nil when the tracker has no twin.
func (b *base) Synchronization() *TwinSynchronization {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.twinSyn
}

// InitTwin links b and other. Linking an existing pair again, from either
// side, is a no-op.
func (b *base) InitTwin(other Tracker) error {
	if other == nil {
		return invalidArgument(b.id, "InitTwin", "nil twin")
	}
	o := other.core()
	if o == b {
		return invalidArgument(b.id, "InitTwin", "tracker cannot be its own twin")
	}

	first, second := b, o
	if second.id < first.id {
		first, second = second, first
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	if b.twin == other && o.twin == b.self {
		return nil
	}
	if b.twin != nil || o.twin != nil {
		return invalidArgument(b.id, "InitTwin", "already twinned")
	}

	s := newTwinSynchronization(b.self, other)
	b.twin, b.twinSyn = other, s
	o.twin, o.twinSyn = b.self, s
	b.emit("twin", "", map[string]string{"other": strconv.FormatUint(uint64(o.id), 10)})
	return nil
}

// Content returns known content in [index, index+length).
func (b *base) Content(index, length int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.content.slice(index, index+length)
}

// appendBytes appends p at the current length.
func (b *base) appendBytes(op string, p []byte) error {
	if len(p) == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.content.enabled && b.content.chars {
		return invalidArgument(b.id, op, "byte content appended to a char tracker")
	}
	done := b.beforeAppendLocked()
	defer done()

	start := b.Length()
	b.content.appendBytes(start, p)
	b.growLocked(start + len(p))
	b.emitAppend(start, len(p))
	return nil
}

// appendChars appends p at the current length.
func (b *base) appendChars(op string, p []rune) error {
	if len(p) == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.content.enabled && !b.content.chars {
		return invalidArgument(b.id, op, "char content appended to a byte tracker")
	}
	done := b.beforeAppendLocked()
	defer done()

	start := b.Length()
	b.content.appendChars(start, p)
	b.growLocked(start + len(p))
	b.emitAppend(start, len(p))
	return nil
}

// beforeAppendLocked records a twin switch, if any, and returns the function
// that ends the append.
func (b *base) beforeAppendLocked() func() {
	if b.twinSyn == nil {
		return func() {}
	}
	return b.twinSyn.beforeAppend(b.self)
}

func (b *base) emitAppend(start, n int) {
	if !b.tracing() {
		return
	}
	b.emit("append", fmt.Sprintf("[%d,%d)", start, start+n), nil)
}

func (b *base) tracing() bool {
	return b.tracer.Enabled() && b.tracer.Level().ShouldEmit(trace.ScopeTracker)
}

func (b *base) emit(name, detail string, extra map[string]string) {
	if !b.tracing() {
		return
	}
	trace.Point(b.tracer, trace.ScopeTracker, fmt.Sprintf("tracker#%d:%s", b.id, name), detail, extra)
}
