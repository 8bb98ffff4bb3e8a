package trace

import "context"

type ctxKey struct{}

// FromContext extracts the Tracer from context, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(ctxKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches a Tracer to context.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, t)
}

type spanKey struct{}

// StartSpan begins a span under the span already in ctx (if any) and returns
// a context carrying the new span as parent for nested spans.
func StartSpan(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	var parent uint64
	if ctx != nil {
		parent, _ = ctx.Value(spanKey{}).(uint64)
	} else {
		ctx = context.Background()
	}
	span := Begin(FromContext(ctx), scope, name, parent)
	if span.ID() == 0 {
		return ctx, span
	}
	return context.WithValue(ctx, spanKey{}, span.ID()), span
}
