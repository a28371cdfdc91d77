// Package trace records what a run of eer did, for diagnosing the tool
// itself: when the child was spawned, which lines matched, when interrupts
// arrived, where the session went and which editor command ran.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	eer --trace=- --trace-level=stream make -j8
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer, dumped when the run is force-killed
//   - MultiTracer: combines multiple tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only the ring dump on forced termination
//   - LevelRun: spawn, exit, session save, editor launch
//   - LevelStream: matches, truncation, interrupts
//   - LevelDebug: every streamed line
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeRun, "run", 0)
//	defer span.End("")
//
// StartSpan nests spans through the context: a span started on a context
// returned by StartSpan records the enclosing span as its parent.
//
//	ctx, run := trace.StartSpan(ctx, trace.ScopeRun, "run")
//	_, stream := trace.StartSpan(ctx, trace.ScopeStream, "stream")
package trace
