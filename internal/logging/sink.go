package logging

// Sink is an independent output target for log records. Write must never
// block beyond local buffering, never panic, and never surface failures to
// the caller; sinks report their own faults through the console fallback.
type Sink interface {
	Write(rec Record)
}

// NoopSink discards all records. Useful for tests and wiring code.
type NoopSink struct{}

func (NoopSink) Write(Record) {}
