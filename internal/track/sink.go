package track

import "github.com/arden-bio/celltrack/internal/monitoring"

// Record describes one executed event: which kind, between which
// states, and the score it contributed when its path was chosen.
type Record struct {
	Frame int     // frame of the event's start state
	Kind  string  // "migration", "mitosis", ...
	From  int     // 1-based start detection index (parent detection for a mitosis), 0 for idle states
	To    int     // 1-based end detection index, 0 for idle states
	Score float64 // arc score at execution time
}

// EventSink receives a Record for every event executed against the
// forest, except Persist and the free idle-state arcs, which report
// nothing, and the events a Swap executes internally. The engine
// itself never prints; the host decides what to do with the records.
type EventSink interface {
	Emit(Record)
}

// NopSink discards all records.
type NopSink struct{}

// Emit implements EventSink.
func (NopSink) Emit(Record) {}

// LogSink writes records through the monitoring logger.
type LogSink struct{}

// Emit implements EventSink.
func (LogSink) Emit(r Record) {
	monitoring.Logf("t=%4d %13s %5d --> %5d = %.16f", r.Frame, r.Kind, r.From, r.To, r.Score)
}

// record builds the Record for an event between two states.
func record(kind string, start, end *State, score float64) Record {
	r := Record{Frame: start.T(), Kind: kind, Score: score}
	if start.IsDetection() {
		r.From = start.Index() + 1
	}
	if end != nil && end.IsDetection() {
		r.To = end.Index() + 1
	}
	return r
}
