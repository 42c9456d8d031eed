package audit

import (
	"context"
	"log/slog"
	"time"
)

// Sink receives recorded events.
type Sink interface {
	Name() string
	Write(ctx context.Context, e Event) error
}

// Recorder stamps events and fans them out to sinks.
//
// Thread Safety:
//   - Record is safe for concurrent use; sinks must be too.
type Recorder struct {
	sinks  []Sink
	logger *slog.Logger
	now    func() time.Time
}

// NewRecorder creates a recorder writing to sinks. Nil sinks are skipped.
func NewRecorder(logger *slog.Logger, sinks ...Sink) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	active := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			active = append(active, s)
		}
	}
	return &Recorder{sinks: active, logger: logger, now: time.Now}
}

// Record assigns an ID and timestamp if missing and writes e to every sink.
// Errors are logged per sink; the caller is never failed by auditing.
func (r *Recorder) Record(ctx context.Context, e Event) {
	if e.ID == "" {
		e.ID = newEventID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now().UTC().Truncate(time.Second)
	}

	for _, s := range r.sinks {
		if err := s.Write(ctx, e); err != nil {
			r.logger.Warn("audit sink write failed",
				"sink", s.Name(),
				"event_id", e.ID,
				"action", string(e.Action),
				"error", err,
			)
		}
	}
}
