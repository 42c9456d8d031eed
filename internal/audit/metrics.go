package audit

import (
	"context"
	"time"
)

// AuthEventWriter is the subset of the InfluxDB client used by MetricsSink.
type AuthEventWriter interface {
	WriteAuthEvent(action, outcome string, ts time.Time)
}

// MetricsSink counts events as InfluxDB points (measurement auth_events,
// tags action and outcome). Writes are batched by the client.
type MetricsSink struct {
	w AuthEventWriter
}

// NewMetricsSink creates a metrics sink.
func NewMetricsSink(w AuthEventWriter) *MetricsSink {
	return &MetricsSink{w: w}
}

// Name implements Sink.
func (s *MetricsSink) Name() string { return "influxdb" }

// Write implements Sink. Delivery errors surface asynchronously through the
// client's error callback.
func (s *MetricsSink) Write(_ context.Context, e Event) error {
	s.w.WriteAuthEvent(string(e.Action), string(e.Outcome), e.CreatedAt)
	return nil
}
