package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementAuthEvents is the measurement authentication attempts are counted under.
const MeasurementAuthEvents = "auth_events"

// WriteAuthEvent records one authentication attempt as a point tagged with
// action and outcome, carrying count=1. Dashboards sum count per window.
//
// Usernames and actor IDs are deliberately not tags: they are unbounded and
// live in the SQLite audit trail instead.
func (c *Client) WriteAuthEvent(action, outcome string, ts time.Time) {
	if ts.IsZero() {
		ts = time.Now()
	}
	c.WritePointWithTime(MeasurementAuthEvents,
		map[string]string{
			"action":  action,
			"outcome": outcome,
		},
		map[string]any{
			"count": 1,
		},
		ts,
	)
}

// WritePoint writes a custom point stamped with the current time.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any) {
	c.WritePointWithTime(measurement, tags, fields, time.Now())
}

// WritePointWithTime writes a custom point with an explicit timestamp.
// Dropped silently when the client is not connected.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]any, ts time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, ts))
}
