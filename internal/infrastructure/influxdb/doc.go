// Package influxdb writes authcore metrics to InfluxDB v2.
//
// Each authentication attempt becomes one point in the auth_events
// measurement, tagged by action (login, refresh, register) and outcome
// (success, failure). Writes are non-blocking and batched; failures are
// reported through SetOnError.
//
// Usage:
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteAuthEvent("login", "failure", time.Now())
package influxdb
