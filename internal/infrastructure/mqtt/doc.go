// Package mqtt publishes authcore events to an MQTT broker.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing with QoS validation and a payload size cap
//   - Last Will and Testament for offline detection
//
// Every login, refresh and registration attempt is published as JSON on
// authcore/events/auth/{action}, so other services can react to them
// without polling the audit table.
//
// # Security Considerations
//
//   - Enable TLS outside local development (cfg.Broker.TLS=true)
//   - Payloads never include passwords or tokens
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Publish(mqtt.Topics{}.AuthEvent("login"), payload, 1, false)
package mqtt
