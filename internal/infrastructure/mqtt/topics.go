package mqtt

import "strings"

// Topic prefixes for authcore MQTT traffic.
const (
	// TopicPrefix is the root of every authcore topic.
	TopicPrefix = "authcore"

	// TopicPrefixAuthEvents is the base for authentication audit events.
	TopicPrefixAuthEvents = TopicPrefix + "/events/auth"

	// TopicPrefixSystem is the base for service status topics.
	TopicPrefixSystem = TopicPrefix + "/system"
)

// Topics provides builders for authcore MQTT topics.
//
//	topic := mqtt.Topics{}.AuthEvent("login")
//	// Returns: "authcore/events/auth/login"
type Topics struct{}

// AuthEvent returns the topic an authentication event is published on.
//
// Example: authcore/events/auth/refresh
func (Topics) AuthEvent(action string) string {
	return TopicPrefixAuthEvents + "/" + action
}

// AllAuthEvents returns a wildcard subscription for every authentication event.
func (Topics) AllAuthEvents() string {
	return TopicPrefixAuthEvents + "/+"
}

// SystemStatus returns the retained online/offline status topic.
//
// Example: authcore/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// ParseAuthEventTopic extracts the action from an auth event topic.
// Returns false when the topic is not an auth event topic.
func ParseAuthEventTopic(topic string) (action string, ok bool) {
	action, found := strings.CutPrefix(topic, TopicPrefixAuthEvents+"/")
	if !found || action == "" || strings.Contains(action, "/") {
		return "", false
	}
	return action, true
}
