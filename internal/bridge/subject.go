package bridge

import "strings"

// ToNATSSubject converts an MQTT topic to NATS subject format.
// MQTT uses / as separator and +/# as wildcards; NATS uses . and */>.
func ToNATSSubject(mqttTopic string) string {
	subject := strings.ReplaceAll(mqttTopic, "+", "*")
	subject = strings.ReplaceAll(subject, "#", ">")
	subject = strings.ReplaceAll(subject, "/", ".")
	return subject
}

// subjectFor maps a received topic to the outgoing subject, applying
// the optional configured prefix.
func subjectFor(prefix, topic string) string {
	subject := ToNATSSubject(topic)
	if prefix == "" {
		return subject
	}
	return prefix + "." + subject
}
