package mqtt

import (
	"fmt"
	"strings"
)

// Structured form of a telemetry topic under the configured root.
//
// Sensor data arrives on {root}/{gatewayID}/data/{sensorUID}; anything else
// under the root (gateway status and similar) is treated as a metric topic
// whose trailing path is kept whole.
type ParsedTopic struct {
	Root      string
	GatewayID string
	SensorUID string
	Metric    string
	IsSensor  bool
}

// ParseTopic splits a topic and validates it against the expected root.
// A wrong root or too few segments is a malformed topic; the caller drops and
// counts it.
func ParseTopic(root, topic string) (ParsedTopic, error) {
	parts := strings.Split(topic, "/")
	if len(parts) < 2 {
		return ParsedTopic{}, fmt.Errorf("parse topic %q: need at least root and device segments", topic)
	}
	if parts[0] != root {
		return ParsedTopic{}, fmt.Errorf("parse topic %q: unexpected root %q", topic, parts[0])
	}

	parsed := ParsedTopic{Root: parts[0], GatewayID: parts[1]}

	if len(parts) == 4 && parts[2] == "data" {
		if parts[3] == "" {
			return ParsedTopic{}, fmt.Errorf("parse topic %q: empty sensor uid", topic)
		}
		parsed.SensorUID = parts[3]
		parsed.IsSensor = true
		return parsed, nil
	}

	parsed.Metric = strings.Join(parts[2:], "/")
	return parsed, nil
}
