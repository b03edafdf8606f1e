package serializer

import (
	"errors"
	"fmt"
	"strings"
)

const (
	DefaultDiscoveryPrefix = "homeassistant"
	DefaultDataPrefix      = "hassdev"

	// AvailabilityTopicKind is the last segment of a device's shared availability topic.
	AvailabilityTopicKind = "avty_t"
)

var ErrEmptyTopicPart = errors.New("serializer: empty topic part")

var topicSanitizer = strings.NewReplacer(
	"/", "_",
	"+", "_",
	"#", "_",
	" ", "_",
)

// Topics builds the MQTT topics used by the gateway. The zero value uses the default prefixes.
type Topics struct {
	DiscoveryPrefix string
	DataPrefix      string
}

// DataTopic returns "<data prefix>/<unique id>/<kind>". The same inputs always yield the same topic.
func (t Topics) DataTopic(uniqueID, kind string) (string, error) {
	if uniqueID == "" || kind == "" {
		return "", fmt.Errorf("%w: unique id %q, kind %q", ErrEmptyTopicPart, uniqueID, kind)
	}
	return fmt.Sprintf("%v/%v/%v", t.dataPrefix(), topicSanitizer.Replace(uniqueID), kind), nil
}

// DeviceConfigTopic returns the topic Home Assistant reads device discovery payloads from.
func (t Topics) DeviceConfigTopic(uniqueID string) (string, error) {
	if uniqueID == "" {
		return "", fmt.Errorf("%w: unique id", ErrEmptyTopicPart)
	}
	return fmt.Sprintf("%v/device/%v/config", t.discoveryPrefix(), topicSanitizer.Replace(uniqueID)), nil
}

func (t Topics) dataPrefix() string {
	if t.DataPrefix == "" {
		return DefaultDataPrefix
	}
	return strings.TrimSuffix(t.DataPrefix, "/")
}

func (t Topics) discoveryPrefix() string {
	if t.DiscoveryPrefix == "" {
		return DefaultDiscoveryPrefix
	}
	return strings.TrimSuffix(t.DiscoveryPrefix, "/")
}
