package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kuretru/hass-device-gateway/entity"
	"github.com/kuretru/hass-device-gateway/entity/hass"
	"github.com/kuretru/hass-device-gateway/internal/serializer"
	"github.com/samber/lo"
)

const (
	defaultConfigInterval = 5 * time.Minute
	originName            = "hass-device-gateway"
	statusKey             = "status"
)

var ErrNoComponents = errors.New("publisher: device has no components to announce")

type HomeAssistantMQTTPublisher struct {
	config    *entity.PublisherConfig
	device    serializer.Source
	transport Transport
	topics    serializer.Topics

	cancel context.CancelFunc
	done   chan struct{}
}

func NewHomeAssistantMQTTPublisher(device serializer.Source, transport Transport) *HomeAssistantMQTTPublisher {
	return &HomeAssistantMQTTPublisher{
		device:    device,
		transport: transport,
	}
}

func (publisher *HomeAssistantMQTTPublisher) Run(ctx context.Context, config *entity.PublisherConfig) error {
	if _, ok := publisher.device.UniqueID(); !ok {
		return fmt.Errorf("Publisher.HASS_MQTT: device has no unique id")
	}
	publisher.config = config
	publisher.topics = serializer.Topics{DiscoveryPrefix: config.DiscoveryPrefix}

	// The broker may have lost the retained config while we were away.
	publisher.transport.OnConnected(func() {
		publisher.publishConfigTopic()
	})

	ctx, publisher.cancel = context.WithCancel(ctx)
	publisher.done = make(chan struct{})
	go publisher.runConfigTopic(ctx)

	slog.Info("Publisher.HASS_MQTT: initialized", "discoveryPrefix", config.DiscoveryPrefix)
	return nil
}

func (publisher *HomeAssistantMQTTPublisher) Stop(ctx context.Context) {
	if publisher.cancel != nil {
		publisher.cancel()
		select {
		case <-publisher.done:
		case <-ctx.Done():
		}
	}
	slog.Info("Publisher.HASS_MQTT: stopped")
}

func (publisher *HomeAssistantMQTTPublisher) runConfigTopic(ctx context.Context) {
	defer close(publisher.done)
	publisher.publishConfigTopic()

	interval := publisher.config.Interval
	if interval <= 0 {
		interval = defaultConfigInterval
	}
	configTopicTicker := time.NewTicker(interval)
	defer configTopicTicker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-configTopicTicker.C:
			publisher.publishConfigTopic()
		}
	}
}

func (publisher *HomeAssistantMQTTPublisher) publishConfigTopic() {
	uniqueID, _ := publisher.device.UniqueID()
	topic, err := publisher.topics.DeviceConfigTopic(uniqueID)
	if err != nil {
		slog.Error("Publisher.HASS_MQTT: build config topic failed", "err", err)
		return
	}

	payload, err := buildConfigPayload(publisher.device)
	if err != nil {
		slog.Warn("Publisher.HASS_MQTT: config topic skipped", "err", err)
		return
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Publisher.HASS_MQTT: marshal config payload failed", "err", err)
		return
	}

	if err = publisher.transport.Publish(topic, payloadBytes, true); err != nil {
		slog.Warn("Publisher.HASS_MQTT: publish config topic failed", "topic", topic, "err", err)
		return
	}
	slog.Info("Publisher.HASS_MQTT: published config topic", "topic", topic)
}

func buildConfigPayload(device serializer.Source) (*hass.MQTTDiscoveryMessage, error) {
	components := buildComponents(device)
	if len(components) == 0 {
		return nil, ErrNoComponents
	}

	return &hass.MQTTDiscoveryMessage{
		Device: serializer.DeviceInfo(device),
		Origin: hass.OriginInfo{
			Name:            originName,
			SoftwareVersion: device.SoftwareVersion(),
			SupportUrl:      device.ConfigurationURL(),
		},
		Components: lo.KeyBy(components, func(component hass.Component) string {
			return component.Key
		}),
		Availability: serializer.Availability(device),
		QOS:          0,
	}, nil
}

// buildComponents returns the entities announced for the device. The only one is
// a connectivity sensor that follows the shared availability topic.
func buildComponents(device serializer.Source) []hass.Component {
	result := make([]hass.Component, 0, 1)
	if !device.IsSharedAvailabilityEnabled() {
		return result
	}

	name := strings.TrimSpace(fmt.Sprintf("%v %v", device.Name(), statusKey))
	status := hass.Component{
		Key:            statusKey,
		Platform:       "binary_sensor",
		DeviceClass:    "connectivity",
		EntityCategory: "diagnostic",
		Name:           "Status",
		ObjectID:       serializer.ObjectID(name),
		UniqueID:       serializer.EntityUniqueID(device, statusKey),
		StateTopic:     device.AvailabilityTopic(),
		PayloadOn:      string(entity.AvailabilityOnline),
		PayloadOff:     string(entity.AvailabilityOffline),
	}
	result = append(result, status)
	return result
}
