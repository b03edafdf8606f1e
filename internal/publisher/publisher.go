package publisher

import (
	"context"
	"fmt"

	"github.com/kuretru/hass-device-gateway/entity"
	"github.com/kuretru/hass-device-gateway/internal/serializer"
)

var (
	publishers []DevicePublisher
)

// Transport is the part of the MQTT client the publishers need.
type Transport interface {
	Publish(topic string, payload []byte, retained bool) error
	OnConnected(fn func())
}

type DevicePublisher interface {
	Run(ctx context.Context, config *entity.PublisherConfig) error
	Stop(ctx context.Context)
}

func Init(ctx context.Context, configs []*entity.PublisherConfig, device serializer.Source, transport Transport) error {
	if len(configs) == 0 {
		return fmt.Errorf("publisher config is empty")
	}

	publishers = make([]DevicePublisher, 0, len(configs))
	for _, config := range configs {
		var publisher DevicePublisher
		switch config.Type {
		case "hass_mqtt":
			publisher = NewHomeAssistantMQTTPublisher(device, transport)
		default:
			return fmt.Errorf("unknown publisher type %v", config.Type)
		}

		if err := publisher.Run(ctx, config); err != nil {
			return fmt.Errorf("publisher: run %v publisher failed, %w", config.Type, err)
		}
		publishers = append(publishers, publisher)
	}
	return nil
}

func Stop(ctx context.Context) {
	for _, publisher := range publishers {
		publisher.Stop(ctx)
	}
	publishers = nil
}
