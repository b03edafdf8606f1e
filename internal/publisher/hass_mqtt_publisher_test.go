package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuretru/hass-device-gateway/entity"
	"github.com/kuretru/hass-device-gateway/entity/hass"
	"github.com/kuretru/hass-device-gateway/internal/device"
)

type message struct {
	topic    string
	payload  []byte
	retained bool
}

type recordingTransport struct {
	mu       sync.Mutex
	err      error
	messages []message
	hooks    []func()
}

func (r *recordingTransport) Publish(topic string, payload []byte, retained bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message{topic: topic, payload: payload, retained: retained})
	return r.err
}

func (r *recordingTransport) OnConnected(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, fn)
}

func (r *recordingTransport) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func (r *recordingTransport) last() message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.messages[len(r.messages)-1]
}

func newTestDevice(t *testing.T) *device.Device {
	t.Helper()
	dev := device.New(device.WithUniqueIDBytes([]byte{0xAB, 0x12}))
	dev.SetName("Rack PDU")
	dev.SetManufacturer("Yespeed")
	dev.SetModel("YS-NT6835")
	dev.SetSoftwareVersion("1.0.0")
	require.NoError(t, dev.EnableSharedAvailability())
	return dev
}

func TestBuildConfigPayload(t *testing.T) {
	dev := newTestDevice(t)
	dev.EnableExtendedUniqueIDs()

	payload, err := buildConfigPayload(dev)
	require.NoError(t, err)

	assert.Equal(t, []string{"ab12"}, payload.Device.Identifiers)
	assert.Equal(t, "Rack PDU", payload.Device.Name)
	assert.Equal(t, originName, payload.Origin.Name)
	assert.Equal(t, []hass.Availability{{
		Topic:               "hassdev/ab12/avty_t",
		PayloadAvailable:    "online",
		PayloadNotAvailable: "offline",
	}}, payload.Availability)

	require.Contains(t, payload.Components, statusKey)
	status := payload.Components[statusKey]
	assert.Equal(t, "binary_sensor", status.Platform)
	assert.Equal(t, "connectivity", status.DeviceClass)
	assert.Equal(t, "ab12_status", status.UniqueID)
	assert.Equal(t, "rack_pdu_status", status.ObjectID)
	assert.Equal(t, "hassdev/ab12/avty_t", status.StateTopic)
}

func TestBuildConfigPayloadWithoutSharedAvailability(t *testing.T) {
	dev := device.New(device.WithUniqueID("ab12"))

	_, err := buildConfigPayload(dev)
	assert.ErrorIs(t, err, ErrNoComponents)
}

func TestPublishConfigTopic(t *testing.T) {
	transport := &recordingTransport{}
	publisher := NewHomeAssistantMQTTPublisher(newTestDevice(t), transport)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, publisher.Run(ctx, &entity.PublisherConfig{Type: "hass_mqtt", Interval: time.Hour}))
	defer publisher.Stop(context.Background())

	assert.Eventually(t, func() bool { return transport.count() == 1 }, time.Second, 10*time.Millisecond)

	msg := transport.last()
	assert.Equal(t, "homeassistant/device/ab12/config", msg.topic)
	assert.True(t, msg.retained)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &decoded))
	assert.Contains(t, decoded, "components")
	assert.Contains(t, decoded, "availability")
}

func TestPublishConfigTopicOnReconnect(t *testing.T) {
	transport := &recordingTransport{}
	publisher := NewHomeAssistantMQTTPublisher(newTestDevice(t), transport)

	require.NoError(t, publisher.Run(context.Background(), &entity.PublisherConfig{Type: "hass_mqtt", Interval: time.Hour}))
	defer publisher.Stop(context.Background())
	assert.Eventually(t, func() bool { return transport.count() == 1 }, time.Second, 10*time.Millisecond)

	require.Len(t, transport.hooks, 1)
	transport.hooks[0]()

	assert.Equal(t, 2, transport.count())
}

func TestPublishConfigTopicFailureIsLogged(t *testing.T) {
	transport := &recordingTransport{err: errors.New("not connected")}
	publisher := NewHomeAssistantMQTTPublisher(newTestDevice(t), transport)
	publisher.config = &entity.PublisherConfig{}

	publisher.publishConfigTopic()

	assert.Equal(t, 1, transport.count())
}

func TestRunWithoutUniqueID(t *testing.T) {
	publisher := NewHomeAssistantMQTTPublisher(device.New(), &recordingTransport{})

	assert.Error(t, publisher.Run(context.Background(), &entity.PublisherConfig{Type: "hass_mqtt"}))
}

func TestInit(t *testing.T) {
	transport := &recordingTransport{}
	dev := newTestDevice(t)

	assert.Error(t, Init(context.Background(), nil, dev, transport))
	assert.Error(t, Init(context.Background(), []*entity.PublisherConfig{{Type: "influxdb"}}, dev, transport))

	require.NoError(t, Init(context.Background(), []*entity.PublisherConfig{{Type: "hass_mqtt", Interval: time.Hour}}, dev, transport))
	assert.Len(t, publishers, 1)

	Stop(context.Background())
	assert.Empty(t, publishers)
}
