// Package device models the single device that the gateway announces to
// Home Assistant: its identity, its descriptive metadata and its
// online/offline availability mirrored onto MQTT.
package device

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/kuretru/hass-device-gateway/internal/serializer"
)

var (
	ErrUniqueIDAlreadySet = errors.New("device: unique id already set")
	ErrEmptyUniqueID      = errors.New("device: unique id is empty")
	ErrNoUniqueID         = errors.New("device: unique id is not set")
	ErrAvailabilityTopic  = errors.New("device: cannot build availability topic")
)

// Transport is the messaging channel the device mirrors its availability onto.
type Transport interface {
	IsConnected() bool
	Publish(topic string, payload []byte, retained bool) error
	// SetLastWill registers a message the broker publishes when the connection drops uncleanly.
	SetLastWill(topic string, payload []byte)
	// OnConnected registers fn to run every time a connection is established.
	OnConnected(fn func())
}

// TopicBuilder derives per-device topics.
type TopicBuilder interface {
	DataTopic(uniqueID, kind string) (string, error)
}

// Device is safe for concurrent use: the transport hook runs on the
// connection goroutine while the owner toggles availability.
type Device struct {
	mu sync.RWMutex
	// publishMu orders availability publications so the last one on the wire
	// carries the latest state. Never taken while holding mu.
	publishMu sync.Mutex

	id       identity
	metadata metadata

	available          bool
	sharedAvailability bool
	availabilityTopic  string
	lastWill           bool
	extendedUniqueIDs  bool

	transport Transport
	topics    TopicBuilder
	logger    *slog.Logger
}

type options struct {
	uniqueID      string
	uniqueIDBytes []byte
	transport     Transport
	topics        TopicBuilder
	logger        *slog.Logger
}

type Option func(*options)

// WithUniqueID uses id as the device identity as is. It takes precedence over WithUniqueIDBytes.
func WithUniqueID(id string) Option {
	return func(o *options) {
		o.uniqueID = id
	}
}

// WithUniqueIDBytes derives the identity from b, see Device.SetUniqueID.
func WithUniqueIDBytes(b []byte) Option {
	return func(o *options) {
		o.uniqueIDBytes = b
	}
}

// WithTransport attaches the device to t and republishes the availability on every connect.
func WithTransport(t Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

func WithTopicBuilder(tb TopicBuilder) Option {
	return func(o *options) {
		o.topics = tb
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New returns a device that is available until told otherwise.
// Without an identity none of the availability features work.
func New(opts ...Option) *Device {
	o := options{
		topics: serializer.Topics{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	d := &Device{
		available: true,
		transport: o.transport,
		topics:    o.topics,
		logger:    o.logger,
	}
	if o.uniqueID != "" {
		d.id = identity{value: o.uniqueID, set: true}
		if o.uniqueIDBytes != nil {
			d.logger.Warn("Device: unique id given as string and bytes, bytes ignored", "uniqueID", o.uniqueID)
		}
	} else if o.uniqueIDBytes != nil {
		if err := d.SetUniqueID(o.uniqueIDBytes); err != nil {
			d.logger.Warn("Device: set unique id from bytes failed", "err", err)
		}
	}
	if d.transport != nil {
		d.transport.OnConnected(d.PublishAvailability)
	}
	return d
}

// EnableExtendedUniqueIDs makes every entity of the device prefix its unique id with the device's id.
func (d *Device) EnableExtendedUniqueIDs() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.extendedUniqueIDs = true
}

func (d *Device) IsExtendedUniqueIDsEnabled() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.extendedUniqueIDs
}
