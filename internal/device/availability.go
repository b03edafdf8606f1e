package device

import (
	"fmt"

	"github.com/kuretru/hass-device-gateway/entity"
	"github.com/kuretru/hass-device-gateway/internal/serializer"
	"github.com/samber/lo"
)

type publishOutcome int

const (
	publishDone publishOutcome = iota
	publishSkippedDisabled
	publishSkippedNoTransport
	publishSkippedDisconnected
	publishFailed
)

func (o publishOutcome) String() string {
	switch o {
	case publishDone:
		return "done"
	case publishSkippedDisabled:
		return "skipped_disabled"
	case publishSkippedNoTransport:
		return "skipped_no_transport"
	case publishSkippedDisconnected:
		return "skipped_disconnected"
	case publishFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(o))
	}
}

// EnableSharedAvailability creates the availability topic shared by all entities of the device.
// Calling it again once enabled is a no-op.
func (d *Device) EnableSharedAvailability() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.sharedAvailability {
		return nil
	}
	if !d.id.set {
		return ErrNoUniqueID
	}
	topic, err := d.topics.DataTopic(d.id.value, serializer.AvailabilityTopicKind)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAvailabilityTopic, err)
	}
	if topic == "" {
		return ErrAvailabilityTopic
	}

	d.availabilityTopic = topic
	d.sharedAvailability = true
	return nil
}

// EnableLastWill asks the broker to publish "offline" on the availability topic
// when the connection drops uncleanly. The shared availability must be enabled first.
func (d *Device) EnableLastWill() {
	d.mu.Lock()
	if !d.sharedAvailability {
		d.mu.Unlock()
		d.logger.Warn("Device: last will requires shared availability, ignored")
		return
	}
	if d.transport == nil {
		d.mu.Unlock()
		d.logger.Warn("Device: last will requires a transport, ignored")
		return
	}
	if d.lastWill {
		d.mu.Unlock()
		return
	}
	d.lastWill = true
	topic := d.availabilityTopic
	d.mu.Unlock()

	d.transport.SetLastWill(topic, []byte(entity.AvailabilityOffline))
}

// SetAvailability records the state and then publishes it. The state is kept
// even when the publication is skipped.
func (d *Device) SetAvailability(online bool) {
	d.mu.Lock()
	d.available = online
	d.mu.Unlock()

	d.PublishAvailability()
}

// PublishAvailability publishes the current state on the availability topic.
// Nothing happens when the shared availability is disabled or the transport is disconnected.
// Concurrent calls are serialized, so a slow publication never overwrites a newer state.
func (d *Device) PublishAvailability() {
	outcome := d.publishAvailability()
	d.logger.Debug("Device: publish availability", "outcome", outcome)
}

func (d *Device) publishAvailability() publishOutcome {
	d.publishMu.Lock()
	defer d.publishMu.Unlock()

	d.mu.RLock()
	enabled, topic, available := d.sharedAvailability, d.availabilityTopic, d.available
	d.mu.RUnlock()

	switch {
	case !enabled:
		return publishSkippedDisabled
	case d.transport == nil:
		return publishSkippedNoTransport
	case !d.transport.IsConnected():
		return publishSkippedDisconnected
	}

	payload := lo.Ternary(available, entity.AvailabilityOnline, entity.AvailabilityOffline)
	if err := d.transport.Publish(topic, []byte(payload), false); err != nil {
		d.logger.Debug("Device: publish availability failed", "topic", topic, "err", err)
		return publishFailed
	}
	return publishDone
}

func (d *Device) IsAvailable() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.available
}

func (d *Device) IsSharedAvailabilityEnabled() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sharedAvailability
}

// AvailabilityTopic is empty until the shared availability is enabled.
func (d *Device) AvailabilityTopic() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.availabilityTopic
}
