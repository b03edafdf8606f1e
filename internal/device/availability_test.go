package device

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuretru/hass-device-gateway/internal/serializer"
)

func TestEnableSharedAvailabilityWithoutUniqueID(t *testing.T) {
	d := New()

	assert.ErrorIs(t, d.EnableSharedAvailability(), ErrNoUniqueID)
	assert.False(t, d.IsSharedAvailabilityEnabled())
	assert.Empty(t, d.AvailabilityTopic())
}

func TestEnableSharedAvailabilityIdempotent(t *testing.T) {
	topics := &countingTopics{}
	d := New(WithUniqueID("dev"), WithTopicBuilder(topics))

	require.NoError(t, d.EnableSharedAvailability())
	topic := d.AvailabilityTopic()
	require.NoError(t, d.EnableSharedAvailability())

	assert.True(t, d.IsSharedAvailabilityEnabled())
	assert.Equal(t, topic, d.AvailabilityTopic())
	assert.Equal(t, "hassdev/dev/avty_t", topic)
	assert.Equal(t, 1, topics.calls, "the topic is built once")
}

func TestEnableSharedAvailabilityCustomPrefix(t *testing.T) {
	d := New(WithUniqueID("dev"), WithTopicBuilder(serializer.Topics{DataPrefix: "home/gateway"}))

	require.NoError(t, d.EnableSharedAvailability())
	assert.Equal(t, "home/gateway/dev/avty_t", d.AvailabilityTopic())
}

func TestEnableSharedAvailabilityTopicFailure(t *testing.T) {
	d := New(WithUniqueID("dev"), WithTopicBuilder(failingTopics{}))

	assert.ErrorIs(t, d.EnableSharedAvailability(), ErrAvailabilityTopic)
	assert.False(t, d.IsSharedAvailabilityEnabled())
	assert.Empty(t, d.AvailabilityTopic())
}

func TestEnableLastWill(t *testing.T) {
	transport := &fakeTransport{}
	d := New(WithUniqueID("dev"), WithTransport(transport))
	require.NoError(t, d.EnableSharedAvailability())

	d.EnableLastWill()
	d.EnableLastWill()

	assert.Equal(t, 1, transport.willCalls)
	assert.Equal(t, "hassdev/dev/avty_t", transport.willTopic)
	assert.Equal(t, "offline", transport.willBody)
	assert.True(t, d.IsAvailable(), "last will does not change the availability")
}

func TestEnableLastWillWithoutSharedAvailability(t *testing.T) {
	transport := &fakeTransport{}
	d := New(WithUniqueID("dev"), WithTransport(transport))

	d.EnableLastWill()

	assert.Zero(t, transport.willCalls)
}

func TestSetAvailabilityIndependentOfTransport(t *testing.T) {
	transport := &fakeTransport{}
	d := New(WithUniqueID("dev"), WithTransport(transport))

	d.SetAvailability(false)
	assert.False(t, d.IsAvailable())
	d.SetAvailability(true)
	assert.True(t, d.IsAvailable())

	assert.Empty(t, transport.publishes())
}

func TestSetAvailabilityWithoutTransport(t *testing.T) {
	d := New(WithUniqueID("dev"))
	require.NoError(t, d.EnableSharedAvailability())

	d.SetAvailability(false)
	assert.False(t, d.IsAvailable())
	assert.Equal(t, publishSkippedNoTransport, d.publishAvailability())
}

func TestPublishAvailability(t *testing.T) {
	tests := []struct {
		name      string
		shared    bool
		connected bool
		available bool
		want      publishOutcome
		payload   string
	}{
		{"shared availability disabled", false, true, true, publishSkippedDisabled, ""},
		{"disconnected", true, false, true, publishSkippedDisconnected, ""},
		{"online", true, true, true, publishDone, "online"},
		{"offline", true, true, false, publishDone, "offline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &fakeTransport{}
			d := New(WithUniqueID("dev"), WithTransport(transport))
			if tt.shared {
				require.NoError(t, d.EnableSharedAvailability())
			}
			d.SetAvailability(tt.available)
			transport.connected = tt.connected

			assert.Equal(t, tt.want, d.publishAvailability())

			if tt.payload == "" {
				assert.Empty(t, transport.publishes())
				return
			}
			require.Len(t, transport.publishes(), 1)
			assert.Equal(t, published{topic: "hassdev/dev/avty_t", payload: tt.payload}, transport.publishes()[0])
		})
	}
}

func TestPublishAvailabilityFailureIsAbsorbed(t *testing.T) {
	transport := &fakeTransport{connected: true, publishErr: errors.New("broker gone")}
	d := New(WithUniqueID("dev"), WithTransport(transport))
	require.NoError(t, d.EnableSharedAvailability())

	assert.Equal(t, publishFailed, d.publishAvailability())
	assert.Len(t, transport.publishes(), 1, "failed publishes are not retried")
	assert.True(t, d.IsAvailable())
}

func TestConnectionHookRepublishes(t *testing.T) {
	transport := &fakeTransport{}
	d := New(WithUniqueID("dev"), WithTransport(transport))
	require.NoError(t, d.EnableSharedAvailability())
	d.SetAvailability(false)
	require.Empty(t, transport.publishes())

	transport.connect()
	transport.disconnect()
	transport.connect()

	got := transport.publishes()
	require.Len(t, got, 2)
	for _, p := range got {
		assert.Equal(t, "offline", p.payload)
	}
}

func TestSlowRepublishDoesNotOverwriteNewerState(t *testing.T) {
	transport := newBlockingTransport()
	d := New(WithUniqueID("dev"), WithTransport(transport))
	require.NoError(t, d.EnableSharedAvailability())

	hookDone := make(chan struct{})
	go func() {
		defer close(hookDone)
		transport.connect()
	}()
	<-transport.entered

	setDone := make(chan struct{})
	go func() {
		defer close(setDone)
		d.SetAvailability(false)
	}()
	require.Eventually(t, func() bool { return !d.IsAvailable() }, time.Second, time.Millisecond)

	close(transport.release)
	<-hookDone
	<-setDone

	got := transport.publishes()
	require.Len(t, got, 2)
	assert.Equal(t, "online", got[0].payload)
	assert.Equal(t, "offline", got[1].payload)
	assert.False(t, d.IsAvailable())
}

func TestPublishOutcomeString(t *testing.T) {
	assert.Equal(t, "skipped_disconnected", publishSkippedDisconnected.String())
	assert.Equal(t, "unknown(42)", publishOutcome(42).String())
}
