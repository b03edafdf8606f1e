package serializer

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/kuretru/hass-device-gateway/entity"
	"github.com/kuretru/hass-device-gateway/entity/hass"
)

// Source is the read-only view of a device that discovery payloads are built from.
type Source interface {
	UniqueID() (string, bool)
	Name() string
	Manufacturer() string
	Model() string
	SoftwareVersion() string
	HardwareVersion() string
	ConfigurationURL() string
	IsSharedAvailabilityEnabled() bool
	IsExtendedUniqueIDsEnabled() bool
	AvailabilityTopic() string
}

// DeviceInfo serializes the device block shared by every entity of the device.
func DeviceInfo(source Source) hass.DeviceInfo {
	info := hass.DeviceInfo{
		ConfigurationUrl: source.ConfigurationURL(),
		Name:             source.Name(),
		Manufacturer:     source.Manufacturer(),
		Model:            source.Model(),
		HardwareVersion:  source.HardwareVersion(),
		SoftwareVersion:  source.SoftwareVersion(),
	}
	if uniqueID, ok := source.UniqueID(); ok {
		info.Identifiers = []string{uniqueID}
	}
	return info
}

// EntityUniqueID returns the unique id of an entity owned by source.
// With extended unique ids enabled the device id is used as a prefix.
func EntityUniqueID(source Source, objectID string) string {
	uniqueID, ok := source.UniqueID()
	if !ok || !source.IsExtendedUniqueIDsEnabled() {
		return objectID
	}
	return fmt.Sprintf("%v_%v", uniqueID, objectID)
}

// ObjectID converts a human readable name into an entity object id.
func ObjectID(name string) string {
	return strings.ReplaceAll(slug.Make(name), "-", "_")
}

// Availability returns the availability block for entities of source, or nil
// when the shared availability is disabled.
func Availability(source Source) []hass.Availability {
	if !source.IsSharedAvailabilityEnabled() {
		return nil
	}
	return []hass.Availability{{
		Topic:               source.AvailabilityTopic(),
		PayloadAvailable:    string(entity.AvailabilityOnline),
		PayloadNotAvailable: string(entity.AvailabilityOffline),
	}}
}
