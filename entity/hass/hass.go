package hass

type MQTTDiscoveryMessage struct {
	Device           DeviceInfo           `json:"device"`
	Origin           OriginInfo           `json:"origin"`
	Components       map[string]Component `json:"components"`
	Availability     []Availability       `json:"availability,omitempty"`
	AvailabilityMode string               `json:"availability_mode,omitempty"`
	QOS              int                  `json:"qos"`
}

type DeviceInfo struct {
	ConfigurationUrl string   `json:"configuration_url,omitempty"`
	Identifiers      []string `json:"identifiers"`
	Name             string   `json:"name,omitempty"`
	Manufacturer     string   `json:"manufacturer,omitempty"`
	Model            string   `json:"model,omitempty"`
	HardwareVersion  string   `json:"hw_version,omitempty"`
	SoftwareVersion  string   `json:"sw_version,omitempty"`
}

type OriginInfo struct {
	Name            string `json:"name"`
	SoftwareVersion string `json:"sw_version,omitempty"`
	SupportUrl      string `json:"support_url,omitempty"`
}

type Availability struct {
	Topic               string `json:"topic"`
	PayloadAvailable    string `json:"payload_available,omitempty"`
	PayloadNotAvailable string `json:"payload_not_available,omitempty"`
}

type Component struct {
	Key            string `json:"-"`
	Platform       string `json:"platform"`
	DeviceClass    string `json:"device_class,omitempty"`
	EntityCategory string `json:"entity_category,omitempty"`
	Name           string `json:"name,omitempty"`
	ObjectID       string `json:"object_id,omitempty"`
	UniqueID       string `json:"unique_id,omitempty"`
	StateTopic     string `json:"state_topic,omitempty"`

	// binary_sensor
	PayloadOn  string `json:"payload_on,omitempty"`
	PayloadOff string `json:"payload_off,omitempty"`
}
