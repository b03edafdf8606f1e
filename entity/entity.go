package entity

import "time"

type MQTTConfig struct {
	URL            string        `yaml:"url" env:"URL"`
	Keepalive      uint16        `yaml:"keepalive" env:"KEEPALIVE"`
	ClientID       string        `yaml:"client_id" env:"CLIENT_ID"`
	Username       string        `yaml:"username" env:"USERNAME"`
	Password       string        `yaml:"password" env:"PASSWORD"`
	WillRetain     bool          `yaml:"will_retain" env:"WILL_RETAIN"`
	PublishTimeout time.Duration `yaml:"publish_timeout" env:"PUBLISH_TIMEOUT"`
}

// DeviceConfig describes the device announced to Home Assistant.
// Exactly one identity source is used, in order: UniqueID, MACAddress, Interface.
type DeviceConfig struct {
	UniqueID   string `yaml:"unique_id" env:"UNIQUE_ID"`
	MACAddress string `yaml:"mac_address" env:"MAC_ADDRESS"`
	Interface  string `yaml:"interface" env:"INTERFACE"`

	Name             string `yaml:"name" env:"NAME"`
	Manufacturer     string `yaml:"manufacturer" env:"MANUFACTURER"`
	Model            string `yaml:"model" env:"MODEL"`
	SoftwareVersion  string `yaml:"sw_version" env:"SW_VERSION"`
	HardwareVersion  string `yaml:"hw_version" env:"HW_VERSION"`
	ConfigurationURL string `yaml:"configuration_url" env:"CONFIGURATION_URL"`

	DataPrefix         string `yaml:"data_prefix" env:"DATA_PREFIX"`
	SharedAvailability bool   `yaml:"shared_availability" env:"SHARED_AVAILABILITY"`
	LastWill           bool   `yaml:"last_will" env:"LAST_WILL"`
	ExtendedUniqueIDs  bool   `yaml:"extended_unique_ids" env:"EXTENDED_UNIQUE_IDS"`
}

type PublisherConfig struct {
	Type            string        `yaml:"type"`
	DiscoveryPrefix string        `yaml:"discovery_prefix"`
	Interval        time.Duration `yaml:"interval"`
}

type Config struct {
	LogLevel   string             `yaml:"log_level"`
	MQTT       MQTTConfig         `yaml:"mqtt"`
	Device     DeviceConfig       `yaml:"device"`
	Publishers []*PublisherConfig `yaml:"publishers"`
}

type Availability string

var (
	AvailabilityOnline  Availability = "online"
	AvailabilityOffline Availability = "offline"
)
