package device

type metadata struct {
	name             string
	manufacturer     string
	model            string
	softwareVersion  string
	hardwareVersion  string
	configurationURL string
}

func (d *Device) SetName(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metadata.name = name
}

func (d *Device) SetManufacturer(manufacturer string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metadata.manufacturer = manufacturer
}

func (d *Device) SetModel(model string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metadata.model = model
}

func (d *Device) SetSoftwareVersion(version string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metadata.softwareVersion = version
}

func (d *Device) SetHardwareVersion(version string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metadata.hardwareVersion = version
}

// SetConfigurationURL sets the link Home Assistant shows to open the device's own UI.
func (d *Device) SetConfigurationURL(url string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metadata.configurationURL = url
}

func (d *Device) Name() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.metadata.name
}

func (d *Device) Manufacturer() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.metadata.manufacturer
}

func (d *Device) Model() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.metadata.model
}

func (d *Device) SoftwareVersion() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.metadata.softwareVersion
}

func (d *Device) HardwareVersion() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.metadata.hardwareVersion
}

func (d *Device) ConfigurationURL() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.metadata.configurationURL
}
