package main

import (
	"errors"
	"fmt"
	"net"

	"github.com/kuretru/hass-device-gateway/entity"
	"github.com/kuretru/hass-device-gateway/internal/device"
)

var errNoIdentity = errors.New("device identity not configured, set unique_id, mac_address or interface")

// deviceIdentity picks the identity source from config. MAC addresses, given
// directly or read from a network interface, become lowercase hex ids.
func deviceIdentity(config *entity.DeviceConfig) (device.Option, error) {
	switch {
	case config.UniqueID != "":
		return device.WithUniqueID(config.UniqueID), nil
	case config.MACAddress != "":
		mac, err := net.ParseMAC(config.MACAddress)
		if err != nil {
			return nil, fmt.Errorf("parse mac address %v failed, %w", config.MACAddress, err)
		}
		return device.WithUniqueIDBytes(mac), nil
	case config.Interface != "":
		iface, err := net.InterfaceByName(config.Interface)
		if err != nil {
			return nil, fmt.Errorf("lookup interface %v failed, %w", config.Interface, err)
		}
		if len(iface.HardwareAddr) == 0 {
			return nil, fmt.Errorf("interface %v has no hardware address", config.Interface)
		}
		return device.WithUniqueIDBytes(iface.HardwareAddr), nil
	default:
		return nil, errNoIdentity
	}
}
