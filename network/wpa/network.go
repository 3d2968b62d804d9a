package wpa

import (
	"github.com/go-errors/errors"
	"github.com/godbus/dbus/v5"
)

type Network struct {
	wpa *Wpa
	obj dbus.BusObject
}

func (n *Network) String() string {
	return string(n.obj.Path())
}

// Ssid reads the ssid back from the network block. wpa_supplicant returns
// string parameters quoted.
func (n *Network) Ssid() (string, error) {
	v, err := n.obj.GetProperty(networkIface + ".Properties")
	if err != nil {
		return "", errors.Errorf("could not get network properties: %v", err)
	}

	props, ok := v.Value().(map[string]dbus.Variant)
	if !ok {
		return "", errors.Errorf("could not convert network properties: %v", v)
	}

	ssid, ok := props["ssid"].Value().(string)
	if !ok {
		return "", errors.Errorf("network has no ssid")
	}

	if len(ssid) >= 2 && ssid[0] == '"' && ssid[len(ssid)-1] == '"' {
		ssid = ssid[1 : len(ssid)-1]
	}

	return ssid, nil
}
