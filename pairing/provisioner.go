package pairing

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"

	"github.com/go-errors/errors"
	"github.com/the-lightning-land/wifid/connection"
	"github.com/the-lightning-land/wifid/network"
)

// Manager is the part of connection.Manager exposed over bluetooth.
type Manager interface {
	Status() connection.Status
	WifiList() ([]network.Network, error)
	Reconnect(c connection.Credentials, save bool) error
}

type WifiScanListItem struct {
	Ssid       string `json:"ssid"`
	Quality    int    `json:"quality"`
	Encryption string `json:"encryption"`
}

// provisioner collects credentials written by a paired client and connects
// with them on the connect signal.
type provisioner struct {
	mtx     sync.Mutex
	manager Manager
	log     Logger
	ssid    string
	psk     string
	apMode  bool
}

func newProvisioner(manager Manager, log Logger) *provisioner {
	return &provisioner{
		manager: manager,
		log:     log,
	}
}

func (p *provisioner) readNetworkAvailabilityStatus() ([]byte, error) {
	p.log.Debugf("Reading network availability...")

	status := p.manager.Status()

	if status.Mode == connection.ModeSTA && status.Connected {
		return []byte{1}, nil
	}

	return []byte{0}, nil
}

func (p *provisioner) readIpAddress() ([]byte, error) {
	p.log.Debugf("Reading ip address...")

	ip := p.manager.Status().IP
	if ip == nil {
		return []byte{}, nil
	}

	return []byte(ip.String()), nil
}

func (p *provisioner) readMode() ([]byte, error) {
	return []byte(p.manager.Status().Mode.String()), nil
}

func (p *provisioner) readWifiScanList() ([]byte, error) {
	p.log.Infof("Reading wifi scan list...")

	networks, err := p.manager.WifiList()
	if err != nil {
		return nil, errors.Errorf("Could not get wifi scan list: %v", err)
	}

	// literal so an empty scan serializes into an empty json array
	list := []*WifiScanListItem{}

	for _, n := range networks {
		list = append(list, &WifiScanListItem{
			Ssid:       n.Ssid,
			Quality:    n.Rssi,
			Encryption: n.Encryption.String(),
		})
	}

	payload, err := json.Marshal(list)
	if err != nil {
		return nil, errors.Errorf("Could not serialize wifi scan list: %v", err)
	}

	return payload, nil
}

func (p *provisioner) readWifiSsidString() ([]byte, error) {
	return []byte(p.manager.Status().Ssid), nil
}

func (p *provisioner) writeWifiSsidString(value []byte) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.ssid = string(value)

	p.log.Infof("Writing wifi ssid to %v", p.ssid)

	return nil
}

func (p *provisioner) writeWifiPskString(value []byte) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.psk = string(value)

	p.log.Infof("Writing wifi psk to %v", strings.Repeat("*", len(p.psk)))

	return nil
}

func (p *provisioner) writeApMode(value []byte) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.apMode = bytes.Equal(value, []byte{1})

	p.log.Infof("Writing access point mode to %v", p.apMode)

	return nil
}

// writeWifiConnectSignal connects with the written credentials and saves
// them when value is 1. Other values are ignored.
func (p *provisioner) writeWifiConnectSignal(value []byte) error {
	if !bytes.Equal(value, []byte{1}) {
		p.log.Debugf("Ignoring connect signal %v", value)
		return nil
	}

	p.mtx.Lock()
	credentials := connection.Credentials{
		Ssid:   p.ssid,
		Pass:   p.psk,
		ApMode: p.apMode,
	}
	p.mtx.Unlock()

	p.log.Infof("Connecting to %v (ap %v)", credentials.Ssid, credentials.ApMode)

	err := p.manager.Reconnect(credentials, true)
	if err != nil {
		return errors.Errorf("Could not connect to wifi: %v", err)
	}

	return nil
}
