package network

import (
	"net"
	"sync"
	"time"

	"github.com/go-errors/errors"
	"github.com/the-lightning-land/wifid/network/wpa"
)

// check WpaDriver compliance to its interface during compile time
var _ Driver = (*WpaDriver)(nil)

const (
	DefaultScanTimeout = 10 * time.Second
	DefaultApFrequency = 2412
)

type Config struct {
	Interface   string
	Logger      Logger
	ScanTimeout time.Duration
	// ApFrequency is the channel frequency in MHz used for the soft-AP.
	ApFrequency uint32
}

// WpaDriver drives a wireless interface through wpa_supplicant. Static
// addressing and the hostname are applied to the host directly.
type WpaDriver struct {
	sync.Mutex
	log         Logger
	wpa         *wpa.Wpa
	ifname      string
	iface       *wpa.Interface
	apNet       *wpa.Network
	scanTimeout time.Duration
	apFrequency uint32
	run         commandRunner
}

func NewWpaDriver(config *Config) *WpaDriver {
	driver := &WpaDriver{
		ifname:      config.Interface,
		wpa:         wpa.New(),
		scanTimeout: config.ScanTimeout,
		apFrequency: config.ApFrequency,
		run:         runCommand,
	}

	if config.Logger != nil {
		driver.log = config.Logger
	} else {
		driver.log = noopLogger{}
	}

	if driver.scanTimeout <= 0 {
		driver.scanTimeout = DefaultScanTimeout
	}

	if driver.apFrequency == 0 {
		driver.apFrequency = DefaultApFrequency
	}

	return driver
}

func (d *WpaDriver) Start() error {
	err := d.wpa.Start()
	if err != nil {
		return errors.Errorf("could not start wpa: %v", err)
	}

	iface, err := d.wpa.GetInterface(d.ifname)
	if err != nil {
		_ = d.Stop()
		return errors.Errorf("could not find interface %v: %v", d.ifname, err)
	}

	d.iface = iface

	d.log.Infof("Using wpa_supplicant interface %v for %v", iface, d.ifname)

	return nil
}

func (d *WpaDriver) Stop() error {
	err := d.wpa.Stop()
	if err != nil {
		return errors.Errorf("could not stop wpa: %v", err)
	}

	return nil
}

func (d *WpaDriver) ScanNetworks() ([]Network, error) {
	d.Lock()
	defer d.Unlock()

	doneClient, err := d.iface.ScanDone()
	if err != nil {
		return nil, errors.Errorf("unable to listen to scan completion: %v", err)
	}
	defer doneClient.Cancel()

	err = d.iface.Scan()
	if err != nil {
		return nil, errors.Errorf("unable to scan: %v", err)
	}

	select {
	case success := <-doneClient.ScanDone:
		if !success {
			d.log.Warnf("Scan on %v did not complete successfully, using cached results", d.ifname)
		}
	case <-time.After(d.scanTimeout):
		d.log.Warnf("Scan on %v timed out after %v, using cached results", d.ifname, d.scanTimeout)
	}

	bsss, err := d.iface.BSSs()
	if err != nil {
		return nil, errors.Errorf("unable to get BSSs: %v", err)
	}

	networks := make([]Network, 0, len(bsss))

	for _, bss := range bsss {
		b, err := bss.GetAll()
		if err != nil {
			d.log.Debugf("Skipping BSS %v: %v", bss, err)
			continue
		}

		networks = append(networks, Network{
			Ssid:       b.Ssid,
			Encryption: encryptionOf(b),
			Rssi:       b.Signal,
		})
	}

	return networks, nil
}

func (d *WpaDriver) Status() (Status, error) {
	d.Lock()
	defer d.Unlock()

	state, err := d.iface.State()
	if err != nil {
		return StatusNoShield, err
	}

	return statusFromState(state), nil
}

func (d *WpaDriver) Join(ssid string, pass string) error {
	d.Lock()
	defer d.Unlock()

	d.log.Infof("Joining %v on %v", ssid, d.ifname)

	err := d.iface.RemoveAllNetworks()
	if err != nil {
		return errors.Errorf("could not clear networks: %v", err)
	}

	d.apNet = nil

	n, err := d.iface.AddNetwork(ssid, pass)
	if err != nil {
		return errors.Errorf("could not add network %v: %v", ssid, err)
	}

	err = d.iface.SelectNetwork(n)
	if err != nil {
		return errors.Errorf("could not select network %v: %v", ssid, err)
	}

	return nil
}

func (d *WpaDriver) StartSoftAP(ssid string, pass string) (bool, error) {
	d.Lock()
	defer d.Unlock()

	d.log.Infof("Starting access point %v on %v", ssid, d.ifname)

	err := d.iface.RemoveAllNetworks()
	if err != nil {
		return false, errors.Errorf("could not clear networks: %v", err)
	}

	n, err := d.iface.AddAccessPoint(ssid, pass, d.apFrequency)
	if err != nil {
		return false, errors.Errorf("could not add access point %v: %v", ssid, err)
	}

	err = d.iface.SelectNetwork(n)
	if err != nil {
		return false, errors.Errorf("could not select access point %v: %v", ssid, err)
	}

	d.apNet = n

	return true, nil
}

func (d *WpaDriver) StopSoftAP() (bool, error) {
	d.Lock()
	defer d.Unlock()

	d.log.Infof("Stopping access point on %v", d.ifname)

	err := d.iface.Disconnect()
	if err != nil {
		return false, err
	}

	err = d.iface.RemoveAllNetworks()
	if err != nil {
		return false, err
	}

	d.apNet = nil

	return true, nil
}

func (d *WpaDriver) StopStation() (bool, error) {
	d.Lock()
	defer d.Unlock()

	d.log.Infof("Disconnecting station on %v", d.ifname)

	err := d.iface.Disconnect()
	if err != nil {
		return false, err
	}

	return true, nil
}

func (d *WpaDriver) IsConnected() bool {
	status, err := d.Status()
	if err != nil {
		d.log.Debugf("Could not get status: %v", err)
		return false
	}

	return status == StatusConnected
}

func (d *WpaDriver) ConfigStation(ip net.IP, gateway net.IP, subnet net.IP) (bool, error) {
	return d.configure(ip, gateway, subnet)
}

func (d *WpaDriver) ConfigSoftAP(ip net.IP, gateway net.IP, subnet net.IP) (bool, error) {
	return d.configure(ip, gateway, subnet)
}

func (d *WpaDriver) configure(ip net.IP, gateway net.IP, subnet net.IP) (bool, error) {
	d.Lock()
	defer d.Unlock()

	err := configureAddress(d.run, d.ifname, ip, gateway, subnet)
	if err != nil {
		return false, err
	}

	return true, nil
}

func (d *WpaDriver) SetHostname(name string) error {
	return setHostname(name)
}

func (d *WpaDriver) LocalIP() net.IP {
	return interfaceIP(d.ifname)
}

func (d *WpaDriver) SoftAPIP() net.IP {
	return interfaceIP(d.ifname)
}

func (d *WpaDriver) Ssid() string {
	d.Lock()
	defer d.Unlock()

	bss, err := d.iface.CurrentBSS()
	if err != nil || bss == nil {
		return ""
	}

	b, err := bss.GetAll()
	if err != nil {
		return ""
	}

	return b.Ssid
}

func (d *WpaDriver) SoftAPSsid() string {
	d.Lock()
	defer d.Unlock()

	if d.apNet == nil {
		return ""
	}

	ssid, err := d.apNet.Ssid()
	if err != nil {
		d.log.Debugf("Could not read access point ssid: %v", err)
		return ""
	}

	return ssid
}

// statusFromState maps a wpa_supplicant interface state to a link status.
func statusFromState(state string) Status {
	switch state {
	case wpa.StateCompleted:
		return StatusConnected
	case wpa.StateDisconnected, wpa.StateInactive:
		return StatusDisconnected
	case wpa.StateScanning, wpa.StateAuthenticating, wpa.StateAssociating,
		wpa.StateAssociated, wpa.StateFourWayHandshake, wpa.StateGroupHandshake:
		return StatusAssociating
	case wpa.StateInterfaceDisabled:
		return StatusNoShield
	default:
		return StatusConnectionLost
	}
}

func encryptionOf(b *wpa.Bss) Encryption {
	rsnPsk := hasPsk(b.RsnKeyMgmt)
	wpaPsk := hasPsk(b.WpaKeyMgmt)

	switch {
	case rsnPsk && wpaPsk:
		return EncryptionWpaWpa2Psk
	case rsnPsk:
		return EncryptionWpa2Psk
	case wpaPsk:
		return EncryptionWpaPsk
	case len(b.RsnKeyMgmt) > 0:
		return EncryptionWpa2Enterprise
	case b.Privacy:
		return EncryptionWep
	default:
		return EncryptionOpen
	}
}

func hasPsk(suites []string) bool {
	for _, suite := range suites {
		if suite == "wpa-psk" || suite == "wpa-psk-sha256" || suite == "sae" {
			return true
		}
	}

	return false
}
