package connection

import (
	"net"
	"sync"
	"time"

	"github.com/go-errors/errors"
	"github.com/juju/clock"
	"github.com/the-lightning-land/wifid/network"
)

const (
	DefaultConnectTimeout     = 10 * time.Second
	DefaultConnectInterval    = 500 * time.Millisecond
	DefaultDisconnectTimeout  = 3 * time.Second
	DefaultDisconnectInterval = 100 * time.Millisecond
	DefaultStatusInterval     = 1 * time.Second
)

// Settings keeps the last used credentials. SaveInformation persists them,
// SetInformation only updates the in-memory copy.
type Settings interface {
	Information() Credentials
	SaveInformation(c Credentials) error
	SetInformation(c Credentials)
}

type Config struct {
	Driver   network.Driver
	Settings Settings
	// Defaults are used by Begin and ReconnectDefault.
	Defaults Credentials
	// Hostname is applied by Begin when not empty.
	Hostname string

	ConnectTimeout     time.Duration
	ConnectInterval    time.Duration
	DisconnectTimeout  time.Duration
	DisconnectInterval time.Duration
	StatusInterval     time.Duration

	// StatusCache is shared with other managers of the same radio. A
	// private cache is created when nil.
	StatusCache *StatusCache
	Clock       clock.Clock
	Logger      Logger
}

// Status is a snapshot of the connection for reporting.
type Status struct {
	Mode      Mode
	Ssid      string
	IP        net.IP
	Connected bool
}

// Manager owns the connection lifecycle of one wireless interface.
type Manager struct {
	// ops serializes connect and disconnect sequences
	ops sync.Mutex

	mtx       sync.RWMutex
	mode      Mode
	configAP  NetworkConfig
	configSTA NetworkConfig
	hostname  string

	driver          network.Driver
	settings        Settings
	defaults        Credentials
	defaultHostname string
	status          *StatusCache
	scanner         *Scanner
	clock           clock.Clock
	log             Logger

	connectTimeout     time.Duration
	connectInterval    time.Duration
	disconnectTimeout  time.Duration
	disconnectInterval time.Duration
}

func New(config *Config) *Manager {
	m := &Manager{
		mode:               ModeNone,
		driver:             config.Driver,
		settings:           config.Settings,
		defaults:           config.Defaults,
		defaultHostname:    config.Hostname,
		status:             config.StatusCache,
		clock:              config.Clock,
		connectTimeout:     orDefault(config.ConnectTimeout, DefaultConnectTimeout),
		connectInterval:    orDefault(config.ConnectInterval, DefaultConnectInterval),
		disconnectTimeout:  orDefault(config.DisconnectTimeout, DefaultDisconnectTimeout),
		disconnectInterval: orDefault(config.DisconnectInterval, DefaultDisconnectInterval),
	}

	if config.Logger != nil {
		m.log = config.Logger
	} else {
		m.log = noopLogger{}
	}

	if m.clock == nil {
		m.clock = clock.WallClock
	}

	if m.settings == nil {
		m.settings = NewMemorySettings(config.Defaults)
	}

	if m.status == nil {
		m.status = NewStatusCache(m.driver, orDefault(config.StatusInterval, DefaultStatusInterval), m.clock)
	}

	m.scanner = NewScanner(m.driver, m.log)

	return m
}

func orDefault(d time.Duration, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}

	return d
}

// ConfigAddress sets the static addressing used when entering mode and
// reports whether it did. It is ignored unless ip and subnet are both valid
// addresses.
func (m *Manager) ConfigAddress(mode Mode, ip net.IP, subnet net.IP, gateway net.IP) bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	var applied bool

	switch mode {
	case ModeAP:
		applied = m.configAP.set(ip, subnet, gateway)
	case ModeSTA:
		applied = m.configSTA.set(ip, subnet, gateway)
	}

	if applied {
		m.log.Infof("Configured %v address %v/%v via %v", mode, ip, subnet, gateway)
	} else {
		m.log.Debugf("Ignored %v address %v/%v", mode, ip, subnet)
	}

	return applied
}

func (m *Manager) ConfigAddressAP(ip net.IP, subnet net.IP, gateway net.IP) bool {
	return m.ConfigAddress(ModeAP, ip, subnet, gateway)
}

func (m *Manager) ConfigAddressSTA(ip net.IP, subnet net.IP, gateway net.IP) bool {
	return m.ConfigAddress(ModeSTA, ip, subnet, gateway)
}

// NetworkConfig returns a copy of the static addressing of mode.
func (m *Manager) NetworkConfig(mode Mode) NetworkConfig {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	switch mode {
	case ModeAP:
		return m.configAP.copy()
	case ModeSTA:
		return m.configSTA.copy()
	default:
		return NetworkConfig{}
	}
}

// SetHostname applies name to the driver now and before every following
// connect. It does not wait for a running connect sequence, so the driver
// must serialize its own calls.
func (m *Manager) SetHostname(name string) {
	m.mtx.Lock()
	m.hostname = name
	m.mtx.Unlock()

	if name == "" {
		return
	}

	err := m.driver.SetHostname(name)
	if err != nil {
		m.log.Warnf("Could not set hostname %v: %v", name, err)
	}
}

// Begin applies the configured hostname and connects with the default
// credentials.
func (m *Manager) Begin() error {
	if m.defaultHostname != "" {
		m.SetHostname(m.defaultHostname)
	}

	return m.Reconnect(m.defaults, false)
}

// ReconnectStored repeats the last used credentials.
func (m *Manager) ReconnectStored(save bool) error {
	return m.Reconnect(m.settings.Information(), save)
}

// ReconnectDefault connects with the default credentials.
func (m *Manager) ReconnectDefault(save bool) error {
	return m.Reconnect(m.defaults, save)
}

// Reconnect connects with c. An empty Ssid or Pass keeps the stored value.
// When the attempt fails and c differs from the stored credentials, the
// stored credentials are tried once more without saving.
func (m *Manager) Reconnect(c Credentials, save bool) error {
	m.ops.Lock()
	defer m.ops.Unlock()

	stored := m.settings.Information()

	if c.Ssid == "" {
		c.Ssid = stored.Ssid
	}

	if c.Pass == "" {
		c.Pass = stored.Pass
	}

	err := m.reconnect(c, save)
	if err == nil {
		return nil
	}

	if c == stored {
		m.log.Warnf("Could not connect to %v: %v", c.Ssid, err)
		return err
	}

	m.log.Warnf("Could not connect to %v, falling back to %v: %v", c.Ssid, stored.Ssid, err)

	fallbackErr := m.reconnect(stored, false)
	if fallbackErr == nil {
		m.log.Infof("Restored connection to %v", stored.Ssid)
		return nil
	}

	m.log.Errorf("Could not restore connection to %v: %v", stored.Ssid, fallbackErr)

	return &Failure{
		Reason: ReasonOf(err),
		Err:    errors.Errorf("%v (fallback to %v failed: %v)", err, stored.Ssid, fallbackErr),
	}
}

func (m *Manager) reconnect(c Credentials, save bool) error {
	// the driver cannot switch modes while a link is up
	_ = m.disconnect()

	if mode := m.Mode(); mode != ModeNone {
		return fail(ReasonAborted, "could not leave %v mode", mode)
	}

	m.mtx.RLock()
	hostname := m.hostname
	m.mtx.RUnlock()

	if hostname != "" {
		err := m.driver.SetHostname(hostname)
		if err != nil {
			m.log.Warnf("Could not set hostname %v: %v", hostname, err)
		}
	}

	var err error

	if c.ApMode {
		err = m.startSoftAP(c)
	} else {
		err = m.joinStation(c)
	}

	if err != nil {
		return err
	}

	if save {
		err := m.settings.SaveInformation(c)
		if err != nil {
			m.log.Errorf("Could not save credentials for %v: %v", c.Ssid, err)
		}
	} else {
		m.settings.SetInformation(c)
	}

	return nil
}

func (m *Manager) startSoftAP(c Credentials) error {
	config := m.NetworkConfig(ModeAP)

	if config.Configured {
		ok, err := m.driver.ConfigSoftAP(config.LocalIP, config.Gateway, config.Subnet)
		if err != nil || !ok {
			return fail(ReasonConfigRejected, "could not apply access point address %v: %v", config.LocalIP, err)
		}
	}

	ok, err := m.driver.StartSoftAP(c.Ssid, c.Pass)
	if err != nil {
		return fail(ReasonDriverError, "could not start access point %v: %v", c.Ssid, err)
	}

	if !ok {
		return fail(ReasonDriverError, "access point %v did not start", c.Ssid)
	}

	m.setMode(ModeAP)

	m.log.Infof("Started access point %v", c.Ssid)

	return nil
}

func (m *Manager) joinStation(c Credentials) error {
	config := m.NetworkConfig(ModeSTA)

	if config.Configured {
		ok, err := m.driver.ConfigStation(config.LocalIP, config.Gateway, config.Subnet)
		if err != nil || !ok {
			return fail(ReasonConfigRejected, "could not apply station address %v: %v", config.LocalIP, err)
		}
	}

	err := m.driver.Join(c.Ssid, c.Pass)
	if err != nil {
		return fail(ReasonDriverError, "could not join %v: %v", c.Ssid, err)
	}

	poll(m.clock, m.connectInterval, m.connectTimeout, func() bool {
		return m.status.IsConnected(true)
	})

	if !m.status.IsConnected(true) {
		return fail(ReasonTimeout, "could not connect to %v within %v", c.Ssid, m.connectTimeout)
	}

	m.setMode(ModeSTA)

	m.log.Infof("Connected to %v", c.Ssid)

	return nil
}

// Disconnect tears down the current link. It succeeds when the driver
// reports no connection afterwards.
func (m *Manager) Disconnect() error {
	m.ops.Lock()
	defer m.ops.Unlock()

	return m.disconnect()
}

func (m *Manager) disconnect() error {
	mode := m.Mode()

	result := true
	var err error

	switch mode {
	case ModeAP:
		result, err = m.driver.StopSoftAP()
	case ModeSTA:
		if m.driver.IsConnected() {
			result, err = m.driver.StopStation()
		}
	default:
		return nil
	}

	driverFailed := err != nil || !result

	if driverFailed {
		m.log.Warnf("Driver could not leave %v mode (%v), waiting for the link to drop", mode, err)

		dropped := poll(m.clock, m.disconnectInterval, m.disconnectTimeout, func() bool {
			return !m.status.IsConnected(true)
		})
		if !dropped {
			m.log.Warnf("Link still up after %v", m.disconnectTimeout)
		}
	}

	// judged by the observed link state only, even when the driver call failed
	if m.status.IsConnected(true) {
		if driverFailed {
			return fail(ReasonDriverError, "could not leave %v mode: %v", mode, err)
		}

		return fail(ReasonTimeout, "still connected after leaving %v mode", mode)
	}

	if driverFailed {
		m.log.Warnf("Driver reported a failure leaving %v mode but the link is down", mode)
	}

	m.setMode(ModeNone)

	m.log.Infof("Left %v mode", mode)

	return nil
}

func (m *Manager) setMode(mode Mode) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.mode = mode
}

func (m *Manager) Mode() Mode {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	return m.mode
}

func (m *Manager) IsApMode() bool {
	return m.Mode() == ModeAP
}

// IP returns the address of the interface in the current mode, or nil.
func (m *Manager) IP() net.IP {
	switch m.Mode() {
	case ModeAP:
		return m.driver.SoftAPIP()
	case ModeSTA:
		return m.driver.LocalIP()
	default:
		return nil
	}
}

// Ssid returns the network name of the current mode, or "".
func (m *Manager) Ssid() string {
	switch m.Mode() {
	case ModeAP:
		return m.driver.SoftAPSsid()
	case ModeSTA:
		return m.driver.Ssid()
	default:
		return ""
	}
}

func (m *Manager) IsConnected(immediate bool) bool {
	return m.status.IsConnected(immediate)
}

func (m *Manager) Status() Status {
	return Status{
		Mode:      m.Mode(),
		Ssid:      m.Ssid(),
		IP:        m.IP(),
		Connected: m.IsConnected(false),
	}
}

// Credentials returns the last used credentials.
func (m *Manager) Credentials() Credentials {
	return m.settings.Information()
}

// WifiList scans for networks. It does not wait for a running connect
// sequence; the driver serializes the scan against the sequence's own
// calls, as WpaDriver and MockDriver do with their mutex.
func (m *Manager) WifiList() ([]network.Network, error) {
	return m.scanner.Scan()
}
