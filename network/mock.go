package network

import (
	"net"
	"sync"

	"github.com/go-errors/errors"
)

// check MockDriver compliance to its interface during compile time
var _ Driver = (*MockDriver)(nil)

// MockAttempt records a join or soft-AP start issued to a MockDriver.
type MockAttempt struct {
	ApMode bool
	Ssid   string
	Pass   string
}

// MockDriver simulates a radio in memory. A join completes after JoinPolls
// status queries; a negative JoinPolls never completes.
type MockDriver struct {
	sync.Mutex

	Networks []Network
	ScanErr  error

	JoinPolls int

	FailJoin          bool
	FailSoftAP        bool
	FailStopSoftAP    bool
	FailStopStation   bool
	FailConfigStation bool
	FailConfigSoftAP  bool
	// StickyLink keeps the station link up after StopStation.
	StickyLink bool

	StaIP    net.IP
	ApIP     net.IP
	Hostname string

	Attempts []MockAttempt

	connected bool
	joining   bool
	pending   int
	ssid      string
	apSsid    string
	calls     map[string]int
}

func NewMockDriver() *MockDriver {
	return &MockDriver{
		Networks: []Network{
			{Ssid: "candy", Encryption: EncryptionWpa2Psk, Rssi: -48},
			{Ssid: "lightning", Encryption: EncryptionWpaWpa2Psk, Rssi: -71},
			{Ssid: "", Encryption: EncryptionOpen, Rssi: -60},
			{Ssid: "cafe", Encryption: EncryptionOpen, Rssi: -88},
		},
		JoinPolls: 2,
		StaIP:     net.IPv4(192, 168, 1, 23),
		ApIP:      net.IPv4(192, 168, 4, 1),
		calls:     make(map[string]int),
	}
}

// Calls returns how often the named driver method was invoked.
func (m *MockDriver) Calls(method string) int {
	m.Lock()
	defer m.Unlock()

	return m.calls[method]
}

// SetConnected forces the station link state.
func (m *MockDriver) SetConnected(connected bool) {
	m.Lock()
	defer m.Unlock()

	m.connected = connected
	m.joining = false
}

func (m *MockDriver) called(method string) {
	if m.calls == nil {
		m.calls = make(map[string]int)
	}

	m.calls[method]++
}

func (m *MockDriver) ScanNetworks() ([]Network, error) {
	m.Lock()
	defer m.Unlock()

	m.called("ScanNetworks")

	if m.ScanErr != nil {
		return nil, m.ScanErr
	}

	networks := make([]Network, len(m.Networks))
	copy(networks, m.Networks)

	return networks, nil
}

func (m *MockDriver) Status() (Status, error) {
	m.Lock()
	defer m.Unlock()

	m.called("Status")

	if m.joining {
		if m.JoinPolls < 0 || m.pending > 0 {
			m.pending--
			return StatusAssociating, nil
		}

		m.joining = false
		m.connected = true
	}

	if m.connected {
		return StatusConnected, nil
	}

	return StatusDisconnected, nil
}

func (m *MockDriver) Join(ssid string, pass string) error {
	m.Lock()
	defer m.Unlock()

	m.called("Join")
	m.Attempts = append(m.Attempts, MockAttempt{Ssid: ssid, Pass: pass})

	if m.FailJoin {
		return errors.Errorf("could not join %v", ssid)
	}

	m.apSsid = ""
	m.ssid = ssid
	m.connected = false
	m.joining = true
	m.pending = m.JoinPolls

	return nil
}

func (m *MockDriver) StartSoftAP(ssid string, pass string) (bool, error) {
	m.Lock()
	defer m.Unlock()

	m.called("StartSoftAP")
	m.Attempts = append(m.Attempts, MockAttempt{ApMode: true, Ssid: ssid, Pass: pass})

	if m.FailSoftAP {
		return false, nil
	}

	m.apSsid = ssid

	return true, nil
}

func (m *MockDriver) StopSoftAP() (bool, error) {
	m.Lock()
	defer m.Unlock()

	m.called("StopSoftAP")

	if m.FailStopSoftAP {
		return false, nil
	}

	m.apSsid = ""

	return true, nil
}

func (m *MockDriver) StopStation() (bool, error) {
	m.Lock()
	defer m.Unlock()

	m.called("StopStation")

	if m.FailStopStation {
		return false, nil
	}

	m.joining = false

	if !m.StickyLink {
		m.connected = false
		m.ssid = ""
	}

	return true, nil
}

func (m *MockDriver) IsConnected() bool {
	m.Lock()
	defer m.Unlock()

	m.called("IsConnected")

	return m.connected
}

func (m *MockDriver) ConfigStation(ip net.IP, gateway net.IP, subnet net.IP) (bool, error) {
	m.Lock()
	defer m.Unlock()

	m.called("ConfigStation")

	if m.FailConfigStation {
		return false, nil
	}

	m.StaIP = ip

	return true, nil
}

func (m *MockDriver) ConfigSoftAP(ip net.IP, gateway net.IP, subnet net.IP) (bool, error) {
	m.Lock()
	defer m.Unlock()

	m.called("ConfigSoftAP")

	if m.FailConfigSoftAP {
		return false, nil
	}

	m.ApIP = ip

	return true, nil
}

func (m *MockDriver) SetHostname(name string) error {
	m.Lock()
	defer m.Unlock()

	m.called("SetHostname")
	m.Hostname = name

	return nil
}

func (m *MockDriver) LocalIP() net.IP {
	m.Lock()
	defer m.Unlock()

	return m.StaIP
}

func (m *MockDriver) SoftAPIP() net.IP {
	m.Lock()
	defer m.Unlock()

	return m.ApIP
}

func (m *MockDriver) Ssid() string {
	m.Lock()
	defer m.Unlock()

	if !m.connected {
		return ""
	}

	return m.ssid
}

func (m *MockDriver) SoftAPSsid() string {
	m.Lock()
	defer m.Unlock()

	return m.apSsid
}
