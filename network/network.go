package network

import "net"

// Status is the link state reported by a radio driver.
type Status int

const (
	StatusIdle Status = iota
	StatusNoSsidAvail
	StatusScanCompleted
	StatusConnected
	StatusConnectFailed
	StatusConnectionLost
	StatusDisconnected
	StatusNoShield
	StatusAssociating
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "IDLE"
	case StatusNoSsidAvail:
		return "NO_SSID_AVAIL"
	case StatusScanCompleted:
		return "SCAN_COMPLETED"
	case StatusConnected:
		return "CONNECTED"
	case StatusConnectFailed:
		return "CONNECT_FAILED"
	case StatusConnectionLost:
		return "CONNECTION_LOST"
	case StatusDisconnected:
		return "DISCONNECTED"
	case StatusNoShield:
		return "NO_SHIELD"
	case StatusAssociating:
		return "ASSOCIATING"
	default:
		return "INVALID STATUS"
	}
}

// Encryption is the security scheme a scanned network advertises.
type Encryption int

const (
	EncryptionOpen Encryption = iota
	EncryptionWep
	EncryptionWpaPsk
	EncryptionWpa2Psk
	EncryptionWpaWpa2Psk
	EncryptionWpa2Enterprise
	EncryptionUnknown
)

func (e Encryption) String() string {
	switch e {
	case EncryptionOpen:
		return "open"
	case EncryptionWep:
		return "wep"
	case EncryptionWpaPsk:
		return "wpa-psk"
	case EncryptionWpa2Psk:
		return "wpa2-psk"
	case EncryptionWpaWpa2Psk:
		return "wpa/wpa2-psk"
	case EncryptionWpa2Enterprise:
		return "wpa2-enterprise"
	default:
		return "unknown"
	}
}

// Network is a single entry of a scan. Rssi carries the raw dBm reading as
// returned by a driver.
type Network struct {
	Ssid       string
	Encryption Encryption
	Rssi       int
}

// Driver is the set of radio capabilities the connection manager needs.
// Implementations must be safe for concurrent use: a scan or a hostname
// change may arrive while a connect sequence is polling Status.
type Driver interface {
	ScanNetworks() ([]Network, error)
	Status() (Status, error)

	// Join starts joining a network. Completion is observed through Status.
	Join(ssid string, pass string) error
	StartSoftAP(ssid string, pass string) (bool, error)
	StopSoftAP() (bool, error)
	StopStation() (bool, error)
	IsConnected() bool

	ConfigStation(ip net.IP, gateway net.IP, subnet net.IP) (bool, error)
	ConfigSoftAP(ip net.IP, gateway net.IP, subnet net.IP) (bool, error)
	SetHostname(name string) error

	LocalIP() net.IP
	SoftAPIP() net.IP
	Ssid() string
	SoftAPSsid() string
}
