package connection

import "net"

// Mode is the role the wireless interface currently plays.
type Mode int

const (
	ModeNone Mode = iota
	ModeAP
	ModeSTA
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "NONE"
	case ModeAP:
		return "AP"
	case ModeSTA:
		return "STA"
	default:
		return "INVALID MODE"
	}
}

// Credentials are the parameters of a connection attempt.
type Credentials struct {
	Ssid        string
	Pass        string
	ApMode      bool
	AutoDefault bool
}

// NetworkConfig is the static addressing of one mode. The addresses are
// only meaningful when Configured is set.
type NetworkConfig struct {
	Configured bool
	LocalIP    net.IP
	Subnet     net.IP
	Gateway    net.IP
}

// set replaces the record when ip and subnet are both usable addresses and
// reports whether it did.
func (c *NetworkConfig) set(ip net.IP, subnet net.IP, gateway net.IP) bool {
	if !validAddress(ip) || !validAddress(subnet) {
		return false
	}

	*c = NetworkConfig{
		Configured: true,
		LocalIP:    copyIP(ip),
		Subnet:     copyIP(subnet),
		Gateway:    copyIP(gateway),
	}

	return true
}

func (c NetworkConfig) copy() NetworkConfig {
	return NetworkConfig{
		Configured: c.Configured,
		LocalIP:    copyIP(c.LocalIP),
		Subnet:     copyIP(c.Subnet),
		Gateway:    copyIP(c.Gateway),
	}
}

// validAddress rejects nil, malformed and unspecified (0.0.0.0) addresses.
func validAddress(ip net.IP) bool {
	if len(ip) != net.IPv4len && len(ip) != net.IPv6len {
		return false
	}

	return !ip.IsUnspecified()
}

func copyIP(ip net.IP) net.IP {
	if ip == nil {
		return nil
	}

	dup := make(net.IP, len(ip))
	copy(dup, ip)

	return dup
}
