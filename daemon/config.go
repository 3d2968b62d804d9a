package daemon

import (
	"net"
	"time"

	"github.com/juju/clock"
	"github.com/the-lightning-land/wifid/connection"
	"github.com/the-lightning-land/wifid/connectivity"
	"github.com/the-lightning-land/wifid/wifidb"
)

type Manager interface {
	Begin() error
	SetHostname(name string)
	Reconnect(c connection.Credentials, save bool) error
	ReconnectDefault(save bool) error
	Credentials() connection.Credentials
	Mode() connection.Mode
	ConfigAddress(mode connection.Mode, ip net.IP, subnet net.IP, gateway net.IP) bool
}

type Api interface {
	Serve(l net.Listener) error
	Close() error
}

type StaticStore interface {
	GetStaticConfig(mode string) (*wifidb.StaticConfig, error)
}

type Config struct {
	Manager  Manager
	Reporter connectivity.Reporter
	Api      Api
	Store    StaticStore
	// Listen lists the addresses the api is served on.
	Listen []string
	// StaticConfigs are applied before persisted ones, keyed by
	// wifidb.ModeAP and wifidb.ModeSTA.
	StaticConfigs map[string]*wifidb.StaticConfig
	Defaults      connection.Credentials
	Hostname      string
	// PreferStored connects with persisted credentials instead of the
	// defaults on startup when they differ.
	PreferStored bool
	// AutoDefaultGrace is how long a station link may stay down before
	// credentials marked AutoDefault give way to the defaults.
	AutoDefaultGrace time.Duration
	Clock            clock.Clock
	Logger           Logger
}
