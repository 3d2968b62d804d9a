package main

import (
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/go-errors/errors"
	"github.com/jessevdk/go-flags"
	"github.com/the-lightning-land/wifid/connection"
	"github.com/the-lightning-land/wifid/connectivity"
	"github.com/the-lightning-land/wifid/daemon"
	"github.com/the-lightning-land/wifid/network"
	"github.com/the-lightning-land/wifid/wifidb"
)

const (
	defaultConfigFilename = "wifid.conf"
	defaultDataDir        = "/var/lib/wifid"
	defaultNet            = "wpa"
	defaultInterface      = "wlan0"
	defaultHostname       = "wifid"
	defaultApiListen      = ":9000"
	defaultAdapter        = "hci0"
	defaultApSsid         = "wifid"
	defaultApPass         = "lightning"
	defaultApIP           = "192.168.27.1"
	defaultApSubnet       = "255.255.255.0"
)

type wifiConfig struct {
	Ssid        string `long:"ssid" description:"Default network name, the access point name in ap mode"`
	Pass        string `long:"pass" description:"Default passphrase"`
	Mode        string `long:"mode" description:"Default mode" choice:"ap" choice:"sta"`
	AutoDefault bool   `long:"autodefault" description:"Return to the defaults when a saved station link stays down"`
	IgnoreSaved bool   `long:"ignoresaved" description:"Start with the defaults even when credentials were saved"`
}

type timeoutsConfig struct {
	Connect            time.Duration `long:"connect" description:"How long to wait for a station link"`
	ConnectInterval    time.Duration `long:"connectinterval" description:"Link status poll interval while connecting"`
	Disconnect         time.Duration `long:"disconnect" description:"How long to wait for a link to drop"`
	DisconnectInterval time.Duration `long:"disconnectinterval" description:"Link status poll interval while disconnecting"`
	Status             time.Duration `long:"status" description:"How long a link status is cached"`
	Scan               time.Duration `long:"scan" description:"How long to wait for scan results"`
	AutoDefaultGrace   time.Duration `long:"autodefaultgrace" description:"How long a station link may stay down before returning to the defaults"`
}

type addressConfig struct {
	IP      string `long:"ip" description:"Static address"`
	Subnet  string `long:"subnet" description:"Subnet mask"`
	Gateway string `long:"gateway" description:"Gateway address"`
}

type apiConfig struct {
	Listen []string `long:"listen" description:"Add an interface/port to serve the api on"`
}

type pairingConfig struct {
	Adapter string `long:"adapter" description:"Bluetooth adapter to provision through, empty to disable"`
	Name    string `long:"name" description:"Advertised bluetooth name"`
}

type profilingConfig struct {
	Listen string `long:"listen" description:"Add an interface/port to listen for profiling data"`
}

type config struct {
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	Debug       bool   `long:"debug" description:"Start in debug mode"`
	ConfigFile  string `long:"configfile" description:"Path to configuration file"`
	DataDir     string `long:"datadir" description:"The directory to store wifid's data within"`
	Net         string `long:"net" description:"The networking driver" choice:"wpa" choice:"mock"`
	Interface   string `long:"interface" description:"The wireless interface to manage"`
	ApFrequency uint32 `long:"apfrequency" description:"Access point channel frequency in MHz"`
	Hostname    string `long:"hostname" description:"Hostname applied before connecting"`

	Wifi      *wifiConfig      `group:"Wifi" namespace:"wifi"`
	Timeouts  *timeoutsConfig  `group:"Timeouts" namespace:"timeouts"`
	Ap        *addressConfig   `group:"Access point address" namespace:"ap"`
	Sta       *addressConfig   `group:"Station address" namespace:"sta"`
	Api       *apiConfig       `group:"Api" namespace:"api"`
	Pairing   *pairingConfig   `group:"Pairing" namespace:"pairing"`
	Profiling *profilingConfig `group:"Profiling" namespace:"profiling"`
}

func defaultConfig() config {
	return config{
		DataDir:     defaultDataDir,
		Net:         defaultNet,
		Interface:   defaultInterface,
		ApFrequency: network.DefaultApFrequency,
		Hostname:    defaultHostname,
		Wifi: &wifiConfig{
			Ssid: defaultApSsid,
			Pass: defaultApPass,
			Mode: wifidb.ModeAP,
		},
		Timeouts: &timeoutsConfig{
			Connect:            connection.DefaultConnectTimeout,
			ConnectInterval:    connection.DefaultConnectInterval,
			Disconnect:         connection.DefaultDisconnectTimeout,
			DisconnectInterval: connection.DefaultDisconnectInterval,
			Status:             connection.DefaultStatusInterval,
			Scan:               network.DefaultScanTimeout,
			AutoDefaultGrace:   daemon.DefaultAutoDefaultGrace,
		},
		Ap: &addressConfig{
			IP:     defaultApIP,
			Subnet: defaultApSubnet,
		},
		Sta: &addressConfig{},
		Api: &apiConfig{
			Listen: []string{defaultApiListen},
		},
		Pairing: &pairingConfig{
			Adapter: defaultAdapter,
			Name:    defaultHostname,
		},
	}
}

// loadConfig initializes and parses the config using a config file and
// command line options. Command line options override the config file,
// which overrides the defaults.
func loadConfig() (*config, error) {
	return parseConfig(os.Args[1:])
}

func parseConfig(args []string) (*config, error) {
	// Pre-parse the command line options to pick up an alternative config
	// file and the version flag.
	preCfg := defaultConfig()
	if _, err := flags.ParseArgs(&preCfg, args); err != nil {
		return nil, err
	}

	if preCfg.ShowVersion {
		return &preCfg, nil
	}

	configFile := preCfg.ConfigFile
	if configFile == "" {
		configFile = filepath.Join(preCfg.DataDir, defaultConfigFilename)
	}

	cfg := defaultConfig()
	parser := flags.NewParser(&cfg, flags.Default)

	err := flags.NewIniParser(parser).ParseFile(configFile)
	if err != nil {
		// a missing default config file is fine
		if _, ok := err.(*os.PathError); !ok || preCfg.ConfigFile != "" {
			return nil, errors.Errorf("could not parse config file %v: %v", configFile, err)
		}
	}

	// Parse the command line options again so they take precedence.
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *config) validate() error {
	for name, address := range map[string]*addressConfig{"ap": c.Ap, "sta": c.Sta} {
		if address.IP == "" && address.Subnet == "" {
			continue
		}

		if net.ParseIP(address.IP) == nil || net.ParseIP(address.Subnet) == nil {
			return errors.Errorf("%v address needs a valid ip and subnet", name)
		}

		if address.Gateway != "" && net.ParseIP(address.Gateway) == nil {
			return errors.Errorf("%v gateway %v is not an ip address", name, address.Gateway)
		}
	}

	return nil
}

func (c *config) defaults() connection.Credentials {
	return connection.Credentials{
		Ssid:        c.Wifi.Ssid,
		Pass:        c.Wifi.Pass,
		ApMode:      c.Wifi.Mode == wifidb.ModeAP,
		AutoDefault: c.Wifi.AutoDefault,
	}
}

func (c *config) staticConfigs() map[string]*wifidb.StaticConfig {
	configs := make(map[string]*wifidb.StaticConfig)

	if c.Ap.IP != "" {
		configs[wifidb.ModeAP] = &wifidb.StaticConfig{IP: c.Ap.IP, Subnet: c.Ap.Subnet, Gateway: c.Ap.Gateway}
	}

	if c.Sta.IP != "" {
		configs[wifidb.ModeSTA] = &wifidb.StaticConfig{IP: c.Sta.IP, Subnet: c.Sta.Subnet, Gateway: c.Sta.Gateway}
	}

	return configs
}

func (c *config) managerConfig(driver network.Driver, settings connection.Settings, logger connection.Logger) *connection.Config {
	return &connection.Config{
		Driver:             driver,
		Settings:           settings,
		Defaults:           c.defaults(),
		Hostname:           c.Hostname,
		ConnectTimeout:     c.Timeouts.Connect,
		ConnectInterval:    c.Timeouts.ConnectInterval,
		DisconnectTimeout:  c.Timeouts.Disconnect,
		DisconnectInterval: c.Timeouts.DisconnectInterval,
		StatusInterval:     c.Timeouts.Status,
		Logger:             logger,
	}
}

func (c *config) reporterInterval() time.Duration {
	if c.Timeouts.Status > 0 {
		return c.Timeouts.Status
	}

	return connectivity.DefaultInterval
}
