package daemon

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/go-errors/errors"
	"github.com/juju/clock"
	"github.com/the-lightning-land/wifid/connection"
	"github.com/the-lightning-land/wifid/connectivity"
	"github.com/the-lightning-land/wifid/wifidb"
)

const DefaultAutoDefaultGrace = 30 * time.Second

// Daemon brings up the connection on startup, serves the api and watches
// the link until shut down.
type Daemon struct {
	manager          Manager
	reporter         connectivity.Reporter
	api              Api
	store            StaticStore
	listen           []string
	staticConfigs    map[string]*wifidb.StaticConfig
	defaults         connection.Credentials
	hostname         string
	preferStored     bool
	autoDefaultGrace time.Duration
	clock            clock.Clock
	log              Logger

	listenersMtx sync.Mutex
	listeners    []net.Listener

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	shutdown sync.Once
}

func New(config *Config) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())

	d := &Daemon{
		manager:          config.Manager,
		reporter:         config.Reporter,
		api:              config.Api,
		store:            config.Store,
		listen:           config.Listen,
		staticConfigs:    config.StaticConfigs,
		defaults:         config.Defaults,
		hostname:         config.Hostname,
		preferStored:     config.PreferStored,
		autoDefaultGrace: config.AutoDefaultGrace,
		clock:            config.Clock,
		ctx:              ctx,
		cancel:           cancel,
	}

	if config.Logger != nil {
		d.log = config.Logger
	} else {
		d.log = noopLogger{}
	}

	if d.clock == nil {
		d.clock = clock.WallClock
	}

	if d.autoDefaultGrace <= 0 {
		d.autoDefaultGrace = DefaultAutoDefaultGrace
	}

	return d
}

// Run blocks until Shutdown is called.
func (d *Daemon) Run() error {
	d.applyStaticConfigs()

	if d.api != nil {
		for _, addr := range d.listen {
			lis, err := net.Listen("tcp", addr)
			if err != nil {
				d.closeListeners()
				return errors.Errorf("Api server unable to listen on %v: %v", addr, err)
			}

			d.addListener(lis)

			d.log.Infof("Serving api on %v", lis.Addr())

			go func() {
				err := d.api.Serve(lis)
				if err != nil {
					d.log.Errorf("Could not serve api: %v", err)
				}
			}()
		}
	}

	d.connect()

	if d.reporter != nil {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.watchLink(d.ctx)
		}()
	}

	<-d.ctx.Done()

	d.wg.Wait()

	return nil
}

// connect brings up the initial connection, preferring persisted
// credentials when configured to.
func (d *Daemon) connect() {
	stored := d.manager.Credentials()

	if d.preferStored && stored.Ssid != "" && stored != d.defaults {
		d.log.Infof("Will attempt connecting to %v", stored.Ssid)

		if d.hostname != "" {
			d.manager.SetHostname(d.hostname)
		}

		err := d.manager.Reconnect(stored, false)
		if err == nil {
			return
		}

		d.log.Warnf("Could not connect to %v, using defaults: %v", stored.Ssid, err)
	}

	err := d.manager.Begin()
	if err != nil {
		d.log.Errorf("Could not connect with default credentials: %v", err)
	}
}

// applyStaticConfigs hands the configured and then the persisted static
// addressing to the manager. Persisted addressing wins.
func (d *Daemon) applyStaticConfigs() {
	modes := map[string]connection.Mode{
		wifidb.ModeAP:  connection.ModeAP,
		wifidb.ModeSTA: connection.ModeSTA,
	}

	for name, mode := range modes {
		if config, ok := d.staticConfigs[name]; ok && config != nil {
			d.applyStaticConfig(mode, config)
		}

		if d.store == nil {
			continue
		}

		config, err := d.store.GetStaticConfig(name)
		if err != nil {
			d.log.Warnf("Could not load %v address: %v", name, err)
			continue
		}

		if config != nil {
			d.applyStaticConfig(mode, config)
		}
	}
}

func (d *Daemon) applyStaticConfig(mode connection.Mode, config *wifidb.StaticConfig) {
	d.manager.ConfigAddress(mode, net.ParseIP(config.IP), net.ParseIP(config.Subnet), net.ParseIP(config.Gateway))
}

// watchLink falls back to the default credentials when a station link
// marked AutoDefault stays offline for the grace period.
func (d *Daemon) watchLink(ctx context.Context) {
	for {
		if !d.reporter.WaitForStateChange(ctx, connectivity.Online) {
			return
		}

		if !d.shouldFallBack() {
			if !d.reporter.WaitForStateChange(ctx, connectivity.Offline) {
				return
			}
			continue
		}

		d.log.Infof("Link lost, waiting %v before falling back to defaults", d.autoDefaultGrace)

		select {
		case <-ctx.Done():
			return
		case <-d.clock.After(d.autoDefaultGrace):
		}

		if d.reporter.CurrentState() == connectivity.Online || !d.shouldFallBack() {
			continue
		}

		d.log.Warnf("Link still down, falling back to default credentials")

		err := d.manager.ReconnectDefault(false)
		if err != nil {
			d.log.Errorf("Could not fall back to default credentials: %v", err)
		}

		if !d.reporter.WaitForStateChange(ctx, connectivity.Offline) {
			return
		}
	}
}

func (d *Daemon) shouldFallBack() bool {
	return d.manager.Mode() == connection.ModeSTA && d.manager.Credentials().AutoDefault
}

func (d *Daemon) addListener(lis net.Listener) {
	d.listenersMtx.Lock()
	defer d.listenersMtx.Unlock()

	d.listeners = append(d.listeners, lis)
}

func (d *Daemon) closeListeners() {
	d.listenersMtx.Lock()
	defer d.listenersMtx.Unlock()

	for _, lis := range d.listeners {
		err := lis.Close()
		if err != nil {
			d.log.Debugf("Could not close listener: %v", err)
		}
	}

	d.listeners = nil
}

// Shutdown stops serving and releases Run. It is safe to call repeatedly.
func (d *Daemon) Shutdown() {
	d.shutdown.Do(func() {
		if d.api != nil {
			err := d.api.Close()
			if err != nil {
				d.log.Errorf("Could not close api: %v", err)
			}
		}

		d.closeListeners()

		d.cancel()
	})
}
