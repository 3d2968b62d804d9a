package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/the-lightning-land/wifid/api"
	"github.com/the-lightning-land/wifid/connection"
	"github.com/the-lightning-land/wifid/connectivity"
	"github.com/the-lightning-land/wifid/daemon"
	"github.com/the-lightning-land/wifid/network"
	"github.com/the-lightning-land/wifid/pairing"
	"github.com/the-lightning-land/wifid/settings"
	"github.com/the-lightning-land/wifid/wifidb"

	// Blank import to set up profiling HTTP handlers.
	_ "net/http/pprof"
)

var (
	// Commit stores the current commit hash of this build. This should be set using -ldflags during compilation.
	Commit string
	// Version stores the version string of this build. This should be set using -ldflags during compilation.
	Version string
	// Date stores the date of this build. This should be set using -ldflags during compilation.
	Date string
)

// wifidMain is the true entry point for wifid. This is required since defers
// created in the top-level scope of a main method aren't executed if os.Exit() is called.
func wifidMain() error {
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)

	// Load CLI configuration and defaults
	cfg, err := loadConfig()
	if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		return nil
	} else if err != nil {
		return errors.Errorf("Failed parsing arguments: %v", err)
	}

	// Set logger into debug mode if called with --debug
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
		log.Info("Setting debug mode.")
	}

	log.Debug("Loaded config.")

	// Print version of the daemon
	log.Infof("Version %s (commit %s)", Version, Commit)
	log.Infof("Built on %s", Date)

	// Stop here if only version was requested
	if cfg.ShowVersion {
		return nil
	}

	if cfg.Profiling.Listen != "" {
		go func() {
			log.Infof("Starting profiling server on %v", cfg.Profiling.Listen)
			// Redirect the root path
			http.Handle("/", http.RedirectHandler("/debug/pprof", http.StatusSeeOther))
			// All other handlers are registered on DefaultServeMux through the import of pprof
			err := http.ListenAndServe(cfg.Profiling.Listen, nil)
			if err != nil {
				log.Errorf("Could not run profiler: %v", err)
			}
		}()
	}

	// wifi.db persistently stores saved credentials and static addressing
	wifiDB, err := wifidb.Open(cfg.DataDir)
	if err != nil {
		return errors.Errorf("Could not open wifi.db: %v", err)
	}

	log.Infof("Opened wifi.db")

	defer func() {
		err := wifiDB.Close()
		if err != nil {
			log.Errorf("Could not close wifi.db: %v", err)
		} else {
			log.Info("Closed wifi.db.")
		}
	}()

	// The radio every other component talks to
	var driver network.Driver

	switch cfg.Net {
	case "wpa":
		wpaDriver := network.NewWpaDriver(&network.Config{
			Interface:   cfg.Interface,
			Logger:      subLogger(cfg, "network"),
			ScanTimeout: cfg.Timeouts.Scan,
			ApFrequency: cfg.ApFrequency,
		})

		err = wpaDriver.Start()
		if err != nil {
			return errors.Errorf("Could not start wpa driver: %v", err)
		}

		defer func() {
			err := wpaDriver.Stop()
			if err != nil {
				log.Errorf("Could not properly stop wpa driver: %v", err)
			} else {
				log.Info("Stopped wpa driver.")
			}
		}()

		driver = wpaDriver

		log.Infof("Created wpa_supplicant driver on %v.", cfg.Interface)
	case "mock":
		driver = network.NewMockDriver()

		log.Info("Created a mock driver.")
	default:
		return errors.Errorf("Unknown networking type %v", cfg.Net)
	}

	wifiSettings := settings.New(&settings.Config{
		DB:       wifiDB,
		Defaults: cfg.defaults(),
		Logger:   subLogger(cfg, "settings"),
	})

	manager := connection.New(cfg.managerConfig(driver, wifiSettings, subLogger(cfg, "connection")))

	log.Infof("Created connection manager.")

	reporter := connectivity.NewReporter(manager, nil, cfg.reporterInterval())

	wifiApi := api.New(&api.Config{
		Manager:  manager,
		Reporter: reporter,
		Store:    wifiDB,
		Log:      subLogger(cfg, "api"),
	})

	log.Infof("Created API")

	if cfg.Pairing.Adapter != "" {
		// create subsystem responsible for pairing
		pairingController, err := pairing.NewController(&pairing.Config{
			Logger:    subLogger(cfg, "pairing"),
			AdapterId: cfg.Pairing.Adapter,
			LocalName: cfg.Pairing.Name,
			Manager:   manager,
		})
		if err != nil {
			return errors.Errorf("Could not create pairing controller: %v", err)
		}

		log.Infof("Created pairing controller.")

		err = pairingController.Start()
		if err != nil {
			return errors.Errorf("Could not start pairing controller: %v", err)
		}

		log.Infof("Started pairing controller.")

		defer func() {
			err := pairingController.Stop()
			if err != nil {
				log.Errorf("Could not properly shut down pairing controller: %v", err)
			}

			log.Infof("Stopped pairing controller.")
		}()
	}

	// central controller bringing up and watching the connection
	d := daemon.New(&daemon.Config{
		Manager:          manager,
		Reporter:         reporter,
		Api:              wifiApi,
		Store:            wifiDB,
		Listen:           cfg.Api.Listen,
		StaticConfigs:    cfg.staticConfigs(),
		Defaults:         cfg.defaults(),
		Hostname:         cfg.Hostname,
		PreferStored:     !cfg.Wifi.IgnoreSaved,
		AutoDefaultGrace: cfg.Timeouts.AutoDefaultGrace,
		Logger:           subLogger(cfg, "daemon"),
	})

	log.Infof("Created daemon.")

	// Handle interrupt signals correctly
	go func() {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
		sig := <-signals
		log.Info(sig)
		log.Info("Received an interrupt, stopping wifid...")
		d.Shutdown()
	}()

	// blocks until the daemon is shut down
	err = d.Run()
	if err != nil {
		return errors.Errorf("Failed running daemon: %v", err)
	}

	// finish with no error
	return nil
}

// subLogger creates the logger of one subsystem at the configured level.
func subLogger(cfg *config, system string) *log.Entry {
	logger := log.New()
	logger.SetOutput(os.Stdout)

	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	return logger.WithField("system", system)
}

func main() {
	// Call the "real" main in a nested manner so the defers will properly
	// be executed in the case of a graceful shutdown.
	if err := wifidMain(); err != nil {
		log.WithError(err).Println("Failed running wifid.")
		os.Exit(1)
	}
}
