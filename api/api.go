package api

import (
	"net"
	"net/http"
	"sync"

	"github.com/go-errors/errors"
	"github.com/gorilla/mux"
	"github.com/the-lightning-land/wifid/connection"
	"github.com/the-lightning-land/wifid/connectivity"
	"github.com/the-lightning-land/wifid/network"
	"github.com/the-lightning-land/wifid/wifidb"
)

// Manager is the part of connection.Manager the api drives.
type Manager interface {
	Status() connection.Status
	Credentials() connection.Credentials
	WifiList() ([]network.Network, error)
	Reconnect(c connection.Credentials, save bool) error
	ReconnectDefault(save bool) error
	ReconnectStored(save bool) error
	Disconnect() error
	ConfigAddress(mode connection.Mode, ip net.IP, subnet net.IP, gateway net.IP) bool
	NetworkConfig(mode connection.Mode) connection.NetworkConfig
}

// StaticStore persists static addressing submitted through the api.
type StaticStore interface {
	SetStaticConfig(mode string, config *wifidb.StaticConfig) error
}

type Config struct {
	Manager  Manager
	Reporter connectivity.Reporter
	// Store is optional; without it static addressing lasts until restart.
	Store StaticStore
	Log   Logger
}

type Api struct {
	manager  Manager
	reporter connectivity.Reporter
	store    StaticStore
	router   *mux.Router
	server   *http.Server
	log      Logger

	// hijacked websocket connections outlive server.Close and end on closing
	eventsMtx sync.Mutex
	closed    bool
	closing   chan struct{}
	events    sync.WaitGroup
}

func New(config *Config) *Api {
	api := &Api{
		manager:  config.Manager,
		reporter: config.Reporter,
		store:    config.Store,
		router:   mux.NewRouter(),
		closing:  make(chan struct{}),
	}

	if config.Log != nil {
		api.log = config.Log
	} else {
		api.log = noopLogger{}
	}

	api.server = &http.Server{Handler: api.router}

	api.router.Handle("/api/v1/network", api.handleGetNetwork()).Methods(http.MethodGet)
	api.router.Handle("/api/v1/network", api.handlePostNetwork()).Methods(http.MethodPost)
	api.router.Handle("/api/v1/network", api.handleDeleteNetwork()).Methods(http.MethodDelete)
	api.router.Handle("/api/v1/network/default", api.handlePostNetworkDefault()).Methods(http.MethodPost)
	api.router.Handle("/api/v1/network/stored", api.handlePostNetworkStored()).Methods(http.MethodPost)
	api.router.Handle("/api/v1/network/config/{mode}", api.handleGetNetworkConfig()).Methods(http.MethodGet)
	api.router.Handle("/api/v1/network/config/{mode}", api.handlePutNetworkConfig()).Methods(http.MethodPut)
	api.router.Handle("/api/v1/network/events", api.handleGetNetworkEvents()).Methods(http.MethodGet)

	api.router.Handle("/api/v1/networks", api.handleGetNetworks()).Methods(http.MethodGet)

	return api
}

func (a *Api) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Serve blocks until the listener fails or Close is called.
func (a *Api) Serve(l net.Listener) error {
	err := a.server.Serve(l)
	if err != nil && err != http.ErrServerClosed {
		return errors.Errorf("Unable to serve api: %v", err)
	}

	return nil
}

// Close stops serving and waits for open event streams to end.
func (a *Api) Close() error {
	a.eventsMtx.Lock()
	if !a.closed {
		a.closed = true
		close(a.closing)
	}
	a.eventsMtx.Unlock()

	err := a.server.Close()

	a.events.Wait()

	return err
}

// trackEvents registers an event stream unless the api is closed.
func (a *Api) trackEvents() bool {
	a.eventsMtx.Lock()
	defer a.eventsMtx.Unlock()

	if a.closed {
		return false
	}

	a.events.Add(1)

	return true
}
