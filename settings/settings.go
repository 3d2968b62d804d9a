package settings

import (
	"sync"

	"github.com/go-errors/errors"
	"github.com/the-lightning-land/wifid/connection"
	"github.com/the-lightning-land/wifid/wifidb"
)

// Store is the persistence the settings write through to.
type Store interface {
	GetWifiCredentials() (*wifidb.WifiCredentials, error)
	SetWifiCredentials(credentials *wifidb.WifiCredentials) error
}

type Config struct {
	DB       Store
	Defaults connection.Credentials
	Logger   Logger
}

// Settings keeps the last used credentials in memory and persists them on
// request.
type Settings struct {
	mtx         sync.RWMutex
	db          Store
	credentials connection.Credentials
	log         Logger
}

// check Settings compliance to its interface during compile time
var _ connection.Settings = (*Settings)(nil)

// New loads the persisted credentials, falling back to the defaults when
// none were saved or they cannot be read.
func New(config *Config) *Settings {
	s := &Settings{
		db:          config.DB,
		credentials: config.Defaults,
		log:         config.Logger,
	}

	if s.log == nil {
		s.log = noopLogger{}
	}

	if s.db == nil {
		return s
	}

	saved, err := s.db.GetWifiCredentials()
	if err != nil {
		s.log.Warnf("Could not load saved credentials: %v", err)
		return s
	}

	if saved == nil {
		s.log.Infof("No saved credentials, using defaults for %v", config.Defaults.Ssid)
		return s
	}

	s.credentials = fromRecord(saved)

	s.log.Infof("Loaded saved credentials for %v", saved.Ssid)

	return s
}

func (s *Settings) Information() connection.Credentials {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.credentials
}

// SaveInformation persists c and updates the in-memory copy. The memory is
// left unchanged when the write fails.
func (s *Settings) SaveInformation(c connection.Credentials) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.db != nil {
		err := s.db.SetWifiCredentials(toRecord(c))
		if err != nil {
			return errors.Errorf("could not save credentials for %v: %v", c.Ssid, err)
		}
	}

	s.credentials = c

	s.log.Debugf("Saved credentials for %v", c.Ssid)

	return nil
}

func (s *Settings) SetInformation(c connection.Credentials) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.credentials = c
}

func toRecord(c connection.Credentials) *wifidb.WifiCredentials {
	return &wifidb.WifiCredentials{
		Ssid:        c.Ssid,
		Pass:        c.Pass,
		ApMode:      c.ApMode,
		AutoDefault: c.AutoDefault,
	}
}

func fromRecord(r *wifidb.WifiCredentials) connection.Credentials {
	return connection.Credentials{
		Ssid:        r.Ssid,
		Pass:        r.Pass,
		ApMode:      r.ApMode,
		AutoDefault: r.AutoDefault,
	}
}
