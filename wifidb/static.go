package wifidb

import "github.com/go-errors/errors"

const (
	ModeAP  = "ap"
	ModeSTA = "sta"
)

// StaticConfig is the static addressing of one interface mode, in dotted
// notation.
type StaticConfig struct {
	IP      string `json:"ip"`
	Subnet  string `json:"subnet"`
	Gateway string `json:"gateway,omitempty"`
}

func staticKey(mode string) ([]byte, error) {
	switch mode {
	case ModeAP, ModeSTA:
		return []byte(mode), nil
	default:
		return nil, errors.Errorf("unknown mode %v", mode)
	}
}

// GetStaticConfig returns nil when no addressing was saved for mode.
func (db *DB) GetStaticConfig(mode string) (*StaticConfig, error) {
	key, err := staticKey(mode)
	if err != nil {
		return nil, err
	}

	config := &StaticConfig{}

	found, err := db.getJSON(staticBucket, key, config)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, nil
	}

	return config, nil
}

func (db *DB) SetStaticConfig(mode string, config *StaticConfig) error {
	key, err := staticKey(mode)
	if err != nil {
		return err
	}

	return db.setJSON(staticBucket, key, config)
}
