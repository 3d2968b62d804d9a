package wifidb

var wifiCredentialsKey = []byte("wifiCredentials")

// WifiCredentials are the last credentials a connection was saved with.
type WifiCredentials struct {
	Ssid        string `json:"ssid"`
	Pass        string `json:"pass"`
	ApMode      bool   `json:"apMode"`
	AutoDefault bool   `json:"autoDefault"`
}

// GetWifiCredentials returns nil when nothing was saved yet.
func (db *DB) GetWifiCredentials() (*WifiCredentials, error) {
	credentials := &WifiCredentials{}

	found, err := db.getJSON(settingsBucket, wifiCredentialsKey, credentials)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, nil
	}

	return credentials, nil
}

func (db *DB) SetWifiCredentials(credentials *WifiCredentials) error {
	return db.setJSON(settingsBucket, wifiCredentialsKey, credentials)
}

func (db *DB) DeleteWifiCredentials() error {
	return db.deleteKey(settingsBucket, wifiCredentialsKey)
}
