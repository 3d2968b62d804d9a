package wifidb

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-errors/errors"
	"go.etcd.io/bbolt"
)

const (
	dbName           = "wifi.db"
	dbFilePermission = 0600
)

var (
	settingsBucket = []byte("settings")
	staticBucket   = []byte("static")
)

// DB persists wifi credentials and static addressing in a bbolt file.
type DB struct {
	*bbolt.DB
}

// Open opens or creates the database inside dataDir.
func Open(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, errors.Errorf("could not create data dir %v: %v", dataDir, err)
	}

	path := filepath.Join(dataDir, dbName)

	bdb, err := bbolt.Open(path, dbFilePermission, &bbolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, errors.Errorf("could not open %v: %v", path, err)
	}

	err = bdb.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{settingsBucket, staticBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		_ = bdb.Close()
		return nil, errors.Errorf("could not create buckets: %v", err)
	}

	return &DB{DB: bdb}, nil
}
