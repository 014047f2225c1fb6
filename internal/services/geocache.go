package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// DefaultGeocodeCacheTTL bounds how long a resolved address is reused
const DefaultGeocodeCacheTTL = 7 * 24 * time.Hour

// BadgerGeocodeCache keeps reverse geocoding results on disk so repeated
// lookups of a stationary trashcan don't hit the paid API
type BadgerGeocodeCache struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenGeocodeCache opens (or creates) the cache in dir
func OpenGeocodeCache(dir string, ttl time.Duration) (*BadgerGeocodeCache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open geocode cache: %w", err)
	}
	return &BadgerGeocodeCache{db: db, ttl: ttl}, nil
}

func (c *BadgerGeocodeCache) Get(key string) (string, bool) {
	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			log.Printf("⚠️  Geocode cache read failed for %s: %v", key, err)
		}
		return "", false
	}
	return string(value), true
}

func (c *BadgerGeocodeCache) Set(key, address string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), []byte(address)).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
}

func (c *BadgerGeocodeCache) Close() error {
	return c.db.Close()
}
