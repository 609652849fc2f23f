// Package kv implements the restaking node's persistence layer on
// BoltDB, with a ristretto cache in front of vault state reads.
package kv

import (
	"os"
	"path"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prysmaticlabs/prombbolt"
	bolt "go.etcd.io/bbolt"

	"github.com/restakelabs/restaking/config/params"
)

// RestakingNodeDbDirName is the name of the directory containing the restaking node database.
const RestakingNodeDbDirName = "restakingdata"

var databaseFileName = "restaking.db"

// Store defines an implementation of the restaking Database interface
// using BoltDB as the underlying persistent kv-store.
type Store struct {
	db                *bolt.DB
	databasePath      string
	vaultCache        *ristretto.Cache
	vaultCacheEnabled bool
}

// Config options for the restaking db.
type Config struct {
	// VaultCacheSize is the maximum number of vault states kept in memory.
	VaultCacheSize int64
	// DisableVaultCache forces every vault read through BoltDB.
	DisableVaultCache bool
	// InitialMMapSize is the initial mmap size of the underlying BoltDB in bytes.
	InitialMMapSize int
}

// NewKVStore initializes a new boltDB key-value store at the directory
// path specified, creates the kv-buckets based on the schema, and stores
// an open connection db object as a property of the Store struct.
func NewKVStore(dirPath string, cfg *Config) (*Store, error) {
	if err := os.MkdirAll(dirPath, 0700); err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &Config{}
	}
	datafile := path.Join(dirPath, databaseFileName)
	boltDB, err := bolt.Open(datafile, 0600, &bolt.Options{
		Timeout:         1 * time.Second,
		InitialMmapSize: cfg.InitialMMapSize,
	})
	if err != nil {
		if err == bolt.ErrTimeout {
			return nil, errors.New("cannot obtain database lock, database may be in use by another process")
		}
		return nil, err
	}
	if cfg.VaultCacheSize == 0 {
		cfg.VaultCacheSize = params.RestakingConfig().VaultCacheSize
	}
	kv := &Store{db: boltDB, databasePath: datafile, vaultCacheEnabled: !cfg.DisableVaultCache}
	vaultCache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.VaultCacheSize * 10, // number of keys to track frequency of.
		MaxCost:     cfg.VaultCacheSize,      // maximum cost of cache, one unit per vault.
		BufferItems: 64,                      // number of keys per Get buffer.
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to start vault cache")
	}
	kv.vaultCache = vaultCache

	if err := kv.db.Update(func(tx *bolt.Tx) error {
		return createBuckets(
			tx,
			vaultsBucket,
			slashRecordsBucket,
			operatorsBucket,
			networksBucket,
			optInsBucket,
			chainMetadataBucket,
		)
	}); err != nil {
		return nil, err
	}
	err = prometheus.Register(createBoltCollector(kv.db))

	return kv, err
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	prometheus.Unregister(createBoltCollector(s.db))
	return s.db.Close()
}

// ClearDB removes any previously stored data at the configured data directory.
func (s *Store) ClearDB() error {
	if _, err := os.Stat(s.databasePath); os.IsNotExist(err) {
		return nil
	}
	prometheus.Unregister(createBoltCollector(s.db))
	return os.Remove(s.databasePath)
}

// DatabasePath at which this database writes files.
func (s *Store) DatabasePath() string {
	return s.databasePath
}

// ClearVaultCache drops every cached vault state.
func (s *Store) ClearVaultCache() {
	s.vaultCache.Clear()
}

// Size returns the db size in bytes.
func (s *Store) Size() (int64, error) {
	var size int64
	err := s.db.View(func(tx *bolt.Tx) error {
		size = tx.Size()
		return nil
	})
	return size, err
}

func (s *Store) update(fn func(*bolt.Tx) error) error {
	return s.db.Update(fn)
}

func (s *Store) view(fn func(*bolt.Tx) error) error {
	return s.db.View(fn)
}

func createBuckets(tx *bolt.Tx, buckets ...[]byte) error {
	for _, bucket := range buckets {
		if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
			return err
		}
	}
	return nil
}

// createBoltCollector returns a prometheus collector specifically configured for boltdb.
func createBoltCollector(db *bolt.DB) prometheus.Collector {
	return prombolt.New("boltDB", db)
}
