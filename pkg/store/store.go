// Package store keeps compiled module data in a bbolt database, so that
// imports can be served without reading module files.
package store

import (
	"fmt"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
	"src.elabenv.dev/pkg/logutil"
	. "src.elabenv.dev/pkg/store/storedefs"
)

var logger = logutil.GetLogger("[store] ")

var initDB = map[string](func(*bolt.Tx) error){}

// DBStore is the permanent storage backend for module data.
type DBStore interface {
	Store
	Close() error
}

var _ DBStore = (*dbStore)(nil)

type dbStore struct {
	db *bolt.DB
	wg sync.WaitGroup
}

func dbWithDefaultOptions(dbname string) (*bolt.DB, error) {
	db, err := bolt.Open(dbname, 0644,
		&bolt.Options{
			Timeout: 1 * time.Second,
		})
	return db, err
}

// NewStore creates a new Store from the given file.
func NewStore(dbname string) (DBStore, error) {
	db, err := dbWithDefaultOptions(dbname)
	if err != nil {
		return nil, err
	}
	return NewStoreFromDB(db)
}

// NewStoreFromDB creates a new Store from a bolt DB.
func NewStoreFromDB(db *bolt.DB) (DBStore, error) {
	logger.Println("initializing store")
	defer logger.Println("initialized store")
	st := &dbStore{db: db}

	err := db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			err := fn(tx)
			if err != nil {
				return fmt.Errorf("failed to %s: %w", name, err)
			}
		}
		return nil
	})
	return st, err
}

// Close waits for all outstanding operations to finish, and closes the
// database.
func (s *dbStore) Close() error {
	if s.db == nil {
		return nil
	}
	s.wg.Wait()
	return s.db.Close()
}
