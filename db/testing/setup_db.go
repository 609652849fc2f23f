// Package testing allows for spinning up a real bolt-db instance for
// unit tests throughout the repo.
package testing

import (
	"testing"

	"github.com/restakelabs/restaking/db"
	"github.com/restakelabs/restaking/db/kv"
)

// SetupDB instantiates and returns a database backed by a key value
// store in a test-scoped temporary directory.
func SetupDB(t testing.TB) db.Database {
	s, err := kv.NewKVStore(t.TempDir(), &kv.Config{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Fatalf("failed to close database: %v", err)
		}
	})
	return s
}
