// Package db defines the ability to create a new database for the
// restaking node.
package db

import (
	"github.com/restakelabs/restaking/db/iface"
	"github.com/restakelabs/restaking/db/kv"
)

// Database defines the necessary methods for the restaking node's
// backend which may be implemented by any key-value or relational
// database in practice.
type Database = iface.Database

// NewDB initializes a new database at the directory path specified.
func NewDB(dirPath string, cfg *kv.Config) (Database, error) {
	return kv.NewKVStore(dirPath, cfg)
}
