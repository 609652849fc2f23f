// Package iface defines the persistence contract of a restaking node.
// It is a separate package to break circular dependencies between the
// concrete store and its consumers.
package iface

import (
	"context"
	"io"

	"github.com/restakelabs/restaking/monitoring/backup"
	"github.com/restakelabs/restaking/state"
	"github.com/restakelabs/restaking/types"
)

// ReadOnlyDatabase is the query surface over persisted protocol state.
type ReadOnlyDatabase interface {
	// Vault state.
	Vault(ctx context.Context, id types.VaultID) (*state.VaultData, error)
	HasVault(ctx context.Context, id types.VaultID) (bool, error)
	Vaults(ctx context.Context) ([]*state.VaultData, error)

	// Slash audit records, append-only.
	SlashRecords(ctx context.Context, vault types.VaultID) ([]*types.SlashRecord, error)
	SlashRecordsByEpoch(ctx context.Context, vault types.VaultID, epoch types.Epoch) ([]*types.SlashRecord, error)

	// Registry records.
	Operators(ctx context.Context) ([]*types.OperatorRecord, error)
	Networks(ctx context.Context) ([]*types.NetworkRecord, error)
	OptIns(ctx context.Context) ([]*types.OptInRecord, error)

	// Node metadata.
	GenesisData(ctx context.Context) (genesisTime uint64, configName string, err error)
	ProtocolRecord(ctx context.Context) (*types.ProtocolRecord, error)
}

// WriteAccessDatabase is the mutation surface over persisted protocol
// state. Writes are full-record upserts; the slash record keyspace is
// append-only by construction of its keys.
type WriteAccessDatabase interface {
	SaveVault(ctx context.Context, data *state.VaultData) error
	SaveSlashRecord(ctx context.Context, rec *types.SlashRecord) error
	SaveOperator(ctx context.Context, rec *types.OperatorRecord) error
	SaveNetwork(ctx context.Context, rec *types.NetworkRecord) error
	SaveOptIn(ctx context.Context, rec *types.OptInRecord) error
	SaveGenesisData(ctx context.Context, genesisTime uint64, configName string) error
	SaveProtocolRecord(ctx context.Context, rec *types.ProtocolRecord) error
}

// Database is the full persistence surface for vault state, the
// participant registry, and the slash audit trail.
type Database interface {
	io.Closer
	backup.Exporter
	ReadOnlyDatabase
	WriteAccessDatabase
	DatabasePath() string
	ClearDB() error
}
