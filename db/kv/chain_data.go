package kv

import (
	"context"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/restakelabs/restaking/encoding/bytesutil"
	"github.com/restakelabs/restaking/types"
)

// SaveGenesisData records the genesis time and active config name the
// node was initialized with. A restart validates against these so a data
// directory cannot silently switch protocol parameters.
func (s *Store) SaveGenesisData(_ context.Context, genesisTime uint64, configName string) error {
	return s.update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(chainMetadataBucket)
		if err := bkt.Put(genesisTimeKey, bytesutil.Uint64ToBytesBigEndian(genesisTime)); err != nil {
			return err
		}
		return bkt.Put(configNameKey, []byte(configName))
	})
}

// SaveProtocolRecord stores the protocol-wide settings snapshot.
func (s *Store) SaveProtocolRecord(_ context.Context, rec *types.ProtocolRecord) error {
	enc, err := encode(rec)
	if err != nil {
		return err
	}
	return s.update(func(tx *bolt.Tx) error {
		return tx.Bucket(chainMetadataBucket).Put(protocolRecordKey, enc)
	})
}

// ProtocolRecord returns the stored protocol-wide settings snapshot, or
// nil when none has been written yet.
func (s *Store) ProtocolRecord(_ context.Context) (*types.ProtocolRecord, error) {
	var rec *types.ProtocolRecord
	err := s.view(func(tx *bolt.Tx) error {
		enc := tx.Bucket(chainMetadataBucket).Get(protocolRecordKey)
		if enc == nil {
			return nil
		}
		rec = &types.ProtocolRecord{}
		return decode(enc, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GenesisData returns the stored genesis time and config name. Both are
// zero valued when the node has not been initialized yet.
func (s *Store) GenesisData(_ context.Context) (uint64, string, error) {
	var genesisTime uint64
	var configName string
	err := s.view(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(chainMetadataBucket)
		if enc := bkt.Get(genesisTimeKey); enc != nil {
			if len(enc) != 8 {
				return errors.Errorf("corrupt genesis time entry of %d bytes", len(enc))
			}
			genesisTime = bytesutil.BytesToUint64BigEndian(enc)
		}
		if enc := bkt.Get(configNameKey); enc != nil {
			configName = string(enc)
		}
		return nil
	})
	return genesisTime, configName, err
}
