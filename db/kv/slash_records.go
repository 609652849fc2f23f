package kv

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/restakelabs/restaking/encoding/bytesutil"
	"github.com/restakelabs/restaking/types"
)

func slashRecordKey(rec *types.SlashRecord) []byte {
	key := make([]byte, 0, 56)
	key = append(key, rec.Vault[:]...)
	key = append(key, bytesutil.Uint64ToBytesBigEndian(uint64(rec.Epoch))...)
	key = append(key, rec.Reference[:]...)
	return key
}

// SaveSlashRecord appends a slash outcome to the audit trail.
func (s *Store) SaveSlashRecord(_ context.Context, rec *types.SlashRecord) error {
	if rec == nil {
		return errors.New("cannot save nil slash record")
	}
	enc, err := encode(rec)
	if err != nil {
		return err
	}
	return s.update(func(tx *bolt.Tx) error {
		return tx.Bucket(slashRecordsBucket).Put(slashRecordKey(rec), enc)
	})
}

// SlashRecords returns the vault's full audit trail in epoch order.
func (s *Store) SlashRecords(_ context.Context, vault types.VaultID) ([]*types.SlashRecord, error) {
	var records []*types.SlashRecord
	err := s.view(func(tx *bolt.Tx) error {
		c := tx.Bucket(slashRecordsBucket).Cursor()
		for k, enc := c.Seek(vault[:]); k != nil && bytes.HasPrefix(k, vault[:]); k, enc = c.Next() {
			rec := &types.SlashRecord{}
			if err := decode(enc, rec); err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})
	return records, err
}

// SlashRecordsByEpoch returns the vault's audit records for one epoch.
func (s *Store) SlashRecordsByEpoch(_ context.Context, vault types.VaultID, epoch types.Epoch) ([]*types.SlashRecord, error) {
	prefix := make([]byte, 0, 40)
	prefix = append(prefix, vault[:]...)
	prefix = append(prefix, bytesutil.Uint64ToBytesBigEndian(uint64(epoch))...)

	var records []*types.SlashRecord
	err := s.view(func(tx *bolt.Tx) error {
		c := tx.Bucket(slashRecordsBucket).Cursor()
		for k, enc := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, enc = c.Next() {
			rec := &types.SlashRecord{}
			if err := decode(enc, rec); err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})
	return records, err
}
