package kv

import (
	"context"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/restakelabs/restaking/state"
	"github.com/restakelabs/restaking/types"
)

// SaveVault persists a vault's full accounting state and refreshes the
// cache entry.
func (s *Store) SaveVault(_ context.Context, data *state.VaultData) error {
	if data == nil {
		return errors.New("cannot save nil vault")
	}
	enc, err := encode(data)
	if err != nil {
		return err
	}
	if err := s.update(func(tx *bolt.Tx) error {
		return tx.Bucket(vaultsBucket).Put(data.ID[:], enc)
	}); err != nil {
		return err
	}
	if s.vaultCacheEnabled {
		s.vaultCache.Set(string(data.ID[:]), state.FromData(data).CopyData(), 1)
	}
	return nil
}

// Vault retrieval by id. Returns nil when no vault is stored under the
// id. The returned data is the caller's to mutate.
func (s *Store) Vault(_ context.Context, id types.VaultID) (*state.VaultData, error) {
	if s.vaultCacheEnabled {
		if cached, ok := s.vaultCache.Get(string(id[:])); ok {
			if data, ok := cached.(*state.VaultData); ok {
				return state.FromData(data).CopyData(), nil
			}
		}
	}
	var data *state.VaultData
	err := s.view(func(tx *bolt.Tx) error {
		enc := tx.Bucket(vaultsBucket).Get(id[:])
		if enc == nil {
			return nil
		}
		data = &state.VaultData{}
		return decode(enc, data)
	})
	if err != nil {
		return nil, err
	}
	if data != nil && s.vaultCacheEnabled {
		s.vaultCache.Set(string(id[:]), state.FromData(data).CopyData(), 1)
	}
	return data, nil
}

// HasVault checks if a vault by id exists in the db.
func (s *Store) HasVault(_ context.Context, id types.VaultID) (bool, error) {
	if s.vaultCacheEnabled {
		if _, ok := s.vaultCache.Get(string(id[:])); ok {
			return true, nil
		}
	}
	exists := false
	err := s.view(func(tx *bolt.Tx) error {
		exists = tx.Bucket(vaultsBucket).Get(id[:]) != nil
		return nil
	})
	return exists, err
}

// Vaults returns every stored vault state ordered by id.
func (s *Store) Vaults(_ context.Context) ([]*state.VaultData, error) {
	var vaults []*state.VaultData
	err := s.view(func(tx *bolt.Tx) error {
		return tx.Bucket(vaultsBucket).ForEach(func(_, enc []byte) error {
			data := &state.VaultData{}
			if err := decode(enc, data); err != nil {
				return err
			}
			vaults = append(vaults, data)
			return nil
		})
	})
	return vaults, err
}
