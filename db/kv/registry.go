package kv

import (
	"context"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/restakelabs/restaking/types"
)

// SaveOperator persists an operator record under its id.
func (s *Store) SaveOperator(_ context.Context, rec *types.OperatorRecord) error {
	if rec == nil {
		return errors.New("cannot save nil operator record")
	}
	enc, err := encode(rec)
	if err != nil {
		return err
	}
	return s.update(func(tx *bolt.Tx) error {
		return tx.Bucket(operatorsBucket).Put(rec.ID[:], enc)
	})
}

// Operators returns every stored operator record ordered by id.
func (s *Store) Operators(_ context.Context) ([]*types.OperatorRecord, error) {
	var records []*types.OperatorRecord
	err := s.view(func(tx *bolt.Tx) error {
		return tx.Bucket(operatorsBucket).ForEach(func(_, enc []byte) error {
			rec := &types.OperatorRecord{}
			if err := decode(enc, rec); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	return records, err
}

// SaveNetwork persists a network record under its id.
func (s *Store) SaveNetwork(_ context.Context, rec *types.NetworkRecord) error {
	if rec == nil {
		return errors.New("cannot save nil network record")
	}
	enc, err := encode(rec)
	if err != nil {
		return err
	}
	return s.update(func(tx *bolt.Tx) error {
		return tx.Bucket(networksBucket).Put(rec.ID[:], enc)
	})
}

// Networks returns every stored network record ordered by id.
func (s *Store) Networks(_ context.Context) ([]*types.NetworkRecord, error) {
	var records []*types.NetworkRecord
	err := s.view(func(tx *bolt.Tx) error {
		return tx.Bucket(networksBucket).ForEach(func(_, enc []byte) error {
			rec := &types.NetworkRecord{}
			if err := decode(enc, rec); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	return records, err
}

func optInKey(rec *types.OptInRecord) []byte {
	key := make([]byte, 0, 96)
	key = append(key, rec.Vault[:]...)
	key = append(key, rec.Operator[:]...)
	key = append(key, rec.Network[:]...)
	return key
}

// SaveOptIn persists an opt-in record under its triple.
func (s *Store) SaveOptIn(_ context.Context, rec *types.OptInRecord) error {
	if rec == nil {
		return errors.New("cannot save nil opt-in record")
	}
	enc, err := encode(rec)
	if err != nil {
		return err
	}
	return s.update(func(tx *bolt.Tx) error {
		return tx.Bucket(optInsBucket).Put(optInKey(rec), enc)
	})
}

// OptIns returns every stored opt-in record, active and retired.
func (s *Store) OptIns(_ context.Context) ([]*types.OptInRecord, error) {
	var records []*types.OptInRecord
	err := s.view(func(tx *bolt.Tx) error {
		return tx.Bucket(optInsBucket).ForEach(func(_, enc []byte) error {
			rec := &types.OptInRecord{}
			if err := decode(enc, rec); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	return records, err
}
