package kv

import (
	"encoding/json"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

func encode(v interface{}) ([]byte, error) {
	if v == nil {
		return nil, errors.New("cannot encode nil value")
	}
	enc, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, enc), nil
}

func decode(data []byte, dst interface{}) error {
	data, err := snappy.Decode(nil, data)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
