// Package types includes the primitive identifiers and record structures
// shared by the vault accounting, delegation, withdrawal and slashing logic.
package types

import (
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
	"github.com/restakelabs/restaking/encoding/bytesutil"
)

// Epoch is a discrete protocol time unit supplied by the epoch clock.
// All security windows are expressed in epochs, never in wall-clock time.
type Epoch uint64

// Add returns e + x.
func (e Epoch) Add(x uint64) Epoch {
	return e + Epoch(x)
}

// VaultID identifies a vault. One vault exists per underlying asset.
type VaultID [32]byte

// OperatorID identifies a registered operator.
type OperatorID [32]byte

// NetworkID identifies a registered network.
type NetworkID [32]byte

// Account identifies an external asset or share holder.
type Account [32]byte

func (v VaultID) String() string {
	return fmt.Sprintf("%#x", bytesutil.Trunc(v[:]))
}

// IsZero reports whether the id is unset.
func (v VaultID) IsZero() bool {
	return v == VaultID{}
}

func (o OperatorID) String() string {
	return fmt.Sprintf("%#x", bytesutil.Trunc(o[:]))
}

// IsZero reports whether the id is unset.
func (o OperatorID) IsZero() bool {
	return o == OperatorID{}
}

func (n NetworkID) String() string {
	return fmt.Sprintf("%#x", bytesutil.Trunc(n[:]))
}

// IsZero reports whether the id is unset.
func (n NetworkID) IsZero() bool {
	return n == NetworkID{}
}

func (a Account) String() string {
	return fmt.Sprintf("%#x", bytesutil.Trunc(a[:]))
}

// MarshalText encodes the id as plain hex, which also makes the type
// usable as a JSON map key.
func (o OperatorID) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(o[:])), nil
}

// UnmarshalText decodes a plain hex id.
func (o *OperatorID) UnmarshalText(text []byte) error {
	return unmarshalID((*[32]byte)(o), text)
}

// MarshalText encodes the id as plain hex.
func (v VaultID) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(v[:])), nil
}

// UnmarshalText decodes a plain hex id.
func (v *VaultID) UnmarshalText(text []byte) error {
	return unmarshalID((*[32]byte)(v), text)
}

// MarshalText encodes the id as plain hex.
func (n NetworkID) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(n[:])), nil
}

// UnmarshalText decodes a plain hex id.
func (n *NetworkID) UnmarshalText(text []byte) error {
	return unmarshalID((*[32]byte)(n), text)
}

// MarshalText encodes the account as plain hex.
func (a Account) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(a[:])), nil
}

// UnmarshalText decodes a plain hex account.
func (a *Account) UnmarshalText(text []byte) error {
	return unmarshalID((*[32]byte)(a), text)
}

func unmarshalID(dst *[32]byte, text []byte) error {
	raw, err := hex.DecodeString(string(text))
	if err != nil {
		return errors.Wrap(err, "could not decode hex id")
	}
	if len(raw) != 32 {
		return errors.Errorf("wrong id length %d", len(raw))
	}
	copy(dst[:], raw)
	return nil
}

// ToVaultID converts a byte slice, truncating or zero padding to 32 bytes.
func ToVaultID(b []byte) VaultID {
	return VaultID(bytesutil.ToBytes32(b))
}

// ToOperatorID converts a byte slice, truncating or zero padding to 32 bytes.
func ToOperatorID(b []byte) OperatorID {
	return OperatorID(bytesutil.ToBytes32(b))
}

// ToNetworkID converts a byte slice, truncating or zero padding to 32 bytes.
func ToNetworkID(b []byte) NetworkID {
	return NetworkID(bytesutil.ToBytes32(b))
}

// ToAccount converts a byte slice, truncating or zero padding to 32 bytes.
func ToAccount(b []byte) Account {
	return Account(bytesutil.ToBytes32(b))
}
