package protocol

import "github.com/pkg/errors"

// ErrVaultExists is returned when creating a vault under a taken id.
var ErrVaultExists = errors.New("vault already exists")
