package kv

import (
	"context"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/restakelabs/restaking/state"
)

func TestStore_Backup(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	v := sampleVault(t)
	require.NoError(t, s.SaveVault(ctx, v.CopyData()))

	backupsDir := path.Join(t.TempDir(), "backups")
	require.NoError(t, s.Backup(ctx, backupsDir, false))

	files, err := os.ReadDir(backupsDir)
	require.NoError(t, err)
	require.Equal(t, 1, len(files))

	// The backup is a plain bolt file holding every bucket.
	backupDB, err := bolt.Open(path.Join(backupsDir, files[0].Name()), 0600, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, backupDB.Close())
	})

	id := v.ID()
	require.NoError(t, backupDB.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(vaultsBucket)
		require.NotNil(t, bkt)
		enc := bkt.Get(id[:])
		require.NotNil(t, enc)

		data := &state.VaultData{}
		require.NoError(t, decode(enc, data))
		require.Equal(t, v.TotalAssets(), data.TotalAssets)
		require.Equal(t, v.TotalShares(), data.TotalShares)
		return nil
	}))
}

func TestStore_Backup_DefaultsNextToDatabase(t *testing.T) {
	s := setupStore(t)
	require.NoError(t, s.Backup(context.Background(), "", false))

	files, err := os.ReadDir(path.Join(path.Dir(s.DatabasePath()), backupsDirectoryName))
	require.NoError(t, err)
	require.Equal(t, 1, len(files))
}
