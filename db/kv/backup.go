package kv

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
	"go.opencensus.io/trace"
)

var log = logrus.WithField("prefix", "db")

const backupsDirectoryName = "backups"

// Backup the database to the datadir backup directory.
// Example: $DATADIR/restakingdata/backups/restaking_db_1671000000.backup
func (s *Store) Backup(ctx context.Context, outputDir string, permissionOverride bool) error {
	_, span := trace.StartSpan(ctx, "db.Backup")
	defer span.End()

	var backupsDir string
	if outputDir != "" {
		backupsDir = outputDir
	} else {
		backupsDir = path.Join(path.Dir(s.databasePath), backupsDirectoryName)
	}
	dirPerms := os.FileMode(0700)
	if permissionOverride {
		dirPerms = 0777
	}
	if err := os.MkdirAll(backupsDir, dirPerms); err != nil {
		return err
	}
	backupPath := path.Join(backupsDir, fmt.Sprintf("restaking_db_%d.backup", time.Now().Unix()))
	log.WithField("backup", backupPath).Info("Writing backup database")

	copyDB, err := bolt.Open(backupPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return errors.Wrap(err, "could not open backup database")
	}
	defer func() {
		if err := copyDB.Close(); err != nil {
			log.WithError(err).Error("Could not close backup database")
		}
	}()

	return s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, b *bolt.Bucket) error {
			log.Debugf("Copying bucket %s", name)
			return copyDB.Update(func(tx2 *bolt.Tx) error {
				b2, err := tx2.CreateBucketIfNotExists(name)
				if err != nil {
					return err
				}
				return b.ForEach(b2.Put)
			})
		})
	})
}
