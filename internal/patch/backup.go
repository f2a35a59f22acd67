package patch

import (
	"errors"
	"fmt"
	"os"

	"coda/internal/fileutil"
	"coda/internal/logging"
)

// BackupSuffix is appended to a file's path to form its backup path.
const BackupSuffix = ".bak"

var (
	// ErrBackup reports that a backup could not be created or read. Any
	// mutation guarded by the backup must be aborted.
	ErrBackup = errors.New("backup failed")

	// ErrNoBackup reports a restore attempt with no backup on disk.
	ErrNoBackup = errors.New("no backup exists")
)

// BackupPath returns the sibling backup path for a file. One slot per path:
// a later backup overwrites an earlier one.
func BackupPath(path string) string {
	return path + BackupSuffix
}

// CreateBackup copies the file at path to its backup slot and returns the
// backup path. The source must exist and be readable; a failed backup never
// leaves a partial copy behind.
func CreateBackup(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackup, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrBackup, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackup, err)
	}

	backupPath := BackupPath(path)
	if err := fileutil.AtomicWrite(backupPath, data, info.Mode().Perm()); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackup, err)
	}

	logging.Debug("backup created", "path", path, "backup", backupPath)
	return backupPath, nil
}

// RestoreBackup copies the backup back over the original file. The backup is
// kept so restore can be repeated.
func RestoreBackup(path string) error {
	backupPath := BackupPath(path)
	info, err := os.Stat(backupPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNoBackup, backupPath)
		}
		return fmt.Errorf("reading backup %s: %w", backupPath, err)
	}

	data, err := os.ReadFile(backupPath)
	if err != nil {
		return fmt.Errorf("reading backup %s: %w", backupPath, err)
	}
	if err := fileutil.AtomicWrite(path, data, info.Mode().Perm()); err != nil {
		return fmt.Errorf("restoring %s: %w", path, err)
	}

	logging.Info("backup restored", "path", path, "backup", backupPath)
	return nil
}

// HasBackup reports whether a backup exists for the file.
func HasBackup(path string) bool {
	info, err := os.Stat(BackupPath(path))
	return err == nil && !info.IsDir()
}
