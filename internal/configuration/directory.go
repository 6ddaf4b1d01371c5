package configuration

import (
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"

	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
)

// MarkerFile is written at the root of every standalone home cargo creates.
// Its presence is the only signal that the directory may be wiped.
const MarkerFile = ".cargo"

// SetupConfigurationDir prepares a standalone home. The directory must be
// missing, empty, or carry the marker file; anything else is rejected
// untouched. On success the directory is recreated empty with a fresh
// marker. A sibling lock file, removed again on return, keeps two processes
// from preparing the same home at once.
func SetupConfigurationDir(home string, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	home = filepath.Clean(home)

	if err := os.MkdirAll(filepath.Dir(home), 0o755); err != nil {
		return errUtils.Wrapf(err, errUtils.ErrConfiguration, "failed to create parent of configuration dir [%s]", home)
	}

	lock := flock.New(home + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return errUtils.Wrapf(err, errUtils.ErrConfiguration, "failed to lock configuration dir [%s]", home)
	}
	if !locked {
		return errUtils.Newf(errUtils.ErrConfiguration, "configuration dir [%s] is being prepared by another process", home)
	}
	defer func() {
		// Removed while still held so no other process locks the stale path.
		if err := os.Remove(lock.Path()); err != nil && !os.IsNotExist(err) {
			logger.Debug("failed to remove configuration dir lock", "path", lock.Path(), "error", err)
		}
		if err := lock.Unlock(); err != nil {
			logger.Debug("failed to unlock configuration dir", "home", home, "error", err)
		}
	}()

	safe, err := isSafeToWipe(home)
	if err != nil {
		return err
	}
	if !safe {
		return errUtils.Newf(errUtils.ErrUnsafeDirectory,
			"invalid configuration dir [%s]: standalone configurations need an empty directory or one previously created by cargo (marked by a %s file), because everything in it gets deleted",
			home, MarkerFile)
	}

	logger.Debug("recreating configuration dir", "home", home)
	if err := os.RemoveAll(home); err != nil {
		return errUtils.Wrapf(err, errUtils.ErrConfiguration, "failed to clean configuration dir [%s]", home)
	}
	if err := os.MkdirAll(home, 0o755); err != nil {
		return errUtils.Wrapf(err, errUtils.ErrConfiguration, "failed to create configuration dir [%s]", home)
	}

	stamp := []byte(time.Now().UTC().Format(time.RFC3339) + "\n")
	if err := renameio.WriteFile(filepath.Join(home, MarkerFile), stamp, 0o644); err != nil {
		return errUtils.Wrapf(err, errUtils.ErrConfiguration, "failed to write marker file in [%s]", home)
	}
	return nil
}

func isSafeToWipe(home string) (bool, error) {
	info, err := os.Stat(home)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, errUtils.Wrapf(err, errUtils.ErrConfiguration, "failed to inspect configuration dir [%s]", home)
	}
	if !info.IsDir() {
		return false, nil
	}

	if _, err := os.Stat(filepath.Join(home, MarkerFile)); err == nil {
		return true, nil
	}

	entries, err := os.ReadDir(home)
	if err != nil {
		return false, errUtils.Wrapf(err, errUtils.ErrConfiguration, "failed to list configuration dir [%s]", home)
	}
	return len(entries) == 0, nil
}
