// Package lockprobe reports whether a file is safe to touch right now.
//
// The probe is advisory. A file that's reported free may be opened by another
// process before the caller gets to it, so callers that care retry on failure
// rather than trusting a single probe.
package lockprobe

import (
	"context"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"github.com/sidkik/addonsync/pkg/errors"
)

type locker interface {
	TryLock() (bool, error)
	Unlock() error
}

// Mocked out for unit testing. The handle is opened read-only so that
// probing never creates the file or needs write permission.
var (
	stat      = os.Stat
	newLocker = func(path string) locker {
		return flock.New(path, flock.SetFlag(os.O_RDONLY))
	}
)

// IsLocked returns true if the file at path shouldn't be touched yet: it's
// held by another writer, doesn't exist, or can't be opened. Every failure
// during the probe is reported as locked.
func IsLocked(path string) bool {
	err := Check(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Debug("File is locked or unavailable")
	}
	return err != nil
}

// Check is like IsLocked, but returns the reason the file is unavailable as
// a LockedOrUnavailable error.
func Check(path string) error {
	fi, err := stat(path)
	if err != nil {
		return errors.E(errors.LockedOrUnavailable, "probe", path, err)
	}

	if fi.IsDir() {
		return errors.E(errors.LockedOrUnavailable, "probe", path,
			errors.New("is a directory"))
	}

	l := newLocker(path)
	locked, err := l.TryLock()
	if err != nil {
		return errors.E(errors.LockedOrUnavailable, "probe", path,
			errors.WithContext(err, "acquire lock"))
	}

	if !locked {
		return errors.E(errors.LockedOrUnavailable, "probe", path,
			errors.New("file is locked by another process"))
	}

	if unlockErr := l.Unlock(); unlockErr != nil {
		return errors.E(errors.LockedOrUnavailable, "probe", path,
			errors.WithContext(unlockErr, "release lock"))
	}
	return nil
}

// WaitUnlocked polls the file every interval until it's no longer locked.
// It's meant for callers that own the retry policy; none of the other
// packages wait on locks themselves.
func WaitUnlocked(ctx context.Context, clock clockwork.Clock, interval time.Duration,
	path string) error {

	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		err := Check(path)
		if err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return errors.WithContext(err, ctx.Err().Error())
		case <-ticker.Chan():
		}
	}
}
