package fs

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

var (
	// ErrWouldBlock is returned when a lock cannot be acquired before the
	// timeout expires.
	ErrWouldBlock = errors.New("lock would block")

	// ErrInvalidTimeout is returned when a timeout is <= 0.
	ErrInvalidTimeout = errors.New("invalid lock timeout")

	// errInodeMismatch indicates the lock file was replaced between open and
	// flock. Callers retry.
	errInodeMismatch = errors.New("inode mismatch")
)

// LockSuffix is appended to a config path to form its lock file.
const LockSuffix = ".lock"

// Locker provides exclusive file locks using flock(2) (via [unix.Flock]).
//
// The lock is taken on a dedicated "<path>.lock" file next to the config,
// never on the config itself, because the config is replaced by rename
// while the lock is held.
//
// flock is advisory. Launchers do not take it; it only serialises
// concurrent overbuddy runs against the same file.
//
// This implementation is Unix-only.
type Locker struct {
	fs    FS
	flock func(fd int, how int) error
}

// NewLocker creates a Locker that uses the given filesystem for file operations.
func NewLocker(fs FS) *Locker {
	return &Locker{
		fs:    fs,
		flock: unix.Flock,
	}
}

// Lock represents a held file lock. Call [Lock.Close] to release it.
type Lock struct {
	mu    sync.Mutex
	path  string
	fs    FS
	file  File
	flock func(fd int, how int) error
}

// Close removes the lock file, releases the lock and closes the descriptor.
// Order matters: remove while holding the lock, then unlock, then close.
//
// Close is idempotent.
func (lk *Lock) Close() error {
	lk.mu.Lock()
	defer lk.mu.Unlock()

	if lk.file == nil {
		return nil
	}

	removeErr := lk.fs.Remove(lk.path)
	if removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
		removeErr = fmt.Errorf("removing lock file: %w", removeErr)
	} else {
		removeErr = nil
	}

	unlockErr := flockRetryEINTR(lk.flock, int(lk.file.Fd()), unix.LOCK_UN)
	closeErr := lk.file.Close()
	lk.file = nil

	if unlockErr != nil {
		unlockErr = fmt.Errorf("unlocking lock: %w", unlockErr)
	}

	if closeErr != nil {
		closeErr = fmt.Errorf("closing lock fd: %w", closeErr)
	}

	return errors.Join(removeErr, unlockErr, closeErr)
}

// LockWithTimeout acquires an exclusive lock for path, retrying with
// exponential backoff (1ms to 25ms) until the timeout expires.
//
// Returns an error satisfying [errors.Is] with [ErrWouldBlock] if the timeout
// expires first, and [ErrInvalidTimeout] if timeout <= 0.
func (l *Locker) LockWithTimeout(path string, timeout time.Duration) (*Lock, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("%w: timeout must be > 0", ErrInvalidTimeout)
	}

	lockPath := path + LockSuffix
	deadline := time.Now().Add(timeout)
	backoff := time.Millisecond

	for {
		file, err := l.fs.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, lockFilePerm)
		if err != nil {
			return nil, fmt.Errorf("opening lockfile: %w", err)
		}

		err = l.acquire(file, lockPath)
		if err == nil {
			return &Lock{path: lockPath, fs: l.fs, file: file, flock: l.flock}, nil
		}

		_ = file.Close()

		if !errors.Is(err, ErrWouldBlock) && !errors.Is(err, errInodeMismatch) {
			return nil, err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("%w: timed out after %s on %s", ErrWouldBlock, timeout, path)
		}

		time.Sleep(min(backoff, remaining))

		backoff = min(backoff*2, 25*time.Millisecond)
	}
}

const lockFilePerm = 0o600

// acquire flocks file without blocking and verifies the inode still matches
// path. On failure the file is unlocked but NOT closed.
func (l *Locker) acquire(file File, path string) error {
	fd := int(file.Fd())

	if err := flockRetryEINTR(l.flock, fd, unix.LOCK_EX|unix.LOCK_NB); err != nil {
		if errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EAGAIN) {
			return ErrWouldBlock
		}

		return fmt.Errorf("flock: %w", err)
	}

	match, err := l.inodeMatchesPath(path, file)
	if err != nil || !match {
		_ = flockRetryEINTR(l.flock, fd, unix.LOCK_UN)

		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("verifying inode match: %w", err)
		}

		return errInodeMismatch
	}

	return nil
}

// inodeMatchesPath reports whether f still refers to the file at path.
// A previous holder removes the lock file on release, so the inode we
// opened may already be unlinked by the time flock succeeds.
func (l *Locker) inodeMatchesPath(path string, f File) (bool, error) {
	openInfo, err := f.Stat()
	if err != nil {
		return false, err
	}

	pathInfo, err := l.fs.Stat(path)
	if err != nil {
		return false, err
	}

	return os.SameFile(openInfo, pathInfo), nil
}

func flockRetryEINTR(flock func(int, int) error, fd, how int) error {
	for {
		err := flock(fd, how)
		if !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}
