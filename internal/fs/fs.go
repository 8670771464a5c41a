// Package fs provides the filesystem operations used to patch launcher
// config files.
//
// The main types are:
//   - [FS]: interface for filesystem operations
//   - [Real]: production implementation using [os] and atomic writes
//   - [Locker]: exclusive flock-based locks on config files
//
// Example usage:
//
//	fsys := fs.NewReal()
//	data, err := fsys.ReadFile("localconfig.vdf")
//	if err != nil {
//	    return err
//	}
//
//	err = fsys.WriteFileAtomic("localconfig.vdf.backup", data, 0o644)
package fs

import (
	"io"
	"os"
)

// File represents an open file descriptor.
//
// This interface is satisfied by [os.File].
type File interface {
	io.ReadWriteCloser

	// Fd returns the file descriptor. See [os.File.Fd].
	// Used for [unix.Flock].
	Fd() uintptr

	// Stat returns the [os.FileInfo] for this file. See [os.File.Stat].
	Stat() (os.FileInfo, error)
}

// FS defines the filesystem operations needed to read, back up, verify and
// replace config files.
//
// All methods mirror their [os] package equivalents but can be intercepted
// in tests.
type FS interface {
	// OpenFile opens a file with specified flags and permissions. See [os.OpenFile].
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic writes data to a file atomically.
	// Uses a temp file + rename so readers never observe a partial file.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// ReplaceFile atomically moves source over destination.
	// After a successful call source no longer exists.
	ReplaceFile(source, destination string) error

	// ReadDir reads a directory and returns its entries. See [os.ReadDir].
	ReadDir(path string) ([]os.DirEntry, error)

	// Stat returns file info. See [os.Stat].
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory. See [os.Remove].
	Remove(path string) error
}

// Compile-time interface checks.
var (
	_ File = (*os.File)(nil)
	_ FS   = (*Real)(nil)
)
