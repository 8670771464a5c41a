// Package battlenet edits the per-game launch arguments stored in
// Battle.net's JSON config (Battle.net.config).
//
// The file is patched in place through [hujson] so key order, spacing and
// any other settings survive untouched.
package battlenet

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tailscale/hujson"

	"github.com/calvinalkan/overbuddy/internal/fs"
)

// DefaultGameKey is Overwatch's key under "Games".
const DefaultGameKey = "prometheus"

// ArgsKey holds the user-supplied launch arguments of a game.
const ArgsKey = "AdditionalLaunchArguments"

// BackupSuffix names the copy of the config taken before each write.
const BackupSuffix = ".backup"

// Error variables for Battle.net config operations.
var (
	ErrReadFailed    = errors.New("cannot read battle.net config")
	ErrWriteFailed   = errors.New("cannot write battle.net config")
	ErrInvalidConfig = errors.New("invalid battle.net config")
	ErrGameNotFound  = errors.New("game not installed on battle.net")
	ErrNoBackup      = errors.New("no battle.net backup to restore")
)

// Result describes one [Editor.SetLaunchArgs] run.
type Result struct {
	Path    string
	Old     string
	HadOld  bool
	New     string
	Changed bool
	Written bool
}

// Editor reads and writes launch arguments in one Battle.net config.
type Editor struct {
	FS          fs.FS
	Locker      *fs.Locker
	LockTimeout time.Duration

	// DryRun computes the result without writing anything.
	DryRun bool
}

// NewEditor returns an Editor using fsys.
func NewEditor(fsys fs.FS) *Editor {
	return &Editor{
		FS:          fsys,
		Locker:      fs.NewLocker(fsys),
		LockTimeout: 2 * time.Second,
	}
}

// LaunchArgs returns the launch arguments of gameKey. found is false when
// the game has no arguments set.
func (e *Editor) LaunchArgs(path, gameKey string) (args string, found bool, err error) {
	root, err := e.parse(path)
	if err != nil {
		return "", false, err
	}

	return lookupArgs(root, path, gameKey)
}

// SetLaunchArgs sets the launch arguments of gameKey to merge(current). A
// copy of the previous file is kept at path+[BackupSuffix].
func (e *Editor) SetLaunchArgs(path, gameKey string, merge func(existing string, found bool) string) (res Result, err error) {
	res = Result{Path: path}

	lock, err := e.Locker.LockWithTimeout(path, e.LockTimeout)
	if err != nil {
		return res, fmt.Errorf("locking %s: %w", path, err)
	}

	defer func() {
		err = errors.Join(err, lock.Close())
	}()

	data, err := e.FS.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("%w: %s: %w", ErrReadFailed, path, err)
	}

	root, err := hujson.Parse(data)
	if err != nil {
		return res, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}

	res.Old, res.HadOld, err = lookupArgs(root, path, gameKey)
	if err != nil {
		return res, err
	}

	res.New = merge(res.Old, res.HadOld)
	res.Changed = res.New != res.Old

	if !res.Changed || e.DryRun {
		return res, nil
	}

	patch, err := json.Marshal([]patchOp{{
		Op:    "add",
		Path:  argsPointer(gameKey),
		Value: res.New,
	}})
	if err != nil {
		return res, fmt.Errorf("encoding patch: %w", err)
	}

	err = root.Patch(patch)
	if err != nil {
		return res, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}

	info, err := e.FS.Stat(path)
	if err != nil {
		return res, fmt.Errorf("%w: %s: %w", ErrReadFailed, path, err)
	}

	err = e.FS.WriteFileAtomic(path+BackupSuffix, data, info.Mode().Perm())
	if err != nil {
		return res, fmt.Errorf("%w: %s: %w", ErrWriteFailed, path+BackupSuffix, err)
	}

	err = e.FS.WriteFileAtomic(path, root.Pack(), info.Mode().Perm())
	if err != nil {
		return res, fmt.Errorf("%w: %s: %w", ErrWriteFailed, path, err)
	}

	res.Written = true

	return res, nil
}

// Restore moves path+[BackupSuffix] back over path, undoing the last
// [Editor.SetLaunchArgs]. The backup is consumed.
func (e *Editor) Restore(path string) (err error) {
	lock, err := e.Locker.LockWithTimeout(path, e.LockTimeout)
	if err != nil {
		return fmt.Errorf("locking %s: %w", path, err)
	}

	defer func() {
		err = errors.Join(err, lock.Close())
	}()

	backup := path + BackupSuffix

	exists, err := e.FS.Exists(backup)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReadFailed, backup, err)
	}

	if !exists {
		return fmt.Errorf("%w: %s", ErrNoBackup, backup)
	}

	err = e.FS.ReplaceFile(backup, path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, path, err)
	}

	return nil
}

type patchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value string `json:"value"`
}

func (e *Editor) parse(path string) (hujson.Value, error) {
	data, err := e.FS.ReadFile(path)
	if err != nil {
		return hujson.Value{}, fmt.Errorf("%w: %s: %w", ErrReadFailed, path, err)
	}

	root, err := hujson.Parse(data)
	if err != nil {
		return hujson.Value{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}

	return root, nil
}

func lookupArgs(root hujson.Value, path, gameKey string) (string, bool, error) {
	game := root.Find(gamePointer(gameKey))
	if game == nil {
		return "", false, fmt.Errorf("%w: no Games/%s in %s", ErrGameNotFound, gameKey, path)
	}

	if _, ok := game.Value.(*hujson.Object); !ok {
		return "", false, fmt.Errorf("%w: Games/%s in %s is not an object", ErrInvalidConfig, gameKey, path)
	}

	args := root.Find(argsPointer(gameKey))
	if args == nil {
		return "", false, nil
	}

	lit, ok := args.Value.(hujson.Literal)
	if !ok || lit.Kind() != '"' {
		return "", false, fmt.Errorf("%w: %s of %s in %s is not a string", ErrInvalidConfig, ArgsKey, gameKey, path)
	}

	return lit.String(), true, nil
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func gamePointer(gameKey string) string {
	return "/Games/" + pointerEscaper.Replace(gameKey)
}

func argsPointer(gameKey string) string {
	return gamePointer(gameKey) + "/" + ArgsKey
}
