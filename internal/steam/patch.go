package steam

import (
	"errors"
	"fmt"
	"time"

	"github.com/calvinalkan/overbuddy/internal/fs"
	"github.com/calvinalkan/overbuddy/internal/vdf"
)

// DefaultLockTimeout bounds how long [Patcher] waits for another run to
// release a config file.
const DefaultLockTimeout = 2 * time.Second

// Status is the outcome of [Patcher.SetLaunchOptions].
type Status int

// Status values.
const (
	// StatusNotInstalled: the account has no block for the app. Nothing was
	// written.
	StatusNotInstalled Status = iota
	// StatusUnchanged: the merged value equals the current one.
	StatusUnchanged
	// StatusVerified: the backup holds a verified candidate. The live file
	// was left alone (dry run).
	StatusVerified
	// StatusApplied: the verified candidate replaced the live file.
	StatusApplied
)

func (s Status) String() string {
	switch s {
	case StatusNotInstalled:
		return "not installed"
	case StatusUnchanged:
		return "unchanged"
	case StatusVerified:
		return "verified"
	case StatusApplied:
		return "applied"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result describes one [Patcher.SetLaunchOptions] run.
type Result struct {
	Path   string
	Status Status

	// Old is the unescaped value before the change; HadOld is false when
	// the key did not exist.
	Old    string
	HadOld bool
	New    string

	Change ChangeRecord

	// Warnings are non-fatal findings, such as indentation that does not
	// match the brace structure.
	Warnings []string
}

// MergeFunc computes the new launch options from the current ones. found
// is false when the app block has no LaunchOptions key yet.
type MergeFunc func(existing string, found bool) string

// Patcher rewrites the LaunchOptions of one app in localconfig.vdf files.
type Patcher struct {
	FS          fs.FS
	Locker      *fs.Locker
	LockTimeout time.Duration

	// DryRun stops after the backup has been written and verified.
	DryRun bool
}

// NewPatcher returns a Patcher using fsys and a flock-based locker.
func NewPatcher(fsys fs.FS) *Patcher {
	return &Patcher{
		FS:          fsys,
		Locker:      fs.NewLocker(fsys),
		LockTimeout: DefaultLockTimeout,
	}
}

// SetLaunchOptions sets the LaunchOptions of appID in the config at path to
// merge(current).
//
// The candidate document is first written to path+[BackupSuffix]. Both
// files are then read back and diffed; anything other than a single
// LaunchOptions line changing is rejected with [ErrUnsafeDiff]. Only then
// is the live file saved to path+[OriginalSuffix] and replaced by the
// backup. The live file is never written on any error path.
func (p *Patcher) SetLaunchOptions(path, appID string, merge MergeFunc) (res Result, err error) {
	res = Result{Path: path}

	lock, err := p.Locker.LockWithTimeout(path, p.LockTimeout)
	if err != nil {
		return res, fmt.Errorf("locking %s: %w", path, err)
	}

	defer func() {
		err = errors.Join(err, lock.Close())
	}()

	doc, err := p.read(path)
	if err != nil {
		return res, err
	}

	appPath := AppPath(appID)

	blk, ok, err := vdf.Navigate(doc, appPath)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}

	if !ok {
		res.Status = StatusNotInstalled
		return res, nil
	}

	if _, _, hintErr := vdf.NavigateIndented(doc, appPath); hintErr != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: indentation does not match braces: %v", path, hintErr))
	}

	raw, found := vdf.Read(doc, blk, LaunchOptionsKey)
	res.Old, res.HadOld = vdf.Unescape(raw), found
	res.New = merge(res.Old, found)

	if !found && res.New == "" {
		res.Status = StatusUnchanged
		return res, nil
	}

	candidate, err := vdf.Write(doc, blk, LaunchOptionsKey, vdf.Escape(res.New))
	if err != nil {
		return res, fmt.Errorf("%s: %s %w", path, appPath, err)
	}

	if candidate == doc {
		res.Status = StatusUnchanged
		return res, nil
	}

	live, rec, err := p.stageAndVerify(path, candidate)
	res.Change = rec

	if err != nil {
		return res, err
	}

	switch {
	case res.Change.Empty():
		res.Status = StatusUnchanged
	case p.DryRun:
		res.Status = StatusVerified
	default:
		if err := p.apply(path, live); err != nil {
			return res, err
		}

		res.Status = StatusApplied
	}

	return res, nil
}

// stageAndVerify writes candidate to the backup path, reads both files back
// and checks the difference. It returns the live content the check was made
// against.
func (p *Patcher) stageAndVerify(path, candidate string) (string, ChangeRecord, error) {
	backup := path + BackupSuffix

	info, err := p.FS.Stat(path)
	if err != nil {
		return "", ChangeRecord{}, fmt.Errorf("%w: %s: %w", ErrReadFailed, path, err)
	}

	err = p.FS.WriteFileAtomic(backup, []byte(candidate), info.Mode().Perm())
	if err != nil {
		return "", ChangeRecord{}, fmt.Errorf("%w: %s: %w", ErrWriteFailed, backup, err)
	}

	live, err := p.read(path)
	if err != nil {
		return "", ChangeRecord{}, err
	}

	staged, err := p.read(backup)
	if err != nil {
		return "", ChangeRecord{}, err
	}

	rec := Diff(live, staged)

	err = rec.Verify(LaunchOptionsKey)
	if err != nil {
		return "", rec, fmt.Errorf("%s vs %s: %w", path, backup, err)
	}

	return live, rec, nil
}

// apply saves live, the verified content of path, as the original and moves
// the backup over path.
func (p *Patcher) apply(path, live string) error {
	info, err := p.FS.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReadFailed, path, err)
	}

	original := path + OriginalSuffix

	err = p.FS.WriteFileAtomic(original, []byte(live), info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, original, err)
	}

	err = p.FS.ReplaceFile(path+BackupSuffix, path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, path, err)
	}

	return nil
}

// Restore moves path+[OriginalSuffix] back over path. The saved original is
// consumed. Returns [ErrNoOriginal] when there is nothing to restore.
func (p *Patcher) Restore(path string) (err error) {
	lock, err := p.Locker.LockWithTimeout(path, p.LockTimeout)
	if err != nil {
		return fmt.Errorf("locking %s: %w", path, err)
	}

	defer func() {
		err = errors.Join(err, lock.Close())
	}()

	original := path + OriginalSuffix

	exists, err := p.FS.Exists(original)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReadFailed, original, err)
	}

	if !exists {
		return fmt.Errorf("%w: %s", ErrNoOriginal, original)
	}

	err = p.FS.ReplaceFile(original, path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, path, err)
	}

	return nil
}

func (p *Patcher) read(path string) (string, error) {
	data, err := p.FS.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrReadFailed, path, err)
	}

	return string(data), nil
}

// LaunchState is the current LaunchOptions setting of one app.
type LaunchState struct {
	Installed bool
	Found     bool
	Value     string // unescaped
}

// ReadLaunchOptions reads the LaunchOptions of appID from the config at path
// without locking it.
func ReadLaunchOptions(fsys fs.FS, path, appID string) (LaunchState, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return LaunchState{}, fmt.Errorf("%w: %s: %w", ErrReadFailed, path, err)
	}

	doc := string(data)

	blk, ok, err := vdf.Navigate(doc, AppPath(appID))
	if err != nil {
		return LaunchState{}, fmt.Errorf("%s: %w", path, err)
	}

	if !ok {
		return LaunchState{}, nil
	}

	raw, found := vdf.Read(doc, blk, LaunchOptionsKey)

	return LaunchState{Installed: true, Found: found, Value: vdf.Unescape(raw)}, nil
}
