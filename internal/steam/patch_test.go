package steam_test

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/overbuddy/internal/fs"
	"github.com/calvinalkan/overbuddy/internal/launch"
	"github.com/calvinalkan/overbuddy/internal/steam"
)

func setTo(value string) steam.MergeFunc {
	return func(string, bool) string { return value }
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

func assertMissing(t *testing.T, path string) {
	t.Helper()

	_, err := os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist, "%s should not exist", path)
}

func TestSetLaunchOptions_Applies_Single_Line_Change(t *testing.T) {
	t.Parallel()

	doc := loadFixture(t)
	path := writeFixture(t, doc)

	res, err := steam.NewPatcher(fs.NewReal()).SetLaunchOptions(path, steam.DefaultAppID, setTo("--bg 5"))
	require.NoError(t, err)

	assert.Equal(t, steam.StatusApplied, res.Status)
	assert.Equal(t, "--old", res.Old)
	assert.True(t, res.HadOld)
	assert.Equal(t, "--bg 5", res.New)
	assert.Equal(t, []string{"\t\t\t\t\t\t\"LaunchOptions\"\t\t\"--old\""}, res.Change.Removed)
	assert.Equal(t, []string{"\t\t\t\t\t\t\"LaunchOptions\"\t\t\"--bg 5\""}, res.Change.Added)
	assert.Empty(t, res.Warnings)

	want := strings.Replace(doc, "\"--old\"", "\"--bg 5\"", 1)
	assert.Equal(t, want, readFile(t, path))
	assert.Equal(t, doc, readFile(t, path+steam.OriginalSuffix))
	assertMissing(t, path+steam.BackupSuffix)
	assertMissing(t, path+fs.LockSuffix)
}

func TestSetLaunchOptions_Inserts_Missing_Key(t *testing.T) {
	t.Parallel()

	doc := strings.Replace(loadFixture(t), "\t\t\t\t\t\t\"LaunchOptions\"\t\t\"--old\"\n", "", 1)
	path := writeFixture(t, doc)

	merge := func(existing string, found bool) string {
		return launch.MergeArgs(existing, found, "0x0800000000000D95")
	}

	res, err := steam.NewPatcher(fs.NewReal()).SetLaunchOptions(path, steam.DefaultAppID, merge)
	require.NoError(t, err)

	assert.Equal(t, steam.StatusApplied, res.Status)
	assert.False(t, res.HadOld)
	assert.Empty(t, res.Change.Removed)
	assert.Equal(t, []string{"\t\t\t\t\t\t\"LaunchOptions\"\t\t\"--lobbyMap=0x0800000000000D95\""}, res.Change.Added)

	got, err := steam.ReadLaunchOptions(fs.NewReal(), path, steam.DefaultAppID)
	require.NoError(t, err)
	assert.Equal(t, steam.LaunchState{Installed: true, Found: true, Value: "--lobbyMap=0x0800000000000D95"}, got)
}

func TestSetLaunchOptions_Dry_Run_Leaves_Primary_Untouched(t *testing.T) {
	t.Parallel()

	doc := loadFixture(t)
	path := writeFixture(t, doc)

	p := steam.NewPatcher(fs.NewReal())
	p.DryRun = true

	res, err := p.SetLaunchOptions(path, steam.DefaultAppID, setTo("--bg 5"))
	require.NoError(t, err)

	assert.Equal(t, steam.StatusVerified, res.Status)
	assert.Equal(t, doc, readFile(t, path))
	assert.Equal(t, strings.Replace(doc, "\"--old\"", "\"--bg 5\"", 1), readFile(t, path+steam.BackupSuffix))
	assertMissing(t, path+steam.OriginalSuffix)
}

func TestSetLaunchOptions_Missing_App_Is_Noop(t *testing.T) {
	t.Parallel()

	doc := loadFixture(t)
	path := writeFixture(t, doc)

	res, err := steam.NewPatcher(fs.NewReal()).SetLaunchOptions(path, "440", setTo("--bg 5"))
	require.NoError(t, err)

	assert.Equal(t, steam.StatusNotInstalled, res.Status)
	assert.Equal(t, doc, readFile(t, path))
	assertMissing(t, path+steam.BackupSuffix)
	assertMissing(t, path+steam.OriginalSuffix)
}

func TestSetLaunchOptions_Same_Value_Is_Unchanged(t *testing.T) {
	t.Parallel()

	doc := loadFixture(t)
	path := writeFixture(t, doc)

	res, err := steam.NewPatcher(fs.NewReal()).SetLaunchOptions(path, steam.DefaultAppID, setTo("--old"))
	require.NoError(t, err)

	assert.Equal(t, steam.StatusUnchanged, res.Status)
	assert.True(t, res.Change.Empty())
	assert.Equal(t, doc, readFile(t, path))
	assertMissing(t, path+steam.BackupSuffix)
	assertMissing(t, path+steam.OriginalSuffix)
}

func TestSetLaunchOptions_Reset_Keeps_Unrelated_Spacing(t *testing.T) {
	t.Parallel()

	doc := strings.Replace(loadFixture(t), `"--old"`, `"-novid  -high"`, 1)
	path := writeFixture(t, doc)

	reset := func(existing string, found bool) string {
		return launch.MergeArgs(existing, found, "")
	}

	res, err := steam.NewPatcher(fs.NewReal()).SetLaunchOptions(path, steam.DefaultAppID, reset)
	require.NoError(t, err)

	assert.Equal(t, steam.StatusUnchanged, res.Status)
	assert.Equal(t, "-novid  -high", res.New)
	assert.Equal(t, doc, readFile(t, path))
	assertMissing(t, path+steam.BackupSuffix)
	assertMissing(t, path+steam.OriginalSuffix)
}

func TestSetLaunchOptions_Reset_Without_Key_Writes_Nothing(t *testing.T) {
	t.Parallel()

	doc := strings.Replace(loadFixture(t), "\t\t\t\t\t\t\"LaunchOptions\"\t\t\"--old\"\n", "", 1)
	path := writeFixture(t, doc)

	res, err := steam.NewPatcher(fs.NewReal()).SetLaunchOptions(path, steam.DefaultAppID, setTo(""))
	require.NoError(t, err)

	assert.Equal(t, steam.StatusUnchanged, res.Status)
	assertMissing(t, path+steam.BackupSuffix)
}

func TestSetLaunchOptions_Escapes_Quotes(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, loadFixture(t))

	res, err := steam.NewPatcher(fs.NewReal()).SetLaunchOptions(path, steam.DefaultAppID, setTo(`-title "a b"`))
	require.NoError(t, err)
	require.Equal(t, steam.StatusApplied, res.Status)

	assert.Contains(t, readFile(t, path), `"LaunchOptions"`+"\t\t"+`"-title \"a b\""`)

	got, err := steam.ReadLaunchOptions(fs.NewReal(), path, steam.DefaultAppID)
	require.NoError(t, err)
	assert.Equal(t, `-title "a b"`, got.Value)
}

func TestSetLaunchOptions_Missing_Ancestor_Fails_Without_Writing(t *testing.T) {
	t.Parallel()

	doc := strings.Replace(loadFixture(t), "\"apps\"\n", "\"games\"\n", 1)
	path := writeFixture(t, doc)

	_, err := steam.NewPatcher(fs.NewReal()).SetLaunchOptions(path, steam.DefaultAppID, setTo("--bg 5"))
	require.ErrorIs(t, err, steam.ErrMissingAncestor)
	assert.Contains(t, err.Error(), path)
	assert.Contains(t, err.Error(), `"apps"`)

	assert.Equal(t, doc, readFile(t, path))
	assertMissing(t, path+steam.BackupSuffix)
}

func TestSetLaunchOptions_Read_Failure(t *testing.T) {
	t.Parallel()

	path := t.TempDir() + "/missing.vdf"

	_, err := steam.NewPatcher(fs.NewReal()).SetLaunchOptions(path, steam.DefaultAppID, setTo("x"))
	require.ErrorIs(t, err, steam.ErrReadFailed)
}

// tamperFS corrupts every staged backup by appending a line.
type tamperFS struct {
	*fs.Real
}

func (f tamperFS) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if strings.HasSuffix(path, steam.BackupSuffix) {
		data = append(append([]byte{}, data...), "\"Injected\"\t\t\"1\"\n"...)
	}

	return f.Real.WriteFileAtomic(path, data, perm)
}

func TestSetLaunchOptions_Rejects_Unsafe_Diff(t *testing.T) {
	t.Parallel()

	doc := loadFixture(t)
	path := writeFixture(t, doc)

	fsys := tamperFS{Real: fs.NewReal()}

	_, err := steam.NewPatcher(fsys).SetLaunchOptions(path, steam.DefaultAppID, setTo("--bg 5"))
	require.ErrorIs(t, err, steam.ErrUnsafeDiff)

	assert.Equal(t, doc, readFile(t, path))
	assertMissing(t, path+steam.OriginalSuffix)
}

func TestSetLaunchOptions_Warns_On_Inconsistent_Indentation(t *testing.T) {
	t.Parallel()

	// Closing brace of the app block indented one level too deep.
	doc := strings.Replace(loadFixture(t),
		"\t\t\t\t\t\t\"LaunchOptions\"\t\t\"--old\"\n\t\t\t\t\t}\n",
		"\t\t\t\t\t\t\"LaunchOptions\"\t\t\"--old\"\n\t\t\t\t\t\t}\n", 1)
	path := writeFixture(t, doc)

	res, err := steam.NewPatcher(fs.NewReal()).SetLaunchOptions(path, steam.DefaultAppID, setTo("--bg 5"))
	require.NoError(t, err)

	assert.Equal(t, steam.StatusApplied, res.Status)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "indentation")
}

func TestSetLaunchOptions_Times_Out_On_Held_Lock(t *testing.T) {
	t.Parallel()

	doc := loadFixture(t)
	path := writeFixture(t, doc)
	fsys := fs.NewReal()

	held, err := fs.NewLocker(fsys).LockWithTimeout(path, time.Second)
	require.NoError(t, err)

	defer func() { _ = held.Close() }()

	p := steam.NewPatcher(fsys)
	p.LockTimeout = 20 * time.Millisecond

	_, err = p.SetLaunchOptions(path, steam.DefaultAppID, setTo("--bg 5"))
	require.ErrorIs(t, err, fs.ErrWouldBlock)
	assert.Equal(t, doc, readFile(t, path))
}

func TestRestore_Undoes_Last_Apply(t *testing.T) {
	t.Parallel()

	doc := loadFixture(t)
	path := writeFixture(t, doc)
	p := steam.NewPatcher(fs.NewReal())

	_, err := p.SetLaunchOptions(path, steam.DefaultAppID, setTo("--bg 5"))
	require.NoError(t, err)
	require.NotEqual(t, doc, readFile(t, path))

	require.NoError(t, p.Restore(path))
	assert.Equal(t, doc, readFile(t, path))
	assertMissing(t, path+steam.OriginalSuffix)

	require.ErrorIs(t, p.Restore(path), steam.ErrNoOriginal)
}

func TestReadLaunchOptions_Not_Installed(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, loadFixture(t))

	got, err := steam.ReadLaunchOptions(fs.NewReal(), path, "440")
	require.NoError(t, err)
	assert.Equal(t, steam.LaunchState{}, got)
}
