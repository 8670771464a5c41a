package steam_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/overbuddy/internal/fs"
	"github.com/calvinalkan/overbuddy/internal/steam"
)

// Under random I/O faults and truncated reads the live file must only ever
// hold the old or the fully patched document.
func TestSetLaunchOptions_Under_Faults_Never_Corrupts_Live_File(t *testing.T) {
	t.Parallel()

	doc := loadFixture(t)
	want := strings.Replace(doc, "\"--old\"", "\"--bg 5\"", 1)

	var applied, failed, injected int

	for seed := range uint64(300) {
		path := writeFixture(t, doc)
		chaos := fs.NewChaos(fs.NewReal(), seed, fs.DefaultChaosConfig())

		res, err := steam.NewPatcher(chaos).SetLaunchOptions(path, steam.DefaultAppID, setTo("--bg 5"))

		live := readFile(t, path)
		require.Truef(t, live == doc || live == want, "seed %d: live file corrupted (err=%v):\n%s", seed, err, live)

		if res.Status == steam.StatusApplied {
			applied++

			require.Equalf(t, want, live, "seed %d: applied but live file not patched", seed)
			require.Equalf(t, doc, readFile(t, path+steam.OriginalSuffix), "seed %d: bad .original", seed)

			continue
		}

		if err != nil {
			failed++

			require.Equalf(t, doc, live, "seed %d: failed run changed the live file: %v", seed, err)

			if fs.IsInjected(err) {
				injected++
			}

			if errors.Is(err, steam.ErrUnsafeDiff) {
				// Only a truncated read can make the diff look unsafe.
				assert.Positivef(t, chaos.TotalFaults(), "seed %d: unsafe diff without faults", seed)
			}
		}
	}

	assert.Positive(t, applied, "no run succeeded")
	assert.Positive(t, failed, "no run failed")
	assert.Positive(t, injected, "no injected error surfaced")
}
