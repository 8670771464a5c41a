package steam

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/calvinalkan/overbuddy/internal/fs"
)

// LocalConfigPath returns where Steam keeps the config of accountID.
func LocalConfigPath(steamDir, accountID string) string {
	return filepath.Join(steamDir, "userdata", accountID, "config", "localconfig.vdf")
}

// DiscoverAccounts lists the accounts under steamDir/userdata that have a
// localconfig.vdf, sorted by id. Directory names that are not account
// numbers (and the "0" placeholder) are skipped.
func DiscoverAccounts(fsys fs.FS, steamDir string) ([]Account, error) {
	userdata := filepath.Join(steamDir, "userdata")

	entries, err := fsys.ReadDir(userdata)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrNoAccounts, userdata)
		}

		return nil, fmt.Errorf("%w: %s: %w", ErrReadFailed, userdata, err)
	}

	var accounts []Account

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		id, err := strconv.ParseUint(e.Name(), 10, 32)
		if err != nil || id == 0 {
			continue
		}

		path := LocalConfigPath(steamDir, e.Name())

		ok, err := fsys.Exists(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrReadFailed, path, err)
		}

		if ok {
			accounts = append(accounts, Account{ID: e.Name(), Path: path})
		}
	}

	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoAccounts, userdata)
	}

	sort.Slice(accounts, func(i, j int) bool {
		a, _ := strconv.ParseUint(accounts[i].ID, 10, 32)
		b, _ := strconv.ParseUint(accounts[j].ID, 10, 32)

		return a < b
	})

	return accounts, nil
}
