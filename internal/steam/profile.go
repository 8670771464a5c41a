package steam

import (
	"fmt"

	"github.com/calvinalkan/overbuddy/internal/fs"
	"github.com/calvinalkan/overbuddy/internal/vdf"
)

// Profile is what the friends block records about one account.
type Profile struct {
	ID     string
	Name   string
	Avatar string // full image URL, empty if unknown
	HasApp bool
}

// ExtractProfile reads the profile for accountID out of a localconfig.vdf
// document. The name comes from the most recent NameHistory entry, falling
// back to the flat "name" field. HasApp reports whether appID has an app
// block under [AppsPath].
func ExtractProfile(doc, accountID, appID string) (Profile, error) {
	path := FriendsPath.Append(accountID)

	blk, ok, err := vdf.Navigate(doc, path)
	if err != nil {
		return Profile{}, fmt.Errorf("profile %s: %w", accountID, err)
	}

	if !ok {
		return Profile{}, fmt.Errorf("%w: profile %s (path %s)", ErrNotFound, accountID, path)
	}

	p := Profile{ID: accountID}

	if hash, ok := vdf.Read(doc, blk, "avatar"); ok && hash != "" {
		p.Avatar = AvatarURL(hash)
	}

	p.Name, err = profileName(doc, blk)
	if err != nil {
		return Profile{}, fmt.Errorf("profile %s: %w", accountID, err)
	}

	p.HasApp, err = Installed(doc, appID)
	if err != nil {
		return Profile{}, fmt.Errorf("profile %s: %w", accountID, err)
	}

	return p, nil
}

// AvatarURL returns the full-size avatar image URL for hash.
func AvatarURL(hash string) string {
	return AvatarBaseURL + "/" + hash + "_full.jpg"
}

func profileName(doc string, profile vdf.Block) (string, error) {
	history, ok, err := vdf.NavigateFrom(doc, profile, vdf.KeyPath{"NameHistory"})
	if err != nil {
		return "", err
	}

	if ok {
		if name, _ := vdf.Read(doc, history, "0"); name != "" {
			return vdf.Unescape(name), nil
		}
	}

	if name, _ := vdf.Read(doc, profile, "name"); name != "" {
		return vdf.Unescape(name), nil
	}

	return "", ErrProfileNameMissing
}

// Installed reports whether doc has an app block for appID. A document
// without the apps block at all is [ErrMissingAncestor], not "not
// installed": it is not a localconfig.vdf this package understands.
func Installed(doc, appID string) (bool, error) {
	_, ok, err := vdf.Navigate(doc, AppPath(appID))
	if err != nil {
		return false, err
	}

	return ok, nil
}

// Account is one Steam account and the localconfig.vdf that belongs to it.
type Account struct {
	ID   string `json:"id"   toml:"id"`
	Path string `json:"file" toml:"file"`
}

// ProfileResult is the outcome of loading one account. Err is set when
// that account could not be read; other accounts are unaffected.
type ProfileResult struct {
	Account Account
	Profile Profile
	Err     error
}

// LoadProfiles reads every account's config and extracts its profile.
// Results are returned in account order.
func LoadProfiles(fsys fs.FS, accounts []Account, appID string) []ProfileResult {
	results := make([]ProfileResult, 0, len(accounts))

	for _, acct := range accounts {
		res := ProfileResult{Account: acct}

		data, err := fsys.ReadFile(acct.Path)
		if err != nil {
			res.Err = fmt.Errorf("%w: %s: %w", ErrReadFailed, acct.Path, err)
		} else {
			res.Profile, res.Err = ExtractProfile(string(data), acct.ID, appID)
			if res.Err != nil {
				res.Err = fmt.Errorf("%s: %w", acct.Path, res.Err)
			}
		}

		results = append(results, res)
	}

	return results
}
