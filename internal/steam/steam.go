// Package steam reads and patches the per-account localconfig.vdf files of
// a Steam installation.
//
// Reading goes through [ExtractProfile] and [Installed]. Writing goes
// through [Patcher], which never touches the live file until the candidate
// has been written next to it and verified to differ by at most the one
// LaunchOptions line.
package steam

import "github.com/calvinalkan/overbuddy/internal/vdf"

// DefaultAppID is Overwatch's Steam app id.
const DefaultAppID = "2357570"

// LaunchOptionsKey is the scalar patched inside an app block.
const LaunchOptionsKey = "LaunchOptions"

// AvatarBaseURL serves avatar images by hash.
const AvatarBaseURL = "https://avatars.akamai.steamstatic.com"

// Sibling files written by [Patcher].
const (
	BackupSuffix   = ".backup"
	OriginalSuffix = ".original"
)

// AppsPath leads to the block holding one child block per installed app.
var AppsPath = vdf.KeyPath{"UserLocalConfigStore", "Software", "Valve", "Steam", "apps"}

// FriendsPath leads to the block holding per-account profile blocks.
var FriendsPath = vdf.KeyPath{"UserLocalConfigStore", "friends"}

// AppPath returns the key path of the app block for appID.
func AppPath(appID string) vdf.KeyPath {
	return AppsPath.Append(appID)
}
