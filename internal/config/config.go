// Package config loads overbuddy's settings from JSONC or TOML files,
// layered global -> explicit file -> command-line overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tailscale/hujson"

	"github.com/calvinalkan/overbuddy/internal/battlenet"
	"github.com/calvinalkan/overbuddy/internal/steam"
)

// Error variables for config loading.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrAppIDInvalid       = errors.New("steam_app_id must be a number")
	ErrGameKeyEmpty       = errors.New("battle_net_game_key cannot be empty")
	ErrAccountIncomplete  = errors.New("steam_accounts entries need id and file")
)

// Launcher names used as keys of [Config.Launchers].
const (
	LauncherSteam     = "steam"
	LauncherBattleNet = "battle_net"
)

// Commands are the argv lists used to close and reopen one launcher.
type Commands struct {
	Stop  []string `json:"stop,omitempty"  toml:"stop"`
	Start []string `json:"start,omitempty" toml:"start"`
}

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	SteamDir         string              `json:"steam_dir,omitempty"           toml:"steam_dir"`
	SteamAppID       string              `json:"steam_app_id,omitempty"        toml:"steam_app_id"`
	SteamAccounts    []steam.Account     `json:"steam_accounts,omitempty"      toml:"steam_accounts"`
	BattleNetConfig  string              `json:"battle_net_config,omitempty"   toml:"battle_net_config"`
	BattleNetGameKey string              `json:"battle_net_game_key,omitempty" toml:"battle_net_game_key"`
	Launchers        map[string]Commands `json:"launchers,omitempty"           toml:"launchers"`
	DryRun           bool                `json:"dry_run,omitempty"             toml:"dry_run"`

	// Resolved (computed, not serialized)
	EffectiveCwd string `json:"-" toml:"-"`

	// Sources tracks which config files were loaded (for diagnostics)
	Sources Sources `json:"-" toml:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global   string // Path to global config if loaded, empty otherwise
	Explicit string // Path to -c/--config file if given
}

// DefaultConfig returns the default configuration. SteamDir defaults to
// the usual Linux install location when HOME is known.
func DefaultConfig(env map[string]string) Config {
	cfg := Config{
		SteamAppID:       steam.DefaultAppID,
		BattleNetGameKey: battlenet.DefaultGameKey,
	}

	if home := env["HOME"]; home != "" {
		cfg.SteamDir = filepath.Join(home, ".steam", "steam")
	}

	return cfg
}

// globalConfigPaths returns the candidate global config files, JSON first.
// Uses $XDG_CONFIG_HOME/overbuddy if set, otherwise ~/.config/overbuddy.
func globalConfigPaths(env map[string]string) []string {
	var dir string

	switch {
	case env["XDG_CONFIG_HOME"] != "":
		dir = filepath.Join(env["XDG_CONFIG_HOME"], "overbuddy")
	case env["HOME"] != "":
		dir = filepath.Join(env["HOME"], ".config", "overbuddy")
	default:
		return nil
	}

	return []string{filepath.Join(dir, "config.json"), filepath.Join(dir, "config.toml")}
}

// Overrides are command-line values that win over every config file.
// Empty fields do not override.
type Overrides struct {
	SteamDir        string
	BattleNetConfig string
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDirOverride string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config flag value
	Overrides       Overrides         // CLI flag values
	Env             map[string]string // environment variables
}

// Load loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config ($XDG_CONFIG_HOME/overbuddy/config.json or .toml)
// 3. Explicit config file via ConfigPath (if non-empty)
// 4. CLI overrides.
//
// Relative paths in the result are resolved against the working directory.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := DefaultConfig(input.Env)

	for _, path := range globalConfigPaths(input.Env) {
		globalCfg, loaded, err := loadFile(path, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg.Sources.Global = path
			cfg = merge(cfg, globalCfg)

			break
		}
	}

	if input.ConfigPath != "" {
		path := input.ConfigPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}

		if _, statErr := os.Stat(path); statErr != nil {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigFileNotFound, input.ConfigPath)
		}

		fileCfg, _, err := loadFile(path, true)
		if err != nil {
			return Config{}, err
		}

		cfg.Sources.Explicit = path
		cfg = merge(cfg, fileCfg)
	}

	cfg = merge(cfg, Config{
		SteamDir:        input.Overrides.SteamDir,
		BattleNetConfig: input.Overrides.BattleNetConfig,
	})

	err := validate(cfg)
	if err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = workDir
	cfg.SteamDir = resolve(workDir, cfg.SteamDir)
	cfg.BattleNetConfig = resolve(workDir, cfg.BattleNetConfig)

	for i := range cfg.SteamAccounts {
		cfg.SteamAccounts[i].Path = resolve(workDir, cfg.SteamAccounts[i].Path)
	}

	return cfg, nil
}

func resolve(workDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(workDir, path)
}

// loadFile loads a config file. If mustExist is false, a missing file
// returns a zero config and loaded=false.
func loadFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("%w: %s: %w", ErrConfigFileRead, path, err)
	}

	cfg, err := Parse(path, data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return cfg, true, nil
}

// Parse decodes a config file. Files ending in .toml are TOML; anything
// else is JSON with comments and trailing commas allowed.
//
// A field set explicitly to "" that may not be empty is an error, rather
// than silently falling back to the default.
func Parse(path string, data []byte) (Config, error) {
	var (
		cfg Config
		raw map[string]any
	)

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err := toml.Unmarshal(data, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TOML: %w", err)
		}

		_ = toml.Unmarshal(data, &raw)
	} else {
		standardized, err := hujson.Standardize(data)
		if err != nil {
			return Config{}, fmt.Errorf("invalid JSONC: %w", err)
		}

		err = json.Unmarshal(standardized, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("invalid JSON: %w", err)
		}

		_ = json.Unmarshal(standardized, &raw)
	}

	if explicitlyEmpty(raw, "steam_app_id") {
		return Config{}, ErrAppIDInvalid
	}

	if explicitlyEmpty(raw, "battle_net_game_key") {
		return Config{}, ErrGameKeyEmpty
	}

	return cfg, nil
}

func explicitlyEmpty(raw map[string]any, key string) bool {
	val, exists := raw[key]
	if !exists {
		return false
	}

	str, ok := val.(string)

	return ok && str == ""
}

func merge(base, overlay Config) Config {
	if overlay.SteamDir != "" {
		base.SteamDir = overlay.SteamDir
	}

	if overlay.SteamAppID != "" {
		base.SteamAppID = overlay.SteamAppID
	}

	if len(overlay.SteamAccounts) > 0 {
		base.SteamAccounts = append([]steam.Account(nil), overlay.SteamAccounts...)
	}

	if overlay.BattleNetConfig != "" {
		base.BattleNetConfig = overlay.BattleNetConfig
	}

	if overlay.BattleNetGameKey != "" {
		base.BattleNetGameKey = overlay.BattleNetGameKey
	}

	if len(overlay.Launchers) > 0 {
		merged := make(map[string]Commands, len(base.Launchers)+len(overlay.Launchers))
		maps.Copy(merged, base.Launchers)
		maps.Copy(merged, overlay.Launchers)
		base.Launchers = merged
	}

	if overlay.DryRun {
		base.DryRun = true
	}

	return base
}

func validate(cfg Config) error {
	if _, err := strconv.ParseUint(cfg.SteamAppID, 10, 32); err != nil {
		return fmt.Errorf("%w: %q", ErrAppIDInvalid, cfg.SteamAppID)
	}

	if cfg.BattleNetGameKey == "" {
		return ErrGameKeyEmpty
	}

	for i, acct := range cfg.SteamAccounts {
		if acct.ID == "" || acct.Path == "" {
			return fmt.Errorf("%w: entry %d", ErrAccountIncomplete, i)
		}
	}

	return nil
}
