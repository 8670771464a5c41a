package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/calvinalkan/overbuddy/internal/battlenet"
	"github.com/calvinalkan/overbuddy/internal/config"
	"github.com/calvinalkan/overbuddy/internal/fs"
	"github.com/calvinalkan/overbuddy/internal/launcher"
	"github.com/calvinalkan/overbuddy/internal/steam"
)

// Command errors.
var (
	ErrBattleNetNotConfigured = errors.New("battle_net_config is not set")
	ErrTargetsExclusive       = errors.New("--steam-only and --battle-net-only are mutually exclusive")
	ErrIDRequired             = errors.New("background id is required")
	ErrTooManyArgs            = errors.New("too many arguments")
	ErrNotConfirmed           = errors.New("aborted")
)

// app carries what commands share. cfg is filled in after flags and
// config files are loaded, before any command runs.
type app struct {
	cfg *config.Config
	fs  fs.FS
	in  io.Reader
}

// targets selects which launchers a command touches.
type targets struct {
	steam     bool
	battleNet bool

	// explicit is set when the user restricted the run to one launcher;
	// problems with that launcher are then errors, not warnings.
	explicit bool
}

func resolveTargets(steamOnly, battleNetOnly bool) (targets, error) {
	switch {
	case steamOnly && battleNetOnly:
		return targets{}, ErrTargetsExclusive
	case steamOnly:
		return targets{steam: true, explicit: true}, nil
	case battleNetOnly:
		return targets{battleNet: true, explicit: true}, nil
	default:
		return targets{steam: true, battleNet: true}, nil
	}
}

// steamAccounts returns the configured accounts, or discovers them under
// the Steam directory.
func (a *app) steamAccounts() ([]steam.Account, error) {
	if len(a.cfg.SteamAccounts) > 0 {
		return a.cfg.SteamAccounts, nil
	}

	accounts, err := steam.DiscoverAccounts(a.fs, a.cfg.SteamDir)
	if err != nil {
		return nil, fmt.Errorf("finding steam accounts: %w", err)
	}

	return accounts, nil
}

func (a *app) patcher(dryRun bool) *steam.Patcher {
	p := steam.NewPatcher(a.fs)
	p.DryRun = dryRun || a.cfg.DryRun

	return p
}

func (a *app) editor(dryRun bool) *battlenet.Editor {
	e := battlenet.NewEditor(a.fs)
	e.DryRun = dryRun || a.cfg.DryRun

	return e
}

// controller returns the stop/start controller for a launcher. Dry runs
// never touch running launchers.
func (a *app) controller(name string, dryRun bool) launcher.Controller {
	label := launcherLabel(name)

	cmds, ok := a.cfg.Launchers[name]
	if dryRun || a.cfg.DryRun || !ok || (len(cmds.Stop) == 0 && len(cmds.Start) == 0) {
		return launcher.Noop{Label: label}
	}

	return launcher.NewCommandController(label, cmds.Stop, cmds.Start)
}

func launcherLabel(name string) string {
	switch name {
	case config.LauncherSteam:
		return "Steam"
	case config.LauncherBattleNet:
		return "Battle.net"
	default:
		return name
	}
}
