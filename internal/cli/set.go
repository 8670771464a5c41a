package cli

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/overbuddy/internal/battlenet"
	"github.com/calvinalkan/overbuddy/internal/config"
	"github.com/calvinalkan/overbuddy/internal/launch"
	"github.com/calvinalkan/overbuddy/internal/launcher"
	"github.com/calvinalkan/overbuddy/internal/steam"
)

type applyFlags struct {
	dryRun        *bool
	steamOnly     *bool
	battleNetOnly *bool
}

func newApplyFlags(fs *flag.FlagSet) applyFlags {
	return applyFlags{
		dryRun:        fs.Bool("dry-run", false, "Write and verify .backup files but leave configs untouched"),
		steamOnly:     fs.Bool("steam-only", false, "Only change Steam accounts"),
		battleNetOnly: fs.Bool("battle-net-only", false, "Only change Battle.net"),
	}
}

// SetCmd returns the set command.
func SetCmd(a *app) *Command {
	fs := flag.NewFlagSet("set", flag.ContinueOnError)
	flags := newApplyFlags(fs)

	return &Command{
		Flags: fs,
		Usage: "set <id> [flags]",
		Short: "Set the main-menu background",
		Long: `Set the main-menu background to <id> (e.g. 0x0800000000000D95) for every
Steam account and for Battle.net.

Launchers with configured stop/start commands are closed while their
config is edited and reopened afterwards if they were running.

Steam configs are changed through a verified copy: the new file is written
to localconfig.vdf.backup, compared line by line with the live file, and
only moved into place if the LaunchOptions line is the sole difference.
The previous file is kept as localconfig.vdf.original.`,
		Examples: []string{
			"set 0x0800000000000D95",
			"set --dry-run 0x0800000000000D95",
			"--steam-dir ~/.steam/steam set --steam-only 0x0800000000000D95",
		},
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return ErrIDRequired
			}

			if len(args) > 1 {
				return fmt.Errorf("%w: %v", ErrTooManyArgs, args[1:])
			}

			if err := launch.ValidateID(args[0]); err != nil {
				return err
			}

			return execApply(ctx, o, a, flags, args[0])
		},
	}
}

// ResetCmd returns the reset command.
func ResetCmd(a *app) *Command {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	flags := newApplyFlags(fs)

	return &Command{
		Flags: fs,
		Usage: "reset [flags]",
		Short: "Remove the background setting",
		Long:  "Remove the --lobbyMap argument everywhere, keeping all other launch options.",
		Examples: []string{
			"reset",
			"reset --battle-net-only",
		},
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: %v", ErrTooManyArgs, args)
			}

			return execApply(ctx, o, a, flags, "")
		},
	}
}

func execApply(ctx context.Context, o *IO, a *app, flags applyFlags, id string) error {
	tgt, err := resolveTargets(*flags.steamOnly, *flags.battleNetOnly)
	if err != nil {
		return err
	}

	dryRun := *flags.dryRun || a.cfg.DryRun
	if dryRun {
		o.Verbosef("dry run: configs will not be replaced")
	}

	merge := func(existing string, found bool) string {
		return launch.MergeArgs(existing, found, id)
	}

	if tgt.steam {
		err := applySteam(ctx, o, a, merge, dryRun, tgt.explicit)
		if err != nil {
			if tgt.explicit {
				return err
			}

			o.Warn(err.Error(), "check steam_dir / steam_accounts, or use --battle-net-only")
		}
	}

	if tgt.battleNet {
		err := applyBattleNet(ctx, o, a, merge, dryRun)

		switch {
		case err == nil:
		case tgt.explicit:
			return err
		case errors.Is(err, ErrBattleNetNotConfigured):
			o.Verbosef("skipping Battle.net: %v", err)
		default:
			o.Warn(err.Error(), "check battle_net_config, or use --steam-only")
		}
	}

	return nil
}

// applySteam patches every account. A failing account is a warning unless
// strict is set, in which case it is collected into the returned error. The
// remaining accounts are patched either way.
func applySteam(ctx context.Context, o *IO, a *app, merge steam.MergeFunc, dryRun, strict bool) error {
	accounts, err := a.steamAccounts()
	if err != nil {
		return err
	}

	p := a.patcher(dryRun)

	return launcher.WithStopped(ctx, a.controller(config.LauncherSteam, dryRun), func() error {
		var failed []error

		for _, acct := range accounts {
			if err := ctx.Err(); err != nil {
				return err
			}

			o.Verbosef("patching %s", acct.Path)

			res, err := p.SetLaunchOptions(acct.Path, a.cfg.SteamAppID, merge)
			if err != nil {
				if strict {
					failed = append(failed, fmt.Errorf("steam %s: %w", acct.ID, err))
				} else {
					o.Warn(fmt.Sprintf("steam %s: %v", acct.ID, err), "the live config was not changed")
				}

				continue
			}

			for _, w := range res.Warnings {
				o.Warn(w, "the file was still patched using brace matching")
			}

			o.Println(formatSteamResult(acct, res))
		}

		return errors.Join(failed...)
	})
}

func formatSteamResult(acct steam.Account, res steam.Result) string {
	prefix := "steam " + acct.ID + ":"

	switch res.Status {
	case steam.StatusApplied:
		return fmt.Sprintf("%s applied %q -> %q", prefix, res.Old, res.New)
	case steam.StatusVerified:
		return fmt.Sprintf("%s would change %q -> %q (verified in %s)", prefix, res.Old, res.New, res.Path+steam.BackupSuffix)
	case steam.StatusUnchanged:
		return prefix + " unchanged"
	case steam.StatusNotInstalled:
		return prefix + " game not installed, skipped"
	default:
		return prefix + " " + res.Status.String()
	}
}

func applyBattleNet(ctx context.Context, o *IO, a *app, merge func(string, bool) string, dryRun bool) error {
	path := a.cfg.BattleNetConfig
	if path == "" {
		return ErrBattleNetNotConfigured
	}

	e := a.editor(dryRun)

	return launcher.WithStopped(ctx, a.controller(config.LauncherBattleNet, dryRun), func() error {
		o.Verbosef("patching %s", path)

		res, err := e.SetLaunchArgs(path, a.cfg.BattleNetGameKey, merge)
		if err != nil {
			return err
		}

		o.Println(formatBattleNetResult(res))

		return nil
	})
}

func formatBattleNetResult(res battlenet.Result) string {
	switch {
	case !res.Changed:
		return "battle.net: unchanged"
	case !res.Written:
		return fmt.Sprintf("battle.net: would change %q -> %q", res.Old, res.New)
	default:
		return fmt.Sprintf("battle.net: applied %q -> %q", res.Old, res.New)
	}
}
