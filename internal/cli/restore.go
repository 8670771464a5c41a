package cli

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/overbuddy/internal/battlenet"
	"github.com/calvinalkan/overbuddy/internal/config"
	"github.com/calvinalkan/overbuddy/internal/launcher"
	"github.com/calvinalkan/overbuddy/internal/steam"
)

// RestoreCmd returns the restore command.
func RestoreCmd(a *app) *Command {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	yes := fs.BoolP("yes", "y", false, "Do not ask for confirmation")
	steamOnly := fs.Bool("steam-only", false, "Only restore Steam accounts")
	battleNetOnly := fs.Bool("battle-net-only", false, "Only restore Battle.net")

	return &Command{
		Flags: fs,
		Usage: "restore [flags]",
		Short: "Undo the last change",
		Long: `Put back the config files saved by the last set or reset:
localconfig.vdf.original for each Steam account and Battle.net.config.backup.
Each saved copy is used once.`,
		Examples: []string{"restore", "restore --yes --steam-only"},
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: %v", ErrTooManyArgs, args)
			}

			tgt, err := resolveTargets(*steamOnly, *battleNetOnly)
			if err != nil {
				return err
			}

			if !*yes {
				ok, err := confirm(o, a.in, "Restore the saved launcher configs?")
				if err != nil {
					return err
				}

				if !ok {
					return ErrNotConfirmed
				}
			}

			return execRestore(ctx, o, a, tgt)
		},
	}
}

func execRestore(ctx context.Context, o *IO, a *app, tgt targets) error {
	if tgt.steam {
		accounts, err := a.steamAccounts()

		switch {
		case err == nil:
			err = launcher.WithStopped(ctx, a.controller(config.LauncherSteam, false), func() error {
				return restoreSteam(o, a, accounts, tgt.explicit)
			})
			if err != nil {
				return err
			}
		case tgt.explicit:
			return err
		default:
			o.Warn(err.Error(), "check steam_dir / steam_accounts")
		}
	}

	if tgt.battleNet {
		path := a.cfg.BattleNetConfig

		switch {
		case path != "":
			err := launcher.WithStopped(ctx, a.controller(config.LauncherBattleNet, false), func() error {
				return restoreBattleNet(o, a, path)
			})
			if err != nil {
				if tgt.explicit {
					return err
				}

				o.Warn(err.Error(), "check battle_net_config")
			}
		case tgt.explicit:
			return ErrBattleNetNotConfigured
		}
	}

	return nil
}

func restoreSteam(o *IO, a *app, accounts []steam.Account, strict bool) error {
	p := a.patcher(false)

	var failed []error

	for _, acct := range accounts {
		err := p.Restore(acct.Path)

		switch {
		case err == nil:
			o.Printf("steam %s: restored\n", acct.ID)
		case errors.Is(err, steam.ErrNoOriginal):
			o.Printf("steam %s: nothing to restore\n", acct.ID)
		case strict:
			failed = append(failed, fmt.Errorf("steam %s: %w", acct.ID, err))
		default:
			o.Warn(fmt.Sprintf("steam %s: %v", acct.ID, err), "the live config was not changed")
		}
	}

	return errors.Join(failed...)
}

func restoreBattleNet(o *IO, a *app, path string) error {
	err := a.editor(false).Restore(path)

	switch {
	case err == nil:
		o.Println("battle.net: restored")
	case errors.Is(err, battlenet.ErrNoBackup):
		o.Println("battle.net: nothing to restore")
	default:
		return err
	}

	return nil
}
