package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/overbuddy/internal/launch"
	"github.com/calvinalkan/overbuddy/internal/steam"
)

// GetCmd returns the get command.
func GetCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("get", flag.ContinueOnError),
		Usage: "get",
		Short: "Show the current background and launch options",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: %v", ErrTooManyArgs, args)
			}

			return execGet(o, a)
		},
	}
}

func execGet(o *IO, a *app) error {
	accounts, err := a.steamAccounts()
	if err != nil {
		o.Warn(err.Error(), "check steam_dir / steam_accounts")
	}

	for _, acct := range accounts {
		state, err := steam.ReadLaunchOptions(a.fs, acct.Path, a.cfg.SteamAppID)
		if err != nil {
			o.Warn(fmt.Sprintf("steam %s: %v", acct.ID, err), "run 'overbuddy profiles' to inspect the account")
			continue
		}

		if !state.Installed {
			o.Printf("steam %s: game not installed\n", acct.ID)
			continue
		}

		o.Printf("steam %s: background=%s launch_options=%q\n", acct.ID, backgroundOf(state.Value), state.Value)
	}

	if a.cfg.BattleNetConfig == "" {
		return nil
	}

	args, _, err := a.editor(false).LaunchArgs(a.cfg.BattleNetConfig, a.cfg.BattleNetGameKey)
	if err != nil {
		o.Warn(fmt.Sprintf("battle.net: %v", err), "check battle_net_config")
		return nil
	}

	o.Printf("battle.net: background=%s launch_options=%q\n", backgroundOf(args), args)

	return nil
}

func backgroundOf(args string) string {
	if id, ok := launch.BackgroundID(args); ok {
		return id
	}

	return "default"
}

