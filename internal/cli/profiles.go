package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/overbuddy/internal/steam"
)

// ProfilesCmd returns the profiles command.
func ProfilesCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("profiles", flag.ContinueOnError),
		Usage: "profiles",
		Short: "List Steam profiles",
		Long:  "List every Steam account with its display name, avatar and whether the game is installed.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: %v", ErrTooManyArgs, args)
			}

			return execProfiles(o, a)
		},
	}
}

func execProfiles(o *IO, a *app) error {
	accounts, err := a.steamAccounts()
	if err != nil {
		return err
	}

	for _, res := range steam.LoadProfiles(a.fs, accounts, a.cfg.SteamAppID) {
		if res.Err != nil {
			o.Warn(fmt.Sprintf("steam %s: %v", res.Account.ID, res.Err), "this account is skipped by set and reset")
			continue
		}

		p := res.Profile

		installed := "no"
		if p.HasApp {
			installed = "yes"
		}

		avatar := p.Avatar
		if avatar == "" {
			avatar = "-"
		}

		o.Printf("%s\t%s\tinstalled=%s\t%s\n", p.ID, p.Name, installed, avatar)
	}

	return nil
}
