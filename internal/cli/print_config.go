package cli

import (
	"context"
	"maps"
	"slices"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/overbuddy/internal/config"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(cfg *config.Config) *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Long:  "Display the effective configuration and which files it was loaded from.",
		Exec: func(_ context.Context, io *IO, _ []string) error {
			return execPrintConfig(io, cfg)
		},
	}
}

func execPrintConfig(io *IO, cfg *config.Config) error {
	io.Println("effective_cwd=" + cfg.EffectiveCwd)
	io.Println("steam_dir=" + cfg.SteamDir)
	io.Println("steam_app_id=" + cfg.SteamAppID)

	for _, acct := range cfg.SteamAccounts {
		io.Println("steam_account=" + acct.ID + " " + acct.Path)
	}

	if cfg.BattleNetConfig != "" {
		io.Println("battle_net_config=" + cfg.BattleNetConfig)
	}

	io.Println("battle_net_game_key=" + cfg.BattleNetGameKey)

	names := slices.Sorted(maps.Keys(cfg.Launchers))

	for _, name := range names {
		cmds := cfg.Launchers[name]

		if len(cmds.Stop) > 0 {
			io.Println("launchers." + name + ".stop=" + strings.Join(cmds.Stop, " "))
		}

		if len(cmds.Start) > 0 {
			io.Println("launchers." + name + ".start=" + strings.Join(cmds.Start, " "))
		}
	}

	if cfg.DryRun {
		io.Println("dry_run=true")
	}

	io.Println("")
	io.Println("# sources")

	if cfg.Sources.Global == "" && cfg.Sources.Explicit == "" {
		io.Println("(defaults only)")
	} else {
		if cfg.Sources.Global != "" {
			io.Println("global_config=" + cfg.Sources.Global)
		}

		if cfg.Sources.Explicit != "" {
			io.Println("explicit_config=" + cfg.Sources.Explicit)
		}
	}

	return nil
}
