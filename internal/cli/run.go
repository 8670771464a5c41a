package cli

import (
	"context"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/overbuddy/internal/config"
	"github.com/calvinalkan/overbuddy/internal/fs"
)

// Run is the main entry point. Returns exit code.
//
// A signal on sigCh cancels the running command's context. Launchers that
// were stopped are still restarted.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	o := NewIO(out, errOut)

	globals := newGlobalFlags()

	cfg := &config.Config{}
	a := &app{cfg: cfg, fs: fs.NewReal(), in: in}

	commands := []*Command{
		ProfilesCmd(a),
		GetCmd(a),
		SetCmd(a),
		ResetCmd(a),
		RestoreCmd(a),
		PrintConfigCmd(cfg),
	}

	if len(args) < 2 {
		printUsage(o.Println, globals.set, commands)
		return 0
	}

	err := globals.set.Parse(args[1:])
	if err != nil {
		o.ErrPrintln("error:", err)
		printUsage(o.ErrPrintln, globals.set, commands)

		return 1
	}

	rest := globals.set.Args()

	if *globals.help || len(rest) == 0 {
		printUsage(o.Println, globals.set, commands)
		return 0
	}

	o.SetVerbose(*globals.verbose)

	loaded, err := config.Load(config.LoadInput{
		WorkDirOverride: *globals.cwd,
		ConfigPath:      *globals.config,
		Overrides: config.Overrides{
			SteamDir:        *globals.steamDir,
			BattleNetConfig: *globals.battleNetConfig,
		},
		Env: env,
	})
	if err != nil {
		o.ErrPrintln("error:", err)
		return 1
	}

	*cfg = loaded

	o.Verbosef("working directory %s", cfg.EffectiveCwd)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-done:
		}
	}()

	name := rest[0]

	for _, cmd := range commands {
		if cmd.Name() == name {
			return cmd.Run(ctx, o, rest[1:])
		}
	}

	o.ErrPrintln("error: unknown command:", name)
	printUsage(o.ErrPrintln, globals.set, commands)

	return 1
}

type globalFlags struct {
	set             *flag.FlagSet
	cwd             *string
	config          *string
	steamDir        *string
	battleNetConfig *string
	verbose         *bool
	help            *bool
}

func newGlobalFlags() globalFlags {
	set := flag.NewFlagSet("overbuddy", flag.ContinueOnError)
	set.SetInterspersed(false)
	set.SetOutput(&strings.Builder{}) // discard pflag output

	return globalFlags{
		set:             set,
		cwd:             set.StringP("cwd", "C", "", "Run as if started in `dir`"),
		config:          set.StringP("config", "c", "", "Use specified config `file` (.json or .toml)"),
		steamDir:        set.String("steam-dir", "", "Steam installation `dir` (overrides config)"),
		battleNetConfig: set.String("battle-net-config", "", "Battle.net.config `file` (overrides config)"),
		verbose:         set.BoolP("verbose", "v", false, "Print diagnostics to stderr"),
		help:            set.BoolP("help", "h", false, "Show help"),
	}
}

func printUsage(printLine func(...any), globals *flag.FlagSet, commands []*Command) {
	printLine(`overbuddy - set the Overwatch main-menu background through launcher configs

Usage: overbuddy [flags] <command> [args]

Global flags:`)

	var buf strings.Builder
	globals.SetOutput(&buf)
	globals.PrintDefaults()
	globals.SetOutput(&strings.Builder{})

	printLine(strings.TrimRight(buf.String(), "\n"))
	printLine()
	printLine("Commands:")

	for _, cmd := range commands {
		printLine(cmd.HelpLine())
	}

	printLine()
	printLine("Run 'overbuddy <command> --help' for command flags.")
}
