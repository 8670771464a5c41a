package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/overbuddy/internal/launch"
)

// Command is one overbuddy subcommand. Global flags are parsed by [Run]
// before the command is looked up, so Flags only holds what the command
// itself accepts.
type Command struct {
	Flags *flag.FlagSet

	// Usage starts with the command name, e.g. "set <id> [flags]".
	Usage string

	// Short is the line shown in the command list. Long replaces it in
	// "overbuddy <cmd> --help" when set.
	Short string
	Long  string

	// Examples are full command lines printed under the help text.
	Examples []string

	// Exec runs with the launcher configs already resolved into the app.
	// Warnings raised on o still count towards the exit code.
	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name is the first word of Usage.
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")
	return name
}

// HelpLine is the command's row in the top-level usage.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-22s %s", c.Usage, c.Short)
}

// PrintHelp writes the help for "overbuddy <cmd> --help" to stdout.
func (c *Command) PrintHelp(o *IO) {
	o.Println("Usage: overbuddy [global flags]", c.Usage)
	o.Println()

	if c.Long != "" {
		o.Println(c.Long)
	} else {
		o.Println(c.Short)
	}

	if c.Flags != nil && c.Flags.HasFlags() {
		o.Println()
		o.Println("Flags:")

		var buf strings.Builder
		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()
		o.Printf("%s", buf.String())
	}

	if len(c.Examples) > 0 {
		o.Println()
		o.Println("Examples:")

		for _, ex := range c.Examples {
			o.Println("  overbuddy", ex)
		}
	}

	o.Println()
	o.Println("Global flags such as --config and --steam-dir go before the command;")
	o.Println("see 'overbuddy --help'.")
}

// Run parses args and calls Exec. The exit code is 1 when Exec fails or any
// warning was raised, 0 otherwise. Bad arguments are followed by a usage
// line on stderr so the output stays empty for scripts.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(&strings.Builder{}) // discard pflag output

	err := c.Flags.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		c.PrintHelp(o)
		return 0
	}

	if err != nil {
		o.ErrPrintln("error:", err)
		c.printUsageHint(o)

		return 1
	}

	err = c.Exec(ctx, o, c.Flags.Args())
	if err != nil {
		o.ErrPrintln("error:", err)

		if isUsageError(err) {
			c.printUsageHint(o)
		}

		o.Finish()

		return 1
	}

	return o.Finish()
}

func (c *Command) printUsageHint(o *IO) {
	o.ErrPrintln("usage: overbuddy", c.Usage)
	o.ErrPrintln("Run 'overbuddy " + c.Name() + " --help' for details.")
}

func isUsageError(err error) bool {
	return errors.Is(err, ErrIDRequired) ||
		errors.Is(err, ErrTooManyArgs) ||
		errors.Is(err, ErrTargetsExclusive) ||
		errors.Is(err, launch.ErrInvalidID)
}
