package launcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrNoCommand is returned when a command line is empty.
var ErrNoCommand = errors.New("empty command")

// CommandController drives a launcher through shell-free command lines.
//
// StopCommand must exit 0 if it closed a running launcher and non-zero
// (e.g. pkill's 1) if there was nothing to close. StartCommand is started
// and not waited for, since launchers keep running.
type CommandController struct {
	Label        string
	StopCommand  []string
	StartCommand []string

	// Settle is how long to wait after a successful stop, giving the
	// launcher time to flush its config before it is edited.
	Settle time.Duration

	// run executes a command to completion; start launches one without
	// waiting.
	run   func(ctx context.Context, argv []string) (exitCode int, err error)
	start func(ctx context.Context, argv []string) error
}

// NewCommandController returns a controller running the given commands.
func NewCommandController(label string, stop, start []string) *CommandController {
	return &CommandController{
		Label:        label,
		StopCommand:  stop,
		StartCommand: start,
		Settle:       time.Second,
		run:          runCommand,
		start:        startCommand,
	}
}

// Name implements [Controller].
func (c *CommandController) Name() string { return c.Label }

// Stop implements [Controller].
func (c *CommandController) Stop(ctx context.Context) (bool, error) {
	if len(c.StopCommand) == 0 {
		return false, nil
	}

	code, err := c.run(ctx, c.StopCommand)
	if err != nil {
		return false, err
	}

	if code != 0 {
		return false, nil
	}

	if c.Settle > 0 {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case <-time.After(c.Settle):
		}
	}

	return true, nil
}

// Start implements [Controller].
func (c *CommandController) Start(ctx context.Context) error {
	if len(c.StartCommand) == 0 {
		return nil
	}

	return c.start(ctx, c.StartCommand)
}

func runCommand(ctx context.Context, argv []string) (int, error) {
	if len(argv) == 0 || argv[0] == "" {
		return 0, ErrNoCommand
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, ctxErr
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}

		return 0, fmt.Errorf("running %s: %w: %s", strings.Join(argv, " "), err, strings.TrimSpace(stderr.String()))
	}

	return 0, nil
}

func startCommand(_ context.Context, argv []string) error {
	if len(argv) == 0 || argv[0] == "" {
		return ErrNoCommand
	}

	// Not tied to ctx: the launcher must outlive this process.
	cmd := exec.Command(argv[0], argv[1:]...)

	err := cmd.Start()
	if err != nil {
		return fmt.Errorf("starting %s: %w", strings.Join(argv, " "), err)
	}

	return cmd.Process.Release()
}
