// Package launcher stops and restarts game launchers (Steam, Battle.net)
// around config edits. Launchers rewrite their config files on exit, so an
// edit made while they run is lost.
package launcher

import (
	"context"
	"errors"
	"fmt"
)

// Controller stops and starts one launcher.
type Controller interface {
	// Name is shown in messages.
	Name() string

	// Stop closes the launcher. wasRunning reports whether it was open.
	Stop(ctx context.Context) (wasRunning bool, err error)

	// Start opens the launcher again.
	Start(ctx context.Context) error
}

// WithStopped stops c, runs fn and, if c was running before, starts it
// again. The restart happens on every exit path, including when fn fails
// or panics; its error is joined with fn's.
//
// If Stop fails fn is not run. A launcher that Stop closed before failing
// is still restarted.
func WithStopped(ctx context.Context, c Controller, fn func() error) (err error) {
	wasRunning, stopErr := c.Stop(ctx)

	defer func() {
		if !wasRunning {
			return
		}

		// Restart even if ctx was canceled while fn ran.
		startErr := c.Start(context.WithoutCancel(ctx))
		if startErr != nil {
			err = errors.Join(err, fmt.Errorf("restarting %s: %w", c.Name(), startErr))
		}
	}()

	if stopErr != nil {
		return fmt.Errorf("stopping %s: %w", c.Name(), stopErr)
	}

	return fn()
}

// Noop is a Controller for launchers with no configured commands. It
// reports the launcher as not running, so nothing is restarted.
type Noop struct {
	Label string
}

// Name implements [Controller].
func (n Noop) Name() string { return n.Label }

// Stop implements [Controller].
func (Noop) Stop(context.Context) (bool, error) { return false, nil }

// Start implements [Controller].
func (Noop) Start(context.Context) error { return nil }

var (
	_ Controller = Noop{}
	_ Controller = (*CommandController)(nil)
)
