package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/fieldform/internal/config"
	"github.com/aretw0/fieldform/internal/logging"
	"github.com/aretw0/fieldform/internal/presentation/tui"
	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/aretw0/fieldform/pkg/form"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	Config    *config.Config
	SessionID string
	Fresh     bool
	Quiet     bool
	Version   string

	In  io.Reader
	Out io.Writer
}

// Execute runs an interactive console session until the user quits or a
// signal arrives.
func Execute(opts RunOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	logger := logging.New(opts.Config.Level())
	rt, err := NewRuntime(sigCtx, opts.Config, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn("failed to close store", "err", err)
		}
	}()

	if opts.Fresh && opts.SessionID != "" {
		if err := rt.Manager.Delete(sigCtx, opts.SessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("reset session: %w", err)
		}
	}

	s, resumed, err := openSession(sigCtx, rt, opts.SessionID)
	if err != nil {
		return fmt.Errorf("failed to init session: %w", err)
	}

	interactive := IsTerminal(opts.Out)
	consoleOpts := []ConsoleOption{WithIO(opts.In, opts.Out), WithConsoleLogger(logger)}
	if interactive {
		render, err := tui.NewRenderer(false)
		if err != nil {
			return err
		}
		consoleOpts = append(consoleOpts, WithRenderer(render))
	}

	if !opts.Quiet {
		if interactive {
			tui.PrintBanner(opts.Out, opts.Version)
		}
		if resumed {
			printSystemMessage(opts.Out, "Resuming session '%s'. Type help for commands.", s.ID)
		} else {
			printSystemMessage(opts.Out, "Session '%s' active. Type help for commands.", s.ID)
		}
	}

	runErr := NewConsole(rt.Manager, s.ID, consoleOpts...).Run(sigCtx)
	if sigCtx.Err() != nil && runErr == nil {
		runErr = sigCtx.Err()
	}
	if !opts.Quiet {
		logCompletion(opts.Out, s.ID, runErr, sigCtx.Signal())
	}
	return handleExecutionError(runErr)
}

func openSession(ctx context.Context, rt *Runtime, id string) (*form.Session, bool, error) {
	if id == "" {
		s, err := rt.Manager.Start(ctx, "")
		return s, false, err
	}
	s, err := rt.Manager.Resume(ctx, id)
	if err == nil {
		return s, true, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, false, err
	}
	s, err = rt.Manager.Start(ctx, id)
	return s, false, err
}
