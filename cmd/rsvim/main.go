// Command rsvim is a modal terminal text editor scripted with JavaScript.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rsvim/rsvim-sub002/internal/config"
	"github.com/rsvim/rsvim-sub002/internal/coord"
	"github.com/rsvim/rsvim-sub002/internal/evloop"
	"github.com/rsvim/rsvim-sub002/internal/log"
)

const version = "0.1.0"

func main() {
	code, err := run()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}

func run() (int, error) {
	var exitCode int
	root := &cobra.Command{
		Use:           "rsvim [file ...]",
		Short:         "A modal text editor for the terminal, scripted with JavaScript",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := runEditor(cmd.Context(), args)
			exitCode = code
			return err
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		return 0, err
	}
	return exitCode, nil
}

func runEditor(ctx context.Context, files []string) (int, error) {
	logger := log.Init()

	source, err := evloop.NewTtyEventSource(os.Stdin)
	if err != nil {
		return 0, err
	}
	width, height, err := source.Size()
	if err != nil {
		_ = source.Close()
		return 0, err
	}

	entry, err := config.EntryScript()
	if err != nil {
		logger.Warn("config lookup failed", "error", err)
	}
	dataDir := ""
	if dir, derr := config.DataDir(); derr == nil && config.EnsureDir(dir) == nil {
		dataDir = dir
	}

	loop, err := evloop.New(evloop.Options{
		Source:      source,
		Writer:      evloop.NewAnsiWriter(os.Stdout),
		Size:        coord.NewSize(width, height),
		Files:       files,
		ConfigEntry: entry,
		DataDir:     dataDir,
		Logger:      logger,
	})
	if err != nil {
		_ = source.Close()
		return 0, err
	}

	// Switch to the alternate screen for the session and restore on exit,
	// whatever path the loop leaves by.
	_, _ = fmt.Fprint(os.Stdout, "\x1b[?1049h\x1b[2J\x1b[H")
	defer func() { _, _ = fmt.Fprint(os.Stdout, "\x1b[?1049l") }()

	return loop.Run(ctx), nil
}
