package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/wordrnn/internal/logger"
	"github.com/samcharles93/wordrnn/internal/version"
)

// fileConfig is loaded by the root Before hook.
var fileConfig Config

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "wordrnn",
		Usage:   "Word and character level recurrent language model trainer",
		Version: version.String(),
		Flags:   loggingFlags(),
		Before:  setup,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			trainCmd(),
			sampleCmd(),
			vocabCmd(),
			serveCmd(),
			versionCmd(),
		},
	}
}

// setup loads the config file and installs the logger in the context.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return ctx, err
	}
	fileConfig = cfg
	applyLoggingConfig(cmd, cfg)

	level := logger.ParseLevel(logLevel)
	if debug {
		level = logger.ParseLevel("debug")
	}
	w := cmd.Root().ErrWriter
	if w == nil {
		w = os.Stderr
	}
	log, err := logger.Configure(w, logFormat, level, w == os.Stderr && isTerminal(os.Stderr))
	if err != nil {
		return ctx, err
	}
	return logger.WithContext(ctx, log), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp()
	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr
	if err := app.Run(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
