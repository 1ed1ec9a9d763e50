package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/thenextevent/eventdesk/internal/cli"
	"github.com/thenextevent/eventdesk/internal/config"
	"github.com/thenextevent/eventdesk/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := cli.NewRootCommand(loadEnv)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, cli.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func loadEnv(configPath string, out io.Writer) (*cli.Env, error) {
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	// Client logs go to stderr so they never mix with command output.
	logging.Init(os.Stderr, logging.Options{Level: cfg.Log.Level})
	return cli.NewEnv(cfg, out)
}
