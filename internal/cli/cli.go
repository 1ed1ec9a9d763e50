// Package cli implements the eventdesk staff commands on cobra. Commands
// talk to the API through the client services, or to the demo fixtures when
// the dashboard source is set to fixtures.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenextevent/eventdesk/internal/apiclient"
	"github.com/thenextevent/eventdesk/internal/config"
	"github.com/thenextevent/eventdesk/internal/engine"
	"github.com/thenextevent/eventdesk/internal/fixtures"
	"github.com/thenextevent/eventdesk/internal/models"
	"github.com/thenextevent/eventdesk/internal/retry"
	"github.com/thenextevent/eventdesk/internal/service"
)

// Source is what the read-side commands need beyond the engine.
type Source interface {
	engine.Source
	Submission(ctx context.Context, id int64) (*models.Submission, error)
}

type Env struct {
	Out      io.Writer
	Services *service.Services
	Source   Source
	Engine   *engine.Engine
	// Offline is set when Source is the in-memory demo data.
	Offline bool
	Lang    string
}

// NewEnv builds the client stack described by cfg. The session is restored
// from the session file so a login survives between invocations.
func NewEnv(cfg *config.Config, out io.Writer) (*Env, error) {
	session, err := apiclient.NewSession(apiclient.NewFileStore(cfg.Client.SessionFile), cfg.Client.SiteURL)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	client := apiclient.New(cfg.Client.BaseURL, session, apiclient.WithTimeout(cfg.Client.Timeout()))

	policy := retry.DefaultPolicy
	policy.MaxAttempts = max(cfg.Client.Retries, 1)
	svc := service.New(client, service.DashboardOptions{Retry: policy})

	var src Source = svc.Dashboard
	offline := cfg.Client.DashboardSource == "fixtures"
	if offline {
		src = fixtures.New(nil)
	}
	return NewEnvWith(out, svc, src, offline), nil
}

func NewEnvWith(out io.Writer, svc *service.Services, src Source, offline bool) *Env {
	return &Env{
		Out:      out,
		Services: svc,
		Source:   src,
		Engine:   engine.New(src),
		Offline:  offline,
		Lang:     "en",
	}
}

// EnvFunc builds the Env for one invocation from the --config value.
type EnvFunc func(configPath string, out io.Writer) (*Env, error)

var ErrUsage = errors.New("usage")

// runner holds the persistent flags and the Env, which is built on first
// use so that help and usage errors never touch the session file.
type runner struct {
	newEnv     EnvFunc
	configPath string
	lang       string
	env        *Env
}

func (r *runner) load(cmd *cobra.Command) (*Env, error) {
	if r.env != nil {
		return r.env, nil
	}
	env, err := r.newEnv(r.configPath, cmd.OutOrStdout())
	if err != nil {
		return nil, err
	}
	env.Lang = r.lang
	r.env = env
	return env, nil
}

// run adapts a command body to cobra's RunE.
func (r *runner) run(fn func(cmd *cobra.Command, env *Env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		env, err := r.load(cmd)
		if err != nil {
			return err
		}
		return fn(cmd, env)
	}
}

// NewRootCommand returns the eventdesk command tree. Build a fresh tree for
// every execution; flag values live on the commands.
func NewRootCommand(newEnv EnvFunc) *cobra.Command {
	r := &runner{newEnv: newEnv}
	root := &cobra.Command{
		Use:           "eventdesk",
		Short:         "Staff tools for event site submissions",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return fmt.Errorf("%w: no command given", ErrUsage)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	})
	root.PersistentFlags().StringVar(&r.configPath, "config", os.Getenv("EVENTDESK_CONFIG"), "path to a YAML config file")
	root.PersistentFlags().StringVar(&r.lang, "lang", "en", "display language (ar or en)")

	root.AddCommand(
		newLoginCommand(r),
		newLogoutCommand(r),
		newWhoamiCommand(r),
		newSubmitCommand(r),
		newListCommand(r),
		newShowCommand(r),
		newReadCommand(r),
		newStatusCommand(r),
		newAssignCommand(r),
		newNoteCommand(r),
		newDeleteCommand(r),
		newExportCommand(r),
		newStatsCommand(r),
	)
	return root
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: %s takes no arguments, got %q", ErrUsage, cmd.CommandPath(), args)
	}
	return nil
}

func requireID(cmd *cobra.Command, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s needs --id", ErrUsage, cmd.Name())
	}
	return nil
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
