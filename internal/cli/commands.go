package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thenextevent/eventdesk/internal/fixtures"
	"github.com/thenextevent/eventdesk/internal/models"
	"github.com/thenextevent/eventdesk/internal/service"
	"github.com/thenextevent/eventdesk/internal/validation"
)

func newLoginCommand(r *runner) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session",
		Args:  noArgs,
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&password, "password", os.Getenv("EVENTDESK_PASSWORD"), "password, defaults to $EVENTDESK_PASSWORD")
	cmd.RunE = r.run(func(cmd *cobra.Command, env *Env) error {
		if email == "" || password == "" {
			return fmt.Errorf("%w: login needs --email and --password", ErrUsage)
		}
		resp, err := env.Services.Auth.Login(cmd.Context(), models.LoginRequest{Email: email, Password: password})
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		fmt.Fprintf(env.Out, "✓ Signed in as %s (%s)\n", resp.User.FullName(), resp.User.Role)
		return nil
	})
	return cmd
}

func newLogoutCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  noArgs,
		RunE: r.run(func(cmd *cobra.Command, env *Env) error {
			if err := env.Services.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(env.Out, "✓ Signed out")
			return nil
		}),
	}
}

func newWhoamiCommand(r *runner) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  noArgs,
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ask the server instead of the saved session")
	cmd.RunE = r.run(func(cmd *cobra.Command, env *Env) error {
		user := env.Services.Auth.LocalUser()
		if refresh {
			u, err := env.Services.Auth.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			user = u
		}
		if user == nil || !env.Services.Auth.IsAuthenticated() {
			fmt.Fprintln(env.Out, "Not signed in")
			return nil
		}
		fmt.Fprintf(env.Out, "%s <%s> %s\n", user.FullName(), user.Email, user.Role)
		return nil
	})
	return cmd
}

// newSubmitCommand groups the form submitters. Only the contact form is
// offered from the command line.
func newSubmitCommand(r *runner) *cobra.Command {
	onlyContact := fmt.Errorf("%w: submit supports the contact form only", ErrUsage)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Send a form submission",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return onlyContact
			}
			return nil
		},
		RunE: func(*cobra.Command, []string) error { return onlyContact },
	}
	cmd.AddCommand(newSubmitContactCommand(r))
	return cmd
}

func newSubmitContactCommand(r *runner) *cobra.Command {
	var (
		in       service.ContactInput
		services string
	)
	cmd := &cobra.Command{
		Use:   string(models.FormContact),
		Short: "Send the contact form",
		Args:  noArgs,
	}
	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "submitter name")
	f.StringVar(&in.Email, "email", "", "submitter email")
	f.StringVar(&in.Phone, "phone", "", "submitter phone")
	f.StringVar(&in.Message, "message", "", "message body")
	f.StringVar(&in.Organization, "organization", "", "organization")
	f.StringVar(&in.EventType, "event-type", "", "event type")
	f.StringVar(&in.EventDate, "event-date", "", "event date (YYYY-MM-DD)")
	f.StringVar(&in.GuestCount, "guests", "", "expected guest count")
	f.StringVar(&in.Budget, "budget", "", "budget band")
	f.StringVar(&services, "services", "", "comma separated list of requested services")
	cmd.RunE = r.run(func(cmd *cobra.Command, env *Env) error {
		in.Services = splitList(services)
		sub, err := env.Services.Forms.SubmitContact(cmd.Context(), service.NewContactPayload(in))
		var verr *validation.Error
		if errors.As(err, &verr) {
			for _, m := range verr.Result.Messages() {
				fmt.Fprintln(env.Out, warnStyle.Render("✗ "+m))
			}
			return fmt.Errorf("submission not sent: %d problem(s)", len(verr.Result.Errors))
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(env.Out, "✓ Submission %d received\n", sub.ID)
		return nil
	})
	return cmd
}

func newListCommand(r *runner) *cobra.Command {
	var filters models.DashboardFilters
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List submissions",
		Args:  noArgs,
	}
	f := cmd.Flags()
	f.StringVar(&filters.FormType, "type", "", "form type or all")
	f.StringVar(&filters.Status, "status", "", "status or all")
	f.StringVar(&filters.Priority, "priority", "", "priority or all")
	f.StringVar(&filters.AssignedTo, "assigned", "", "assignee")
	f.StringVar(&filters.DateFrom, "from", "", "first day (YYYY-MM-DD)")
	f.StringVar(&filters.DateTo, "to", "", "last day (YYYY-MM-DD)")
	f.StringVar(&filters.SearchTerm, "search", "", "search name, email or message")
	f.IntVar(&filters.Page, "page", 1, "page number")
	f.IntVar(&filters.Limit, "limit", 25, "page size")
	cmd.RunE = r.run(func(cmd *cobra.Command, env *Env) error {
		if err := env.Engine.Load(cmd.Context(), filters); err != nil {
			return err
		}
		renderPage(env.Out, env.Engine.View().Page, env.Lang)
		return nil
	})
	return cmd
}

// idCommand builds a command whose only input is --id.
func idCommand(r *runner, use, short string, fn func(cmd *cobra.Command, env *Env, id int64) error) *cobra.Command {
	var id int64
	cmd := &cobra.Command{Use: use, Short: short, Args: noArgs}
	cmd.Flags().Int64Var(&id, "id", 0, "submission id")
	cmd.RunE = r.run(func(cmd *cobra.Command, env *Env) error {
		if err := requireID(cmd, id); err != nil {
			return err
		}
		return fn(cmd, env, id)
	})
	return cmd
}

func newShowCommand(r *runner) *cobra.Command {
	return idCommand(r, "show", "Show one submission", func(cmd *cobra.Command, env *Env, id int64) error {
		sub, err := env.Source.Submission(cmd.Context(), id)
		if err != nil {
			return err
		}
		renderSubmission(env.Out, *sub, env.Lang)
		return nil
	})
}

func newReadCommand(r *runner) *cobra.Command {
	return idCommand(r, "read", "Mark a submission as read", func(cmd *cobra.Command, env *Env, id int64) error {
		if err := env.Engine.MarkAsRead(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(env.Out, "✓ Submission %d marked read\n", id)
		return nil
	})
}

func newDeleteCommand(r *runner) *cobra.Command {
	return idCommand(r, "delete", "Delete a submission", func(cmd *cobra.Command, env *Env, id int64) error {
		if err := env.Engine.Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(env.Out, "✓ Submission %d deleted\n", id)
		return nil
	})
}

func newStatusCommand(r *runner) *cobra.Command {
	var status, notes string
	cmd := idCommand(r, "status", "Change a submission status", func(cmd *cobra.Command, env *Env, id int64) error {
		st, err := models.ParseStatus(status)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		}
		if err := env.Engine.UpdateStatus(cmd.Context(), id, st, notes); err != nil {
			return err
		}
		fmt.Fprintf(env.Out, "✓ Submission %d is now %s\n", id, statusBadge(st))
		return nil
	})
	cmd.Flags().StringVar(&status, "set", "", "new status: new, inProgress, completed or archived")
	cmd.Flags().StringVar(&notes, "notes", "", "admin notes")
	return cmd
}

func newAssignCommand(r *runner) *cobra.Command {
	var to string
	cmd := idCommand(r, "assign", "Assign a submission to a staff member", func(cmd *cobra.Command, env *Env, id int64) error {
		if to == "" {
			return fmt.Errorf("%w: assign needs --to", ErrUsage)
		}
		if err := env.Engine.Assign(cmd.Context(), id, to); err != nil {
			return err
		}
		fmt.Fprintf(env.Out, "✓ Submission %d assigned to %s\n", id, to)
		return nil
	})
	cmd.Flags().StringVar(&to, "to", "", "assignee")
	return cmd
}

func newNoteCommand(r *runner) *cobra.Command {
	var text string
	cmd := idCommand(r, "note", "Add an admin note", func(cmd *cobra.Command, env *Env, id int64) error {
		if text == "" {
			return fmt.Errorf("%w: note needs --text", ErrUsage)
		}
		if err := env.Engine.AddNote(cmd.Context(), id, text); err != nil {
			return err
		}
		fmt.Fprintf(env.Out, "✓ Note added to submission %d\n", id)
		return nil
	})
	cmd.Flags().StringVar(&text, "text", "", "note text")
	return cmd
}

func newExportCommand(r *runner) *cobra.Command {
	var (
		filters     models.DashboardFilters
		format, dir string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export submissions to a file",
		Args:  noArgs,
	}
	f := cmd.Flags()
	f.StringVar(&filters.FormType, "type", "", "form type or all")
	f.StringVar(&filters.Status, "status", "", "status or all")
	f.StringVar(&filters.SearchTerm, "search", "", "search term")
	f.StringVar(&format, "format", string(models.ExportExcel), "csv or excel")
	f.StringVar(&dir, "dir", ".", "output directory")
	cmd.RunE = r.run(func(cmd *cobra.Command, env *Env) error {
		ef := models.ExportFormat(format)
		if !ef.Valid() {
			return fmt.Errorf("%w: unknown export format %q", ErrUsage, format)
		}
		// Export reuses the filters of the last load.
		if err := env.Engine.Load(cmd.Context(), filters); err != nil {
			return err
		}
		blob, err := env.Engine.Export(cmd.Context(), ef)
		if err != nil {
			return err
		}
		name := blob.FileName
		if name == "" {
			name = "submissions." + string(ef)
		}
		path := filepath.Join(dir, filepath.Base(name))
		if err := os.WriteFile(path, blob.Data, 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Fprintf(env.Out, "✓ Wrote %s (%d bytes)\n", path, len(blob.Data))
		return nil
	})
	return cmd
}

func newStatsCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics",
		Args:  noArgs,
		RunE: r.run(func(cmd *cobra.Command, env *Env) error {
			if env.Offline {
				renderStats(env.Out, fixtures.DemoStats())
				return nil
			}
			stats, degraded := env.Services.Dashboard.Stats(cmd.Context()).Or(service.DefaultStats)
			if degraded {
				fmt.Fprintln(env.Out, warnStyle.Render("live statistics unavailable, showing defaults"))
			}
			renderStats(env.Out, stats)
			return nil
		}),
	}
}
