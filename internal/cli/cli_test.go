package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenextevent/eventdesk/internal/apiclient"
	"github.com/thenextevent/eventdesk/internal/fixtures"
	"github.com/thenextevent/eventdesk/internal/service"
)

func offlineEnv(t *testing.T) (*Env, *bytes.Buffer) {
	t.Helper()
	session, err := apiclient.NewSession(nil, "http://127.0.0.1:1")
	require.NoError(t, err)
	svc := service.New(apiclient.New("http://127.0.0.1:1/api", session), service.DashboardOptions{})
	var out bytes.Buffer
	return NewEnvWith(&out, svc, fixtures.New(nil), true), &out
}

// execute runs one invocation on a fresh command tree sharing env.
func execute(env *Env, args ...string) error {
	root := NewRootCommand(func(string, io.Writer) (*Env, error) { return env, nil })
	root.SetOut(env.Out)
	root.SetErr(env.Out)
	// A nil slice makes cobra fall back to os.Args.
	root.SetArgs(append([]string{}, args...))
	return root.ExecuteContext(context.Background())
}

func run(t *testing.T, env *Env, out *bytes.Buffer, args ...string) string {
	t.Helper()
	out.Reset()
	require.NoError(t, execute(env, args...))
	return out.String()
}

func TestListFiltersFixtures(t *testing.T) {
	env, out := offlineEnv(t)

	got := run(t, env, out, "list", "--type", "contact", "--status", "new")
	assert.Contains(t, got, "ahmed.mohamed@email.com")
	assert.NotContains(t, got, "saad.alghamdi@business.com")
	assert.Contains(t, got, "1 total")

	got = run(t, env, out, "list", "--search", "no-such-person")
	assert.Contains(t, got, "No submissions found")
}

func TestStatusAndNoteShowUp(t *testing.T) {
	env, out := offlineEnv(t)

	run(t, env, out, "status", "--id", "1", "--set", "completed", "--notes", "closed by phone")
	run(t, env, out, "note", "--id", "1", "--text", "follow up in March")
	run(t, env, out, "assign", "--id", "1", "--to", "Sara")

	got := run(t, env, out, "show", "--id", "1")
	assert.Contains(t, got, "completed")
	assert.Contains(t, got, "closed by phone\nfollow up in March")
	assert.Contains(t, got, "Sara")
	assert.Contains(t, got, "ahmed.mohamed@email.com")
}

func TestDeleteRemovesFromList(t *testing.T) {
	env, out := offlineEnv(t)

	run(t, env, out, "delete", "--id", "6")
	got := run(t, env, out, "list")
	assert.NotContains(t, got, "saad.alghamdi@business.com")
	assert.Contains(t, got, "5 total")

	err := execute(env, "show", "--id", "6")
	assert.ErrorIs(t, err, fixtures.ErrNotFound)
}

func TestExportWritesFile(t *testing.T) {
	env, out := offlineEnv(t)
	dir := t.TempDir()

	got := run(t, env, out, "export", "--format", "csv", "--type", "contact", "--dir", dir)
	assert.Contains(t, got, "Wrote")

	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "ahmed.mohamed@email.com")
	assert.NotContains(t, string(data), "fatima.ali@company.com")
}

func TestStatsOffline(t *testing.T) {
	env, out := offlineEnv(t)

	got := run(t, env, out, "stats")
	assert.Contains(t, got, "127")
	assert.Contains(t, got, "12.5%")
}

func TestSubmitValidatesBeforeSending(t *testing.T) {
	env, out := offlineEnv(t)

	err := execute(env, "submit", "contact", "--name", "S", "--email", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not sent")
	assert.True(t, strings.Count(out.String(), "✗") >= 2)
}

func TestUsageErrors(t *testing.T) {
	env, _ := offlineEnv(t)

	for _, args := range [][]string{
		nil,
		{"frobnicate"},
		{"status", "--id", "1", "--set", "done"},
		{"read"},
		{"read", "--id", "one"},
		{"list", "--no-such-flag"},
		{"show", "1"},
		{"submit"},
		{"submit", "feedback"},
	} {
		assert.ErrorIs(t, execute(env, args...), ErrUsage, "%q", args)
	}
}

func TestEnvBuiltOnceWithPersistentFlags(t *testing.T) {
	env, out := offlineEnv(t)
	var calls int
	var gotConfig string
	root := NewRootCommand(func(path string, _ io.Writer) (*Env, error) {
		calls++
		gotConfig = path
		return env, nil
	})
	root.SetOut(out)
	root.SetArgs([]string{"--config", "staff.yaml", "--lang", "ar", "list", "--type", "contact"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	assert.Equal(t, 1, calls)
	assert.Equal(t, "staff.yaml", gotConfig)
	assert.Equal(t, "ar", env.Lang)
}

func TestHelpNeedsNoEnv(t *testing.T) {
	var out bytes.Buffer
	root := NewRootCommand(func(string, io.Writer) (*Env, error) {
		return nil, errors.New("should not be built")
	})
	root.SetOut(&out)
	root.SetArgs([]string{"help", "list"})
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "--status")
}

func TestWhoamiSignedOut(t *testing.T) {
	env, out := offlineEnv(t)
	assert.Contains(t, run(t, env, out, "whoami"), "Not signed in")
}
