package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/kairu/internal/app"
	"github.com/sadopc/kairu/internal/auth"
	"github.com/sadopc/kairu/internal/leaderboard"
	"github.com/sadopc/kairu/internal/store"
	"github.com/sadopc/kairu/internal/syncq"
	"github.com/sadopc/kairu/internal/timer"
)

func setupEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("KAIRU_CONFIG_PATH", "")
	t.Setenv("KAIRU_TOKEN", "")
	t.Setenv("KAIRU_DB_PATH", filepath.Join(dir, "kairu.db"))
	t.Setenv("KAIRU_LOG_PATH", filepath.Join(dir, "kairu.log"))
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func register(t *testing.T, email, name string) string {
	t.Helper()
	out, err := run(t, "register", "--email", email, "--name", name)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	for _, line := range strings.Split(out, "\n") {
		if tok, ok := strings.CutPrefix(line, "token: "); ok {
			return tok
		}
	}
	t.Fatalf("no token in output %q", out)
	return ""
}

// ============================================================
// Commands
// ============================================================

func TestRegisterAndStats(t *testing.T) {
	setupEnv(t)
	token := register(t, "ada@example.com", "Ada")
	if !strings.HasPrefix(token, "kairu_") {
		t.Fatalf("unexpected token %q", token)
	}

	out, err := run(t, "stats", "--token", token)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, "streak: 0 days") {
		t.Fatalf("unexpected stats output:\n%s", out)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	setupEnv(t)
	register(t, "ada@example.com", "Ada")
	_, err := run(t, "register", "--email", "ADA@example.com")
	if !errors.Is(err, store.ErrDuplicateUser) {
		t.Fatalf("expected duplicate user error, got %v", err)
	}
}

func TestRegisterRequiresEmail(t *testing.T) {
	setupEnv(t)
	if _, err := run(t, "register"); err == nil {
		t.Fatal("expected error without --email")
	}
}

func TestTokenFromEnv(t *testing.T) {
	setupEnv(t)
	token := register(t, "ada@example.com", "Ada")
	t.Setenv("KAIRU_TOKEN", token)

	out, err := run(t, "leaderboard", "--period", "all", "--scope", "friends")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if !strings.HasPrefix(out, "*") || !strings.Contains(out, "Ada") {
		t.Fatalf("unexpected leaderboard output:\n%s", out)
	}
}

func TestMissingToken(t *testing.T) {
	setupEnv(t)
	if _, err := run(t, "stats"); err == nil || !strings.Contains(err.Error(), "no access token") {
		t.Fatalf("expected missing token error, got %v", err)
	}
}

func TestBadToken(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "stats", "--token", "kairu_nope")
	if !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestIssueSecondToken(t *testing.T) {
	setupEnv(t)
	register(t, "ada@example.com", "Ada")
	out, err := run(t, "token", "--email", "ada@example.com")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	second := strings.TrimSpace(out)
	if _, err := run(t, "stats", "--token", second); err != nil {
		t.Fatalf("second token should work: %v", err)
	}
}

func TestLeaderboardBadPeriod(t *testing.T) {
	setupEnv(t)
	if _, err := run(t, "leaderboard", "--period", "decade"); err == nil {
		t.Fatal("expected error for unknown period")
	}
}

func TestExportCSVToStdout(t *testing.T) {
	setupEnv(t)
	token := register(t, "ada@example.com", "Ada")
	out, err := run(t, "export", "--token", token)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(out, "ID,Date,") {
		t.Fatalf("unexpected csv output:\n%s", out)
	}
}

func TestExportBadFormat(t *testing.T) {
	setupEnv(t)
	if _, err := run(t, "export", "--format", "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

// ============================================================
// Headless focus
// ============================================================

func focusState(t *testing.T, tick time.Duration) *app.State {
	t.Helper()
	st, err := store.NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	s, err := app.Login(context.Background(), app.Deps{
		Remote: st,
		Roster: leaderboard.DefaultRoster(),
		Timer:  timer.Options{Duration: time.Second, Tick: tick},
		Sync:   syncq.Options{MaxAttempts: 1, BaseDelay: time.Millisecond},
	}, auth.Identity{Email: "ada@example.com", DisplayName: "Ada"})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		s.Logout(context.Background())
		st.Close()
	})
	return s
}

func TestRunFocusCompletes(t *testing.T) {
	s := focusState(t, 10*time.Millisecond)
	var out bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := runFocus(ctx, &out, s, []string{"Coding"}, 5*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "completed") {
		t.Fatalf("unexpected output %q", out.String())
	}
	sessions := s.Sessions()
	if len(sessions) != 1 || sessions[0].Status != store.StatusCompleted {
		t.Fatalf("sessions = %+v", sessions)
	}
	if sessions[0].Tags[0] != "Coding" {
		t.Fatalf("tags = %v", sessions[0].Tags)
	}
}

func TestRunFocusCancelledStopsPartial(t *testing.T) {
	s := focusState(t, time.Hour)
	var out bytes.Buffer

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := runFocus(ctx, &out, s, nil, time.Hour); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "stopped") {
		t.Fatalf("unexpected output %q", out.String())
	}
	sessions := s.Sessions()
	if len(sessions) != 1 || sessions[0].Status != store.StatusPartial {
		t.Fatalf("sessions = %+v", sessions)
	}
}

func TestResolveTagsUsesExistingSpelling(t *testing.T) {
	s := focusState(t, time.Hour)

	got := resolveTags(s, []string{"maths", " ", "MATHS", "Physics"})
	if len(got) != 2 || got[0] != "Maths" || got[1] != "Physics" {
		t.Fatalf("resolveTags = %v", got)
	}
	if len(s.Tags()) != 5 {
		t.Fatalf("expected one new tag, have %d tags", len(s.Tags()))
	}
}

func TestFocusTagMatchesExistingTag(t *testing.T) {
	s := focusState(t, 10*time.Millisecond)
	var out bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := runFocus(ctx, &out, s, resolveTags(s, []string{"maths"}), 5*time.Millisecond); err != nil {
		t.Fatal(err)
	}

	known := make(map[string]bool)
	for _, tg := range s.Tags() {
		known[tg.Name] = true
	}
	sessions := s.Sessions()
	if len(sessions) != 1 {
		t.Fatalf("sessions = %+v", sessions)
	}
	if tags := sessions[0].Tags; len(tags) != 1 || !known[tags[0]] {
		t.Fatalf("session tags %v not among known tags %v", tags, known)
	}
	shares := s.TagDistribution()
	if len(shares) != 1 || shares[0].Name != "Maths" {
		t.Fatalf("tag distribution = %+v", shares)
	}
}

func TestFormatMinutes(t *testing.T) {
	if got := formatMinutes(1505); got != "25m05s" {
		t.Fatalf("formatMinutes(1505) = %q", got)
	}
}
