package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/kairu/internal/app"
	"github.com/sadopc/kairu/internal/export"
	"github.com/sadopc/kairu/internal/leaderboard"
	"github.com/sadopc/kairu/internal/timer"
	"github.com/sadopc/kairu/internal/tui"
)

func newTUICmd(token *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal UI (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), *token)
		},
	}
}

func runTUI(ctx context.Context, token string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	state, err := e.login(ctx, token)
	if err != nil {
		return err
	}
	defer logout(state, e.logger)

	model := tui.NewApp(state, tui.Options{
		Settings: e.store,
		Defaults: e.prefs(ctx),
		Notifier: e.notifier(),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

func newRegisterCmd() *cobra.Command {
	var email, name string
	cmd := &cobra.Command{
		Use:   "register --email <email>",
		Short: "Create a user and print its access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(email) == "" {
				return fmt.Errorf("--email is required")
			}
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			id, token, err := e.auth.Register(cmd.Context(), email, name)
			if err != nil {
				return err
			}
			e.logger.Info("registered user", "email", id.Email)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "registered %s <%s>\ntoken: %s\n", id.DisplayName, id.Email, token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "user email")
	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to email)")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "token --email <email>",
		Short: "Issue another access token for an existing user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(email) == "" {
				return fmt.Errorf("--email is required")
			}
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			token, err := e.auth.Issue(cmd.Context(), strings.ToLower(strings.TrimSpace(email)))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "user email")
	return cmd
}

func newFocusCmd(token *string) *cobra.Command {
	var minutes int
	var tags []string
	cmd := &cobra.Command{
		Use:   "focus",
		Short: "Run one focus session without the UI; Ctrl-C stops early",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			state, err := e.login(ctx, *token)
			if err != nil {
				return err
			}
			defer logout(state, e.logger)

			if minutes > 0 {
				if err := state.SetDuration(minutes); err != nil {
					return err
				}
			}
			return runFocus(ctx, cmd.OutOrStdout(), state, resolveTags(state, tags), time.Second)
		},
	}
	cmd.Flags().IntVar(&minutes, "minutes", 0, "session length in minutes (default from settings)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tags for the session")
	return cmd
}

// resolveTags maps flag values onto the user's tags, creating missing ones.
// A name matching an existing tag in any case takes that tag's spelling.
func resolveTags(state *app.State, names []string) []string {
	var out []string
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		t, ok := state.AddTag(n)
		if !ok || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t.Name)
	}
	return out
}

// runFocus starts the timer and reports progress every interval until the
// run completes or ctx is cancelled, which stops it as partial.
func runFocus(ctx context.Context, out io.Writer, state *app.State, tags []string, interval time.Duration) error {
	m := state.Timer()
	if !m.Start(tags) {
		return timer.ErrActive
	}
	before := len(state.Sessions())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			fs, ok := m.Stop()
			if ok {
				_, _ = fmt.Fprintf(out, "\rstopped: %s of %s focused (%s)\n",
					formatMinutes(fs.ActualDurationSeconds), formatMinutes(fs.TargetDurationSeconds), fs.Status)
			}
			return nil
		case <-ticker.C:
			snap := m.Snapshot()
			if snap.State == timer.Idle {
				// the finished session lands just after the machine goes idle
				if list := state.Sessions(); len(list) > before {
					_, _ = fmt.Fprintf(out, "\rcompleted: %s focused\n", formatMinutes(list[0].ActualDurationSeconds))
					return nil
				}
				continue
			}
			_, _ = fmt.Fprintf(out, "\r%s %02d:%02d left ", snap.State, snap.TimeLeft/60, snap.TimeLeft%60)
		}
	}
}

func formatMinutes(secs int64) string {
	return fmt.Sprintf("%dm%02ds", secs/60, secs%60)
}

func newStatsCmd(token *string) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show streak, today's totals, the last 7 days and tag distribution",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			state, err := e.login(cmd.Context(), *token)
			if err != nil {
				return err
			}
			defer logout(state, e.logger)

			return printStats(cmd.OutOrStdout(), state, state.Now(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printStats(out io.Writer, state *app.State, now time.Time, asJSON bool) error {
	st := state.Stats(now)
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	_, _ = fmt.Fprintf(out, "streak: %d days (longest %d)\ntoday: %d min in %d sessions\n\n",
		st.Streak, st.LongestStreak, st.TodayMinutes, st.TodaySessions)
	for _, d := range state.Daily(now, 7) {
		bar := strings.Repeat("#", int(d.Hours*4))
		_, _ = fmt.Fprintf(out, "%s %5.1fh %s\n", d.Day.Format("Mon 02"), d.Hours, bar)
	}
	if shares := state.TagDistribution(); len(shares) > 0 {
		_, _ = fmt.Fprintln(out)
		for _, t := range shares {
			_, _ = fmt.Fprintf(out, "%-14s %5.1fh %3.0f%%\n", t.Name, t.Hours, t.Percent*100)
		}
	}
	return nil
}

func newLeaderboardCmd(token *string) *cobra.Command {
	var period, scope string
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank your focus time against the roster",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := leaderboard.ParsePeriod(period)
			if err != nil {
				return err
			}
			sc, err := leaderboard.ParseScope(scope)
			if err != nil {
				return err
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			state, err := e.login(cmd.Context(), *token)
			if err != nil {
				return err
			}
			defer logout(state, e.logger)

			printLeaderboard(cmd.OutOrStdout(), state.Leaderboard(state.Now(), p, sc))
			return nil
		},
	}
	cmd.Flags().StringVar(&period, "period", "week", "day|week|month|year|all")
	cmd.Flags().StringVar(&scope, "scope", "everyone", "everyone|friends")
	return cmd
}

func printLeaderboard(out io.Writer, entries []leaderboard.Entry) {
	for _, e := range entries {
		marker := " "
		if e.IsCurrentUser {
			marker = "*"
		}
		_, _ = fmt.Fprintf(out, "%s%3d  %-20s %-4s %8s  %4d kudos  %s\n",
			marker, e.Rank, e.Username, e.Location, e.TimeLogged, e.Kudos, strings.Join(e.Badges, ","))
	}
}

func newExportCmd(token *string) *cobra.Command {
	var format, outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export sessions as CSV or JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "csv" && format != "json" {
				return fmt.Errorf("--format must be csv or json, got %q", format)
			}
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			state, err := e.login(cmd.Context(), *token)
			if err != nil {
				return err
			}
			defer logout(state, e.logger)

			sessions := state.Sessions()
			if outPath == "-" {
				if format == "csv" {
					return export.WriteCSV(cmd.OutOrStdout(), sessions)
				}
				return export.WriteJSON(cmd.OutOrStdout(), sessions, state.Now())
			}
			if format == "csv" {
				err = export.ToCSV(sessions, outPath)
			} else {
				err = export.ToJSON(sessions, outPath)
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d sessions to %s\n", len(sessions), outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "csv|json")
	cmd.Flags().StringVar(&outPath, "out", "-", "output file, - for stdout")
	return cmd
}
