package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/kairu/internal/app"
	"github.com/sadopc/kairu/internal/auth"
	"github.com/sadopc/kairu/internal/config"
	"github.com/sadopc/kairu/internal/dateutil"
	"github.com/sadopc/kairu/internal/leaderboard"
	"github.com/sadopc/kairu/internal/store"
	"github.com/sadopc/kairu/internal/syncq"
	"github.com/sadopc/kairu/internal/timer"
	"github.com/sadopc/kairu/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var token string

	root := &cobra.Command{
		Use:           "kairu",
		Short:         "Terminal focus timer",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), token)
		},
	}
	root.PersistentFlags().StringVar(&token, "token", "", "access token (default $KAIRU_TOKEN)")

	root.AddCommand(newTUICmd(&token))
	root.AddCommand(newRegisterCmd())
	root.AddCommand(newTokenCmd())
	root.AddCommand(newFocusCmd(&token))
	root.AddCommand(newStatsCmd(&token))
	root.AddCommand(newLeaderboardCmd(&token))
	root.AddCommand(newExportCmd(&token))
	return root
}

// env is everything a command needs before sign-in.
type env struct {
	cfg    config.Config
	logger *slog.Logger
	logs   io.Closer
	store  *store.Store
	auth   *auth.TokenAuthenticator
}

func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, logs, err := config.NewLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	st, err := store.New(cfg.DB.Path)
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Debug("opened database", "path", cfg.DB.Path)
	return &env{
		cfg:    cfg,
		logger: logger,
		logs:   logs,
		store:  st,
		auth:   auth.NewTokenAuthenticator(st),
	}, nil
}

func (e *env) Close() {
	e.store.Close()
	e.logs.Close()
}

// prefs resolves local settings, falling back to the config file.
func (e *env) prefs(ctx context.Context) tui.Preferences {
	p := tui.Preferences{
		TimerMinutes: e.cfg.Timer.DefaultMinutes,
		Sound:        e.cfg.Timer.Sound,
		WeekStart:    e.cfg.Leaderboard.WeekStart,
	}
	if v, err := strconv.Atoi(e.store.SettingOr(ctx, tui.SettingTimerMinutes, "")); err == nil && v > 0 {
		p.TimerMinutes = v
	}
	switch e.store.SettingOr(ctx, tui.SettingSound, "") {
	case "on":
		p.Sound = true
	case "off":
		p.Sound = false
	}
	p.WeekStart = e.store.SettingOr(ctx, tui.SettingWeekStart, p.WeekStart)
	return p
}

func (e *env) notifier() timer.Notifier {
	return timer.DesktopNotifier{AppName: "kairu"}
}

// login authenticates the token and hydrates the user's state.
func (e *env) login(ctx context.Context, token string) (*app.State, error) {
	if token == "" {
		token = e.cfg.Auth.Token
	}
	if token == "" {
		return nil, errors.New("no access token: pass --token or set KAIRU_TOKEN (kairu register creates one)")
	}
	id, err := e.auth.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	roster, err := leaderboard.LoadRoster(e.cfg.Leaderboard.Roster)
	if err != nil {
		return nil, err
	}

	prefs := e.prefs(ctx)
	topts := timer.Options{
		Duration: time.Duration(prefs.TimerMinutes) * time.Minute,
		Logger:   e.logger,
	}
	if prefs.Sound {
		topts.Notifier = e.notifier()
	}

	return app.Login(ctx, app.Deps{
		Remote:    e.store,
		Roster:    roster,
		WeekStart: dateutil.ParseWeekday(prefs.WeekStart),
		Timer:     topts,
		Sync: syncq.Options{
			MaxAttempts: e.cfg.Sync.MaxAttempts,
			BaseDelay:   e.cfg.Sync.BaseDelay,
			Logger:      e.logger,
		},
		Logger: e.logger,
	}, id)
}

// logout flushes pending writes with a bounded wait.
func logout(s *app.State, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Logout(ctx); err != nil {
		logger.Warn("logout left writes unsynced", "err", err)
	}
}
