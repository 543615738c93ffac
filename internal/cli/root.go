// Package cli wires flags, configuration, and the monitor into the
// x-monitor command.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"x_monitor/internal/browser"
	"x_monitor/internal/config"
	"x_monitor/internal/monitor"
	"x_monitor/internal/notify"
	"x_monitor/internal/storage"
	"x_monitor/internal/update"
)

// Version is the released version of the tool.
const Version = "1.3.0"

// repo is the GitHub repository releases are published to.
const repo = "openclaw/x-monitor"

type options struct {
	url      string
	watch    bool
	pretty   bool
	port     int
	nitter   string
	state    string
	interval time.Duration
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "x-monitor",
		Short: "Monitor X/Twitter tweet replies via Camofox and Nitter",
		Long: `x-monitor checks a tweet's reply thread through a local Camofox render
service pointed at a Nitter mirror, no login required, and prints one JSON
report per check. Watch mode remembers earlier replies and reports only
what is new since the last check.`,
		Version:      Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.url, "url", "u", "", "tweet URL")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "report only replies new since the last check")
	cmd.Flags().BoolVarP(&opts.pretty, "pretty", "p", false, "pretty-print the JSON report")
	cmd.Flags().IntVar(&opts.port, "port", 0, "Camofox port (default 9377)")
	cmd.Flags().StringVar(&opts.nitter, "nitter", "", "Nitter instance (default nitter.net)")
	cmd.Flags().StringVar(&opts.state, "state", "", "state file path, .db or .sqlite selects the SQLite backend (default data/state.json)")
	cmd.Flags().DurationVar(&opts.interval, "interval", 0, "keep checking on this interval, implies --watch (example: 5m)")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func run(ctx context.Context, out io.Writer, opts *options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.port != 0 {
		cfg.CamofoxPort = opts.port
	}
	if opts.nitter != "" {
		cfg.NitterInstance = opts.nitter
	}
	if opts.state != "" {
		cfg.StatePath = opts.state
	}

	log := newLogger(cfg.LogLevel)

	// The release lookup runs while the check does its work; its notice is
	// printed last so stdout stays pure JSON.
	noticeCh := make(chan string, 1)
	if cfg.NoUpdateCheck {
		noticeCh <- ""
	} else {
		go func() { noticeCh <- update.New(repo).Notice(ctx, Version) }()
	}

	store, err := storage.Open(cfg.StatePath)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer func() { _ = store.Close() }()

	m := monitor.New(browser.New(cfg.CamofoxPort, log), store, cfg.NitterInstance, log)

	if cfg.NotificationsEnabled() {
		n, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, log)
		if err != nil {
			log.Warn("telegram notifier disabled", "error", err)
		} else {
			m.SetNotifier(n)
		}
	}

	emit := emitter(out, opts.pretty, log)

	if opts.interval > 0 {
		err = m.Watch(ctx, opts.url, opts.interval, emit)
	} else {
		var report *monitor.Report
		report, err = m.Check(ctx, opts.url, opts.watch)
		if err == nil {
			emit(report)
		}
	}

	printNotice(noticeCh)
	return err
}

// emitter returns the report writer: one JSON document per check, with HTML
// escaping off so URLs stay readable.
func emitter(w io.Writer, pretty bool, log *slog.Logger) func(*monitor.Report) {
	return func(r *monitor.Report) {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if pretty {
			enc.SetIndent("", "  ")
		}
		if err := enc.Encode(r); err != nil {
			log.Error("encode report", "error", err)
		}
	}
}

// printNotice waits briefly for the background release lookup and prints
// any upgrade notice to stderr.
func printNotice(ch <-chan string) {
	select {
	case notice := <-ch:
		if notice != "" {
			fmt.Fprint(os.Stderr, "\n"+notice)
		}
	case <-time.After(200 * time.Millisecond):
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
