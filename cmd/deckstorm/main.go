// Package main is the entry point for the deckstorm presenter.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/deckstorm/internal/app"
	"github.com/dshills/deckstorm/internal/config"
	"github.com/dshills/deckstorm/internal/event"
	"github.com/dshills/deckstorm/internal/inject"
	"github.com/dshills/deckstorm/internal/logging"
	"github.com/dshills/deckstorm/internal/presenter"
	"github.com/dshills/deckstorm/internal/watcher"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	configPath string
	deckPath   string
	logLevel   string
	logFile    string
	theme      string
	addr       string
	headless   bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	applyFlags(cfg, opts)

	// The terminal owns stdout/stderr while the presenter runs.
	var console io.Writer = os.Stderr
	if !opts.headless {
		console = io.Discard
	}
	logger, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: logging.Format(cfg.Log.Format),
		Output: console,
		File:   cfg.Log.File,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Close()

	application, err := app.New(app.Options{Config: cfg, Logger: logger.Logger})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := application.Close(ctx); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	initial, err := readDeck(opts.deckPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if _, err := application.Start(ctx, initial); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Edits to the deck file act as local keystrokes.
	if opts.deckPath != "" {
		fw, err := watchDeck(opts.deckPath, application, logger)
		if err != nil {
			logger.Warn("deck file not watched", "path", opts.deckPath, "error", err)
		} else {
			defer fw.Close()
		}
	}

	if opts.configPath != "" {
		cw, err := config.Watch(opts.configPath, cfg, func(next *config.Config, err error) {
			if err != nil {
				return
			}
			applyFlags(next, opts)
			logger.SetLevel(next.Log.Level)
			if err := application.ApplyConfig(next); err != nil {
				logger.Error("applying config", "error", err)
			}
		}, watcher.WithLogger(logger.Logger))
		if err != nil {
			logger.Warn("config file not watched", "path", opts.configPath, "error", err)
		} else {
			defer cw.Close()
		}
	}

	errc := make(chan error, 1)
	if cfg.Server.Enabled {
		srv := inject.NewServer(application, inject.WithLogger(logger.Logger))
		go func() { errc <- srv.ListenAndServe(ctx, cfg.Server.Addr) }()
	}

	if opts.headless {
		select {
		case <-ctx.Done():
		case err := <-errc:
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return 1
			}
		}
		return 0
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	p := presenter.New(screen, application,
		presenter.WithLogger(logger.Logger),
		presenter.WithThemeName(func() string { return application.Themes().Current().DisplayName }),
	)
	unsub, err := application.Bus().Subscribe("**", func(context.Context, event.Envelope) error {
		p.Refresh()
		return nil
	})
	if err == nil {
		defer unsub()
	}

	if err := p.Run(ctx); err != nil && !errors.Is(err, presenter.ErrQuit) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func readDeck(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading deck: %w", err)
	}
	return string(data), nil
}

func watchDeck(path string, application *app.Application, logger *logging.Logger) (*watcher.Watcher, error) {
	fw, err := watcher.New(func(ev watcher.Event) {
		if ev.Op.Has(watcher.OpRemove) {
			return
		}
		data, err := os.ReadFile(ev.Path)
		if err != nil {
			logger.Warn("reading deck", "path", ev.Path, "error", err)
			return
		}
		if err := application.Edit(string(data)); err != nil {
			logger.Debug("edit dropped", "error", err)
		}
	}, watcher.WithLogger(logger.Logger))
	if err != nil {
		return nil, err
	}
	if err := fw.Watch(path); err != nil {
		fw.Close()
		return nil, err
	}
	return fw, nil
}

func applyFlags(cfg *config.Config, opts options) {
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFile != "" {
		cfg.Log.File = opts.logFile
	}
	if opts.theme != "" {
		cfg.Render.Theme = opts.theme
	}
	if opts.addr != "" {
		cfg.Server.Enabled = true
		cfg.Server.Addr = opts.addr
	}
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file (.toml, .yaml)")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.logFile, "log-file", "", "Write JSON logs to this file")
	flag.StringVar(&opts.theme, "theme", "", "Theme id")
	flag.StringVar(&opts.addr, "addr", "", "Serve the inject API on this address")
	flag.BoolVar(&opts.headless, "headless", false, "Run without the terminal presenter")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "deckstorm - live slide deck presenter\n\n")
		fmt.Fprintf(os.Stderr, "Usage: deckstorm [options] [deck.md]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  deckstorm talk.md                   Present and follow edits to talk.md\n")
		fmt.Fprintf(os.Stderr, "  deckstorm -addr :7420 talk.md       Also accept generated content over HTTP\n")
		fmt.Fprintf(os.Stderr, "  deckstorm -headless -addr :7420     Serve the API only\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("deckstorm %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.logLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.logLevel)
		os.Exit(1)
	}

	if flag.NArg() > 0 {
		opts.deckPath = flag.Arg(0)
	}
	return opts
}
