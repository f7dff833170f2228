// Package main is a terminal demonstration host for the modal editing
// engine: a small tcell editor that feeds real selection, document, and
// focus events into the engine and renders the styles it writes back.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dshills/modaledit/internal/app"
	"github.com/dshills/modaledit/internal/config"
	"github.com/dshills/modaledit/internal/event"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	logger := app.NopLogger()
	if opts.Debug {
		logger = app.NewLogger(app.LoggerConfig{
			Level:  app.ParseLogLevel(opts.LogLevel),
			Output: os.Stderr,
		})
	}

	loadSettings := func() (config.Settings, error) {
		settings, err := config.Load(opts.ConfigPath)
		if err != nil {
			return settings, err
		}
		if opts.HostSettings != "" {
			if data, err := os.ReadFile(opts.HostSettings); err == nil {
				config.ApplyHostOverlay(&settings, data)
			}
		}
		return settings, nil
	}

	settings, err := loadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	text := "Welcome to modaledit.\n\nPress i to insert, Esc for normal mode.\nUse h j k l and w b to move, F2 to toggle, q to quit.\n"
	if len(opts.Files) > 0 {
		data, err := os.ReadFile(opts.Files[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to open %s: %v\n", opts.Files[0], err)
			return 1
		}
		text = string(data)
	}

	h, err := newDemoHost(strings.TrimSuffix(text, "\n"), documentLanguage(opts.Files))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	defer h.Close()

	hub := event.NewHub()
	h.hub = hub

	store := config.NewStore(settings)
	engineOpts := []app.Option{
		app.WithLogger(logger),
		app.WithReloader(loadSettings),
	}
	if opts.HostSettings != "" {
		engineOpts = append(engineOpts, app.WithToggleWriter(func(enabled bool) error {
			return config.WriteEnabled(opts.HostSettings, enabled)
		}))
	}
	engine := app.New(h, hub, store, engineOpts...)
	defer engine.Disable()

	watchPaths := []string{}
	if opts.ConfigPath != "" {
		watchPaths = append(watchPaths, opts.ConfigPath)
	}
	if opts.HostSettings != "" {
		watchPaths = append(watchPaths, opts.HostSettings)
	}
	if len(watchPaths) > 0 {
		watcher, err := config.NewWatcher(func(path string) {
			h.Post(func() {
				hub.Publish(event.TopicConfigChanged, event.ConfigChanged{Keys: nil})
			})
		})
		if err == nil {
			defer watcher.Close()
			for _, path := range watchPaths {
				if err := watcher.Watch(path); err != nil {
					logger.Warn("config watch failed for %s: %v", path, err)
				}
			}
		}
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		h.Quit()
	}()

	engine.Start()
	hub.Publish(event.TopicActiveSurfaceChanged, event.ActiveSurfaceChanged{Surface: h.surface})

	if err := h.Run(engine); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

type options struct {
	ConfigPath   string
	HostSettings string
	LogLevel     string
	Debug        bool
	Files        []string
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.HostSettings, "host-settings", "", "Path to a host JSON settings file overlaying the configuration")
	flag.StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.Debug, "debug", false, "Log engine activity to stderr")
	flag.BoolVar(&opts.Debug, "d", false, "Log engine activity to stderr (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "modaledit - modal editing engine demo\n\n")
		fmt.Fprintf(os.Stderr, "Usage: modaledit [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("modaledit %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		os.Exit(0)
	}

	switch opts.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}

	opts.Files = flag.Args()
	return opts
}

func documentLanguage(files []string) string {
	if len(files) == 0 {
		return "plaintext"
	}
	name := files[0]
	if i := strings.LastIndex(name, "."); i >= 0 {
		switch name[i+1:] {
		case "go":
			return "go"
		case "md":
			return "markdown"
		case "toml":
			return "toml"
		case "json":
			return "json"
		}
	}
	return "plaintext"
}
