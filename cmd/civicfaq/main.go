// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	charmlog "github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/civicfaq"
	"github.com/poiesic/civicfaq/binlookup"
	"github.com/poiesic/civicfaq/chatlog"
	"github.com/poiesic/civicfaq/config"
	"github.com/poiesic/civicfaq/core"
	"github.com/poiesic/civicfaq/embedcache"
	"github.com/poiesic/civicfaq/faq"
	"github.com/poiesic/civicfaq/metrics"
	"github.com/poiesic/civicfaq/server"
	"github.com/poiesic/civicfaq/tui"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "civicfaq",
		Usage: "Municipal FAQ assistant with hybrid semantic and keyword retrieval",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				Value:   "civicfaq.yaml",
				EnvVars: []string{config.EnvPrefix + "CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file loaded before the environment is read",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log output format (text, json, pretty)",
				Value: "text",
			},
			&cli.StringFlag{
				Name:  "faq",
				Usage: "Override the FAQ file path",
			},
			&cli.StringFlag{
				Name:  "embedding-url",
				Usage: "Override the embedding provider base URL",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the chat API, feedback endpoint and static UI",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Override the listen address",
					},
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "Reload the FAQ file when it changes",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Answer a single question and print the match details",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "session",
						Usage: "Session identifier for topic memory",
						Value: "cli",
					},
				},
			},
			{
				Name:      "bins",
				Usage:     "Look up bin collection days by BD postcode district or area name",
				ArgsUsage: "<postcode or area>",
				Action:    binsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "schedules",
						Usage: "Override the bin schedules file path",
					},
				},
			},
			{
				Name:   "chat",
				Usage:  "Start an interactive terminal chat",
				Action: chatCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "session",
						Usage: "Session identifier for topic memory",
						Value: "terminal",
					},
				},
			},
			{
				Name:   "rebuild-cache",
				Usage:  "Re-embed every FAQ entry and rewrite the embedding cache",
				Action: rebuildCacheCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent embedding requests (defaults to the configured value)",
					},
				},
			},
			{
				Name:   "health",
				Usage:  "Check that the embedding provider is reachable",
				Action: healthCommand,
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	var handler slog.Handler
	switch format := strings.ToLower(c.String("log-format")); format {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	case "pretty":
		charmLevel, err := charmlog.ParseLevel(levelStr)
		if err != nil {
			return err
		}
		handler = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
			Level:           charmLevel,
		})
	default:
		return fmt.Errorf("invalid log format %q: must be one of text, json, pretty", format)
	}

	slog.SetDefault(slog.New(handler))
	if level > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	return nil
}

// loadConfig layers the .env file, the YAML file, CIVICFAQ_* variables and
// command line overrides, in that order.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if err := config.LoadDotEnv(c.String("env-file")); err != nil {
		return nil, err
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if c.IsSet("faq") {
		cfg.Data.FAQPath = c.String("faq")
	}
	if c.IsSet("embedding-url") {
		cfg.Embedding.BaseURL = c.String("embedding-url")
	}
	if c.IsSet("addr") {
		cfg.Server.Addr = c.String("addr")
	}
	if c.IsSet("watch") {
		cfg.Data.WatchFAQ = c.Bool("watch")
	}
	if c.IsSet("schedules") {
		cfg.Data.BinSchedulesPath = c.String("schedules")
	}
	if c.IsSet("workers") {
		cfg.Data.RebuildWorkers = c.Int("workers")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	m := metrics.New()
	assistant, err := civicfaq.Open(ctx, cfg,
		civicfaq.WithMetrics(m),
		civicfaq.WithProgress(os.Stderr),
	)
	if err != nil {
		return fmt.Errorf("failed to start assistant: %w", err)
	}
	defer assistant.Close()

	if cfg.Data.WatchFAQ {
		if err := assistant.WatchFAQ(); err != nil {
			return fmt.Errorf("failed to watch FAQ file: %w", err)
		}
	}

	chatLog, err := chatlog.Open(afero.NewOsFs(), cfg.Logs.Dir)
	if err != nil {
		return fmt.Errorf("failed to open chat log: %w", err)
	}
	defer chatLog.Close()

	opts := []server.Option{
		server.WithChatLogger(chatLog),
		server.WithHealthChecker(assistant.Provider()),
		server.WithIndexSizer(assistant.IndexSize),
		server.WithWebRoot(cfg.Server.WebRoot),
	}
	if cfg.Server.Metrics {
		opts = append(opts, server.WithMetrics(m))
	}
	srv, err := server.New(assistant, opts...)
	if err != nil {
		return err
	}

	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return errors.New("a question is required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	assistant, err := civicfaq.Open(c.Context, cfg, civicfaq.WithProgress(c.App.ErrWriter))
	if err != nil {
		return fmt.Errorf("failed to start assistant: %w", err)
	}
	defer assistant.Close()

	result, err := assistant.HandleTurn(c.Context, c.String("session"), question)
	if err != nil {
		return err
	}

	printResult(c.App.Writer, result)
	return nil
}

func binsCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return errors.New("a postcode or area name is required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Data.BinSchedulesPath == "" {
		return errors.New("no bin schedules file configured")
	}

	directory, err := binlookup.Load(afero.NewOsFs(), cfg.Data.BinSchedulesPath)
	if err != nil {
		return err
	}

	reply, ok := directory.Answer(query, true)
	if !ok {
		reply = directory.Fallback()
	}
	fmt.Fprintln(c.App.Writer, reply)
	return nil
}

func printResult(w io.Writer, r core.TurnResult) {
	fmt.Fprintln(w, r.Reply)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Service:  %s\n", r.Topic)
	if r.NextStepsURL != "" {
		fmt.Fprintf(w, "Next:     %s\n", r.NextStepsURL)
	}
	fmt.Fprintf(w, "Score:    %.3f (keywords %d)\n", r.Score, r.LexicalScore)
	if r.Degraded {
		fmt.Fprintln(w, "Degraded: embedding provider unavailable")
	}
	for i, alt := range r.Alternatives {
		fmt.Fprintf(w, "  %d. %.3f  %s / %s\n", i+1, alt.Score, alt.FAQ.Service, alt.FAQ.Title)
	}
}

func chatCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	// Keep log output off the terminal while the TUI owns it.
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	assistant, err := civicfaq.Open(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("failed to start assistant: %w", err)
	}
	defer assistant.Close()

	_, err = tea.NewProgram(tui.New(assistant, c.String("session")), tea.WithAltScreen()).Run()
	return err
}

func rebuildCacheCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	provider, err := civicfaq.NewProvider(cfg.AIConfig())
	if err != nil {
		return fmt.Errorf("failed to create embedding provider: %w", err)
	}
	defer provider.Close()

	entries, err := faq.LoadFile(cfg.Data.FAQPath)
	if err != nil {
		return err
	}

	cache, err := embedcache.New(cfg.Data.CachePath, provider.Embedder(),
		embedcache.WithWorkers(cfg.Data.RebuildWorkers),
		embedcache.WithProgress(c.App.ErrWriter, embedcache.DefaultProgressInterval),
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.ErrWriter, "FAQ file: %s\n", cfg.Data.FAQPath)
	fmt.Fprintf(c.App.ErrWriter, "Cache file: %s\n", cfg.Data.CachePath)
	fmt.Fprintf(c.App.ErrWriter, "Embedding provider: %s (%s)\n", cfg.Embedding.BaseURL, cfg.Embedding.Backend)
	fmt.Fprintln(c.App.ErrWriter)

	items, err := cache.Rebuild(c.Context, entries)
	if err != nil {
		return fmt.Errorf("cache rebuild failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Embedded %d FAQ entries\n", len(items))
	return nil
}

func healthCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	provider, err := civicfaq.NewProvider(cfg.AIConfig())
	if err != nil {
		return fmt.Errorf("failed to create embedding provider: %w", err)
	}
	defer provider.Close()

	ctx, cancel := context.WithTimeout(c.Context, cfg.Embedding.Timeout+time.Second)
	defer cancel()

	if !provider.Health(ctx) {
		return cli.Exit(fmt.Sprintf("embedding provider at %s is unavailable", cfg.Embedding.BaseURL), 1)
	}
	fmt.Fprintf(c.App.Writer, "embedding provider at %s is healthy\n", cfg.Embedding.BaseURL)
	return nil
}
