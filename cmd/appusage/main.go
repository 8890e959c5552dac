package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/appusage/internal/config"
	"git.home.luguber.info/inful/appusage/internal/report"
	"git.home.luguber.info/inful/appusage/internal/store"
	"git.home.luguber.info/inful/appusage/internal/version"
)

var CLI struct {
	Config   string           `short:"c" help:"Configuration file path" default:"${config_path}"`
	Database string           `name:"db" help:"Database file path (overrides configuration)"`
	Verbose  bool             `short:"v" help:"Enable verbose logging"`
	Version  kong.VersionFlag `help:"Print version and exit"`

	Stats struct {
		Window string `short:"w" help:"Time window: today, week, month or all" default:"today"`
	} `cmd:"" default:"1" help:"Show per-application usage for a time window"`

	App struct {
		Name string `arg:"" help:"Application name"`
	} `cmd:"" help:"Show usage detail for one application"`

	Days struct {
		Days int `short:"n" help:"Number of past days to show" default:"7"`
	} `cmd:"" help:"Show total usage per day as a bar chart"`

	Export struct {
		Format string `short:"f" help:"Output format: json or csv" default:"json"`
		Window string `short:"w" help:"Time window: today, week, month or all" default:"all"`
		Out    string `short:"o" help:"Output file (default stdout)"`
	} `cmd:"" help:"Export raw usage records"`

	Prune struct {
		KeepDays int `help:"Delete records older than this many days" required:""`
	} `cmd:"" help:"Delete old usage records"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Write a commented default configuration file"`
}

func main() {
	ctx := kong.Parse(&CLI, kong.Vars{
		"config_path": config.DefaultConfigPath(),
		"version":     version.Version,
	})

	level := slog.LevelWarn
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var err error
	switch ctx.Command() {
	case "stats":
		err = withReporter(func(c context.Context, r *report.Reporter, _ store.Store) error {
			return runStats(c, r, CLI.Stats.Window)
		})
	case "app <name>":
		err = withReporter(func(c context.Context, r *report.Reporter, _ store.Store) error {
			return runApp(c, r, CLI.App.Name)
		})
	case "days":
		err = withReporter(func(c context.Context, r *report.Reporter, _ store.Store) error {
			return runDays(c, r, CLI.Days.Days)
		})
	case "export":
		err = withReporter(func(c context.Context, _ *report.Reporter, st store.Store) error {
			return runExport(c, st, CLI.Export.Format, CLI.Export.Window, CLI.Export.Out)
		})
	case "prune":
		err = withReporter(func(c context.Context, _ *report.Reporter, st store.Store) error {
			return runPrune(c, st, CLI.Prune.KeepDays)
		})
	case "init":
		err = config.Init(CLI.Config, CLI.Init.Force)
		if err == nil {
			fmt.Println("Wrote", CLI.Config)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// withReporter opens the configured database and hands a reporter plus the raw
// store to fn, closing the store afterwards.
func withReporter(fn func(context.Context, *report.Reporter, store.Store) error) error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	dbPath := cfg.Database.Path
	if CLI.Database != "" {
		dbPath = CLI.Database
	}

	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("open database %s: %w", dbPath, err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			slog.Warn("Failed to close database", "error", cerr)
		}
	}()

	return fn(context.Background(), report.NewReporter(st, nil), st)
}
