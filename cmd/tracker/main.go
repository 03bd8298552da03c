package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/config"
	"github.com/julianstephens/tracker/internal/constants"
	apperrors "github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/logger"
)

var CLI struct {
	config.Config
	Version kong.VersionFlag

	Category cli.CategoryCmd `cmd:"" help:"Manage categories."`
	Tracker  cli.TrackerCmd  `cmd:"" help:"Manage trackers."`
	Record   cli.RecordCmd   `cmd:"" help:"Mark trackers complete and view statistics."`
	Backup   cli.BackupCmd   `cmd:"" help:"Manage database backups."`
	Init     cli.InitCmd     `cmd:"" help:"Create the database."`
	Migrate  cli.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Doctor   cli.DoctorCmd   `cmd:"" help:"Run health checks."`
	Debug    cli.DebugCmd    `cmd:"" help:"Inspect stored data."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with per-day completion records"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	logCfg, err := CLI.Config.Logger()
	if err != nil {
		apperrors.Fatal(err)
	}
	if err := logger.Init(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	appCtx := &cli.Context{
		Ctx:    ctx,
		Config: CLI.Config,
	}

	logger.Debug("Running command", "command", kctx.Command(), "db", CLI.Config.DBPath)
	if err := kctx.Run(appCtx); err != nil {
		stop()
		apperrors.Fatal(err)
	}
}
