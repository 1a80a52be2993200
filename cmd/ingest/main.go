package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/floorball-league/internal/app"
	"github.com/riskibarqy/floorball-league/internal/config"
	"github.com/riskibarqy/floorball-league/internal/domain/ingestrun"
	"github.com/riskibarqy/floorball-league/internal/observability"
	"github.com/riskibarqy/floorball-league/internal/platform/logging"
	"github.com/riskibarqy/floorball-league/internal/usecase"
	"github.com/spf13/pflag"
)

type options struct {
	leagueID   int64
	fromGameID int64
	logLevel   string
}

func newFlagSet(opts *options) *pflag.FlagSet {
	flags := pflag.NewFlagSet("ingest", pflag.ContinueOnError)
	flags.Int64Var(&opts.leagueID, "league", 0, "league id to fetch games for (defaults to LEAGUE_ID)")
	flags.Int64Var(&opts.fromGameID, "from", 0, "resume games paging after this game id")
	flags.StringVar(&opts.logLevel, "log-level", "", "override APP_LOG_LEVEL")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <games|players|all>\n", os.Args[0])
		flags.PrintDefaults()
	}
	return flags
}

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	var opts options
	flags := newFlagSet(&opts)
	if err := flags.Parse(os.Args[1:]); err != nil {
		return 2
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return 2
	}
	kinds, err := parseTarget(flags.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flags.Usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}
	if opts.logLevel != "" {
		level, err := logging.ParseLevel(opts.logLevel)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		cfg.LogLevel = level
	}
	if opts.leagueID > 0 {
		cfg.LeagueID = opts.leagueID
	}
	if cfg.ServiceName == "floorball-league-api" {
		cfg.ServiceName = "floorball-league-ingest"
	}

	logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName, "env", cfg.AppEnv)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		return 1
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		return 1
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("close app", "error", err)
		}
	}()

	failed := false
	for _, kind := range kinds {
		var result ingestrun.Run
		if kind == ingestrun.KindGames {
			result, err = application.IngestRuns.ExecuteGames(ctx, usecase.GameIngestionInput{
				LeagueID:   cfg.LeagueID,
				FromGameID: opts.fromGameID,
			})
		} else {
			result, err = application.IngestRuns.Execute(ctx, kind)
		}
		if err != nil {
			logger.Error("ingestion failed", "kind", kind, "run_id", result.RunID, "error", err)
			failed = true
			continue
		}
		logger.Info("ingestion finished",
			"kind", kind,
			"run_id", result.RunID,
			"fetched", result.Fetched,
			"saved", result.Saved,
			"errors", result.Errors,
			"stop_reason", result.StopReason,
		)
	}

	if failed {
		return 1
	}
	return 0
}

func parseTarget(raw string) ([]ingestrun.Kind, error) {
	if raw == "all" {
		return []ingestrun.Kind{ingestrun.KindGames, ingestrun.KindPlayers}, nil
	}
	kind, ok := ingestrun.ParseKind(raw)
	if !ok {
		return nil, fmt.Errorf("unknown ingestion target %q", raw)
	}
	return []ingestrun.Kind{kind}, nil
}
