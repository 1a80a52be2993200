package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/riskibarqy/floorball-league/external/innebandy"
	"github.com/riskibarqy/floorball-league/internal/config"
	"github.com/riskibarqy/floorball-league/internal/domain/game"
	"github.com/riskibarqy/floorball-league/internal/domain/ingestrun"
	"github.com/riskibarqy/floorball-league/internal/domain/player"
	"github.com/riskibarqy/floorball-league/internal/domain/rawdata"
	boltrepo "github.com/riskibarqy/floorball-league/internal/infrastructure/repository/bolt"
	cacherepo "github.com/riskibarqy/floorball-league/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/floorball-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/floorball-league/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/floorball-league/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/floorball-league/internal/platform/cache"
	idgen "github.com/riskibarqy/floorball-league/internal/platform/id"
	"github.com/riskibarqy/floorball-league/internal/platform/logging"
	"github.com/riskibarqy/floorball-league/internal/platform/resilience"
	"github.com/riskibarqy/floorball-league/internal/usecase"
)

const redisPingTimeout = 3 * time.Second

// App holds the wired services shared by the api and ingest processes.
// Close releases the store and cache handles opened by New.
type App struct {
	cfg    config.Config
	logger *logging.Logger

	Games         *usecase.GameService
	Standings     *usecase.StandingService
	Players       *usecase.PlayerService
	GameIngestion *usecase.GameIngestionService
	PlayerStats   *usecase.PlayerStatsService
	IngestRuns    *usecase.IngestRunService

	closers []func() error
}

type repositories struct {
	games   game.Repository
	players player.Repository
	runs    ingestrun.Repository
	raw     rawdata.Repository
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	a := &App{cfg: cfg, logger: logger}

	repos, err := a.openRepositories(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	readGames, readPlayers := repos.games, repos.players
	var invalidator usecase.CacheInvalidator
	if cfg.CacheEnabled {
		store, err := a.openCache(ctx)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		readGames = cacherepo.NewGameRepository(repos.games, store)
		readPlayers = cacherepo.NewPlayerRepository(repos.players, store)
		invalidator = cacherepo.NewInvalidator(store)
	}

	var archive rawdata.Repository
	if cfg.RawArchiveEnabled {
		archive = repos.raw
	}
	client := innebandy.NewClient(innebandy.ClientConfig{
		GamesURL:         cfg.InnebandyGamesURL,
		TimelineURL:      cfg.InnebandyTimelineURL,
		MoreTimelineURL:  cfg.InnebandyMoreTimelineURL,
		Token:            cfg.AuthToken,
		Timeout:          cfg.InnebandyTimeout,
		RateLimit:        cfg.InnebandyRateLimit,
		RateBurst:        cfg.InnebandyRateBurst,
		TimelineMaxPages: cfg.TimelineMaxPages,
		Logger:           logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.InnebandyCircuitEnabled,
			FailureThreshold: cfg.InnebandyCircuitFailureCount,
			OpenTimeout:      cfg.InnebandyCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.InnebandyCircuitHalfOpenMaxReq,
		},
		Archive: archive,
	})

	a.Games = usecase.NewGameService(readGames)
	a.Standings = usecase.NewStandingService(readGames)
	a.Players = usecase.NewPlayerService(readPlayers)
	a.GameIngestion = usecase.NewGameIngestionService(client, repos.games, usecase.GameIngestionConfig{
		LeagueID: cfg.LeagueID,
		Logger:   logger,
	})
	// Player runs read games straight from the store so a run never sees a
	// cached list older than the last games run.
	a.PlayerStats = usecase.NewPlayerStatsService(repos.games, repos.players, client, usecase.PlayerStatsConfig{
		Workers: cfg.PlayerUpsertWorkers,
		Logger:  logger,
	})
	a.IngestRuns = usecase.NewIngestRunService(
		repos.runs,
		idgen.NewUUIDGenerator(),
		a.GameIngestion,
		a.PlayerStats,
		invalidator,
		usecase.IngestRunConfig{Logger: logger},
	)

	return a, nil
}

func (a *App) HTTPServer() (*http.Server, error) {
	handler := httpapi.NewHandler(a.Games, a.Standings, a.Players, a.IngestRuns, a.logger)
	router := httpapi.NewRouter(handler, a.logger, a.cfg.SwaggerEnabled, a.cfg.CORSAllowedOrigins, a.cfg.InternalJobToken)

	server := &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

// Close waits for background ingestion runs, then closes handles in reverse
// open order.
func (a *App) Close() error {
	if a.IngestRuns != nil {
		a.IngestRuns.Wait()
	}

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) openRepositories(ctx context.Context) (repositories, error) {
	switch a.cfg.StoreDriver {
	case config.StoreDriverPostgres:
		db, err := openPostgres(ctx, a.cfg)
		if err != nil {
			return repositories{}, err
		}
		a.closers = append(a.closers, db.Close)

		games, err := postgres.NewGameRepository(db)
		if err != nil {
			return repositories{}, err
		}
		a.logger.Info("store opened", "driver", a.cfg.StoreDriver, "db_name", dbNameFromURL(a.cfg.DBURL))
		return repositories{
			games:   games,
			players: postgres.NewPlayerRepository(db),
			runs:    postgres.NewIngestRunRepository(db),
			raw:     postgres.NewRawDataRepository(db),
		}, nil
	case config.StoreDriverBolt:
		store, err := boltrepo.Open(a.cfg.BoltPath)
		if err != nil {
			return repositories{}, err
		}
		a.closers = append(a.closers, store.Close)
		a.logger.Info("store opened", "driver", a.cfg.StoreDriver, "path", a.cfg.BoltPath)
		return repositories{
			games:   boltrepo.NewGameRepository(store),
			players: boltrepo.NewPlayerRepository(store),
			runs:    boltrepo.NewIngestRunRepository(store),
			raw:     boltrepo.NewRawDataRepository(store),
		}, nil
	case config.StoreDriverMemory:
		a.logger.Warn("store is in memory, data is lost on exit", "driver", a.cfg.StoreDriver)
		return repositories{
			games:   memory.NewGameRepository(),
			players: memory.NewPlayerRepository(),
			runs:    memory.NewIngestRunRepository(),
			raw:     memory.NewRawDataRepository(),
		}, nil
	default:
		return repositories{}, fmt.Errorf("unsupported store driver %q", a.cfg.StoreDriver)
	}
}

func (a *App) openCache(ctx context.Context) (basecache.Cache, error) {
	switch a.cfg.CacheDriver {
	case config.CacheDriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisDB,
		})
		a.closers = append(a.closers, client.Close)

		store := basecache.NewRedisStore(client, a.cfg.ServiceName, a.cfg.CacheTTL)
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			return nil, fmt.Errorf("ping redis addr=%s: %w", a.cfg.RedisAddr, err)
		}
		a.logger.Info("read cache enabled", "driver", a.cfg.CacheDriver, "ttl", a.cfg.CacheTTL.String())
		return store, nil
	default:
		a.logger.Info("read cache enabled", "driver", config.CacheDriverMemory, "ttl", a.cfg.CacheTTL.String())
		return basecache.NewStore(a.cfg.CacheTTL), nil
	}
}
