package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/floorball-league/internal/domain/ingestrun"
	"github.com/riskibarqy/floorball-league/internal/platform/id"
	"github.com/riskibarqy/floorball-league/internal/platform/logging"
	"go.opentelemetry.io/otel/trace"
)

type gameIngestor interface {
	Run(ctx context.Context, input GameIngestionInput) (GameIngestionResult, error)
}

type playerStatsRunner interface {
	Run(ctx context.Context) (PlayerStatsResult, error)
}

type IngestRunConfig struct {
	Logger *logging.Logger
	Now    func() time.Time
}

// IngestRunService executes ingestion runs and records each one in the run
// ledger.
type IngestRunService struct {
	runs    ingestrun.Repository
	ids     id.Generator
	games   gameIngestor
	players playerStatsRunner
	cache   CacheInvalidator
	logger  *logging.Logger
	now     func() time.Time

	inflight sync.WaitGroup
}

func NewIngestRunService(
	runs ingestrun.Repository,
	ids id.Generator,
	games gameIngestor,
	players playerStatsRunner,
	cache CacheInvalidator,
	cfg IngestRunConfig,
) *IngestRunService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &IngestRunService{
		runs:    runs,
		ids:     ids,
		games:   games,
		players: players,
		cache:   cache,
		logger:  logger,
		now:     now,
	}
}

// Execute runs one ingestion synchronously and returns the finished record.
// A failed run is recorded and also returned as an error.
func (s *IngestRunService) Execute(ctx context.Context, kind ingestrun.Kind) (ingestrun.Run, error) {
	run, err := s.begin(ctx, kind)
	if err != nil {
		return ingestrun.Run{}, err
	}
	return s.finish(ctx, run, GameIngestionInput{})
}

// ExecuteGames is Execute for a games run with an explicit league or start
// cursor.
func (s *IngestRunService) ExecuteGames(ctx context.Context, input GameIngestionInput) (ingestrun.Run, error) {
	run, err := s.begin(ctx, ingestrun.KindGames)
	if err != nil {
		return ingestrun.Run{}, err
	}
	return s.finish(ctx, run, input)
}

// Start records a new run and executes it in the background. The run
// outlives ctx cancellation but keeps its trace.
func (s *IngestRunService) Start(ctx context.Context, kind ingestrun.Kind) (ingestrun.Run, error) {
	run, err := s.begin(ctx, kind)
	if err != nil {
		return ingestrun.Run{}, err
	}

	bg := context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		_, _ = s.finish(bg, run, GameIngestionInput{})
	}()
	return run, nil
}

// Wait blocks until every background run has finished.
func (s *IngestRunService) Wait() {
	s.inflight.Wait()
}

func (s *IngestRunService) Get(ctx context.Context, runID string) (ingestrun.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestRunService.Get")
	defer span.End()

	runID = strings.TrimSpace(runID)
	if runID == "" {
		return ingestrun.Run{}, fmt.Errorf("%w: run id is required", ErrInvalidInput)
	}
	run, exists, err := s.runs.GetByID(ctx, runID)
	if err != nil {
		return ingestrun.Run{}, fmt.Errorf("get ingestion run: %w", err)
	}
	if !exists {
		return ingestrun.Run{}, fmt.Errorf("%w: ingestion run=%s", ErrNotFound, runID)
	}
	return run, nil
}

func (s *IngestRunService) begin(ctx context.Context, kind ingestrun.Kind) (ingestrun.Run, error) {
	if _, ok := ingestrun.ParseKind(string(kind)); !ok {
		return ingestrun.Run{}, fmt.Errorf("%w: unknown ingestion kind %q", ErrInvalidInput, kind)
	}

	runID, err := s.ids.NewID()
	if err != nil {
		return ingestrun.Run{}, fmt.Errorf("generate run id: %w", err)
	}
	run := ingestrun.Run{
		RunID:     runID,
		Kind:      kind,
		Status:    ingestrun.StatusStarted,
		TraceID:   traceIDFromContext(ctx),
		StartedAt: s.now().UTC(),
	}
	if err := s.runs.Upsert(ctx, run); err != nil {
		return ingestrun.Run{}, fmt.Errorf("record ingestion run start: %w", err)
	}
	return run, nil
}

func (s *IngestRunService) finish(ctx context.Context, run ingestrun.Run, gamesInput GameIngestionInput) (ingestrun.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestRunService.Execute")
	defer span.End()

	logger := s.logger.With("run_id", run.RunID, "kind", string(run.Kind))
	logger.InfoContext(ctx, "ingestion run started")

	var runErr error
	switch run.Kind {
	case ingestrun.KindGames:
		var res GameIngestionResult
		res, runErr = s.games.Run(ctx, gamesInput)
		run.Fetched, run.Saved, run.Errors, run.StopReason = res.Fetched, res.Saved, res.Errors, res.Stop
	case ingestrun.KindPlayers:
		var res PlayerStatsResult
		res, runErr = s.players.Run(ctx)
		run.Fetched, run.Saved, run.Errors = res.Players, res.Saved, res.Errors+res.FailedGames
	}

	finishedAt := s.now().UTC()
	run.FinishedAt = &finishedAt
	run.Status = ingestrun.StatusCompleted
	if runErr != nil {
		run.Status = ingestrun.StatusFailed
		run.ErrorMessage = runErr.Error()
		recordSpanError(span, runErr)
		logger.ErrorContext(ctx, "ingestion run failed", "error", runErr)
	} else {
		logger.InfoContext(ctx, "ingestion run completed", "fetched", run.Fetched, "saved", run.Saved, "errors", run.Errors)
	}

	if s.cache != nil && run.Saved > 0 {
		if err := s.cache.InvalidateKind(ctx, run.Kind); err != nil {
			logger.WarnContext(ctx, "invalidate read cache failed", "error", err)
		}
	}

	if err := s.runs.Upsert(ctx, run); err != nil {
		logger.ErrorContext(ctx, "record ingestion run result failed", "error", err)
		if runErr == nil {
			runErr = fmt.Errorf("record ingestion run result: %w", err)
		}
	}
	return run, runErr
}

func traceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
