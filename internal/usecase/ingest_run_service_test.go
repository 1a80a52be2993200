package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/floorball-league/internal/domain/ingestrun"
	ingestrunmock "github.com/riskibarqy/floorball-league/internal/mocks/domain/ingestrun"
	"github.com/stretchr/testify/mock"
)

type fixedIDGenerator struct{ id string }

func (g fixedIDGenerator) NewID() (string, error) { return g.id, nil }

type stubGameIngestor struct {
	result GameIngestionResult
	err    error
}

func (s stubGameIngestor) Run(context.Context, GameIngestionInput) (GameIngestionResult, error) {
	return s.result, s.err
}

type stubPlayerStats struct {
	result PlayerStatsResult
	err    error
}

func (s stubPlayerStats) Run(context.Context) (PlayerStatsResult, error) {
	return s.result, s.err
}

type recordingInvalidator struct {
	mu    sync.Mutex
	kinds []ingestrun.Kind
}

func (r *recordingInvalidator) InvalidateKind(_ context.Context, kind ingestrun.Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, kind)
	return nil
}

func TestIngestRunService_Execute_Games(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 12, 15, 0, 0, 0, time.UTC)
	repo := ingestrunmock.NewRepository(t)
	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(r ingestrun.Run) bool {
		return r.RunID == "run-1" && r.Status == ingestrun.StatusStarted
	})).Return(nil).Once()
	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(r ingestrun.Run) bool {
		return r.RunID == "run-1" && r.Status == ingestrun.StatusCompleted && r.FinishedAt != nil
	})).Return(nil).Once()

	invalidator := &recordingInvalidator{}
	service := NewIngestRunService(
		repo,
		fixedIDGenerator{id: "run-1"},
		stubGameIngestor{result: GameIngestionResult{Fetched: 12, Saved: 11, Errors: 1, Stop: "caught_up"}},
		stubPlayerStats{},
		invalidator,
		IngestRunConfig{Now: func() time.Time { return now }},
	)

	run, err := service.Execute(context.Background(), ingestrun.KindGames)
	if err != nil {
		t.Fatalf("execute games run: %v", err)
	}
	if run.Fetched != 12 || run.Saved != 11 || run.Errors != 1 || run.StopReason != "caught_up" {
		t.Fatalf("unexpected run: %+v", run)
	}
	if len(invalidator.kinds) != 1 || invalidator.kinds[0] != ingestrun.KindGames {
		t.Fatalf("expected games cache invalidation, got %v", invalidator.kinds)
	}
}

func TestIngestRunService_Execute_PlayersFailure(t *testing.T) {
	t.Parallel()

	repo := ingestrunmock.NewRepository(t)
	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(r ingestrun.Run) bool {
		return r.Status == ingestrun.StatusStarted
	})).Return(nil).Once()
	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(r ingestrun.Run) bool {
		return r.Status == ingestrun.StatusFailed && r.ErrorMessage != ""
	})).Return(nil).Once()

	wantErr := errors.New("list games: db down")
	invalidator := &recordingInvalidator{}
	service := NewIngestRunService(
		repo,
		fixedIDGenerator{id: "run-2"},
		stubGameIngestor{},
		stubPlayerStats{err: wantErr},
		invalidator,
		IngestRunConfig{},
	)

	run, err := service.Execute(context.Background(), ingestrun.KindPlayers)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected run error, got %v", err)
	}
	if run.Status != ingestrun.StatusFailed {
		t.Fatalf("unexpected status: %s", run.Status)
	}
	if len(invalidator.kinds) != 0 {
		t.Fatalf("nothing saved, nothing to invalidate, got %v", invalidator.kinds)
	}
}

func TestIngestRunService_Start_RunsInBackground(t *testing.T) {
	t.Parallel()

	repo := ingestrunmock.NewRepository(t)
	repo.On("Upsert", mock.Anything, mock.AnythingOfType("ingestrun.Run")).Return(nil).Twice()

	service := NewIngestRunService(
		repo,
		fixedIDGenerator{id: "run-3"},
		stubGameIngestor{},
		stubPlayerStats{result: PlayerStatsResult{Players: 4, Saved: 4}},
		nil,
		IngestRunConfig{},
	)

	ctx, cancel := context.WithCancel(context.Background())
	run, err := service.Start(ctx, ingestrun.KindPlayers)
	cancel()
	if err != nil {
		t.Fatalf("start run: %v", err)
	}
	if run.RunID != "run-3" || run.Status != ingestrun.StatusStarted {
		t.Fatalf("unexpected started run: %+v", run)
	}
	service.Wait()
}

func TestIngestRunService_RejectsUnknownKind(t *testing.T) {
	t.Parallel()

	service := NewIngestRunService(ingestrunmock.NewRepository(t), fixedIDGenerator{id: "x"}, stubGameIngestor{}, stubPlayerStats{}, nil, IngestRunConfig{})
	if _, err := service.Execute(context.Background(), ingestrun.Kind("teams")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestIngestRunService_Get(t *testing.T) {
	t.Parallel()

	repo := ingestrunmock.NewRepository(t)
	repo.On("GetByID", mock.Anything, "run-9").Return(ingestrun.Run{}, false, nil).Once()
	service := NewIngestRunService(repo, fixedIDGenerator{}, stubGameIngestor{}, stubPlayerStats{}, nil, IngestRunConfig{})

	if _, err := service.Get(context.Background(), "run-9"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := service.Get(context.Background(), "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

type capturingGameIngestor struct {
	mu    sync.Mutex
	input GameIngestionInput
}

func (c *capturingGameIngestor) Run(_ context.Context, input GameIngestionInput) (GameIngestionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = input
	return GameIngestionResult{Fetched: 1, Saved: 1, Stop: "caught_up"}, nil
}

func TestIngestRunService_ExecuteGames_PassesCursor(t *testing.T) {
	t.Parallel()

	repo := ingestrunmock.NewRepository(t)
	repo.On("Upsert", mock.Anything, mock.AnythingOfType("ingestrun.Run")).Return(nil).Twice()

	games := &capturingGameIngestor{}
	service := NewIngestRunService(repo, fixedIDGenerator{id: "run-4"}, games, stubPlayerStats{}, nil, IngestRunConfig{})

	run, err := service.ExecuteGames(context.Background(), GameIngestionInput{LeagueID: 40693, FromGameID: 1200})
	if err != nil {
		t.Fatalf("execute games: %v", err)
	}
	if run.Kind != ingestrun.KindGames || run.Status != ingestrun.StatusCompleted {
		t.Fatalf("unexpected run: %+v", run)
	}
	if games.input.LeagueID != 40693 || games.input.FromGameID != 1200 {
		t.Fatalf("unexpected input: %+v", games.input)
	}
}
