package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/riskibarqy/floorball-league/internal/domain/game"
	"github.com/riskibarqy/floorball-league/internal/domain/player"
	"github.com/riskibarqy/floorball-league/internal/domain/timeline"
	gamemock "github.com/riskibarqy/floorball-league/internal/mocks/domain/game"
	playermock "github.com/riskibarqy/floorball-league/internal/mocks/domain/player"
	"github.com/stretchr/testify/mock"
)

type fakeTimelineSource struct {
	events map[int64][]timeline.Event
	errs   map[int64]error
}

func (f *fakeTimelineSource) FetchTimeline(_ context.Context, gameID int64) ([]timeline.Event, error) {
	if err := f.errs[gameID]; err != nil {
		return nil, err
	}
	return f.events[gameID], nil
}

func TestPlayerStatsService_Run(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	games := []game.Game{
		sampleGame(101, "Alpha IBK", "Beta FC", "1", "1"),
		sampleGame(102, "Beta FC", "Alpha IBK", "0", "0"),
		sampleGame(103, "Alpha IBK", "Beta FC", "1", "0"),
	}
	source := &fakeTimelineSource{
		events: map[int64][]timeline.Event{
			101: {
				{IsGoal: true, ClubDisplayName: "Alpha", DetailsText: "12 Anna Berg, ass 7 Cara Dahl"},
				{IsGoal: true, ClubDisplayName: "Beta", IsAwayTeamAction: true, DetailsText: "9 Dana Ek"},
			},
			103: {
				{IsGoal: true, ClubDisplayName: "Alpha", DetailsText: "12 Anna Berg"},
			},
		},
		errs: map[int64]error{102: errors.New("timeline 500")},
	}

	gameRepo := gamemock.NewRepository(t)
	gameRepo.On("List", mock.Anything).Return(games, nil).Once()

	playerRepo := playermock.NewRepository(t)
	var mu sync.Mutex
	upserted := map[string]player.Player{}
	playerRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(p player.Player) bool { return p.ID != "Beta-9-Dana Ek" })).
		Run(func(args mock.Arguments) {
			p := args.Get(1).(player.Player)
			mu.Lock()
			upserted[p.ID] = p
			mu.Unlock()
		}).
		Return(nil).
		Times(2)
	playerRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(p player.Player) bool { return p.ID == "Beta-9-Dana Ek" })).
		Return(errors.New("constraint violation")).
		Once()

	service := NewPlayerStatsService(gameRepo, playerRepo, source, PlayerStatsConfig{})
	result, err := service.Run(ctx)
	if err != nil {
		t.Fatalf("run player stats: %v", err)
	}

	want := PlayerStatsResult{Games: 3, FailedGames: 1, Players: 3, Saved: 2, Errors: 1}
	if result != want {
		t.Fatalf("unexpected result: got=%+v want=%+v", result, want)
	}
	if anna := upserted["Alpha-12-Anna Berg"]; anna.Goals != 2 || anna.Assists != 0 {
		t.Fatalf("unexpected anna totals: %+v", anna)
	}
	if cara := upserted["Alpha-7-Cara Dahl"]; cara.Assists != 1 {
		t.Fatalf("unexpected cara totals: %+v", cara)
	}
}

func TestPlayerStatsService_Run_BoundedWorkers(t *testing.T) {
	t.Parallel()

	gameRepo := gamemock.NewRepository(t)
	gameRepo.On("List", mock.Anything).Return([]game.Game{sampleGame(1, "Alpha IBK", "Beta FC", "3", "0")}, nil).Once()
	source := &fakeTimelineSource{events: map[int64][]timeline.Event{
		1: {
			{IsGoal: true, ClubDisplayName: "Alpha", DetailsText: "1 A"},
			{IsGoal: true, ClubDisplayName: "Alpha", DetailsText: "2 B"},
			{IsGoal: true, ClubDisplayName: "Alpha", DetailsText: "3 C"},
		},
	}}
	playerRepo := playermock.NewRepository(t)
	playerRepo.On("Upsert", mock.Anything, mock.AnythingOfType("player.Player")).Return(nil).Times(3)

	service := NewPlayerStatsService(gameRepo, playerRepo, source, PlayerStatsConfig{Workers: 1})
	result, err := service.Run(context.Background())
	if err != nil {
		t.Fatalf("run player stats: %v", err)
	}
	if result.Saved != 3 || result.Errors != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestPlayerStatsService_Run_ListGamesError(t *testing.T) {
	t.Parallel()

	gameRepo := gamemock.NewRepository(t)
	gameRepo.On("List", mock.Anything).Return(nil, errors.New("db down")).Once()

	service := NewPlayerStatsService(gameRepo, playermock.NewRepository(t), &fakeTimelineSource{}, PlayerStatsConfig{})
	if _, err := service.Run(context.Background()); err == nil {
		t.Fatalf("expected error when games cannot be listed")
	}
}
