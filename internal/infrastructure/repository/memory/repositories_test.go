package memory

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/floorball-league/internal/domain/game"
	"github.com/riskibarqy/floorball-league/internal/domain/ingestrun"
	"github.com/riskibarqy/floorball-league/internal/domain/player"
	"github.com/riskibarqy/floorball-league/internal/domain/rawdata"
)

func TestGameRepository_UpsertOverwritesAndSorts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewGameRepository(game.Game{GameID: 30, LeagueID: 2}, game.Game{GameID: 10, LeagueID: 1})

	if err := repo.Upsert(ctx, game.Game{GameID: 20, LeagueID: 1}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.Upsert(ctx, game.Game{GameID: 10, LeagueID: 1, HomeTeamScore: "3"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].GameID != 10 || all[1].GameID != 20 || all[2].GameID != 30 {
		t.Fatalf("unexpected order: %+v", all)
	}
	if all[0].HomeTeamScore != "3" {
		t.Fatalf("expected overwritten score, got %q", all[0].HomeTeamScore)
	}

	byLeague, err := repo.ListByLeague(ctx, 1)
	if err != nil {
		t.Fatalf("list by league: %v", err)
	}
	if len(byLeague) != 2 {
		t.Fatalf("expected 2 league games, got %d", len(byLeague))
	}

	if _, ok, _ := repo.GetByID(ctx, 99); ok {
		t.Fatalf("expected missing game")
	}
}

func TestPlayerRepository_TopByGoals(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewPlayerRepository(
		player.Player{ID: "b", Goals: 3},
		player.Player{ID: "a", Goals: 3},
		player.Player{ID: "c", Goals: 7},
	)

	top, err := repo.ListTopByGoals(ctx, 2)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 || top[0].ID != "c" || top[1].ID != "a" {
		t.Fatalf("unexpected top players: %+v", top)
	}

	all, _ := repo.List(ctx)
	if len(all) != 3 {
		t.Fatalf("expected 3 players, got %d", len(all))
	}
}

func TestIngestRunRepository_KeepsTraceID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewIngestRunRepository()
	started := time.Date(2025, 1, 12, 15, 0, 0, 0, time.UTC)

	_ = repo.Upsert(ctx, ingestrun.Run{RunID: "r1", Status: ingestrun.StatusStarted, TraceID: "t1", StartedAt: started})
	_ = repo.Upsert(ctx, ingestrun.Run{RunID: "r1", Status: ingestrun.StatusCompleted, StartedAt: started})

	run, ok, err := repo.GetByID(ctx, "r1")
	if err != nil || !ok {
		t.Fatalf("get run ok=%v err=%v", ok, err)
	}
	if run.Status != ingestrun.StatusCompleted || run.TraceID != "t1" {
		t.Fatalf("unexpected run: %+v", run)
	}
}

func TestRawDataRepository_UpsertByKey(t *testing.T) {
	t.Parallel()

	repo := NewRawDataRepository()
	now := time.Now()
	first := rawdata.NewPayload(rawdata.EntityTimelinePage, "game=1&cursor=", []byte(`a`), now)
	second := rawdata.NewPayload(rawdata.EntityTimelinePage, "game=1&cursor=", []byte(`b`), now)

	_ = repo.UpsertMany(context.Background(), []rawdata.Payload{first, second})

	if repo.Len() != 1 {
		t.Fatalf("expected 1 payload, got %d", repo.Len())
	}
	got, _ := repo.Get(first.Key())
	if got.PayloadJSON != "b" {
		t.Fatalf("expected latest payload, got %q", got.PayloadJSON)
	}
}
