package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskibarqy/floorball-league/internal/domain/game"
	"github.com/riskibarqy/floorball-league/internal/domain/ingestrun"
	"github.com/riskibarqy/floorball-league/internal/domain/player"
	"github.com/riskibarqy/floorball-league/internal/domain/rawdata"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "league.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestGameRepository_OrderedByGameID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewGameRepository(openTestStore(t))

	for _, id := range []int64{300, 7, 1000, 42} {
		leagueID := int64(1)
		if id == 1000 {
			leagueID = 2
		}
		if err := repo.Upsert(ctx, game.Game{GameID: id, LeagueID: leagueID, HomeTeamScore: "1"}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	games, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []int64{7, 42, 300, 1000}
	if len(games) != len(want) {
		t.Fatalf("expected %d games, got %d", len(want), len(games))
	}
	for i, id := range want {
		if games[i].GameID != id {
			t.Fatalf("position %d: expected %d, got %d", i, id, games[i].GameID)
		}
	}

	league, err := repo.ListByLeague(ctx, 2)
	if err != nil {
		t.Fatalf("list by league: %v", err)
	}
	if len(league) != 1 || league[0].GameID != 1000 {
		t.Fatalf("unexpected league games: %+v", league)
	}
}

func TestGameRepository_GetByID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewGameRepository(openTestStore(t))
	item := game.Game{GameID: 5, LeagueID: 1, HomeTeamClubName: "Pixbo", AwayTeamClubName: "Falun"}
	if err := repo.Upsert(ctx, item); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, ok, err := repo.GetByID(ctx, 5)
	if err != nil || !ok {
		t.Fatalf("get ok=%v err=%v", ok, err)
	}
	if got != item {
		t.Fatalf("unexpected game: %+v", got)
	}

	if _, ok, err := repo.GetByID(ctx, 6); err != nil || ok {
		t.Fatalf("expected missing game, ok=%v err=%v", ok, err)
	}
}

func TestPlayerRepository_TopByGoals(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewPlayerRepository(openTestStore(t))
	for _, p := range []player.Player{
		{ID: "Pixbo-10-Anna", Goals: 2},
		{ID: "Falun-7-Erik", Goals: 5},
		{ID: "Pixbo-4-Lina", Goals: 2},
	} {
		if err := repo.Upsert(ctx, p); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	if err := repo.Upsert(ctx, player.Player{ID: "Pixbo-10-Anna", Goals: 6}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	top, err := repo.ListTopByGoals(ctx, 2)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 || top[0].ID != "Pixbo-10-Anna" || top[1].ID != "Falun-7-Erik" {
		t.Fatalf("unexpected top players: %+v", top)
	}
}

func TestIngestRunRepository_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewIngestRunRepository(openTestStore(t))
	started := time.Date(2025, 1, 12, 15, 0, 0, 0, time.UTC)
	finished := started.Add(time.Minute)

	if err := repo.Upsert(ctx, ingestrun.Run{RunID: "r1", Kind: ingestrun.KindGames, Status: ingestrun.StatusStarted, TraceID: "abc", StartedAt: started}); err != nil {
		t.Fatalf("upsert started: %v", err)
	}
	if err := repo.Upsert(ctx, ingestrun.Run{RunID: "r1", Kind: ingestrun.KindGames, Status: ingestrun.StatusCompleted, Saved: 4, StartedAt: started, FinishedAt: &finished}); err != nil {
		t.Fatalf("upsert completed: %v", err)
	}

	run, ok, err := repo.GetByID(ctx, "r1")
	if err != nil || !ok {
		t.Fatalf("get ok=%v err=%v", ok, err)
	}
	if run.Status != ingestrun.StatusCompleted || run.Saved != 4 || run.TraceID != "abc" {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.FinishedAt == nil || !run.FinishedAt.Equal(finished) {
		t.Fatalf("unexpected finished at: %v", run.FinishedAt)
	}
}

func TestRawDataRepository_UpsertMany(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewRawDataRepository(openTestStore(t))
	now := time.Date(2025, 1, 12, 15, 0, 0, 0, time.UTC)

	first := rawdata.NewPayload(rawdata.EntityGamesPage, "league=40693&lastgameid=0", []byte(`[]`), now)
	if err := repo.UpsertMany(ctx, []rawdata.Payload{first}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	again := rawdata.NewPayload(rawdata.EntityGamesPage, "league=40693&lastgameid=0", []byte(`[{"GameID":1}]`), now.Add(time.Hour))
	if err := repo.UpsertMany(ctx, []rawdata.Payload{again}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, ok, err := repo.Get(ctx, first.Key())
	if err != nil || !ok {
		t.Fatalf("get ok=%v err=%v", ok, err)
	}
	if got.PayloadHash != again.PayloadHash || !got.FetchedAt.Equal(again.FetchedAt) {
		t.Fatalf("expected latest payload, got %+v", got)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(filepath.Join(t.TempDir(), "missing", "league.db")); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
