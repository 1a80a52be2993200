package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/floorball-league/internal/domain/game"
	"github.com/riskibarqy/floorball-league/internal/domain/ingestrun"
	"github.com/riskibarqy/floorball-league/internal/domain/player"
	"github.com/riskibarqy/floorball-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/floorball-league/internal/platform/logging"
	"github.com/riskibarqy/floorball-league/internal/usecase"
)

const testJobToken = "secret-token"

type stubGames struct{}

func (stubGames) Run(context.Context, usecase.GameIngestionInput) (usecase.GameIngestionResult, error) {
	return usecase.GameIngestionResult{Fetched: 2, Saved: 2, Stop: "caught_up"}, nil
}

type stubPlayers struct{}

func (stubPlayers) Run(context.Context) (usecase.PlayerStatsResult, error) {
	return usecase.PlayerStatsResult{Players: 1, Saved: 1}, nil
}

type sequenceIDs struct{ next int }

func (s *sequenceIDs) NewID() (string, error) {
	s.next++
	return "run-" + strconv.Itoa(s.next), nil
}

type envelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       json.RawMessage  `json:"data"`
	Error      *googleErrorBody `json:"error"`
}

func newTestRouter(t *testing.T) (http.Handler, *usecase.IngestRunService) {
	t.Helper()

	games := memory.NewGameRepository(
		game.Game{GameID: 2, LeagueID: 40693, LeagueName: "SSL", HomeTeamID: 1, AwayTeamID: 2, HomeTeamClubName: "Pixbo", AwayTeamClubName: "Falun", HomeTeamScore: "3", AwayTeamScore: "1", UpdatedAt: "2025-01-12T15:00:00.000Z"},
		game.Game{GameID: 1, LeagueID: 40693, LeagueName: "SSL", HomeTeamID: 2, AwayTeamID: 1, HomeTeamClubName: "Falun", AwayTeamClubName: "Pixbo", HomeTeamScore: "2", AwayTeamScore: "2", UpdatedAt: "2025-01-11T15:00:00.000Z"},
	)
	players := memory.NewPlayerRepository(
		player.Player{ID: "Pixbo-10-Anna", Name: "Anna", Goals: 4},
		player.Player{ID: "Falun-7-Erik", Name: "Erik", Goals: 6},
	)
	runs := usecase.NewIngestRunService(
		memory.NewIngestRunRepository(),
		&sequenceIDs{},
		stubGames{},
		stubPlayers{},
		nil,
		usecase.IngestRunConfig{Logger: logging.NewNop()},
	)
	t.Cleanup(runs.Wait)

	handler := NewHandler(
		usecase.NewGameService(games),
		usecase.NewStandingService(games),
		usecase.NewPlayerService(players),
		runs,
		logging.NewNop(),
	)
	return NewRouter(handler, logging.NewNop(), false, []string{"*"}, testJobToken), runs
}

func doRequest(t *testing.T, router http.Handler, method, path string, header map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body envelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body %q: %v", rec.Body.String(), err)
	}
	return rec, body
}

func TestHandler_ListGamesOrderedByID(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	rec, body := doRequest(t, router, http.MethodGet, "/api/games", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var games []game.Game
	if err := sonic.Unmarshal(body.Data, &games); err != nil {
		t.Fatalf("unmarshal games: %v", err)
	}
	if len(games) != 2 || games[0].GameID != 1 || games[1].GameID != 2 {
		t.Fatalf("unexpected games: %+v", games)
	}
}

func TestHandler_GetGame(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	tests := []struct {
		name string
		path string
		want int
	}{
		{name: "found", path: "/api/games/2", want: http.StatusOK},
		{name: "missing", path: "/api/games/99", want: http.StatusNotFound},
		{name: "non numeric", path: "/api/games/abc", want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := doRequest(t, router, http.MethodGet, tt.path, nil)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestHandler_GetTable(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	rec, body := doRequest(t, router, http.MethodGet, "/api/table?leagueId=40693", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var table struct {
		LeagueID  int64  `json:"LeagueID"`
		UpdatedAt string `json:"UpdatedAt"`
		Teams     []struct {
			TeamName    string `json:"TeamName"`
			GamesPlayed int    `json:"GamesPlayed"`
			Points      int    `json:"Points"`
		} `json:"Teams"`
	}
	if err := sonic.Unmarshal(body.Data, &table); err != nil {
		t.Fatalf("unmarshal table: %v", err)
	}
	if table.LeagueID != 40693 || table.UpdatedAt != "2025-01-12T15:00:00.000Z" {
		t.Fatalf("unexpected table header: %+v", table)
	}
	if len(table.Teams) != 2 || table.Teams[0].TeamName != "Pixbo" || table.Teams[0].Points != 4 || table.Teams[1].Points != 1 {
		t.Fatalf("unexpected teams: %+v", table.Teams)
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/api/table?leagueId=ssl", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric league, got %d", rec.Code)
	}
}

func TestHandler_ListTopScorers(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	rec, body := doRequest(t, router, http.MethodGet, "/api/players/stats/goals/1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var players []player.Player
	if err := sonic.Unmarshal(body.Data, &players); err != nil {
		t.Fatalf("unmarshal players: %v", err)
	}
	if len(players) != 1 || players[0].ID != "Falun-7-Erik" {
		t.Fatalf("unexpected players: %+v", players)
	}

	for _, path := range []string{"/api/players/stats/goals/0", "/api/players/stats/goals/501", "/api/players/stats/goals/ten"} {
		rec, body := doRequest(t, router, http.MethodGet, path, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, rec.Code)
		}
		if body.Error == nil || body.Error.Status != "INVALID_ARGUMENT" {
			t.Fatalf("%s: unexpected error body: %+v", path, body.Error)
		}
	}
}

func TestHandler_ListPlayers(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	rec, body := doRequest(t, router, http.MethodGet, "/api/players", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var players []player.Player
	if err := sonic.Unmarshal(body.Data, &players); err != nil {
		t.Fatalf("unmarshal players: %v", err)
	}
	if len(players) != 2 || players[0].Goals != 6 {
		t.Fatalf("unexpected players: %+v", players)
	}
}

func TestHandler_StartIngestRun(t *testing.T) {
	t.Parallel()

	router, runs := newTestRouter(t)

	rec, _ := doRequest(t, router, http.MethodPost, "/api/internal/ingest/games", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	auth := map[string]string{"X-Internal-Job-Token": testJobToken}
	rec, _ = doRequest(t, router, http.MethodPost, "/api/internal/ingest/teams", auth)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown kind, got %d", rec.Code)
	}

	rec, body := doRequest(t, router, http.MethodPost, "/api/internal/ingest/games", auth)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	var accepted ingestRunAcceptedDTO
	if err := sonic.Unmarshal(body.Data, &accepted); err != nil {
		t.Fatalf("unmarshal accepted: %v", err)
	}
	if accepted.RunID == "" || accepted.Kind != ingestrun.KindGames || accepted.Status != ingestrun.StatusStarted {
		t.Fatalf("unexpected accepted run: %+v", accepted)
	}

	runs.Wait()

	rec, body = doRequest(t, router, http.MethodGet, "/api/internal/ingest/runs/"+accepted.RunID, auth)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var run ingestrun.Run
	if err := sonic.Unmarshal(body.Data, &run); err != nil {
		t.Fatalf("unmarshal run: %v", err)
	}
	if run.Status != ingestrun.StatusCompleted || run.Saved != 2 || run.FinishedAt == nil {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.StartedAt.After(time.Now()) {
		t.Fatalf("unexpected start time: %v", run.StartedAt)
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/api/internal/ingest/runs/missing", auth)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing run, got %d", rec.Code)
	}
}

func TestRouter_RecoversPanic(t *testing.T) {
	t.Parallel()

	handler := recoverPanic(logging.NewNop(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/games", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
