package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/floorball-league/internal/domain/game"
	"github.com/riskibarqy/floorball-league/internal/domain/standing"
)

type StandingService struct {
	gameRepo game.Repository
}

func NewStandingService(gameRepo game.Repository) *StandingService {
	return &StandingService{gameRepo: gameRepo}
}

// GetTable folds the stored games into a league table. A zero leagueID uses
// every stored game.
func (s *StandingService) GetTable(ctx context.Context, leagueID int64) (standing.Table, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingService.GetTable")
	defer span.End()

	if leagueID < 0 {
		return standing.Table{}, fmt.Errorf("%w: league id must not be negative", ErrInvalidInput)
	}

	var (
		games []game.Game
		err   error
	)
	if leagueID == 0 {
		games, err = s.gameRepo.List(ctx)
	} else {
		games, err = s.gameRepo.ListByLeague(ctx, leagueID)
	}
	if err != nil {
		return standing.Table{}, fmt.Errorf("list games: %w", err)
	}

	return standing.BuildTable(games), nil
}
