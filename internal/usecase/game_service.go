package usecase

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/riskibarqy/floorball-league/internal/domain/game"
)

type GameService struct {
	gameRepo game.Repository
}

func NewGameService(gameRepo game.Repository) *GameService {
	return &GameService{gameRepo: gameRepo}
}

func (s *GameService) List(ctx context.Context) ([]game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.List")
	defer span.End()

	items, err := s.gameRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	items = slices.Clone(items)
	sort.SliceStable(items, func(i, j int) bool { return items[i].GameID < items[j].GameID })
	return items, nil
}

func (s *GameService) GetByID(ctx context.Context, gameID int64) (game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.GetByID")
	defer span.End()

	if gameID <= 0 {
		return game.Game{}, fmt.Errorf("%w: game id must be greater than zero", ErrInvalidInput)
	}

	item, exists, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return game.Game{}, fmt.Errorf("get game: %w", err)
	}
	if !exists {
		return game.Game{}, fmt.Errorf("%w: game=%d", ErrNotFound, gameID)
	}
	return item, nil
}
