package usecase

import (
	"context"
	"fmt"
	"slices"

	"github.com/riskibarqy/floorball-league/internal/domain/player"
)

const MaxTopScorers = 500

type PlayerService struct {
	playerRepo player.Repository
}

func NewPlayerService(playerRepo player.Repository) *PlayerService {
	return &PlayerService{playerRepo: playerRepo}
}

// List returns every player ordered by goals descending, then id.
func (s *PlayerService) List(ctx context.Context) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.List")
	defer span.End()

	items, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	items = slices.Clone(items)
	player.SortByGoals(items)
	return items, nil
}

func (s *PlayerService) TopByGoals(ctx context.Context, limit int) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.TopByGoals")
	defer span.End()

	if limit < 1 || limit > MaxTopScorers {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, MaxTopScorers)
	}

	items, err := s.playerRepo.ListTopByGoals(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list top scorers: %w", err)
	}
	items = slices.Clone(items)
	player.SortByGoals(items)
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
