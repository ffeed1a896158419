package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/recipe-vault/internal/storage"
)

// HomeStats — агрегаты для главной страницы
type HomeStats struct {
	UserCount   int `json:"userCount"`
	RecipeCount int `json:"recipeCount"`
}

// HomeService определяет интерфейс для получения агрегатов.
type HomeService interface {
	Stats(ctx context.Context) (*HomeStats, error)
}

type homeService struct {
	log        *slog.Logger
	userRepo   storage.UserStorage
	recipeRepo storage.RecipeStorage
}

func NewHomeService(log *slog.Logger, userRepo storage.UserStorage, recipeRepo storage.RecipeStorage) HomeService {
	return &homeService{
		log:        log,
		userRepo:   userRepo,
		recipeRepo: recipeRepo,
	}
}

func (s *homeService) Stats(ctx context.Context) (*HomeStats, error) {
	const op = "service.HomeService.Stats"

	userCount, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		s.log.Error("failed to count users", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to count users: %w", op, err)
	}
	recipeCount, err := s.recipeRepo.CountRecipes(ctx, storage.RecipeFilter{})
	if err != nil {
		s.log.Error("failed to count recipes", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to count recipes: %w", op, err)
	}
	return &HomeStats{UserCount: userCount, RecipeCount: recipeCount}, nil
}
