package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/recipe-vault/internal/storage"
)

// LikeService определяет интерфейс переключения лайка.
type LikeService interface {
	// ToggleLike переключает лайк пользователя на рецепте и возвращает
	// итоговое состояние. Повторный вызов возвращает всё как было.
	ToggleLike(ctx context.Context, userID, recipeID int64) (bool, error)
}

type likeService struct {
	log        *slog.Logger
	userRepo   storage.UserStorage
	recipeRepo storage.RecipeStorage
}

func NewLikeService(log *slog.Logger, userRepo storage.UserStorage, recipeRepo storage.RecipeStorage) LikeService {
	return &likeService{
		log:        log,
		userRepo:   userRepo,
		recipeRepo: recipeRepo,
	}
}

func (s *likeService) ToggleLike(ctx context.Context, userID, recipeID int64) (bool, error) {
	const op = "service.LikeService.ToggleLike"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("recipeID", recipeID))

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		logger.Error("failed to get user", slog.Any("error", err))
		return false, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	liked, err := s.recipeRepo.ToggleLike(ctx, recipeID, user.Email)
	if err != nil {
		logger.Error("failed to toggle like", slog.Any("error", err))
		return false, fmt.Errorf("%s: failed to toggle like: %w", op, err)
	}

	logger.Info("like toggled", slog.Bool("liked", liked))
	return liked, nil
}
