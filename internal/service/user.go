package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/recipe-vault/internal/domain/models"
	"github.com/linemk/recipe-vault/internal/storage"
)

// UserService определяет интерфейс для регистрации и поиска пользователей.
type UserService interface {
	Register(ctx context.Context, displayName, email, photoURL string) (*models.User, error)
	List(ctx context.Context, filter storage.UserFilter) ([]*models.User, error)
}

type userService struct {
	log             *slog.Logger
	userRepo        storage.UserStorage
	startingBalance int
}

func NewUserService(log *slog.Logger, userRepo storage.UserStorage, startingBalance int) UserService {
	return &userService{
		log:             log,
		userRepo:        userRepo,
		startingBalance: startingBalance,
	}
}

// Register создаёт пользователя со стартовым балансом.
// Повторная регистрация занятого email — не ошибка: возвращается существующая запись.
func (s *userService) Register(ctx context.Context, displayName, email, photoURL string) (*models.User, error) {
	const op = "service.UserService.Register"
	logger := s.log.With(slog.String("op", op), slog.String("email", email))
	logger.Info("registering user")

	newUser := &models.User{
		DisplayName: displayName,
		Email:       email,
		PhotoURL:    photoURL,
		CoinBalance: s.startingBalance,
	}
	user, err := s.userRepo.CreateUser(ctx, newUser)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			logger.Info("email already registered, returning existing user")
			existing, err := s.userRepo.GetUserByEmail(ctx, email)
			if err != nil {
				logger.Error("failed to get existing user", slog.Any("error", err))
				return nil, fmt.Errorf("%s: failed to get existing user: %w", op, err)
			}
			return existing, nil
		}
		logger.Error("failed to create user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create user: %w", op, err)
	}

	logger.Info("user registered", slog.Int64("userID", user.ID))
	return user, nil
}

func (s *userService) List(ctx context.Context, filter storage.UserFilter) ([]*models.User, error) {
	const op = "service.UserService.List"

	users, err := s.userRepo.ListUsers(ctx, filter)
	if err != nil {
		s.log.Error("failed to list users", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list users: %w", op, err)
	}
	return users, nil
}
