package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	security "github.com/linemk/recipe-vault/internal/jwt"
	"github.com/linemk/recipe-vault/internal/storage"
)

var (
	// ErrInvalidCredentials — единый ответ и на неизвестный email, и на плохой
	// refresh-токен, чтобы нельзя было перебором выяснять существование аккаунтов
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccessDenied       = errors.New("access denied")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrAlreadyPurchased   = errors.New("recipe already purchased")
)

// TokenPair — пара access/refresh токенов
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type AuthService struct {
	log      *slog.Logger
	userRepo storage.UserStorage
	tokens   *security.TokenManager
}

func NewAuthService(log *slog.Logger, userRepo storage.UserStorage, tokens *security.TokenManager) *AuthService {
	return &AuthService{
		log:      log,
		userRepo: userRepo,
		tokens:   tokens,
	}
}

type AuthServiceInterface interface {
	IssueTokens(ctx context.Context, email string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

// IssueTokens выпускает пару токенов по email.
// Пользователь должен быть заранее зарегистрирован через /users.
func (a *AuthService) IssueTokens(ctx context.Context, email string) (*TokenPair, error) {
	const op = "auth.IssueTokens"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)
	logger.Info("checking user")

	user, err := a.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("user not found")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	access, refresh, err := a.tokens.NewPair(user)
	if err != nil {
		logger.Error("failed to generate tokens", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to generate tokens: %w", op, err)
	}

	logger.Info("tokens issued", slog.Int64("userID", user.ID))
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh проверяет refresh-токен и, если email из него всё ещё существует,
// выпускает полностью новую пару токенов
func (a *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	const op = "auth.Refresh"
	logger := a.log.With(slog.String("op", op))

	claims, err := a.tokens.ParseRefresh(refreshToken)
	if err != nil {
		logger.Warn("invalid refresh token")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	// пользователя могли удалить после выдачи токена, сверяемся с базой
	user, err := a.userRepo.GetUserByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("token subject no longer exists")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	access, refresh, err := a.tokens.NewPair(user)
	if err != nil {
		logger.Error("failed to generate tokens", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to generate tokens: %w", op, err)
	}

	logger.Info("tokens refreshed", slog.Int64("userID", user.ID))
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
