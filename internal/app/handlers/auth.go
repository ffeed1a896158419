package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/linemk/recipe-vault/internal/service"
)

// JWTRequest представляет структуру запроса на выпуск пары токенов
type JWTRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RefreshRequest представляет структуру запроса на обновление пары токенов
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

var validate = validator.New()

// JWTHandler – HTTP-обработчик POST /jwt: выдаёт пару токенов по email
func JWTHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.JWTHandler"
		logger := log.With(slog.String("op", op))

		var req JWTRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		// Валидация структуры запроса с использованием validator
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			http.Error(w, "validation error", http.StatusBadRequest)
			return
		}

		pair, err := authService.IssueTokens(r.Context(), req.Email)
		if err != nil {
			logger.Warn("token issue failed", slog.Any("error", err))
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(pair); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}
}

// RefreshTokenHandler – HTTP-обработчик POST /refresh-token
func RefreshTokenHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RefreshTokenHandler"
		logger := log.With(slog.String("op", op))

		var req RefreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			http.Error(w, "refresh token is required", http.StatusUnauthorized)
			return
		}

		// плохой токен и исчезнувший пользователь намеренно неразличимы для клиента
		pair, err := authService.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			if !errors.Is(err, service.ErrInvalidCredentials) {
				logger.Error("refresh failed", slog.Any("error", err))
			}
			http.Error(w, "invalid refresh token", http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(pair); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}
}
