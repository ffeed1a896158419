package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linemk/recipe-vault/internal/domain/models"
	"github.com/linemk/recipe-vault/internal/service"
	"github.com/linemk/recipe-vault/internal/storage"
)

// CreateUserRequest представляет входной JSON регистрации
type CreateUserRequest struct {
	DisplayName string `json:"displayName" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhotoURL    string `json:"photoURL" validate:"omitempty,url"`
}

// CreateUserHandler обрабатывает запрос POST /users.
// Повторная регистрация существующего email — тоже 201 с уже существующей записью.
func CreateUserHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateUserHandler"
		logger := log.With(slog.String("op", op))

		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			http.Error(w, "validation error", http.StatusBadRequest)
			return
		}

		user, err := userService.Register(r.Context(), req.DisplayName, req.Email, req.PhotoURL)
		if err != nil {
			logger.Error("failed to register user", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(user); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// ListUsersHandler обрабатывает запрос GET /users с фильтрами в query string
func ListUsersHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListUsersHandler"
		logger := log.With(slog.String("op", op))

		filter := storage.UserFilter{
			Email:       r.URL.Query().Get("email"),
			DisplayName: r.URL.Query().Get("displayName"),
		}

		users, err := userService.List(r.Context(), filter)
		if err != nil {
			logger.Error("failed to list users", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if users == nil {
			users = []*models.User{}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(users); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}
}
