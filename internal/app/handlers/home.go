package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linemk/recipe-vault/internal/service"
)

// RootHandler отвечает на GET / для проверки, что сервер жив
func RootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Recipe Vault server is running"))
	}
}

// HomeHandler обрабатывает запрос GET /home: агрегаты для главной страницы
func HomeHandler(log *slog.Logger, homeService service.HomeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.HomeHandler"
		logger := log.With(slog.String("op", op))

		stats, err := homeService.Stats(r.Context())
		if err != nil {
			logger.Error("failed to get stats", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(stats); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}
}
