package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linemk/recipe-vault/internal/jwt/jwtmiddleware"
	"github.com/linemk/recipe-vault/internal/service"
)

// LikeRequest представляет входной JSON переключения лайка.
type LikeRequest struct {
	Email    string `json:"email" validate:"required,email"`
	UserID   int64  `json:"user_id" validate:"required"`
	RecipeID int64  `json:"recipe_id" validate:"required"`
}

// LikeResponse — ответ с итоговым состоянием лайка.
type LikeResponse struct {
	Message string `json:"message"`
	Liked   bool   `json:"liked"`
}

// LikeHandler обрабатывает запрос POST /like
func LikeHandler(log *slog.Logger, likeService service.LikeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LikeHandler"
		logger := log.With(slog.String("op", op))

		var req LikeRequest
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

		claims, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("claims not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if req.UserID != claims.UserID {
			logger.Warn("user mismatch", slog.Int64("bodyUserID", req.UserID), slog.Int64("tokenUserID", claims.UserID))
			http.Error(w, "forbidden access", http.StatusForbidden)
			return
		}

		liked, err := likeService.ToggleLike(r.Context(), req.UserID, req.RecipeID)
		if err != nil {
			logger.Error("failed to toggle like", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp := LikeResponse{Message: "success", Liked: liked}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}
}
