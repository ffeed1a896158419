package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linemk/recipe-vault/internal/jwt/jwtmiddleware"
	"github.com/linemk/recipe-vault/internal/service"
)

// BuyRecipeRequest представляет входной JSON покупки рецепта.
// Поле email сверяется ownership-ступенью до вызова обработчика.
type BuyRecipeRequest struct {
	Email    string `json:"email" validate:"required,email"`
	UserID   int64  `json:"user_id" validate:"required"`
	RecipeID int64  `json:"recipe_id" validate:"required"`
	AuthorID int64  `json:"author_id" validate:"required"`
}

// BuyResponse — структура ответа при успешной покупке.
type BuyResponse struct {
	Message string `json:"message"`
}

// BuyRecipeHandler обрабатывает запрос POST /buy-recipe
func BuyRecipeHandler(log *slog.Logger, buyService service.BuyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.BuyRecipeHandler"
		logger := log.With(slog.String("op", op))

		var req BuyRecipeRequest
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

		// Извлекаем claims из контекста (установленные JWT middleware)
		claims, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("claims not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		// user_id в теле обязан совпадать с владельцем токена
		if req.UserID != claims.UserID {
			logger.Warn("user mismatch", slog.Int64("bodyUserID", req.UserID), slog.Int64("tokenUserID", claims.UserID))
			http.Error(w, "forbidden access", http.StatusForbidden)
			return
		}

		if err := buyService.BuyRecipe(r.Context(), req.UserID, req.RecipeID, req.AuthorID); err != nil {
			logger.Error("failed to complete purchase", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp := BuyResponse{Message: "success"}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}
}
