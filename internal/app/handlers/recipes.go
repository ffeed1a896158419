package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/linemk/recipe-vault/internal/domain/models"
	"github.com/linemk/recipe-vault/internal/jwt/jwtmiddleware"
	"github.com/linemk/recipe-vault/internal/service"
	"github.com/linemk/recipe-vault/internal/storage"
)

// AllRecipesResponse — страница рецептов плюс общее число под фильтром
type AllRecipesResponse struct {
	Recipes      []*models.Recipe `json:"recipes"`
	RecipesCount int              `json:"recipesCount"`
}

// IngredientDTO — позиция ингредиента во входном JSON
type IngredientDTO struct {
	Name    string `json:"name"`
	Measure string `json:"measure"`
}

// AddRecipeRequest представляет входной JSON создания рецепта
type AddRecipeRequest struct {
	Email        string          `json:"email" validate:"required,email"`
	Name         string          `json:"name" validate:"required"`
	Category     string          `json:"category" validate:"required"`
	Image        string          `json:"image" validate:"required"`
	Country      string          `json:"country" validate:"required"`
	Video        string          `json:"video"`
	CookTime     int             `json:"cookTime" validate:"required,gt=0"`
	Instructions string          `json:"instructions" validate:"required"`
	Ingredients  []IngredientDTO `json:"ingredients"`
}

// RecipeDetailsRequest — тело POST /recipes/{id}; email сверяется ownership-ступенью
type RecipeDetailsRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// AllRecipesHandler обрабатывает запрос GET /all-recipes с поиском, фильтрами и пагинацией
func AllRecipesHandler(log *slog.Logger, recipeService service.RecipeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AllRecipesHandler"
		logger := log.With(slog.String("op", op))

		query := r.URL.Query()
		filter := storage.RecipeFilter{
			Search:   query.Get("search"),
			Category: query.Get("category"),
			Country:  query.Get("country"),
		}
		if v := query.Get("limit"); v != "" {
			limit, err := strconv.Atoi(v)
			if err != nil || limit < 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			filter.Limit = limit
		}
		if v := query.Get("offset"); v != "" {
			offset, err := strconv.Atoi(v)
			if err != nil || offset < 0 {
				http.Error(w, "invalid offset", http.StatusBadRequest)
				return
			}
			filter.Offset = offset
		}

		recipes, total, err := recipeService.List(r.Context(), filter)
		if err != nil {
			logger.Error("failed to list recipes", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		resp := AllRecipesResponse{Recipes: recipes, RecipesCount: total}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}
}

// RecipeDetailsHandler обрабатывает запрос POST /recipes/{id}.
// Рецепт целиком доступен только автору или купившему.
func RecipeDetailsHandler(log *slog.Logger, recipeService service.RecipeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RecipeDetailsHandler"
		logger := log.With(slog.String("op", op))

		recipeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			logger.Error("invalid recipe id", slog.Any("error", err))
			http.Error(w, "invalid recipe id", http.StatusBadRequest)
			return
		}

		// Извлекаем claims из контекста (установленные JWT middleware)
		claims, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("claims not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		recipe, err := recipeService.Get(r.Context(), recipeID, claims.Email)
		if err != nil {
			if errors.Is(err, service.ErrAccessDenied) {
				http.Error(w, "forbidden access", http.StatusForbidden)
				return
			}
			logger.Error("failed to get recipe", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(recipe); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}
}

// AddRecipeHandler обрабатывает запрос POST /add-recipe: автором становится владелец токена
func AddRecipeHandler(log *slog.Logger, recipeService service.RecipeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddRecipeHandler"
		logger := log.With(slog.String("op", op))

		var req AddRecipeRequest
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

		ingredients := make([]models.Ingredient, 0, len(req.Ingredients))
		for _, ing := range req.Ingredients {
			ingredients = append(ingredients, models.Ingredient{Name: ing.Name, Measure: ing.Measure})
		}

		recipe, err := recipeService.Create(r.Context(), claims.UserID, service.RecipeInput{
			Name:         req.Name,
			Category:     req.Category,
			Image:        req.Image,
			Country:      req.Country,
			Video:        req.Video,
			CookTime:     req.CookTime,
			Instructions: req.Instructions,
			Ingredients:  ingredients,
		})
		if err != nil {
			logger.Error("failed to create recipe", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(recipe); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}
