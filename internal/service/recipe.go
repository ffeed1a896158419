package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linemk/recipe-vault/internal/domain/models"
	"github.com/linemk/recipe-vault/internal/storage"
)

// RecipeInput — данные нового рецепта от клиента
type RecipeInput struct {
	Name         string
	Category     string
	Image        string
	Country      string
	Video        string
	CookTime     int
	Instructions string
	Ingredients  []models.Ingredient
}

// RecipeService определяет интерфейс для работы с рецептами.
type RecipeService interface {
	Create(ctx context.Context, authorID int64, input RecipeInput) (*models.Recipe, error)
	// Get отдаёт рецепт целиком только автору или купившему, иначе ErrAccessDenied
	Get(ctx context.Context, recipeID int64, requesterEmail string) (*models.Recipe, error)
	// List возвращает страницу рецептов и общее число под фильтром (без учета пагинации)
	List(ctx context.Context, filter storage.RecipeFilter) ([]*models.Recipe, int, error)
}

type recipeService struct {
	log        *slog.Logger
	userRepo   storage.UserStorage
	recipeRepo storage.RecipeStorage
}

func NewRecipeService(log *slog.Logger, userRepo storage.UserStorage, recipeRepo storage.RecipeStorage) RecipeService {
	return &recipeService{
		log:        log,
		userRepo:   userRepo,
		recipeRepo: recipeRepo,
	}
}

func (s *recipeService) Create(ctx context.Context, authorID int64, input RecipeInput) (*models.Recipe, error) {
	const op = "service.RecipeService.Create"
	logger := s.log.With(slog.String("op", op), slog.Int64("authorID", authorID))
	logger.Info("creating recipe")

	// автор должен существовать, author_id в рецепте неизменяем после создания
	if _, err := s.userRepo.GetUserByID(ctx, authorID); err != nil {
		logger.Error("failed to get author", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get author: %w", op, err)
	}

	recipe := &models.Recipe{
		Name:         input.Name,
		Category:     input.Category,
		Image:        input.Image,
		Country:      input.Country,
		Video:        input.Video,
		CookTime:     input.CookTime,
		AuthorID:     authorID,
		Instructions: input.Instructions,
		Ingredients:  input.Ingredients,
	}
	created, err := s.recipeRepo.CreateRecipe(ctx, recipe)
	if err != nil {
		logger.Error("failed to create recipe", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create recipe: %w", op, err)
	}

	logger.Info("recipe created", slog.Int64("recipeID", created.ID))
	return created, nil
}

func (s *recipeService) Get(ctx context.Context, recipeID int64, requesterEmail string) (*models.Recipe, error) {
	const op = "service.RecipeService.Get"
	logger := s.log.With(slog.String("op", op), slog.Int64("recipeID", recipeID))

	recipe, err := s.recipeRepo.GetRecipeByID(ctx, recipeID)
	if err != nil {
		logger.Error("failed to get recipe", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get recipe: %w", op, err)
	}

	if !strings.EqualFold(recipe.Author.Email, requesterEmail) && !containsFold(recipe.PurchasedBy, requesterEmail) {
		logger.Warn("access denied", slog.String("requester", requesterEmail))
		return nil, fmt.Errorf("%s: %w", op, ErrAccessDenied)
	}
	return recipe, nil
}

func (s *recipeService) List(ctx context.Context, filter storage.RecipeFilter) ([]*models.Recipe, int, error) {
	const op = "service.RecipeService.List"

	recipes, err := s.recipeRepo.ListRecipes(ctx, filter)
	if err != nil {
		s.log.Error("failed to list recipes", slog.String("op", op), slog.Any("error", err))
		return nil, 0, fmt.Errorf("%s: failed to list recipes: %w", op, err)
	}
	total, err := s.recipeRepo.CountRecipes(ctx, filter)
	if err != nil {
		s.log.Error("failed to count recipes", slog.String("op", op), slog.Any("error", err))
		return nil, 0, fmt.Errorf("%s: failed to count recipes: %w", op, err)
	}
	if recipes == nil {
		recipes = []*models.Recipe{}
	}
	return recipes, total, nil
}

func containsFold(items []string, target string) bool {
	for _, item := range items {
		if strings.EqualFold(item, target) {
			return true
		}
	}
	return false
}
