package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/linemk/recipe-vault/internal/domain/models"
)

var ErrRecipeNotFound = errors.New("recipe not found")

// RecipeFilter — условия выборки рецептов: подстрока по имени (без учета регистра),
// точные фильтры по категории и стране, пагинация
type RecipeFilter struct {
	Search   string
	Category string
	Country  string
	Limit    int
	Offset   int
}

// RecipeStorage описывает методы для работы с рецептами.
type RecipeStorage interface {
	CreateRecipe(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	// GetRecipeByID возвращает рецепт целиком: автор, ингредиенты, покупатели, лайки
	GetRecipeByID(ctx context.Context, id int64) (*models.Recipe, error)
	ListRecipes(ctx context.Context, filter RecipeFilter) ([]*models.Recipe, error)
	// CountRecipes считает рецепты под фильтром, игнорируя limit/offset
	CountRecipes(ctx context.Context, filter RecipeFilter) (int, error)
	LockRecipeByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Recipe, error)
	AddPurchaseTx(ctx context.Context, tx *sql.Tx, recipeID int64, email string) error
	HasPurchaseTx(ctx context.Context, tx *sql.Tx, recipeID int64, email string) (bool, error)
	IncrementWatchCountTx(ctx context.Context, tx *sql.Tx, recipeID int64) error
	// ToggleLike переключает лайк, возвращает итоговое состояние (true — лайк стоит)
	ToggleLike(ctx context.Context, recipeID int64, email string) (bool, error)
}

type recipeRepository struct {
	db *sql.DB
}

func NewRecipeRepository(db *sql.DB) *recipeRepository {
	return &recipeRepository{db: db}
}

// CreateRecipe вставляет рецепт вместе с ингредиентами одной транзакцией
func (r *recipeRepository) CreateRecipe(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO recipes (name, category, image, country, video, cook_time, author_id, instructions, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW()) RETURNING id`,
		recipe.Name, recipe.Category, recipe.Image, recipe.Country, nullString(recipe.Video),
		recipe.CookTime, recipe.AuthorID, recipe.Instructions,
	).Scan(&id)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return nil, fmt.Errorf("rollback failed: %v: %w", rbErr, err)
		}
		return nil, fmt.Errorf("failed to insert recipe: %w", err)
	}

	for i, ing := range recipe.Ingredients {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO recipe_ingredients (recipe_id, name, measure, position) VALUES ($1, $2, $3, $4)",
			id, ing.Name, ing.Measure, i,
		)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return nil, fmt.Errorf("rollback failed: %v: %w", rbErr, err)
			}
			return nil, fmt.Errorf("failed to insert ingredient: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	recipe.ID = id
	return recipe, nil
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id int64) (*models.Recipe, error) {
	recipe := &models.Recipe{Author: &models.AuthorInfo{}}
	row := r.db.QueryRowContext(ctx,
		`SELECT r.id, r.name, r.category, r.image, r.country, COALESCE(r.video, ''), r.cook_time,
		        r.author_id, r.instructions, r.watch_count, r.created_at,
		        u.display_name, u.photo_url, u.email
		 FROM recipes r
		 JOIN users u ON r.author_id = u.id
		 WHERE r.id = $1`, id)
	if err := row.Scan(
		&recipe.ID, &recipe.Name, &recipe.Category, &recipe.Image, &recipe.Country, &recipe.Video,
		&recipe.CookTime, &recipe.AuthorID, &recipe.Instructions, &recipe.WatchCount, &recipe.CreatedAt,
		&recipe.Author.DisplayName, &recipe.Author.PhotoURL, &recipe.Author.Email,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	if err := r.loadDetails(ctx, []*models.Recipe{recipe}); err != nil {
		return nil, err
	}
	return recipe, nil
}

func (r *recipeRepository) ListRecipes(ctx context.Context, filter RecipeFilter) ([]*models.Recipe, error) {
	query := `SELECT r.id, r.name, r.category, r.image, r.country, COALESCE(r.video, ''), r.cook_time,
	                 r.author_id, r.instructions, r.watch_count, r.created_at,
	                 u.display_name, u.photo_url, u.email
	          FROM recipes r
	          JOIN users u ON r.author_id = u.id`
	conds, args := buildRecipeConds(filter, "r.")
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY r.created_at DESC, r.id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []*models.Recipe
	for rows.Next() {
		recipe := &models.Recipe{Author: &models.AuthorInfo{}}
		if err := rows.Scan(
			&recipe.ID, &recipe.Name, &recipe.Category, &recipe.Image, &recipe.Country, &recipe.Video,
			&recipe.CookTime, &recipe.AuthorID, &recipe.Instructions, &recipe.WatchCount, &recipe.CreatedAt,
			&recipe.Author.DisplayName, &recipe.Author.PhotoURL, &recipe.Author.Email,
		); err != nil {
			return nil, err
		}
		recipes = append(recipes, recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadDetails(ctx, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *recipeRepository) CountRecipes(ctx context.Context, filter RecipeFilter) (int, error) {
	query := "SELECT COUNT(*) FROM recipes"
	conds, args := buildRecipeConds(filter, "")
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// buildRecipeConds собирает WHERE-условия, общие для выборки и подсчета
func buildRecipeConds(filter RecipeFilter, prefix string) ([]string, []interface{}) {
	var conds []string
	var args []interface{}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, fmt.Sprintf("%sname ILIKE $%d", prefix, len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("%scategory = $%d", prefix, len(args)))
	}
	if filter.Country != "" {
		args = append(args, filter.Country)
		conds = append(conds, fmt.Sprintf("%scountry = $%d", prefix, len(args)))
	}
	return conds, args
}

// loadDetails дозагружает ингредиенты, покупателей и лайки для пачки рецептов
func (r *recipeRepository) loadDetails(ctx context.Context, recipes []*models.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	byID := make(map[int64]*models.Recipe, len(recipes))
	ids := make([]int64, 0, len(recipes))
	for _, recipe := range recipes {
		recipe.Ingredients = []models.Ingredient{}
		recipe.PurchasedBy = []string{}
		recipe.Likes = []string{}
		byID[recipe.ID] = recipe
		ids = append(ids, recipe.ID)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT recipe_id, name, measure FROM recipe_ingredients WHERE recipe_id = ANY($1) ORDER BY recipe_id, position",
		pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var recipeID int64
		var ing models.Ingredient
		if err := rows.Scan(&recipeID, &ing.Name, &ing.Measure); err != nil {
			return err
		}
		byID[recipeID].Ingredients = append(byID[recipeID].Ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	purchaseRows, err := r.db.QueryContext(ctx,
		"SELECT recipe_id, user_email FROM recipe_purchases WHERE recipe_id = ANY($1) ORDER BY id",
		pq.Array(ids))
	if err != nil {
		return err
	}
	defer purchaseRows.Close()
	for purchaseRows.Next() {
		var recipeID int64
		var email string
		if err := purchaseRows.Scan(&recipeID, &email); err != nil {
			return err
		}
		byID[recipeID].PurchasedBy = append(byID[recipeID].PurchasedBy, email)
	}
	if err := purchaseRows.Err(); err != nil {
		return err
	}

	likeRows, err := r.db.QueryContext(ctx,
		"SELECT recipe_id, user_email FROM recipe_likes WHERE recipe_id = ANY($1)",
		pq.Array(ids))
	if err != nil {
		return err
	}
	defer likeRows.Close()
	for likeRows.Next() {
		var recipeID int64
		var email string
		if err := likeRows.Scan(&recipeID, &email); err != nil {
			return err
		}
		byID[recipeID].Likes = append(byID[recipeID].Likes, email)
	}
	return likeRows.Err()
}

func (r *recipeRepository) LockRecipeByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Recipe, error) {
	recipe := &models.Recipe{}
	row := tx.QueryRowContext(ctx,
		"SELECT id, name, author_id, watch_count FROM recipes WHERE id = $1 FOR UPDATE NOWAIT", id)
	if err := row.Scan(&recipe.ID, &recipe.Name, &recipe.AuthorID, &recipe.WatchCount); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "55P03" { // lock
				return nil, fmt.Errorf("resource is locked, please try again: %w", err)
			}
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return recipe, nil
}

// AddPurchaseTx дописывает email покупателя, дубликаты не отсекаются на уровне схемы
func (r *recipeRepository) AddPurchaseTx(ctx context.Context, tx *sql.Tx, recipeID int64, email string) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO recipe_purchases (recipe_id, user_email, created_at) VALUES ($1, $2, NOW())",
		recipeID, email)
	if err != nil {
		return fmt.Errorf("failed to add purchase: %w", err)
	}
	return nil
}

func (r *recipeRepository) HasPurchaseTx(ctx context.Context, tx *sql.Tx, recipeID int64, email string) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM recipe_purchases WHERE recipe_id = $1 AND user_email = $2)",
		recipeID, email).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *recipeRepository) IncrementWatchCountTx(ctx context.Context, tx *sql.Tx, recipeID int64) error {
	res, err := tx.ExecContext(ctx, "UPDATE recipes SET watch_count = watch_count + 1 WHERE id = $1", recipeID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

// ToggleLike снимает лайк, если он стоит, иначе ставит.
// Решение принимается по RowsAffected от DELETE, отдельная транзакция не нужна.
func (r *recipeRepository) ToggleLike(ctx context.Context, recipeID int64, email string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM recipe_likes WHERE recipe_id = $1 AND user_email = $2", recipeID, email)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		return false, nil
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO recipe_likes (recipe_id, user_email) VALUES ($1, $2)", recipeID, email)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" { // foreign key
			return false, ErrRecipeNotFound
		}
		return false, err
	}
	return true, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
