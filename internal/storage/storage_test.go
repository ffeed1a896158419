package storage_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/linemk/recipe-vault/internal/domain/models"
	"github.com/linemk/recipe-vault/internal/storage"
)

const selectUser = "SELECT id, display_name, email, photo_url, coin_balance FROM users"

func TestGetUserByID_Success(t *testing.T) {
	// Создаем sqlmock для эмуляции базы данных.
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	ctx := context.Background()
	userID := int64(1)

	rows := sqlmock.NewRows([]string{"id", "display_name", "email", "photo_url", "coin_balance"}).
		AddRow(userID, "Test User", "test@example.com", "https://img.example.com/u1.png", 50)

	mock.ExpectQuery(regexp.QuoteMeta(selectUser+" WHERE id = $1")).
		WithArgs(userID).WillReturnRows(rows)

	user, err := repo.GetUserByID(ctx, userID)
	assert.NoError(t, err, "Expected no error when user is found")
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "Test User", user.DisplayName)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, 50, user.CoinBalance)

	// Проверяем, что все ожидания sqlmock выполнены.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByID_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "display_name", "email", "photo_url", "coin_balance"})
	mock.ExpectQuery(regexp.QuoteMeta(selectUser+" WHERE id = $1")).
		WithArgs(int64(2)).WillReturnRows(rows)

	user, err := repo.GetUserByID(context.Background(), 2)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
	assert.Nil(t, user, "User should be nil when not found")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByEmail_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "display_name", "email", "photo_url", "coin_balance"}).
		AddRow(3, "By Email", "mail@example.com", "", 40)
	mock.ExpectQuery(regexp.QuoteMeta(selectUser+" WHERE email = $1")).
		WithArgs("mail@example.com").WillReturnRows(rows)

	user, err := repo.GetUserByEmail(context.Background(), "mail@example.com")
	assert.NoError(t, err)
	assert.Equal(t, int64(3), user.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (display_name, email, photo_url, coin_balance) VALUES ($1, $2, $3, $4) RETURNING id")).
		WithArgs("New User", "new@example.com", "", 50).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	user, err := repo.CreateUser(context.Background(), &models.User{
		DisplayName: "New User",
		Email:       "new@example.com",
		CoinBalance: 50,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// нарушение уникальности email должно превращаться в ErrUserExists,
// чтобы сервис мог вернуть существующую запись вместо ошибки
func TestCreateUser_DuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("User", "taken@example.com", "", 50).
		WillReturnError(&pq.Error{Code: "23505"})

	user, err := repo.CreateUser(context.Background(), &models.User{
		DisplayName: "User",
		Email:       "taken@example.com",
		CoinBalance: 50,
	})
	assert.ErrorIs(t, err, storage.ErrUserExists)
	assert.Nil(t, user)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockUserByIDTx_Locked(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(selectUser+" WHERE id = $1 FOR UPDATE NOWAIT")).
		WithArgs(int64(1)).WillReturnError(&pq.Error{Code: "55P03"})

	user, err := repo.LockUserByIDTx(context.Background(), tx, 1)
	assert.Error(t, err, "Locked row should surface as a retryable error")
	assert.Nil(t, user)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUserBalance_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET coin_balance = $1 WHERE id = $2")).
		WithArgs(40, int64(99)).WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateUserBalance(context.Background(), tx, 99, 40)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func recipeColumns() []string {
	return []string{"id", "name", "category", "image", "country", "video", "cook_time",
		"author_id", "instructions", "watch_count", "created_at",
		"display_name", "photo_url", "email"}
}

func expectDetailQueries(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT recipe_id, name, measure FROM recipe_ingredients")).
		WillReturnRows(sqlmock.NewRows([]string{"recipe_id", "name", "measure"}).
			AddRow(1, "flour", "200g").
			AddRow(1, "honey", "3 tbsp"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT recipe_id, user_email FROM recipe_purchases")).
		WillReturnRows(sqlmock.NewRows([]string{"recipe_id", "user_email"}).
			AddRow(1, "buyer@x.com").
			AddRow(1, "buyer@x.com")) // дубликат допустим
	mock.ExpectQuery(regexp.QuoteMeta("SELECT recipe_id, user_email FROM recipe_likes")).
		WillReturnRows(sqlmock.NewRows([]string{"recipe_id", "user_email"}).
			AddRow(1, "liker@x.com"))
}

// поиск по подстроке должен уходить в запрос как ILIKE-шаблон
func TestListRecipes_SearchFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewRecipeRepository(db)

	createdAt := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(recipeColumns()).
		AddRow(1, "Honey Cake", "dessert", "img.png", "Russia", "", 90,
			2, "mix and bake", 4, createdAt,
			"Author", "", "author@x.com")

	mock.ExpectQuery("SELECT .+ FROM recipes r\\s+JOIN users u ON r.author_id = u.id WHERE r.name ILIKE \\$1 .+ LIMIT \\$2 OFFSET \\$3").
		WithArgs("%cake%", 10, 20).
		WillReturnRows(rows)
	expectDetailQueries(mock)

	recipes, err := repo.ListRecipes(context.Background(), storage.RecipeFilter{
		Search: "cake",
		Limit:  10,
		Offset: 20,
	})
	assert.NoError(t, err)
	assert.Len(t, recipes, 1)
	assert.Equal(t, "Honey Cake", recipes[0].Name)
	assert.Equal(t, "author@x.com", recipes[0].Author.Email)
	assert.Len(t, recipes[0].Ingredients, 2)
	assert.Equal(t, []string{"buyer@x.com", "buyer@x.com"}, recipes[0].PurchasedBy)
	assert.Equal(t, []string{"liker@x.com"}, recipes[0].Likes)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// итоговое число считается под тем же фильтром, но без пагинации
func TestCountRecipes_IgnoresPagination(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewRecipeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM recipes WHERE name ILIKE $1")).
		WithArgs("%cake%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := repo.CountRecipes(context.Background(), storage.RecipeFilter{
		Search: "cake",
		Limit:  10,
		Offset: 20,
	})
	assert.NoError(t, err)
	assert.Equal(t, 42, count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleLike_SetsWhenAbsent(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewRecipeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM recipe_likes WHERE recipe_id = $1 AND user_email = $2")).
		WithArgs(int64(1), "liker@x.com").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO recipe_likes (recipe_id, user_email) VALUES ($1, $2)")).
		WithArgs(int64(1), "liker@x.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	liked, err := repo.ToggleLike(context.Background(), 1, "liker@x.com")
	assert.NoError(t, err)
	assert.True(t, liked)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleLike_RemovesWhenPresent(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewRecipeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM recipe_likes WHERE recipe_id = $1 AND user_email = $2")).
		WithArgs(int64(1), "liker@x.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	liked, err := repo.ToggleLike(context.Background(), 1, "liker@x.com")
	assert.NoError(t, err)
	assert.False(t, liked)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleLike_UnknownRecipe(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewRecipeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM recipe_likes")).
		WithArgs(int64(99), "liker@x.com").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO recipe_likes")).
		WithArgs(int64(99), "liker@x.com").
		WillReturnError(&pq.Error{Code: "23503"})

	_, err = repo.ToggleLike(context.Background(), 99, "liker@x.com")
	assert.ErrorIs(t, err, storage.ErrRecipeNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementWatchCountTx_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewRecipeRepository(db)

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE recipes SET watch_count = watch_count + 1 WHERE id = $1")).
		WithArgs(int64(99)).WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.IncrementWatchCountTx(context.Background(), tx, 99)
	assert.ErrorIs(t, err, storage.ErrRecipeNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByID_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectUser+" WHERE id = $1")).
		WithArgs(int64(3)).WillReturnError(errors.New("db error"))

	user, err := repo.GetUserByID(context.Background(), 3)
	assert.Error(t, err, "Expected error when query fails")
	assert.Nil(t, user)

	assert.NoError(t, mock.ExpectationsWereMet())
}
