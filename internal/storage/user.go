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

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// UserFilter — условия выборки пользователей (точное совпадение)
type UserFilter struct {
	Email       string
	DisplayName string
}

type UserStorage interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	// CreateUser возвращает ErrUserExists, если email уже занят (unique violation)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]*models.User, error)
	CountUsers(ctx context.Context) (int, error)
	LockUserByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.User, error)
	UpdateUserBalance(ctx context.Context, tx *sql.Tx, id int64, newBalance int) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db: db}
}

// получение уже существующего пользователя
func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	row := r.db.QueryRowContext(ctx, "SELECT id, display_name, email, photo_url, coin_balance FROM users WHERE email = $1", email)
	if err := row.Scan(&user.ID, &user.DisplayName, &user.Email, &user.PhotoURL, &user.CoinBalance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	row := r.db.QueryRowContext(ctx, "SELECT id, display_name, email, photo_url, coin_balance FROM users WHERE id = $1", id)
	if err := row.Scan(&user.ID, &user.DisplayName, &user.Email, &user.PhotoURL, &user.CoinBalance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO users (display_name, email, photo_url, coin_balance) VALUES ($1, $2, $3, $4) RETURNING id",
		user.DisplayName, user.Email, user.PhotoURL, user.CoinBalance,
	).Scan(&id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique violation
			return nil, ErrUserExists
		}
		return nil, err
	}
	user.ID = id
	return user, nil
}

func (r *userRepository) ListUsers(ctx context.Context, filter UserFilter) ([]*models.User, error) {
	query := "SELECT id, display_name, email, photo_url, coin_balance FROM users"
	var conds []string
	var args []interface{}
	if filter.Email != "" {
		args = append(args, filter.Email)
		conds = append(conds, fmt.Sprintf("email = $%d", len(args)))
	}
	if filter.DisplayName != "" {
		args = append(args, filter.DisplayName)
		conds = append(conds, fmt.Sprintf("display_name = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.DisplayName, &user.Email, &user.PhotoURL, &user.CoinBalance); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *userRepository) LockUserByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.User, error) {
	user := &models.User{}

	row := tx.QueryRowContext(ctx, "SELECT id, display_name, email, photo_url, coin_balance FROM users WHERE id = $1 FOR UPDATE NOWAIT", id)
	if err := row.Scan(&user.ID, &user.DisplayName, &user.Email, &user.PhotoURL, &user.CoinBalance); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "55P03" { // lock
				return nil, fmt.Errorf("resource is locked, please try again: %w", err)
			}
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// TODO - можно сделать вычисление на стороне БД
func (r *userRepository) UpdateUserBalance(ctx context.Context, tx *sql.Tx, id int64, newBalance int) error {
	res, err := tx.ExecContext(ctx, "UPDATE users SET coin_balance = $1 WHERE id = $2", newBalance, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}
