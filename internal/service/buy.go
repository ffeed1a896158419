package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/recipe-vault/internal/config"
	"github.com/linemk/recipe-vault/internal/storage"
)

// txTimeout ограничивает время жизни покупочной транзакции,
// чтобы зависшая блокировка не держала строки бесконечно
const txTimeout = 5 * time.Second

// BuyService определяет интерфейс покупки рецепта.
type BuyService interface {
	BuyRecipe(ctx context.Context, buyerID, recipeID, authorID int64) error
}

type buyService struct {
	log        *slog.Logger
	db         *sql.DB
	userRepo   storage.UserStorage
	recipeRepo storage.RecipeStorage
	price      int
	reward     int
	dedup      bool
}

func NewBuyService(log *slog.Logger, db *sql.DB, userRepo storage.UserStorage, recipeRepo storage.RecipeStorage, eco config.EconomyConfig) BuyService {
	return &buyService{
		log:        log,
		db:         db,
		userRepo:   userRepo,
		recipeRepo: recipeRepo,
		price:      eco.RecipePrice,
		reward:     eco.AuthorReward,
		dedup:      eco.DedupPurchases,
	}
}

// BuyRecipe проводит покупку рецепта: списывает цену с покупателя, начисляет
// вознаграждение автору, дописывает email покупателя к рецепту и увеличивает
// счетчик просмотров. Все четыре изменения — одна транзакция: либо применяются
// вместе, либо ни одно из них. Каждая запись подтверждается до коммита.
func (s *buyService) BuyRecipe(ctx context.Context, buyerID, recipeID, authorID int64) error {
	const op = "service.BuyService.BuyRecipe"
	logger := s.log.With(
		slog.String("op", op),
		slog.Int64("buyerID", buyerID),
		slog.Int64("recipeID", recipeID),
		slog.Int64("authorID", authorID),
	)
	logger.Info("starting purchase transaction")

	if buyerID == authorID {
		return fmt.Errorf("%s: cannot buy your own recipe", op)
	}

	ctx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	// Блокируем покупателя и автора в фиксированном порядке (сначала покупатель)
	buyer, err := s.userRepo.LockUserByIDTx(ctx, tx, buyerID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to get buyer", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get buyer: %w", op, err)
	}

	author, err := s.userRepo.LockUserByIDTx(ctx, tx, authorID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to get author", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get author: %w", op, err)
	}

	recipe, err := s.recipeRepo.LockRecipeByIDTx(ctx, tx, recipeID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to get recipe", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get recipe: %w", op, err)
	}

	// заявленный автор должен реально владеть рецептом
	if recipe.AuthorID != authorID {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Warn("author mismatch", slog.Int64("actualAuthorID", recipe.AuthorID))
		return fmt.Errorf("%s: recipe does not belong to author", op)
	}

	// Политика повторных покупок настраивается: по умолчанию дубликаты разрешены
	if s.dedup {
		purchased, err := s.recipeRepo.HasPurchaseTx(ctx, tx, recipeID, buyer.Email)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to check purchase", slog.Any("error", err))
			return fmt.Errorf("%s: failed to check purchase: %w", op, err)
		}
		if purchased {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Warn("recipe already purchased")
			return fmt.Errorf("%s: %w", op, ErrAlreadyPurchased)
		}
	}

	// Проверяем, достаточно ли средств
	if buyer.CoinBalance < s.price {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Warn("insufficient funds", slog.Int("balance", buyer.CoinBalance), slog.Int("price", s.price))
		return fmt.Errorf("%s: %w", op, ErrInsufficientFunds)
	}

	// Списываем цену с покупателя
	if err := s.userRepo.UpdateUserBalance(ctx, tx, buyerID, buyer.CoinBalance-s.price); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to update buyer balance", slog.Any("error", err))
		return fmt.Errorf("%s: failed to update buyer balance: %w", op, err)
	}

	// Начисляем вознаграждение автору
	if err := s.userRepo.UpdateUserBalance(ctx, tx, authorID, author.CoinBalance+s.reward); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to update author balance", slog.Any("error", err))
		return fmt.Errorf("%s: failed to update author balance: %w", op, err)
	}

	// Дописываем покупателя к рецепту
	if err := s.recipeRepo.AddPurchaseTx(ctx, tx, recipeID, buyer.Email); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to add purchase", slog.Any("error", err))
		return fmt.Errorf("%s: failed to add purchase: %w", op, err)
	}

	// Увеличиваем счетчик просмотров
	if err := s.recipeRepo.IncrementWatchCountTx(ctx, tx, recipeID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to increment watch count", slog.Any("error", err))
		return fmt.Errorf("%s: failed to increment watch count: %w", op, err)
	}

	// Коммит транзакции: к этому моменту все записи уже подтверждены
	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("purchase completed successfully")
	return nil
}
