package service

import (
	"context"
	"fmt"
	"log/slog"
)

// PaymentProvider — узкий интерфейс внешнего платёжного API:
// принимает сумму в минимальных единицах валюты, возвращает client secret
type PaymentProvider interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (string, error)
}

// PaymentService определяет интерфейс создания платежа на покупку монет.
type PaymentService interface {
	CreateIntent(ctx context.Context, price int) (string, error)
}

type paymentService struct {
	log      *slog.Logger
	provider PaymentProvider
}

func NewPaymentService(log *slog.Logger, provider PaymentProvider) PaymentService {
	return &paymentService{
		log:      log,
		provider: provider,
	}
}

func (s *paymentService) CreateIntent(ctx context.Context, price int) (string, error) {
	const op = "service.PaymentService.CreateIntent"
	logger := s.log.With(slog.String("op", op), slog.Int("price", price))

	if price <= 0 {
		return "", fmt.Errorf("%s: price must be positive", op)
	}

	// цена приходит в долларах, провайдер ждёт центы
	clientSecret, err := s.provider.CreateIntent(ctx, int64(price)*100, "usd")
	if err != nil {
		logger.Error("failed to create payment intent", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to create payment intent: %w", op, err)
	}

	logger.Info("payment intent created")
	return clientSecret, nil
}
