package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linemk/recipe-vault/internal/service"
)

// PaymentIntentRequest представляет входной JSON для покупки монет.
type PaymentIntentRequest struct {
	Price int `json:"price" validate:"required,gt=0"`
}

// PaymentIntentResponse — ответ с client secret платёжного провайдера.
type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// PaymentIntentHandler обрабатывает запрос POST /create-payment-intent
func PaymentIntentHandler(log *slog.Logger, paymentService service.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.PaymentIntentHandler"
		logger := log.With(slog.String("op", op))

		var req PaymentIntentRequest
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

		// ошибки провайдера наружу не детализируем
		clientSecret, err := paymentService.CreateIntent(r.Context(), req.Price)
		if err != nil {
			logger.Error("failed to create payment intent", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		resp := PaymentIntentResponse{ClientSecret: clientSecret}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}
}
