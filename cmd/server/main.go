package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/pkg/errors"

	"github.com/linemk/recipe-vault/internal/app"
	"github.com/linemk/recipe-vault/internal/app/handlers"
	"github.com/linemk/recipe-vault/internal/config"
	security "github.com/linemk/recipe-vault/internal/jwt"
	"github.com/linemk/recipe-vault/internal/jwt/jwtmiddleware"
	"github.com/linemk/recipe-vault/internal/lib/logger"
	"github.com/linemk/recipe-vault/internal/lib/logger/handlers/urllog"
	"github.com/linemk/recipe-vault/internal/payment"
	"github.com/linemk/recipe-vault/internal/service"
	"github.com/linemk/recipe-vault/internal/storage"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	// менеджер токенов собирается один раз из конфига
	tokenManager, err := security.NewTokenManager(cfg.JWT)
	if err != nil {
		log.Error("failed to initialize token manager", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize token manager"))
	}

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// CORS для браузерного клиента
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(application.DB)
	recipeRepo := storage.NewRecipeRepository(application.DB)

	authService := service.NewAuthService(log, userRepo, tokenManager)
	userService := service.NewUserService(log, userRepo, cfg.Economy.StartingBalance)
	recipeService := service.NewRecipeService(log, userRepo, recipeRepo)
	buyService := service.NewBuyService(log, application.DB, userRepo, recipeRepo, cfg.Economy)
	likeService := service.NewLikeService(log, userRepo, recipeRepo)
	paymentService := service.NewPaymentService(log, payment.NewStripeProvider(cfg.Stripe.SecretKey))
	homeService := service.NewHomeService(log, userRepo, recipeRepo)

	// открытые эндпоинты
	router.Get("/", handlers.RootHandler())
	router.Post("/jwt", handlers.JWTHandler(log, authService))
	router.Post("/refresh-token", handlers.RefreshTokenHandler(log, authService))
	router.Post("/users", handlers.CreateUserHandler(log, userService))
	router.Get("/all-recipes", handlers.AllRecipesHandler(log, recipeService))
	router.Get("/home", handlers.HomeHandler(log, homeService))
	router.Post("/create-payment-intent", handlers.PaymentIntentHandler(log, paymentService))

	router.Group(func(r chi.Router) {
		// первая ступень: проверка access-токена
		r.Use(jwtmiddleware.New(tokenManager))

		r.Get("/users", handlers.ListUsersHandler(log, userService))

		r.Group(func(r chi.Router) {
			// вторая ступень: email в запросе должен совпадать с email из токена
			r.Use(jwtmiddleware.RequireSelf(log))

			r.Post("/recipes/{id}", handlers.RecipeDetailsHandler(log, recipeService))
			r.Post("/add-recipe", handlers.AddRecipeHandler(log, recipeService))
			r.Post("/buy-recipe", handlers.BuyRecipeHandler(log, buyService))
			r.Post("/like", handlers.LikeHandler(log, likeService))
		})
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
