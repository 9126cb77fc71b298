// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"expensio/internal/config"
	expenserepository "expensio/internal/expense/repository"
	expenseservice "expensio/internal/expense/service"
	expensehttp "expensio/internal/expense/transport/http"
	"expensio/internal/logger"
	"expensio/internal/metrics"
	"expensio/internal/token"
	userrepository "expensio/internal/user/repository"
	userservice "expensio/internal/user/service"
	userhttp "expensio/internal/user/transport/http"
	"expensio/pkg/db"
	"expensio/pkg/middleware"
)

var server *http.Server

func main() {
	cfg := config.Load()
	logger.Info("config loaded", zap.String("env", cfg.Env))

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	if err := db.Migrate(database); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
	logger.Info("connected to PostgreSQL")

	metrics.InitMetrics()

	tokens := token.NewService(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)

	userRepo := userrepository.NewPostgresUserRepository(database)
	expenseRepo := expenserepository.NewPostgresExpenseRepository(database)

	expenseService := expenseservice.NewService(expenseRepo)
	authService := userservice.NewAuthService(userRepo, expenseRepo, tokens)

	authHandler := userhttp.NewHandler(authService, cfg.RefreshTTL, cfg.IsProduction())
	expenseHandler := expensehttp.NewHandler(expenseService)

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.ValidateRequest)

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Post("/auth/register", authHandler.Register)
		v1.Post("/auth/login", authHandler.Login)

		v1.Group(func(pr chi.Router) {
			pr.Use(middleware.JWTAuth(tokens, userRepo))

			pr.Post("/auth/logout", authHandler.Logout)
			pr.Post("/auth/refresh-token", authHandler.Refresh)
			pr.Delete("/auth/delete-profile", authHandler.DeleteProfile)
			pr.Get("/auth/me", authHandler.Me)

			pr.Route("/expense", func(er chi.Router) {
				er.Get("/", expenseHandler.List)
				er.Post("/create", expenseHandler.Create)
				er.Get("/total", expenseHandler.Total)
				er.Get("/category-summary", expenseHandler.CategorySummary)
				er.Get("/by-month", expenseHandler.ByMonth)
				er.Get("/current-month-total", expenseHandler.CurrentMonthTotal)
				er.Put("/{expenseId}", expenseHandler.Update)
				er.Delete("/{expenseId}", expenseHandler.Delete)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.With(middleware.BasicAuth(cfg.MetricsUser, cfg.MetricsPass)).
		Get("/metrics", promhttp.Handler().ServeHTTP)

	server = &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	logger.Info("server running", zap.String("addr", cfg.HTTPAddr))

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		logger.Info("shutdown signal received, starting graceful shutdown")
		shutdownServer()
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server stopped unexpectedly", zap.Error(err))
	}
}

func shutdownServer() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	logger.Info("server stopped")
}
