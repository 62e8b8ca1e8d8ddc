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
	"github.com/joho/godotenv"
	"github.com/sitesmith/sitesmith-go/internal/ai"
	"github.com/sitesmith/sitesmith-go/internal/config"
	"github.com/sitesmith/sitesmith-go/internal/handler"
	"github.com/sitesmith/sitesmith-go/internal/middleware"
	"github.com/sitesmith/sitesmith-go/internal/repository"
	"github.com/sitesmith/sitesmith-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	gateway, err := ai.NewOpenAIGateway(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if err != nil {
		slog.Error("ai gateway init failed", "error", err)
		os.Exit(1)
	}

	store := repository.NewStore(db)
	userRepo := repository.NewUserRepository(db)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry, cfg.InitialCredits)
	userService := service.NewUserService(userRepo)
	projectService := service.NewProjectService(store, gateway, cfg.GenerationCost, cfg.GenerationTimeout)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	projectHandler := handler.NewProjectHandler(projectService)

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(5, 10))
		r.Post("/api/v1/auth/register", authHandler.HandleRegister)
		r.Post("/api/v1/auth/login", authHandler.HandleLogin)
	})

	// Published projects are readable without a credential; a token, when
	// present, must still be valid.
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalJWTAuth(cfg.JWTSecret))
		r.Get("/api/v1/projects/community", projectHandler.HandleListCommunity)
		r.Get("/api/v1/projects/{project_id}", projectHandler.HandleGet)
		r.Get("/api/v1/projects/{project_id}/timeline", projectHandler.HandleTimeline)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret))
		r.Get("/api/v1/auth/me", authHandler.HandleMe)

		r.Get("/api/v1/user/profile", userHandler.HandleGetProfile)
		r.Put("/api/v1/user/profile", userHandler.HandleUpdateProfile)
		r.Get("/api/v1/user/credits", userHandler.HandleGetCredits)
		r.Put("/api/v1/user/credits", userHandler.HandleSetCredits)
		r.Patch("/api/v1/user/credits/increment", userHandler.HandleIncrementCredits)
		r.Patch("/api/v1/user/credits/decrement", userHandler.HandleDecrementCredits)
		r.Patch("/api/v1/user/creation/increment", userHandler.HandleIncrementCreation)

		r.Get("/api/v1/projects", projectHandler.HandleList)
		r.Post("/api/v1/projects", projectHandler.HandleCreate)
		r.Put("/api/v1/projects/{project_id}", projectHandler.HandleUpdate)
		r.Patch("/api/v1/projects/{project_id}/publish", projectHandler.HandleTogglePublish)
		r.Post("/api/v1/projects/{project_id}/rollback", projectHandler.HandleRollback)
		r.Delete("/api/v1/projects/{project_id}", projectHandler.HandleDelete)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
