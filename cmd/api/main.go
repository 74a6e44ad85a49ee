package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/echo-era/echo-era-api/internal/config"
	"github.com/echo-era/echo-era-api/internal/domain/admin"
	"github.com/echo-era/echo-era-api/internal/domain/auth"
	"github.com/echo-era/echo-era-api/internal/domain/chat"
	"github.com/echo-era/echo-era-api/internal/domain/message"
	"github.com/echo-era/echo-era-api/internal/domain/moderation"
	"github.com/echo-era/echo-era-api/internal/domain/social"
	"github.com/echo-era/echo-era-api/internal/domain/user"
	"github.com/echo-era/echo-era-api/internal/middleware"
	"github.com/echo-era/echo-era-api/internal/pkg/database"
	"github.com/echo-era/echo-era-api/internal/pkg/email"
	"github.com/echo-era/echo-era-api/internal/pkg/jwt"
	"github.com/echo-era/echo-era-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Echo Era API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	emailService := email.NewService(email.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.EmailFrom,
		FromName:  cfg.EmailFromName,
	})
	defer emailService.Close()

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	socialRepo := social.NewRepository(db)
	chatRepo := chat.NewRepository(db)
	messageRepo := message.NewRepository(db)
	moderationRepo := moderation.NewRepository(db)

	// ---------- Services ----------
	userService := user.NewService(userRepo)
	authService := auth.NewService(userRepo, jwtService, redis, emailService)
	socialService := social.NewService(socialRepo, userRepo)
	chatService := chat.NewService(chatRepo, userRepo, socialService)
	messageService := message.NewService(messageRepo, userRepo, chatService, socialService)
	moderationService := moderation.NewService(moderationRepo, userRepo, messageService)
	adminService := admin.NewService(userRepo, chatService, moderationService)

	// Cross-domain wiring that would otherwise cycle packages
	socialService.SetChatCreator(chatService)
	socialService.SetReportSink(moderationService)
	messageService.SetReportSink(moderationService)
	userService.RegisterCleaner(socialService)
	userService.RegisterCleaner(chatService)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	userHandler := user.NewHandler(userService)
	socialHandler := social.NewHandler(socialService)
	chatHandler := chat.NewHandler(chatService)
	messageHandler := message.NewHandler(messageService)
	moderationHandler := moderation.NewHandler(moderationService)
	adminHandler := admin.NewHandler(adminService)

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes(authMiddleware))
		r.Mount("/users", userHandler.Routes(authMiddleware))
		r.Mount("/social", socialHandler.Routes(authMiddleware))
		r.Mount("/chats", chatHandler.Routes(authMiddleware))
		r.Mount("/messages", messageHandler.Routes(authMiddleware))
		r.Mount("/moderation", moderationHandler.Routes(authMiddleware, middleware.RequireModerator()))
		r.Mount("/admin", adminHandler.Routes(authMiddleware, middleware.RequireAdmin()))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}
}
