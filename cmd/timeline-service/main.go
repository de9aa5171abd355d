package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stormarchive/timeline-service/internal/cache"
	"github.com/stormarchive/timeline-service/internal/config"
	adminsHandlers "github.com/stormarchive/timeline-service/internal/http/handlers/admins"
	"github.com/stormarchive/timeline-service/internal/http/handlers/auth"
	"github.com/stormarchive/timeline-service/internal/http/handlers/events"
	mediaHandlers "github.com/stormarchive/timeline-service/internal/http/handlers/media"
	"github.com/stormarchive/timeline-service/internal/http/handlers/site"
	"github.com/stormarchive/timeline-service/internal/http/middleware"
	mediaService "github.com/stormarchive/timeline-service/internal/services/media"
	"github.com/stormarchive/timeline-service/internal/storage/postgres"
)

func main() {
	// load config
	cfg := config.MustLoad()

	// database setup
	store, err := postgres.NewPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	slog.Info("Connected to Postgres database")

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Address,
		DB:   cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	media, err := mediaService.NewService(cfg)
	if err != nil {
		log.Fatal("Failed to initialize media storage:", err)
	}

	timeline := cache.NewTimelineCache(store, redisClient)
	mediaH := mediaHandlers.NewMediaHandlers(store, media, timeline)
	loginLimit := middleware.NewLoginRateLimit(redisClient, cfg.Auth.LoginRateLimit)
	authMw := middleware.AuthMiddleware(cfg.Auth.JWTSecret)

	// setup server
	router := http.NewServeMux()

	// public site
	router.HandleFunc("GET /timeline", site.Timeline(timeline))
	router.HandleFunc("GET /timeline/years", site.Years(timeline))
	router.HandleFunc("GET /about", site.About(store))
	router.HandleFunc("GET /team", site.Team(store))

	// auth
	router.Handle("POST /login", loginLimit.Middleware(auth.Login(store, cfg)))
	router.HandleFunc("POST /logout", auth.Logout())

	// admin surface
	router.Handle("POST /events", authMw(events.Create(store, timeline)))
	router.Handle("GET /events/{id}", authMw(events.Get(store)))
	router.Handle("PUT /events/{id}", authMw(events.Update(store, timeline)))
	router.Handle("DELETE /events/{id}", authMw(events.Delete(store, timeline, media)))

	router.Handle("GET /events/{id}/media", authMw(mediaH.List()))
	router.Handle("POST /events/{id}/media", authMw(mediaH.Upload()))
	router.Handle("PATCH /media/{id}", authMw(mediaH.UpdateCaption()))
	router.Handle("DELETE /events/{id}/media/{media_id}", authMw(mediaH.Delete()))

	router.Handle("GET /admins", authMw(adminsHandlers.List(store)))
	router.Handle("POST /admins", authMw(adminsHandlers.Create(store)))
	router.Handle("PUT /admins/{id}", authMw(adminsHandlers.Update(store)))
	router.Handle("DELETE /admins/{id}", authMw(adminsHandlers.Delete(store)))
	router.Handle("GET /security-questions", authMw(adminsHandlers.SecurityQuestions(store)))

	server := http.Server{
		Addr:    cfg.HTTPServer.Address,
		Handler: router,
	}

	log.Println("server started on", cfg.HTTPServer.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %s", err)
		}
	}()

	<-done

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = server.Shutdown(ctx)
	if err != nil {
		slog.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
		return
	}

	slog.Info("Server stopped")
}
