package main

import (
	"crypto/tls"
	"database/sql"
	stdlog "log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/username/tradejournal/src/config"
	"github.com/username/tradejournal/src/database"
	"github.com/username/tradejournal/src/handlers"
	"github.com/username/tradejournal/src/logger"
	"github.com/username/tradejournal/src/processors"
	"github.com/username/tradejournal/src/security"
	"github.com/username/tradejournal/src/services"
	"github.com/username/tradejournal/src/utils"
)

func proxyHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Forwarded-Proto") == "https" {
			r.URL.Scheme = "https"
			r.TLS = &tls.ConnectionState{}
		}
		next.ServeHTTP(w, r)
	})
}

func rateLimitMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				logger.FromContext(r.Context()).Warn("Rate limit exceeded", "path", r.URL.Path)
				utils.SendJSONError(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowedOrigins := make(map[string]bool, len(origins))
	for _, origin := range origins {
		allowedOrigins[origin] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if allowedOrigins[origin] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
				w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Requested-With, If-None-Match")
				w.Header().Set("Access-Control-Expose-Headers", "X-CSRF-Token, ETag, X-Request-ID")
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// newRouter wires services and handlers onto the chi router.
func newRouter(cfg *config.AppConfig, db *sql.DB) http.Handler {
	journalCache := services.NewJournalCache(cfg.CacheExpiration, cfg.CacheCleanupInterval)

	authService := security.NewAuthService(cfg.JWTSecret, cfg.AccessTokenExpiry)
	tradeProcessor := processors.NewTradeProcessor()
	summaryProcessor := processors.NewSummaryProcessor()

	uploadService := services.NewUploadService(db, tradeProcessor, journalCache, cfg.MaxUploadFiles)
	journalService := services.NewJournalService(db, summaryProcessor, journalCache)

	userHandler := handlers.NewUserHandler(db, authService, journalService)
	uploadHandler := handlers.NewUploadHandler(uploadService, cfg.MaxUploadSizeBytes, cfg.MaxUploadFiles)
	journalHandler := handlers.NewJournalHandler(journalService)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(proxyHeadersMiddleware)
	r.Use(corsMiddleware(cfg.AllowedOrigins))
	r.Use(rateLimitMiddleware(rate.NewLimiter(rate.Every(cfg.RateLimitEvery), cfg.RateLimitBurst)))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Trade journal backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/auth/csrf", handlers.GetCSRFToken(cfg.CSRFAuthKey))

		r.Group(func(r chi.Router) {
			r.Use(handlers.CSRFMiddleware(cfg.CSRFAuthKey))
			r.Post("/auth/login", userHandler.LoginUserHandler)
			r.Post("/auth/register", userHandler.RegisterUserHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(handlers.CSRFMiddleware(cfg.CSRFAuthKey))
			r.Use(userHandler.AuthMiddleware)

			r.Get("/auth/me", userHandler.GetMeHandler)
			r.Get("/user/has-data", userHandler.HandleCheckUserData)
			r.Post("/user/change-password", userHandler.ChangePasswordHandler)
			r.Post("/user/delete-account", userHandler.DeleteAccountHandler)

			r.Post("/upload", uploadHandler.HandleUpload)
			r.Post("/upload/preview", uploadHandler.HandlePreview)
			r.Get("/uploads", uploadHandler.HandleGetUploads)

			r.Get("/journal", journalHandler.HandleGetJournal)
			r.Get("/journal/summary", journalHandler.HandleGetSummary)

			r.Get("/trades", journalHandler.HandleGetTrades)
			r.Delete("/trades", journalHandler.HandleDeleteTrades)
			r.Get("/trades/lookup", journalHandler.HandleLookupTrade)
			r.Patch("/trades/{id}", journalHandler.HandleUpdateTrade)
			r.Delete("/trades/{id}", journalHandler.HandleDeleteTrade)

			r.Get("/trades/{id}/tags", journalHandler.HandleGetTags)
			r.Post("/trades/{id}/tags", journalHandler.HandleAddTag)
			r.Delete("/tags/{id}", journalHandler.HandleDeleteTag)

			r.Get("/trades/{id}/note", journalHandler.HandleGetNote)
			r.Put("/trades/{id}/note", journalHandler.HandleSaveNote)
			r.Delete("/notes/{id}", journalHandler.HandleDeleteNote)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			utils.SendJSONError(w, "not found", http.StatusNotFound)
			return
		}
		http.NotFound(w, r)
	})

	return r
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("Trade journal backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	if err := database.RunMigrations(database.DB); err != nil {
		stdlog.Fatalf("Failed to apply database migrations: %v", err)
	}

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      newRouter(config.Cfg, database.DB),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
