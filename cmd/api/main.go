package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/vtarasov/blog-service/internal/config"
	"github.com/vtarasov/blog-service/internal/handler"
	"github.com/vtarasov/blog-service/internal/integrations/google"
	"github.com/vtarasov/blog-service/internal/middleware"
	"github.com/vtarasov/blog-service/internal/repository"
	"github.com/vtarasov/blog-service/internal/repository/inmemory"
	"github.com/vtarasov/blog-service/internal/scheduler"
	"github.com/vtarasov/blog-service/internal/service"
	"github.com/vtarasov/blog-service/internal/token"
	"github.com/vtarasov/blog-service/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	_ = godotenv.Load()
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize storage
	storageType := flag.String("storage", "postgres", "Storage type (postgres or memory)")
	flag.Parse()

	var store service.Store
	if *storageType == "memory" {
		logger.Info("Using in-memory storage")
		store = inmemory.New()
	} else {
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}
		store = repository.NewRepository(db)
	}

	// Initialize layers
	tokens := token.NewManager(cfg.JWTSecret, token.DefaultTTL)
	var mailer service.Mailer
	if cfg.EmailEnabled() {
		mailer = email.NewSender(cfg, logger)
	}
	svc := service.NewService(store, logger, tokens, mailer)
	h := handler.NewHandler(svc, logger, cfg)

	// Scheduled publishing
	sched, err := scheduler.NewScheduler(svc, logger)
	if err != nil {
		logger.Fatalf("Failed to init scheduler: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Setup router
	r := mux.NewRouter()
	auth := middleware.AuthMiddleware(tokens, store, logger)
	optionalAuth := middleware.OptionalAuthMiddleware(tokens, store)
	admin := middleware.AdminMiddleware(tokens, store, logger)

	// Public routes
	r.HandleFunc("/", h.Health).Methods("GET")
	r.HandleFunc("/feed.xml", h.Feed).Methods("GET")
	r.HandleFunc("/api/auth/register", h.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", h.Login).Methods("POST")
	r.HandleFunc("/api/auth/user/{id}", h.GetUser).Methods("GET")
	r.Handle("/api/posts", optionalAuth(http.HandlerFunc(h.ListPosts))).Methods("GET")
	r.Handle("/api/posts/{id}", optionalAuth(http.HandlerFunc(h.GetPost))).Methods("GET")
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	// External login
	if cfg.GoogleEnabled() {
		googleClient := google.NewClient(cfg, svc, logger)
		r.HandleFunc("/api/auth/google", googleClient.Login).Methods("GET")
		r.HandleFunc("/api/auth/google/callback", googleClient.Callback).Methods("GET")
	}

	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(auth)
	authRouter.HandleFunc("/api/auth", h.CurrentUser).Methods("GET")
	authRouter.HandleFunc("/api/auth/profile", h.UpdateProfile).Methods("PUT")
	authRouter.HandleFunc("/api/posts", h.CreatePost).Methods("POST")
	authRouter.HandleFunc("/api/posts/{id}", h.UpdatePost).Methods("PUT")
	authRouter.HandleFunc("/api/posts/{id}", h.DeletePost).Methods("DELETE")
	authRouter.HandleFunc("/api/posts/{id}/like", h.ToggleLike).Methods("PATCH")
	authRouter.HandleFunc("/api/posts/{id}/comments", h.AddComment).Methods("POST")
	authRouter.HandleFunc("/api/posts/{id}/comments/{commentID}", h.DeleteComment).Methods("DELETE")
	authRouter.HandleFunc("/api/upload", h.Upload).Methods("POST")

	// Admin routes
	adminRouter := r.PathPrefix("/").Subrouter()
	adminRouter.Use(admin)
	adminRouter.HandleFunc("/api/admin/users", h.AdminListUsers).Methods("GET")
	adminRouter.HandleFunc("/api/admin/users/{id}", h.AdminDeleteUser).Methods("DELETE")
	adminRouter.HandleFunc("/api/admin/posts", h.AdminListPosts).Methods("GET")
	adminRouter.HandleFunc("/api/admin/posts/{id}", h.AdminDeletePost).Methods("DELETE")
	adminRouter.HandleFunc("/api/admin/make-admin", h.MakeAdmin).Methods("POST")
	adminRouter.HandleFunc("/api/analytics/stats", h.Stats).Methods("GET")
	adminRouter.HandleFunc("/api/analytics/recent-activity", h.RecentActivity).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
