package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/jobwatch/jobwatch/internal/config"
	"github.com/jobwatch/jobwatch/internal/database"
	"github.com/jobwatch/jobwatch/internal/handlers"
	"github.com/jobwatch/jobwatch/internal/logger"
	"github.com/jobwatch/jobwatch/internal/middleware"
	"github.com/jobwatch/jobwatch/internal/scheduler"
	"github.com/jobwatch/jobwatch/internal/services/checklist"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("scheduler_timezone", cfg.SchedulerTimezone),
		zap.String("scheduler_cron", cfg.SchedulerCron),
	)

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	if cfg.AutoMigrate {
		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := db.Migrate(migrateCtx); err != nil {
			cancel()
			zapLogger.Fatal("failed_to_migrate_schema", zap.Error(err))
		}
		cancel()
		zapLogger.Info("schema_migrated")
	}

	// Initialize repositories
	companyRepo := database.NewCompanyRepository(db)
	tagRepo := database.NewTagRepository(db)
	checklistRepo := database.NewChecklistRepository(db)

	// Initialize services
	checklistService := checklist.New(checklistRepo, zapLogger)

	zone := cfg.SchedulerLocation()

	// Initialize handlers
	companyHandler := handlers.NewCompanyHandler(companyRepo)
	tagHandler := handlers.NewTagHandler(tagRepo)
	checklistHandler := handlers.NewChecklistHandler(checklistService, zone)
	metaHandler := handlers.NewMetaHandler(companyRepo)
	healthChecker := handlers.NewHealthChecker(db)

	rateLimitMW, err := middleware.RateLimit(cfg.RateLimit, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	corsMW := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	// Setup router
	r := mux.NewRouter()

	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(corsMW.Handler)
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.Recover(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Health checks stay outside the rate limit; /api/health is registered
	// on the root router so the apiRouter middleware never sees it
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/api/health", healthChecker.HealthCheck).Methods("GET")

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(rateLimitMW)

	companyHandler.RegisterRoutes(apiRouter.PathPrefix("/companies").Subrouter())
	tagHandler.RegisterRoutes(apiRouter.PathPrefix("/tags").Subrouter())
	checklistHandler.RegisterRoutes(apiRouter.PathPrefix("/checklist").Subrouter())
	metaHandler.RegisterRoutes(apiRouter.PathPrefix("/meta").Subrouter())

	// Catch-all OPTIONS handler so preflight requests get a response even
	// on routes that don't register the method themselves
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// Scheduler: daily auto-submit plus one catch-up pass for the day the
	// process may have been down
	sched := scheduler.New(checklistService, cfg.SchedulerCron, zone, zapLogger)
	if err := sched.Start(); err != nil {
		zapLogger.Fatal("failed_to_start_scheduler", zap.Error(err))
	}
	if cfg.SchedulerCatchup {
		go sched.CatchUp()
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}
