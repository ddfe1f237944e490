package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"flm/internal/domain/application"
	"flm/internal/domain/audit"
	"flm/internal/domain/auth"
	"flm/internal/domain/freelancer"
	"flm/internal/domain/notifications"
	"flm/internal/domain/payment"
	"flm/internal/domain/performance"
	"flm/internal/domain/project"
	"flm/internal/domain/reports"
	"flm/internal/domain/settings"
	"flm/internal/domain/tiering"
	"flm/internal/platform/config"
	"flm/internal/platform/crypto"
	"flm/internal/platform/db"
	"flm/internal/platform/email"
	"flm/internal/platform/jobs"
	applicationshandler "flm/internal/transport/http/handlers/applications"
	authhandler "flm/internal/transport/http/handlers/auth"
	freelancershandler "flm/internal/transport/http/handlers/freelancers"
	notificationshandler "flm/internal/transport/http/handlers/notifications"
	paymentshandler "flm/internal/transport/http/handlers/payments"
	performancehandler "flm/internal/transport/http/handlers/performance"
	projectshandler "flm/internal/transport/http/handlers/projects"
	reportshandler "flm/internal/transport/http/handlers/reports"
	tieringhandler "flm/internal/transport/http/handlers/tiering"
	"flm/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	app, err := New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	log.Printf("server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// New wires the full application. Migrations and seeding run here when
// enabled so a fresh database is usable immediately.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, migrationsDir()); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	cipher, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("encryption key: %w", err)
	}

	mailer := email.New(cfg)
	var intakeMailer application.Mailer
	if cfg.EmailEnabled {
		intakeMailer = email.NewIntakeMailer(mailer)
	}

	authStore := auth.NewStore(pool)
	authSvc := auth.NewService(authStore)
	settingsStore := settings.NewStore(pool)
	auditSvc := audit.New(pool)
	notifSvc := notifications.New(notifications.NewStore(pool), mailer)

	freelancerSvc := freelancer.NewService(freelancer.NewStore(pool), cipher)
	applicationSvc := application.NewService(application.NewStore(pool), intakeMailer, authSvc)
	projectSvc := project.NewService(project.NewStore(pool))
	performanceSvc := performance.NewService(performance.NewStore(pool), notifSvc)
	tieringSvc := tiering.NewService(tiering.NewStore(pool), settingsStore)
	paymentSvc := payment.NewService(payment.NewStore(pool), settingsStore)
	reportsSvc := reports.NewService(reports.NewStore(pool))

	jobsSvc := jobs.New(pool, cfg, tieringSvc)
	jobsSvc.Start(ctx)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authSvc, freelancerSvc, cfg.JWTSecret)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)
		r.Post("/auth/refresh", authHandler.HandleRefresh)
		r.Post("/auth/request-reset", authHandler.HandleRequestReset)
		r.Post("/auth/reset", authHandler.HandleResetPassword)
		r.Post("/auth/change-password", authHandler.HandleChangePassword)
		r.Get("/me", authHandler.HandleMe)

		applicationsHandler := applicationshandler.NewHandler(applicationSvc, auditSvc, authStore, cfg.AllowPublicApply)
		applicationsHandler.RegisterRoutes(r)

		freelancersHandler := freelancershandler.NewHandler(freelancerSvc, auditSvc, authStore)
		freelancersHandler.RegisterRoutes(r)

		projectsHandler := projectshandler.NewHandler(projectSvc, auditSvc, authStore)
		projectsHandler.RegisterRoutes(r)

		performanceHandler := performancehandler.NewHandler(performanceSvc, freelancerSvc, authStore)
		performanceHandler.RegisterRoutes(r)

		tieringHandler := tieringhandler.NewHandler(tieringSvc, jobsSvc, auditSvc, authStore)
		tieringHandler.RegisterRoutes(r)

		paymentsHandler := paymentshandler.NewHandler(paymentSvc, freelancerSvc, auditSvc, authStore)
		paymentsHandler.RegisterRoutes(r)

		notificationsHandler := notificationshandler.NewHandler(notifSvc)
		notificationsHandler.RegisterRoutes(r)

		reportsHandler := reportshandler.NewHandler(reportsSvc, auditSvc, authStore)
		reportsHandler.RegisterRoutes(r)
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	return &App{Config: cfg, DB: pool, Router: router}, nil
}

// migrationsDir walks up from the working directory so tests run from a
// package directory still find the repo-level migrations.
func migrationsDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "migrations"
	}
	for {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "migrations"
		}
		dir = parent
	}
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
