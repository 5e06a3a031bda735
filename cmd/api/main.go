package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/adiwira-dev/sniffgate/internal/application"
	appanalysis "github.com/adiwira-dev/sniffgate/internal/application/analysis"
	"github.com/adiwira-dev/sniffgate/internal/config"
	domain "github.com/adiwira-dev/sniffgate/internal/domain/analysis"
	"github.com/adiwira-dev/sniffgate/internal/domain/findings"
	"github.com/adiwira-dev/sniffgate/internal/infra/db/memory"
	mysqlp "github.com/adiwira-dev/sniffgate/internal/infra/db/mysql"
	postgresp "github.com/adiwira-dev/sniffgate/internal/infra/db/postgres"
	"github.com/adiwira-dev/sniffgate/internal/infra/detector/aiengine"
	"github.com/adiwira-dev/sniffgate/internal/infra/detector/openaidet"
	"github.com/adiwira-dev/sniffgate/internal/infra/detector/staticengine"
	"github.com/adiwira-dev/sniffgate/internal/infra/httpserver"
	"github.com/adiwira-dev/sniffgate/internal/infra/report"
	minioStore "github.com/adiwira-dev/sniffgate/internal/infra/storage"
	"github.com/adiwira-dev/sniffgate/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		logrus.Fatalf("config load error: %v", err)
	}

	middleware.InitLogger(cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()

	// taxonomy: file when configured, built-in table otherwise
	taxonomy := findings.DefaultTaxonomy()
	if cfg.Aggregation.TaxonomyPath != "" {
		taxonomy, err = findings.LoadTaxonomy(cfg.Aggregation.TaxonomyPath)
		if err != nil {
			logrus.Fatalf("taxonomy load error: %v", err)
		}
	}

	// history repository per configured driver; in-memory when none
	var repo domain.Repository = memory.NewAnalysisRepository(0)
	checkers := map[string]middleware.HealthChecker{}
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			logrus.Fatalf("mysql connect error: %v", err)
		}
		defer db.Close()
		repo = mysqlp.NewAnalysisRepository(db)
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			logrus.Fatalf("postgres connect error: %v", err)
		}
		defer db.Close()
		repo = postgresp.NewAnalysisRepository(db)
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	case "":
		logrus.Info("no database configured, running with in-memory history")
	default:
		logrus.Fatalf("unknown database driver: %s", cfg.Database.Driver)
	}

	// detectors
	static := staticengine.New(cfg.Backends.Static.BaseURL, cfg.Backends.Static.Timeout())
	checkers["static"] = &middleware.EndpointHealthChecker{URL: cfg.Backends.Static.BaseURL + "/health"}

	var ai findings.Detector
	if cfg.Backends.AI.Mode == "openai" {
		ai = openaidet.NewClient(cfg.Backends.AI.APIKey, cfg.Backends.AI.Model)
	} else {
		ai = aiengine.New(cfg.Backends.AI.BaseURL, cfg.Backends.AI.Timeout())
		checkers["ai"] = &middleware.EndpointHealthChecker{URL: cfg.Backends.AI.BaseURL + "/health"}
	}

	// report collaborator (optional)
	var reports domain.ReportPublisher
	if cfg.Report.BaseURL != "" {
		reports = report.New(cfg.Report.BaseURL, cfg.ReportTimeout())
	}

	// result artifact store (optional)
	var artifacts domain.ArtifactStore
	if cfg.Minio.Endpoint != "" {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			logrus.Fatalf("minio init error: %v", err)
		}
		artifacts = store
	}

	svc := &appanalysis.Service{
		Detectors: []findings.Detector{static, ai},
		Budgets: map[findings.Backend]time.Duration{
			findings.BackendStatic: cfg.Backends.Static.Timeout(),
			findings.BackendAI:     cfg.Backends.AI.Timeout(),
		},
		Aggregator: &appanalysis.Aggregator{
			Taxonomy:        taxonomy,
			MinOverlapLines: cfg.Aggregation.OverlapLines,
		},
		Repo:      repo,
		Reports:   reports,
		Artifacts: artifacts,
		Clock:     application.SystemClock{},
		Languages: cfg.Languages,
	}

	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	if cfg.RateLimit.Capacity > 0 {
		mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))
	}
	mux.Mount("/", httpserver.NewRouter(svc, cfg.Server.CORSOrigins, checkers))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logrus.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logrus.Errorf("shutdown error: %v", err)
	}
}
