package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/CareO-HQ/careo-sub007/internal/config"
	"github.com/CareO-HQ/careo-sub007/internal/database"
	httpapi "github.com/CareO-HQ/careo-sub007/internal/http"
	"github.com/CareO-HQ/careo-sub007/internal/logger"
	"github.com/CareO-HQ/careo-sub007/internal/pdf"
	"github.com/CareO-HQ/careo-sub007/internal/repository"
	"github.com/CareO-HQ/careo-sub007/internal/service"
	"github.com/CareO-HQ/careo-sub007/internal/store"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "carehome-data")
	if err != nil {
		log, _ = logger.NewLoggerWithDefaults()
	}
	defer log.Sync()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	var kv store.KV = store.NewRedisKV(redisClient)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Warn("Redis unavailable, checklist state held in memory", zap.Error(err))
		kv = store.NewMemoryKV()
	}

	// Optional DB backing. When the DB is disabled or unreachable the service
	// runs on memory repos so local dev and integration tests need no Postgres.
	var db *sql.DB
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			log.Info("DB enabled for carehome-data")
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory repos", zap.Error(err))
		}
	}

	var (
		templatesRepo     repository.TemplatesRepository
		responsesRepo     repository.ResponsesRepository
		plansRepo         repository.ActionPlansRepository
		residentsRepo     repository.ResidentsRepository
		organizationsRepo repository.OrganizationsRepository
		assessmentsRepo   repository.AssessmentsRepository
		incidentsRepo     repository.IncidentsRepository
		jobsRepo          repository.PDFJobsRepository
	)
	if db != nil {
		templatesRepo = repository.NewPostgresTemplatesRepository(db)
		responsesRepo = repository.NewPostgresResponsesRepository(db)
		plansRepo = repository.NewPostgresActionPlansRepository(db)
		residentsRepo = repository.NewPostgresResidentsRepository(db)
		organizationsRepo = repository.NewPostgresOrganizationsRepository(db)
		assessmentsRepo = repository.NewPostgresAssessmentsRepository(db)
		incidentsRepo = repository.NewPostgresIncidentsRepository(db)
		jobsRepo = repository.NewPostgresPDFJobsRepository(db)
	} else {
		templatesRepo = repository.NewMemoryTemplatesRepo()
		auditRepo := repository.NewMemoryAuditRepo()
		responsesRepo = auditRepo
		plansRepo = auditRepo
		residentsRepo = repository.NewMemoryResidentsRepo()
		organizationsRepo = repository.NewMemoryOrganizationsRepo()
		assessmentsRepo = repository.NewMemoryAssessmentsRepo()
		incidentsRepo = repository.NewMemoryIncidentsRepo()
		jobsRepo = repository.NewMemoryPDFJobsRepo()
	}

	files, err := store.NewDiskFileStore(cfg.PDF.StorageDir, cfg.PDF.BaseURL)
	if err != nil {
		log.Fatal("Cannot create PDF storage directory", zap.Error(err))
	}

	pdfEnabled := cfg.PDF.Enabled
	var renderer pdf.Renderer
	if pdfEnabled {
		r, err := pdf.NewChromeRenderer(cfg.PDF.ChromeBin)
		if err != nil {
			log.Warn("Chromium unavailable, PDF generation disabled", zap.Error(err))
			pdfEnabled = false
		} else {
			renderer = r
		}
	}

	notifier := service.NewWebhookNotifier(cfg.Notify.WebhookURL, log)
	auditSvc := service.NewAuditService(templatesRepo, responsesRepo, plansRepo, residentsRepo, jobsRepo, notifier, pdfEnabled, log)

	router := httpapi.NewRouter(log)
	router.RegisterAuditRoutes(httpapi.NewAuditHandler(auditSvc, templatesRepo, log))
	router.RegisterChecklistRoutes(httpapi.NewChecklistHandler(kv, log))
	router.RegisterPDFRoutes(httpapi.NewPDFHandler(renderer, assessmentsRepo, cfg.PDF.AuthToken, cfg.Env, log))
	router.RegisterAdminRoutes(
		httpapi.NewResidentHandler(residentsRepo, log),
		httpapi.NewIncidentHandler(incidentsRepo, log),
		httpapi.NewAssessmentHandler(assessmentsRepo, log),
		httpapi.NewOrganizationHandler(organizationsRepo, log),
	)
	router.RegisterFileRoutes(httpapi.NewFilesHandler(files, log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if pdfEnabled {
		worker := service.NewPDFWorker(jobsRepo, responsesRepo, templatesRepo, renderer, files, log)
		go worker.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case <-errCh:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if renderer != nil {
		_ = renderer.Close()
	}
	_ = redisClient.Close()
	if db != nil {
		_ = db.Close()
	}
}
