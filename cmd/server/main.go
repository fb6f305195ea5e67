package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"cybercell/internal/complaint"
	complainthandler "cybercell/internal/complaint/handler"
	"cybercell/internal/conversation"
	"cybercell/internal/evidence"
	"cybercell/internal/evidence/backup"
	"cybercell/internal/evidence/cas"
	"cybercell/internal/identifier"
	"cybercell/internal/jwtauth"
	"cybercell/internal/ledger"
	"cybercell/internal/ledger/outbox"
	"cybercell/internal/notification"
	notificationhandler "cybercell/internal/notification/handler"
	"cybercell/internal/platform/config"
	"cybercell/internal/platform/httpserver"
	"cybercell/internal/platform/logger"
	"cybercell/internal/platform/metrics"
	platformredis "cybercell/internal/platform/redis"
	"cybercell/internal/report"
	reporthandler "cybercell/internal/report/handler"
	httptransport "cybercell/internal/transport/http"
)

// main wires concrete clients explicitly so every fallback (noop ledger,
// in-memory store) is visible in one place. Business logic lives in the
// internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	checks := map[string]httptransport.HealthChecker{}

	// Record stores: postgres when configured, in-memory for development.
	var (
		complaintStore    complaint.Store
		evidenceStore     evidence.Store
		reportStore       report.Store
		notificationStore notification.Store
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		db.SetMaxOpenConns(25)
		db.SetConnMaxIdleTime(5 * time.Minute)
		complaintStore = complaint.NewPostgresStore(db)
		evidenceStore = evidence.NewPostgresStore(db)
		reportStore = report.NewPostgresStore(db)
		notificationStore = notification.NewPostgresStore(db)
		checks["postgres"] = httptransport.HealthCheckFunc(db.PingContext)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory record stores")
		complaintStore = complaint.NewInMemoryStore()
		evidenceStore = evidence.NewInMemoryStore()
		reportStore = report.NewInMemoryStore()
		notificationStore = notification.NewInMemoryStore()
	}
	notifications := notification.NewService(notificationStore, log)

	// Conversation store: redis when configured, in-memory otherwise.
	var conversations conversation.Store = conversation.NewInMemoryStore()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		conversations = conversation.NewRedisStore(redisClient)
		checks["redis"] = httptransport.HealthCheckFunc(redisClient.Health)
	}

	// Evidence stores: the CAS is required in production; without an
	// endpoint the in-memory store keeps development working end to end.
	var casStore cas.Store = cas.NewInMemoryStore()
	if cfg.CAS.Endpoint != "" {
		casStore = cas.NewClient(cfg.CAS)
	} else {
		log.Warn("CAS_ENDPOINT not set, using in-memory content store")
	}
	var backupStore backup.Store = backup.Noop{}
	if cfg.Backup.Endpoint != "" {
		objectStore, err := backup.New(cfg.Backup)
		if err != nil {
			log.Error("failed to build backup store", "error", err)
			os.Exit(1)
		}
		backupStore = objectStore
	}
	archiver := evidence.NewArchiver(casStore, backupStore,
		evidence.WithLogger(log),
		evidence.WithMetrics(m),
	)

	// Ledger mirrors default to noops so the service runs without either
	// chain being reachable.
	var public ledger.PublicNotifier = ledger.NoopPublic{}
	if cfg.PublicLedgerURL != "" {
		public = ledger.NewPublicClient(cfg.PublicLedgerURL, cfg.LedgerTimeout)
	}
	var consortium ledger.ConsortiumNotifier = ledger.NoopConsortium{}
	if cfg.ConsortiumLedgerURL != "" {
		consortium = ledger.NewConsortiumClient(cfg.ConsortiumLedgerURL, cfg.LedgerTimeout)
	}

	var retryQueue outbox.Outbox = outbox.NewInMemory()
	if len(cfg.KafkaBrokers) > 0 {
		kafkaOutbox, err := outbox.NewKafka(cfg.KafkaBrokers, cfg.OutboxTopic)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaOutbox.Close()
		retryQueue = kafkaOutbox
	}

	generator := identifier.New()
	complaints := complaint.NewService(
		complaintStore,
		evidenceStore,
		archiver,
		generator,
		public,
		consortium,
		conversations,
		complaint.WithLogger(log),
		complaint.WithMetrics(m),
		complaint.WithRetryQueue(retryQueue),
		complaint.WithLedgerTimeout(cfg.LedgerTimeout),
		complaint.WithNotifier(notifications),
	)
	reports := report.NewService(
		reportStore,
		complaintStore,
		generator,
		public,
		report.WithLogger(log),
		report.WithMetrics(m),
		report.WithRetryQueue(retryQueue),
		report.WithLedgerTimeout(cfg.LedgerTimeout),
		report.WithRegion(cfg.Region),
		report.WithNotifier(notifications),
	)

	jwtValidator := jwtauth.NewValidator(cfg.JWTSigningKey)
	router := httptransport.NewRouter(httptransport.Deps{
		Logger: log,
		Handlers: []httptransport.Registrar{
			complainthandler.New(complaints, log, m, jwtValidator, cfg.MaxUploadBytes),
			reporthandler.New(reports, log, m, jwtValidator),
			notificationhandler.New(notifications, log, m, jwtValidator),
		},
		Checks: checks,
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting cybercell coordinator", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdown(log, srv, complaints)
}

// shutdown stops accepting requests, then drains in-flight ledger mirrors so
// no accepted complaint loses its best-effort anchors to process exit.
func shutdown(log *slog.Logger, srv *http.Server, complaints *complaint.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if err := complaints.Close(ctx); err != nil {
		log.Error("mirror drain interrupted", "error", err)
	}
	log.Info("shutdown complete")
}
