package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JIATech/SIGVIP-sub002/internal/audit"
	"github.com/JIATech/SIGVIP-sub002/internal/authorization"
	authorizationhandler "github.com/JIATech/SIGVIP-sub002/internal/authorization/handler"
	"github.com/JIATech/SIGVIP-sub002/internal/platform/config"
	"github.com/JIATech/SIGVIP-sub002/internal/platform/httpserver"
	"github.com/JIATech/SIGVIP-sub002/internal/platform/kafka"
	"github.com/JIATech/SIGVIP-sub002/internal/platform/logger"
	"github.com/JIATech/SIGVIP-sub002/internal/platform/metrics"
	"github.com/JIATech/SIGVIP-sub002/internal/platform/postgres"
	"github.com/JIATech/SIGVIP-sub002/internal/platform/redis"
	"github.com/JIATech/SIGVIP-sub002/internal/restriction"
	restrictionhandler "github.com/JIATech/SIGVIP-sub002/internal/restriction/handler"
	"github.com/JIATech/SIGVIP-sub002/internal/roster"
	rosterhandler "github.com/JIATech/SIGVIP-sub002/internal/roster/handler"
	"github.com/JIATech/SIGVIP-sub002/internal/stafftoken"
	httptransport "github.com/JIATech/SIGVIP-sub002/internal/transport/http"
	"github.com/JIATech/SIGVIP-sub002/internal/visit"
	visithandler "github.com/JIATech/SIGVIP-sub002/internal/visit/handler"
	visitmetrics "github.com/JIATech/SIGVIP-sub002/internal/visit/metrics"
)

const (
	auditInboxSize   = 1024
	auditHistorySize = 1024
	auditPartitions  = 3
	shutdownTimeout  = 10 * time.Second
	tokenIssuer      = "sigvip-sso"
	tokenAudience    = "sigvip-engine"
)

// main wires stores, services, the audit pipeline and the HTTP router, then
// runs the server until interrupted. Business logic lives in the internal
// services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("sigvip engine exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.PostgresURL)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	if db != nil {
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var (
		rosterStore roster.Store
		authStore   authorization.Store
	)
	if db != nil {
		rosterStore = roster.NewPostgresStore(db)
		authStore = authorization.NewPostgresStore(db)
	} else {
		rosterStore = roster.NewInMemoryStore()
		authStore = authorization.NewInMemoryStore()
	}

	if cfg.SeedDemo {
		if db != nil {
			log.Warn("SIGVIP_SEED_DEMO ignored: demo roster only seeds in-memory stores")
		} else if _, err := roster.SeedDemo(ctx, rosterStore); err != nil {
			return fmt.Errorf("seed demo roster: %w", err)
		}
	}

	ledger, err := newLedger(cfg, db, redisClient)
	if err != nil {
		return err
	}

	inbox := make(chan audit.Event, auditInboxSize)
	auditStore := audit.NewInMemoryStore(auditHistorySize)
	sinks := audit.MultiSink{auditStore}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(ctx, cfg.KafkaBrokers, log)
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer producer.Close()
		if err := producer.EnsureTopic(ctx, cfg.AuditTopic, auditPartitions); err != nil {
			return fmt.Errorf("ensure audit topic: %w", err)
		}
		sinks = append(sinks, audit.NewKafkaSink(producer, cfg.AuditTopic))
	}

	publisher := audit.NewPublisher(inbox, log)
	worker := audit.NewWorker(sinks, inbox, log)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := worker.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	rosterService := roster.NewService(rosterStore,
		roster.WithLogger(log),
		roster.WithAuditPublisher(publisher))
	authService := authorization.NewService(authStore, rosterStore,
		authorization.WithLogger(log),
		authorization.WithAuditPublisher(publisher))
	restrictionService := restriction.NewService(restriction.NewIndex(), rosterStore,
		restriction.WithLogger(log),
		restriction.WithAuditPublisher(publisher))
	scheduler := visit.NewScheduler(rosterStore, authService, restrictionService, ledger,
		visit.WithLogger(log),
		visit.WithMetrics(visitmetrics.New()),
		visit.WithAuditPublisher(publisher))

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Metrics:        metrics.New(),
		StaffValidator: stafftoken.New(cfg.JWTSigningKey, tokenIssuer, tokenAudience),
		Roster:         rosterhandler.New(rosterService, log),
		Authorizations: authorizationhandler.New(authService, log),
		Restrictions:   restrictionhandler.New(restrictionService, log),
		Visits:         visithandler.New(scheduler, log),
		AuditStore:     auditStore,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := httpserver.New(cfg.Addr, router)
	serverErr := make(chan error, 1)
	go func() {
		log.Info("sigvip engine listening",
			"addr", cfg.Addr,
			"ledger_backend", cfg.LedgerBackend,
			"postgres", db != nil,
			"kafka", len(cfg.KafkaBrokers) > 0,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		stopWorker()
		<-workerDone
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	// The worker drains buffered audit events before exiting, so stop it
	// only after in-flight requests finished emitting.
	stopWorker()
	<-workerDone
	return nil
}

// newLedger picks the visit ledger implementation from configuration.
func newLedger(cfg config.Config, db *sql.DB, redisClient *redis.Client) (visit.Ledger, error) {
	switch cfg.LedgerBackend {
	case "", "memory":
		return visit.NewInMemoryLedger(), nil
	case "postgres":
		if db == nil {
			return nil, errors.New("ledger backend postgres requires SIGVIP_POSTGRES_URL")
		}
		return visit.NewPostgresLedger(db), nil
	case "redis":
		if redisClient == nil {
			return nil, errors.New("ledger backend redis requires SIGVIP_REDIS_URL")
		}
		return visit.NewRedisLedger(redisClient.Client), nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.LedgerBackend)
	}
}
