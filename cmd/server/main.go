package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	accesshandler "payout/internal/access/handler"
	accessservice "payout/internal/access/service"
	"payout/internal/epoch"
	epochhandler "payout/internal/epoch/handler"
	"payout/internal/funding/deposits"
	fundinghandler "payout/internal/funding/handler"
	fundingservice "payout/internal/funding/service"
	jwttoken "payout/internal/jwt_token"
	"payout/internal/payout"
	payouthandler "payout/internal/payout/handler"
	"payout/internal/platform/config"
	"payout/internal/platform/httpserver"
	"payout/internal/platform/kafka"
	"payout/internal/platform/kafka/consumer"
	"payout/internal/platform/kafka/producer"
	"payout/internal/platform/logger"
	"payout/internal/platform/metrics"
	"payout/internal/platform/postgres"
	platformredis "payout/internal/platform/redis"
	projectshandler "payout/internal/projects/handler"
	projectsservice "payout/internal/projects/service"
	settingshandler "payout/internal/settings/handler"
	settingsservice "payout/internal/settings/service"
	httptransport "payout/internal/transport/http"
	withdrawalhandler "payout/internal/withdrawal/handler"
	withdrawalmetrics "payout/internal/withdrawal/metrics"
	withdrawalservice "payout/internal/withdrawal/service"
	"payout/pkg/domain"
	"payout/pkg/platform/audit"
	auditconsumer "payout/pkg/platform/audit/consumer"
	"payout/pkg/platform/audit/publishers/compliance"
	"payout/pkg/platform/audit/publishers/security"
	auditworker "payout/pkg/platform/audit/worker"
)

var auditCategories = []audit.EventCategory{
	audit.CategoryCompliance,
	audit.CategorySecurity,
	audit.CategoryOperations,
}

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("payout ledger stopped", "error", err)
		os.Exit(1)
	}
}

// run wires the process and blocks until ctx is cancelled or a component
// fails. Without DATABASE_URL, REDIS_URL or KAFKA_BROKERS the matching
// in-process implementation is used instead.
func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	checks := map[string]httptransport.HealthCheck{}

	start := domain.Period(cfg.Ledger.StartPeriod)
	counter := epoch.NewCounter(start)
	store := newMemoryStorage(counter)
	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		store = newPostgresStorage(db, cfg.Database.TxTimeout)
		checks["postgres"] = db.PingContext
		log.Info("using postgres storage")
	}

	var oracle epoch.Advancer = counter
	rdb, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	switch {
	case rdb != nil:
		defer rdb.Close()
		oracle = epoch.NewRedisOracle(rdb.Client, cfg.Redis.EpochKey)
		checks["redis"] = rdb.Health
		log.Info("using redis epoch oracle", "key", cfg.Redis.EpochKey)
	case db != nil:
		pgOracle := epoch.NewPostgresOracle(db)
		if err := pgOracle.Seed(ctx, start); err != nil {
			return err
		}
		oracle = pgOracle
		log.Info("using postgres epoch oracle")
	}

	var (
		transferer payout.Transferer = payout.NewRecorder()
		prod       *producer.Producer
	)
	if len(cfg.Kafka.Brokers) > 0 {
		prod, err = producer.New(cfg.Kafka.Brokers, cfg.Kafka.ClientID, producer.WithLogger(log))
		if err != nil {
			return err
		}
		defer prod.Close()
		topics := []string{cfg.Kafka.PayoutTopic, cfg.Kafka.DepositsTopic}
		for _, c := range auditCategories {
			topics = append(topics, cfg.Kafka.TopicPrefix+"."+string(c))
		}
		if err := kafka.EnsureTopics(ctx, prod.Client(), cfg.Kafka.Partitions, cfg.Kafka.Replication, topics...); err != nil {
			return err
		}
		transferer = payout.NewKafkaTransferer(prod, cfg.Kafka.PayoutTopic)
		checks["kafka"] = prod.Health
		log.Info("using kafka transport", "brokers", cfg.Kafka.Brokers)
	}

	auditor := compliance.New(store.audit,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliance.NewMetrics()),
	)
	securityOpts := []security.Option{security.WithLogger(log)}
	if store.memory {
		securityOpts = append(securityOpts, security.WithTxRunner(store.runner))
	}
	denials := security.New(store.audit, securityOpts...)

	roles, err := accessservice.New(store.roles, store.runner,
		accessservice.WithLogger(log),
		accessservice.WithAuditPublisher(auditor),
		accessservice.WithSecurityPublisher(denials),
	)
	if err != nil {
		return err
	}
	settings, err := settingsservice.New(store.settings, roles, store.runner,
		settingsservice.WithLogger(log),
		settingsservice.WithAuditPublisher(auditor),
		settingsservice.WithSecurityPublisher(denials),
	)
	if err != nil {
		return err
	}
	if err := seed(ctx, cfg.Ledger, roles, settings); err != nil {
		return err
	}

	dispatcher, err := payout.NewDispatcher(store.payouts, transferer, store.runner,
		payout.WithLogger(log),
		payout.WithAuditPublisher(auditor),
		payout.WithMetrics(payout.NewMetrics()),
	)
	if err != nil {
		return err
	}
	funding, err := fundingservice.New(store.funding, roles, oracle, store.runner, store.payouts,
		fundingservice.WithLogger(log),
		fundingservice.WithAuditPublisher(auditor),
		fundingservice.WithSecurityPublisher(denials),
		fundingservice.WithDispatcher(dispatcher),
	)
	if err != nil {
		return err
	}
	projects, err := projectsservice.New(store.projects, roles, oracle, store.runner,
		projectsservice.WithLogger(log),
		projectsservice.WithAuditPublisher(auditor),
		projectsservice.WithSecurityPublisher(denials),
		projectsservice.WithRequestCanceller(projectsservice.RequestCancellerFunc(store.withdrawals.DeleteRequest)),
	)
	if err != nil {
		return err
	}
	withdrawals, err := withdrawalservice.New(store.withdrawals, projects, funding, settings, roles, oracle, store.runner, store.payouts,
		withdrawalservice.WithLogger(log),
		withdrawalservice.WithAuditPublisher(auditor),
		withdrawalservice.WithSecurityPublisher(denials),
		withdrawalservice.WithMetrics(withdrawalmetrics.New()),
		withdrawalservice.WithDispatcher(dispatcher),
	)
	if err != nil {
		return err
	}
	reporter, err := epoch.NewReporter(oracle, settings, store.runner,
		epoch.WithLogger(log),
		epoch.WithAuditPublisher(auditor),
		epoch.WithSecurityPublisher(denials),
	)
	if err != nil {
		return err
	}

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
	router := httptransport.NewRouter(httptransport.Dependencies{
		Logger:         log,
		Metrics:        metrics.New(),
		Validator:      jwttoken.NewJWTServiceAdapter(jwtService),
		RequestTimeout: cfg.Server.RequestTimeout,
		Checks:         checks,
		Handlers: []httptransport.Registrar{
			accesshandler.New(roles, log),
			settingshandler.New(settings, log),
			epochhandler.New(oracle, reporter, log),
			fundinghandler.New(funding, log),
			projectshandler.New(projects, log),
			withdrawalhandler.New(withdrawals, log),
			payouthandler.New(dispatcher, log),
		},
	})
	srv := httpserver.New(cfg.Server, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting payout ledger", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		w := payout.NewWorker(dispatcher,
			payout.WithRetryInterval(cfg.Ledger.PayoutRetryInterval),
			payout.WithWorkerLogger(log),
		)
		return ignoreCanceled(w.Run(gctx))
	})
	g.Go(func() error {
		return ignoreCanceled(denials.Run(gctx))
	})

	if store.outbox != nil {
		events := auditconsumer.NewEventsHandler(store.outbox, log)
		var relayTo auditworker.Publisher = events
		if prod != nil {
			relayTo = prod
		}
		relay := auditworker.NewWorker(store.outbox, relayTo, cfg.Kafka.TopicPrefix,
			auditworker.WithBatchSize(cfg.Kafka.OutboxBatchSize),
			auditworker.WithPollInterval(cfg.Kafka.OutboxPoll),
			auditworker.WithLogger(log),
		)
		g.Go(func() error {
			return ignoreCanceled(relay.Run(gctx))
		})

		if prod != nil {
			topics := auditconsumer.NewRouter(log, relay.Topic)
			topics.Route(events, auditCategories...)
			c, err := consumer.New(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup+".audit", topics.Topics(), consumer.WithLogger(log))
			if err != nil {
				return err
			}
			defer c.Close()
			g.Go(func() error {
				return ignoreCanceled(c.Run(gctx, topics))
			})
		}
	}

	if prod != nil {
		c, err := consumer.New(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, []string{cfg.Kafka.DepositsTopic}, consumer.WithLogger(log))
		if err != nil {
			return err
		}
		defer c.Close()
		g.Go(func() error {
			return ignoreCanceled(c.Run(gctx, deposits.NewHandler(funding, log)))
		})
	}

	return g.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
