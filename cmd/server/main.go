// Command server runs the student registrar: the admissions provisioning
// API and its operational endpoints.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"registrar/internal/admission/handler"
	"registrar/internal/admission/service"
	profilestore "registrar/internal/admission/store/profile"
	registrationstore "registrar/internal/admission/store/registration"
	reservationstore "registrar/internal/admission/store/reservation"
	studentstore "registrar/internal/admission/store/student"
	"registrar/internal/audit"
	catalogstore "registrar/internal/catalog/store"
	httpapi "registrar/internal/http"
	"registrar/internal/identity"
	"registrar/internal/matric"
	"registrar/internal/platform/config"
	"registrar/internal/platform/httpserver"
	"registrar/internal/platform/kafka"
	"registrar/internal/platform/logger"
	"registrar/internal/platform/metrics"
	"registrar/internal/platform/postgres"
	platformredis "registrar/internal/platform/redis"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err.Error())
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = kafka.NewProducer(cfg.KafkaBrokers, log)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err.Error())
			os.Exit(1)
		}
		defer producer.Close()

		if err := producer.EnsureTopics(ctx, audit.TopicAudit, audit.TopicReconciliation); err != nil {
			log.Error("failed to ensure kafka topics", "error", err.Error())
			os.Exit(1)
		}
	}

	serviceOpts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(metrics.New()),
		service.WithAuditPublisher(audit.NewPublisher(auditProducer(producer), log)),
	}
	if redisClient != nil {
		serviceOpts = append(serviceOpts,
			service.WithReservations(reservationstore.NewRedis(redisClient.Client, cfg.ReservationTTL)))
	}

	admissions := service.New(
		profilestore.NewPostgres(db),
		studentstore.NewPostgres(db),
		registrationstore.NewPostgres(db),
		catalogstore.NewPostgres(db),
		identity.NewClient(cfg.IdentityServiceURL, cfg.IdentityServiceKey, log),
		matric.NewClient(cfg.MatricServiceURL, log),
		identity.NewTokenIssuer(cfg.JWTSigningKey),
		cfg.ActivationRedirectURL,
		serviceOpts...,
	)

	checks := map[string]httpapi.HealthChecker{
		"postgres": pingChecker{db: db},
	}
	if redisClient != nil {
		checks["redis"] = redisClient
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Admissions: handler.New(admissions, cfg.AdminToken, log),
		Logger:     log,
		Checks:     checks,
	})

	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("registrar listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
	log.Info("registrar stopped")
}

// auditProducer avoids handing a typed-nil *kafka.Producer to the publisher,
// which would defeat its nil check.
func auditProducer(p *kafka.Producer) audit.Producer {
	if p == nil {
		return nil
	}
	return p
}

type pingChecker struct {
	db interface {
		PingContext(ctx context.Context) error
	}
}

func (c pingChecker) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
