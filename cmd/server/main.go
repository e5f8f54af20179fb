// Command server wires the voting gateway: stores (in-memory by default,
// Redis/Postgres when configured), domain services, the audit worker, and the
// HTTP router. Business logic lives in the internal services packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"votegate/internal/audit"
	"votegate/internal/auth"
	"votegate/internal/ballot"
	ballotmetrics "votegate/internal/ballot/metrics"
	"votegate/internal/election"
	"votegate/internal/otp"
	otpmetrics "votegate/internal/otp/metrics"
	"votegate/internal/platform/config"
	"votegate/internal/platform/httpserver"
	"votegate/internal/platform/logger"
	"votegate/internal/platform/postgres"
	"votegate/internal/platform/redis"
	"votegate/internal/registration"
	registrationmetrics "votegate/internal/registration/metrics"
	httptransport "votegate/internal/transport/http"
	"votegate/internal/voter"
)

const auditInboxSize = 1024

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Backing stores. Each falls back to in-memory when unconfigured, so a
	// bare `go run` serves the full API.
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	pool, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	var otpStore otp.Store = otp.NewInMemoryStore()
	if redisClient != nil {
		otpStore = otp.NewRedisStore(redisClient.Client)
		log.Info("otp challenges backed by redis")
	}

	var voterStore voter.Store = voter.NewInMemoryStore()
	var ballotStore ballot.Store = ballot.NewInMemoryStore()
	if pool != nil {
		voterStore = voter.NewPostgresStore(pool)
		ballotStore = ballot.NewPostgresStore(pool)
		log.Info("voter and vote records backed by postgres")
	}

	elections := election.NewInMemoryStore()
	if cfg.ElectionSeedPath != "" {
		n, err := elections.LoadSeed(ctx, cfg.ElectionSeedPath)
		if err != nil {
			return err
		}
		log.Info("election seed loaded", "path", cfg.ElectionSeedPath, "elections", n)
	}

	// Audit trail: publisher -> worker -> in-memory store (+ Kafka when
	// brokers are configured).
	auditStore := audit.NewInMemoryStore()
	publisher := audit.NewPublisher(auditInboxSize, log)
	var sink audit.Sink
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(ctx, cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Info("audit events forwarded to kafka", "topic", cfg.AuditTopic)
	}
	worker := audit.NewWorker(auditStore, sink, publisher.Inbox(), log)

	// Domain services.
	var otpOpts []otp.Option
	otpOpts = append(otpOpts, otp.WithMetrics(otpmetrics.New()))
	if cfg.OTPMode == config.OTPModeDemo {
		log.Warn("otp demo mode enabled: codes are echoed in responses")
		otpOpts = append(otpOpts, otp.WithDemoMode())
	}
	otpService := otp.NewService(otpStore, otp.LogSender{Logger: log}, log,
		cfg.OTPTTL, cfg.OTPMaxAttempts, otpOpts...)

	tokens := auth.NewTokenService(cfg.JWTSigningKey, "votegate", cfg.SessionTTL)

	registrationService := registration.NewService(voterStore, otpService, publisher,
		log, registrationmetrics.New())
	authService := auth.NewService(voterStore, otpService, tokens, publisher, log)
	ballotService := ballot.NewService(ballotStore, voterStore, elections, publisher,
		log, ballotmetrics.New())

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		OTP:            httptransport.NewOTPHandler(otpService, log),
		Registration:   httptransport.NewRegistrationHandler(registrationService, log),
		Auth:           httptransport.NewAuthHandler(authService, log),
		Election:       httptransport.NewElectionHandler(elections, ballotService, log),
		Admin:          httptransport.NewAdminHandler(elections, voterStore, auditStore, publisher, log),
		TokenValidator: auth.NewMiddlewareAdapter(tokens),
		AdminTokenHash: cfg.AdminTokenHash,
		Health:         healthCheck(redisClient, pool),
	})

	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		err := worker.Run(groupCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		log.Info("votegate listening", "addr", cfg.Addr, "otp_mode", cfg.OTPMode)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
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

	return group.Wait()
}

// healthCheck pings whichever external stores are configured.
func healthCheck(redisClient *redis.Client, pool *pgxpool.Pool) httptransport.Health {
	return httptransport.HealthFunc(func(r *http.Request) error {
		ctx := r.Context()
		if redisClient != nil {
			if err := redisClient.Health(ctx); err != nil {
				return err
			}
		}
		if pool != nil {
			return pool.Ping(ctx)
		}
		return nil
	})
}
