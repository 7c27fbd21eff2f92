package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"

	"github.com/feupindustrial/erp-orders-service/internal/application"
	"github.com/feupindustrial/erp-orders-service/internal/config"
	"github.com/feupindustrial/erp-orders-service/internal/kafka"
	"github.com/feupindustrial/erp-orders-service/internal/logger"
	"github.com/feupindustrial/erp-orders-service/internal/mes"
	"github.com/feupindustrial/erp-orders-service/internal/migrate"
	"github.com/feupindustrial/erp-orders-service/internal/presentation"
	"github.com/feupindustrial/erp-orders-service/internal/repository"
	"github.com/feupindustrial/erp-orders-service/internal/scheduler"
	"github.com/feupindustrial/erp-orders-service/internal/udp"
)

func main() {
	logger.Init()
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("config load failed", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB pool; the database may still be coming up alongside us
	pool, err := pgxpool.New(ctx, cfg.DB_STRING)
	if err != nil {
		logger.Error("pgxpool new failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		return retry.RetryableError(pool.Ping(ctx))
	})
	if err != nil {
		logger.Error("db ping failed", "err", err)
		os.Exit(1)
	}
	logger.Info("db connected")

	if err := migrate.Up(cfg.DB_STRING); err != nil {
		logger.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	// Wiring
	repo := repository.NewErpRepository(pool)
	svc := application.NewOrdersService(repo)

	mesClient := mes.NewClient(cfg.MES_BASE_URL)
	dispatcher := scheduler.NewDispatcher(repo, mesClient, cfg.DAILY_CAPACITY)
	if err := dispatcher.Start(ctx, cfg.MES_SYNC_TIME); err != nil {
		logger.Error("scheduler start failed", "err", err)
		os.Exit(1)
	}

	listener := udp.NewListener(svc, cfg.UDP_BUFFER_SIZE)
	if err := listener.Start(ctx, cfg.UDP_PORT); err != nil {
		logger.Error("udp listener start failed", "err", err)
		os.Exit(1)
	}

	prod := kafka.NewProducer(cfg.KAFKA_BROKERS, cfg.KAFKA_TOPIC)
	defer prod.Close()

	_, _ = kafka.StartConsumer(ctx, svc, kafka.ConsumerConfig{
		Brokers: cfg.KAFKA_BROKERS,
		Topic:   cfg.KAFKA_TOPIC,
		GroupID: cfg.KAFKA_GROUP_ID,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	h := presentation.NewOrdersHandler(svc, prod)
	h.Register(r)

	addr := ":" + cfg.HTTP_PORT
	logger.Info("starting http", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Error("http server crashed", "err", err)
		os.Exit(1)
	}
}
