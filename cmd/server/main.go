package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/ogurasousui/orbite-rh-api/internal/adapters/http/handler"
	"github.com/ogurasousui/orbite-rh-api/internal/adapters/repository/postgres"
	"github.com/ogurasousui/orbite-rh-api/internal/core/batch"
	"github.com/ogurasousui/orbite-rh-api/internal/core/employee"
	"github.com/ogurasousui/orbite-rh-api/internal/core/leave"
	"github.com/ogurasousui/orbite-rh-api/internal/platform/config"
	pg "github.com/ogurasousui/orbite-rh-api/internal/platform/db/postgres"
	"github.com/ogurasousui/orbite-rh-api/internal/platform/logging"
	"github.com/ogurasousui/orbite-rh-api/internal/platform/metrics"
	"github.com/ogurasousui/orbite-rh-api/internal/platform/server"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(".env", ".env.local"); err != nil {
		logrus.Fatalf("failed to load .env: %v", err)
	}

	cfg, err := config.Load(config.ResolvePath(*configPath))
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log, os.Stdout)
	if err != nil {
		logrus.Fatalf("failed to configure logging: %v", err)
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize database pool")
	}
	defer dbPool.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	txManager := pg.NewTransactionManager(dbPool)

	employeeSvc := employee.NewService(postgres.NewEmployeeRepository(dbPool), nil, txManager,
		employee.WithImportObserver(batch.Observers(
			appMetrics.ImportObserver(handler.EmployeeEntity),
			logging.ImportObserver(handler.EmployeeEntity),
		)))
	leaveSvc := leave.NewService(postgres.NewLeaveRepository(dbPool), nil, txManager,
		leave.WithImportObserver(batch.Observers(
			appMetrics.ImportObserver(handler.LeaveEntity),
			logging.ImportObserver(handler.LeaveEntity),
		)))

	router := handler.NewRouter(handler.Dependencies{
		Config:    *cfg,
		Logger:    logger,
		Employees: employeeSvc,
		Leaves:    leaveSvc,
		Database:  dbPool,
		Metrics:   appMetrics,
		Gatherer:  registry,
	})

	srv := server.New(cfg.Server, router, logger)
	if err := srv.Run(ctx); err != nil {
		logger.WithError(err).Fatal("server stopped with error")
	}
}
