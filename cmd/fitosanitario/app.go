package main

import (
	"context"
	"database/sql"
	"fmt"

	"fitosanitario/common/database"
	commonlogger "fitosanitario/common/logger"
	"fitosanitario/common/mqtt"
	commonredis "fitosanitario/common/redis"
	"fitosanitario/internal/alert"
	"fitosanitario/internal/config"
	"fitosanitario/internal/connection"
	"fitosanitario/internal/dao"
	"fitosanitario/internal/metrics"
	"fitosanitario/internal/report"
	"fitosanitario/internal/repository"
	"fitosanitario/internal/service"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// app process-wide wiring built once per command
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	provider *connection.Provider
	handle   *connection.Handle
	registry *prometheus.Registry

	redis  *redis.Client
	mqtt   *mqtt.Client
	alerts *alert.Service

	reports  *report.Generator
	services service.Set
}

// newApp wires logging, the connection provider, metrics, alerting and the
// services for role. The database itself is opened on first use.
func newApp(cfg *config.Config, role string) (*app, error) {
	logger, err := commonlogger.NewLogger(cfg.Log.Level, cfg.Log.Format, "fitosanitario")
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}

	dbCfg := cfg.Database
	a.provider, err = connection.NewProvider(cfg.Roles, func(ctx context.Context) (*sql.DB, error) {
		return database.Open(ctx, &dbCfg)
	}, logger)
	if err != nil {
		return nil, err
	}
	if a.handle, err = a.provider.Acquire(role); err != nil {
		a.provider.Close()
		return nil, err
	}

	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storageMetrics, err := metrics.NewStorage(a.registry)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to register storage metrics: %w", err)
	}
	alertMetrics, err := metrics.NewAlerts(a.registry)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to register alert metrics: %w", err)
	}

	opts := []dao.Option{
		dao.WithDialect(dao.DialectFor(cfg.Database.Driver)),
		dao.WithBinder(dao.NewTypedBinder(logger)),
		dao.WithLogger(logger),
		dao.WithObserver(storageMetrics),
	}
	store := repository.NewStore(a.handle, opts...)

	alerts, err := a.alertStore()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.alerts = alert.NewService(alerts, logger, a.notifiers(alertMetrics)...)
	a.reports = report.NewGenerator(a.handle, logger, opts...)
	a.services = service.NewSet(store, a.alerts, logger)
	return a, nil
}

func (a *app) alertStore() (alert.Store, error) {
	if a.cfg.Alerts.Store != "redis" {
		return alert.NewMemoryStore(), nil
	}
	client, err := commonredis.Connect(context.Background(), &a.cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to open redis alert store: %w", err)
	}
	a.redis = client
	a.logger.Info("Using redis alert store", zap.String("addr", a.cfg.Redis.Addr), zap.String("prefix", a.cfg.Alerts.KeyPrefix))
	return alert.NewRedisStore(a.redis, a.cfg.Alerts.KeyPrefix), nil
}

// notifiers the broker and regulator channels are optional; an unreachable
// broker is logged and skipped
func (a *app) notifiers(m *metrics.Alerts) []alert.Notifier {
	out := []alert.Notifier{m}
	if a.cfg.MQTT.Enabled {
		client, err := mqtt.NewClient(&a.cfg.MQTT.MQTTConfig, a.logger)
		if err != nil {
			a.logger.Warn("MQTT enabled but connection failed, alerts will not be published", zap.Error(err))
		} else {
			a.mqtt = client
			out = append(out, alert.NewMQTTNotifier(client, a.cfg.MQTT.Topic, a.cfg.MQTT.QoS))
		}
	}
	if a.cfg.ICA.Enabled {
		out = append(out, alert.NewICANotifier(a.cfg.ICA.Endpoint, a.cfg.ICA.Token, a.cfg.ICA.Timeout))
	}
	return out
}

// Close releases the pool, broker and redis connections
func (a *app) Close() {
	if a.mqtt != nil {
		a.mqtt.Disconnect()
	}
	if a.redis != nil {
		if err := commonredis.Close(a.redis); err != nil {
			a.logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}
	if a.provider != nil {
		if err := a.provider.Close(); err != nil {
			a.logger.Warn("Failed to close connection provider", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
