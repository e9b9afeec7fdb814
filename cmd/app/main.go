package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/suchimauz/clinic-scheduling-engine/internal/adapters/in/http"
	"github.com/suchimauz/clinic-scheduling-engine/internal/adapters/in/rabbitmq"
	"github.com/suchimauz/clinic-scheduling-engine/internal/adapters/out/backend"
	"github.com/suchimauz/clinic-scheduling-engine/internal/adapters/out/cache"
	"github.com/suchimauz/clinic-scheduling-engine/internal/adapters/out/logger"
	"github.com/suchimauz/clinic-scheduling-engine/internal/adapters/out/memory"
	"github.com/suchimauz/clinic-scheduling-engine/internal/adapters/out/metrics"
	"github.com/suchimauz/clinic-scheduling-engine/internal/config"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/ports/out"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/services/scheduling_service"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	mainLogger, err := newLogger(cfg)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if syncer, ok := mainLogger.(interface{ Sync() error }); ok {
		defer func() { _ = syncer.Sync() }()
	}
	logger := mainLogger.WithModule("Main")

	logger.Info("app.starting", out.LogFields{
		"version":         cfg.App.Version,
		"env":             cfg.App.Env,
		"timezone":        cfg.App.Location.String(),
		"storeDriver":     cfg.Store.Driver,
		"rabbitmqEnabled": cfg.RabbitMQ.Enabled,
		"cacheEnabled":    cfg.Cache.Enabled,
		"cacheDriver":     cfg.Cache.Driver,
	})

	// Настройка Gin в зависимости от окружения
	if cfg.IsNotLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Хранилища правил и записей
	var availabilityPort out.AvailabilityPort
	var appointmentPort out.AppointmentPort
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		store := memory.NewMemoryAdapter(mainLogger)
		availabilityPort, appointmentPort = store, store
	case config.StoreDriverBackend:
		store := backend.NewBackendAdapter(cfg, mainLogger)
		availabilityPort, appointmentPort = store, store
	default:
		logger.Error("app.store.unknown_driver", out.LogFields{
			"driver": cfg.Store.Driver,
		})
		os.Exit(1)
	}

	cacheAdapter, closeCache, err := newCache(cfg, mainLogger)
	if err != nil {
		logger.Error("app.cache.init_failed", out.LogFields{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer closeCache()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsAdapter := metrics.NewMetricsAdapter(registry)

	// Инициализация сервиса
	schedulingService := scheduling_service.NewSchedulingService(
		availabilityPort,
		appointmentPort,
		cacheAdapter,
		metricsAdapter,
		mainLogger,
		scheduling_service.WithLocation(cfg.App.Location),
	)

	// Настройка HTTP сервера
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.IsLocal() {
		router.Use(gin.Logger())
	}
	controller := http.NewSchedulingController(schedulingService, cfg, mainLogger, metricsAdapter, registry)
	controller.RegisterRoutes(router)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Настройка RabbitMQ слушателя только если он включен
	if cfg.RabbitMQ.Enabled {
		listener, err := rabbitmq.NewCacheHitListener(schedulingService, cfg, mainLogger)
		if err != nil {
			logger.Error("app.rabbitmq.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		if err := listener.Start(ctx); err != nil {
			logger.Error("app.rabbitmq.start_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		defer func() {
			if err := listener.Stop(); err != nil {
				logger.Error("app.rabbitmq.stop_failed", out.LogFields{
					"error": err.Error(),
				})
			}
		}()
	}

	server := &nethttp.Server{
		Addr:              cfg.HTTP.Host + ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("app.http.starting", out.LogFields{
			"host": cfg.HTTP.Host,
			"port": cfg.HTTP.Port,
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			logger.Error("app.http.failed", out.LogFields{
				"error": err.Error(),
			})
			sigChan <- syscall.SIGTERM
		}
	}()

	sig := <-sigChan
	logger.Info("app.shutdown.initiated", out.LogFields{
		"signal": sig.String(),
	})

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("app.http.shutdown_failed", out.LogFields{
			"error": err.Error(),
		})
	}
}

// newLogger цветной вывод локально, JSON через zap в остальных окружениях
func newLogger(cfg *config.Config) (out.LoggerPort, error) {
	level := logger.ParseLevel(cfg.App.LogLevel)
	if cfg.IsLocal() {
		return logger.NewConsoleLogger(cfg.App.Timezone, level)
	}
	return logger.NewZapLogger(level, cfg.App.Version)
}

// newCache nil-интерфейс, если кэш выключен
func newCache(cfg *config.Config, log out.LoggerPort) (out.CachePort, func(), error) {
	noop := func() {}
	if !cfg.Cache.Enabled {
		return nil, noop, nil
	}

	switch cfg.Cache.Driver {
	case config.CacheDriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("redis ping: %w", err)
		}

		return cache.NewRedisCacheAdapter(client, cfg.Cache.TTL, log), func() { _ = client.Close() }, nil
	case config.CacheDriverLRU:
		adapter, err := cache.NewCacheAdapter(cfg, log)
		if err != nil {
			return nil, noop, err
		}
		return adapter, noop, nil
	}

	return nil, noop, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
}
