package main

import (
	"context"
	"fmt"
	"io"
	"time"

	calapp "github.com/wyfcoding/nkmodel/internal/calibration/application"
	calinfra "github.com/wyfcoding/nkmodel/internal/calibration/infrastructure"
	"github.com/wyfcoding/nkmodel/internal/nkmodel/application"
	"github.com/wyfcoding/nkmodel/internal/nkmodel/domain"
	"github.com/wyfcoding/nkmodel/internal/nkmodel/infrastructure/persistence/memory"
	"github.com/wyfcoding/nkmodel/internal/nkmodel/infrastructure/persistence/mysql"
	rediscache "github.com/wyfcoding/nkmodel/internal/nkmodel/infrastructure/persistence/redis"
	"github.com/wyfcoding/nkmodel/internal/nkmodel/infrastructure/publisher"
	"github.com/wyfcoding/nkmodel/pkg/cache"
	"github.com/wyfcoding/nkmodel/pkg/config"
	"github.com/wyfcoding/nkmodel/pkg/db"
	"github.com/wyfcoding/nkmodel/pkg/logger"
	"github.com/wyfcoding/nkmodel/pkg/metrics"
	"github.com/wyfcoding/nkmodel/pkg/mq"
	"github.com/wyfcoding/nkmodel/pkg/ratelimit"
)

// container 服务运行所需的全部组件
type container struct {
	app        *application.SimulationApplicationService
	calibrator application.ParameterSource
	limiter    ratelimit.RateLimiter
	metrics    *metrics.Metrics
	closers    []io.Closer
}

func (c *container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			logger.Warn(context.Background(), "close resource failed", "error", err)
		}
	}
}

func initLogger(cfg *config.Config) error {
	return logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	})
}

// newCalibrator 未配置 API key 时返回 nil
func newCalibrator(cfg config.CalibrationConfig, m *metrics.Metrics) *calapp.CalibrationService {
	if cfg.APIKey == "" {
		return nil
	}
	client := calinfra.NewFREDClient(calinfra.Config{
		BaseURL:         cfg.BaseURL,
		APIKey:          cfg.APIKey,
		Timeout:         time.Duration(cfg.Timeout) * time.Second,
		MaxRetries:      cfg.MaxRetries,
		BreakerFailures: uint32(cfg.BreakerFailures),
		BreakerTimeout:  time.Duration(cfg.BreakerTimeout) * time.Second,
	})
	return calapp.NewCalibrationService(client, calapp.Options{
		GDPSeries:       cfg.GDPSeries,
		InflationSeries: cfg.InflationSeries,
		RealRateSeries:  cfg.RealRateSeries,
		HPLambda:        cfg.HPLambda,
	}, m)
}

func newRepository(cfg config.DatabaseConfig) (domain.SimulationRunRepository, io.Closer, error) {
	if cfg.Driver == "memory" {
		return memory.NewSimulationRunRepository(), nil, nil
	}
	d, err := db.Init(db.Config{
		Driver:             cfg.Driver,
		DSN:                cfg.DSN,
		MaxOpenConns:       cfg.MaxOpenConns,
		MaxIdleConns:       cfg.MaxIdleConns,
		ConnMaxLifetime:    cfg.ConnMaxLifetime,
		LogEnabled:         cfg.LogEnabled,
		SlowQueryThreshold: cfg.SlowQueryThreshold,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := mysql.AutoMigrate(d.DB); err != nil {
		_ = d.Close()
		return nil, nil, fmt.Errorf("migrate db failed: %w", err)
	}
	return mysql.NewSimulationRunRepository(d.DB), d, nil
}

func buildContainer(cfg *config.Config) (*container, error) {
	c := &container{metrics: metrics.New(cfg.ServiceName)}
	if err := c.metrics.Register(nil); err != nil {
		return nil, fmt.Errorf("register metrics failed: %w", err)
	}

	repo, closer, err := newRepository(cfg.Database)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		c.closers = append(c.closers, closer)
	}

	deps := application.Dependencies{
		Repo:      repo,
		Publisher: publisher.NoopPublisher{},
		Metrics:   c.metrics,
	}

	var rc *cache.RedisCache
	if cfg.Redis.Enabled {
		rc, err = cache.New(cache.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxPoolSize:  cfg.Redis.MaxPoolSize,
			ConnTimeout:  cfg.Redis.ConnTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			c.Close()
			return nil, err
		}
		c.closers = append(c.closers, rc)
		deps.Cache = rediscache.NewResultRedisCache(rc, time.Duration(cfg.Simulation.CacheTTL)*time.Second)
	}

	if cfg.Kafka.Enabled {
		producer, err := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			c.Close()
			return nil, err
		}
		c.closers = append(c.closers, producer)
		deps.Publisher = publisher.NewKafkaEventPublisher(producer)
	}

	if cal := newCalibrator(cfg.Calibration, c.metrics); cal != nil {
		deps.Source = cal
		c.calibrator = cal
	}

	switch {
	case !cfg.RateLimit.Enabled:
	case cfg.RateLimit.Backend == "redis":
		c.limiter = ratelimit.NewRedisRateLimiter(rc.GetClient())
	default:
		c.limiter = ratelimit.NewLocalRateLimiter()
	}

	c.app = application.NewSimulationApplicationService(deps, application.Options{
		MaxHorizon:       cfg.Simulation.MaxHorizon,
		BatchConcurrency: cfg.Simulation.BatchConcurrency,
		MaxBatchSize:     cfg.Simulation.MaxBatchSize,
		CompletedTopic:   cfg.Kafka.Topic,
		FailedTopic:      cfg.Kafka.FailedTopic,
	})
	return c, nil
}
