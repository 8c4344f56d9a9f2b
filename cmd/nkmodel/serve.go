package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	grpcserver "github.com/wyfcoding/nkmodel/internal/nkmodel/interfaces/grpc"
	httpserver "github.com/wyfcoding/nkmodel/internal/nkmodel/interfaces/http"
	"github.com/wyfcoding/nkmodel/pkg/config"
	"github.com/wyfcoding/nkmodel/pkg/logger"
	"github.com/wyfcoding/nkmodel/pkg/metrics"
	"github.com/wyfcoding/nkmodel/pkg/middleware"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

const shutdownTimeout = 5 * time.Second

func buildServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and gRPC simulation service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, *configPath)
		},
	}
}

func runServe(ctx context.Context, configPath string) error {
	// 1. Config
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// 2. Logger
	if err := initLogger(cfg); err != nil {
		return fmt.Errorf("init logger failed: %w", err)
	}

	// 3. Infrastructure & Application
	c, err := buildContainer(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	// 4. Interfaces
	httpSrv := newHTTPServer(cfg, c)
	grpcSrv := newGRPCServer(cfg, c)
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port))
	if err != nil {
		return fmt.Errorf("listen grpc failed: %w", err)
	}

	// 5. Start
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info(gctx, "Starting HTTP server", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info(gctx, "Starting gRPC server", "addr", lis.Addr().String())
		if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	// 6. Graceful Shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(context.Background(), "Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, "Server forced to shutdown", "error", err)
		}
		grpcSrv.GracefulStop()
		return nil
	})

	err = g.Wait()
	logger.Info(context.Background(), "Server exiting")
	return err
}

func newHTTPServer(cfg *config.Config, c *container) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(
		middleware.GinRecoveryMiddleware(),
		middleware.GinLoggingMiddleware(),
		middleware.GinCORSMiddleware(),
		middleware.GinMetricsMiddleware(c.metrics),
	)
	if c.limiter != nil {
		r.Use(middleware.RateLimitMiddleware(c.limiter, cfg.RateLimit))
	}
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.ServiceName, "version": cfg.Version})
	})

	httpserver.NewHandler(r, c.app, c.calibrator, cfg.Simulation.DefaultHorizon)

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
}

func newGRPCServer(cfg *config.Config, c *container) *grpc.Server {
	interceptors := []grpc.UnaryServerInterceptor{
		middleware.GRPCRecoveryInterceptor(),
		middleware.GRPCLoggingInterceptor(),
		middleware.GRPCMetricsInterceptor(c.metrics),
	}
	if c.limiter != nil {
		interceptors = append(interceptors, middleware.GRPCRateLimitInterceptor(c.limiter, cfg.RateLimit))
	}

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(interceptors...),
		grpc.MaxConcurrentStreams(uint32(cfg.GRPC.MaxConcurrentStreams)),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle: time.Duration(cfg.GRPC.IdleTimeout) * time.Second,
		}),
	)
	grpcserver.NewServer(s, c.app)
	reflection.Register(s)
	return s
}
