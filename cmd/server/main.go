package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthgrpc "google.golang.org/grpc/health/grpc_health_v1"

	bootstrap "github.com/tbeaudouin05/flutter-checkout/api/bootstrap"
	"github.com/tbeaudouin05/flutter-checkout/api/config"
	"github.com/tbeaudouin05/flutter-checkout/api/database"
	router "github.com/tbeaudouin05/flutter-checkout/api/router"
	grpcserver "github.com/tbeaudouin05/flutter-checkout/api/services/checkout/grpc"
)

const shutdownGracePeriod = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	config.AppConfig = cfg
	configureLogger(cfg.LogLevel)

	if err := bootstrap.Ensure(); err != nil {
		return err
	}
	defer database.Close()

	srv := bootstrap.GetServer()
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(srv.UnaryInterceptor()))
	grpcserver.Register(grpcServer, srv)
	healthgrpc.RegisterHealthServer(grpcServer, health.NewServer())

	grpcLis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.GRPCPort, err)
	}
	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		slog.Info("grpc server listening", "port", cfg.GRPCPort)
		errCh <- grpcServer.Serve(grpcLis)
	}()
	go func() {
		slog.Info("http server listening", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("signal received, shutting down", "signal", sig.String())
	case err := <-errCh:
		slog.Error("server failed, shutting down", "err", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Warn("http shutdown", "err", err)
	}

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		grpcServer.Stop()
		return fmt.Errorf("failed to stop within %v", shutdownGracePeriod)
	}
}

func configureLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}
