package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tbeaudouin05/flutter-checkout/api/config"
	"github.com/tbeaudouin05/flutter-checkout/api/database"
	checkoutapp "github.com/tbeaudouin05/flutter-checkout/api/services/checkout/app"
	checkoutdb "github.com/tbeaudouin05/flutter-checkout/api/services/checkout/db"
	stripegw "github.com/tbeaudouin05/flutter-checkout/api/services/checkout/gateway/stripe"
	grpcserver "github.com/tbeaudouin05/flutter-checkout/api/services/checkout/grpc"
)

var checkoutServer *grpcserver.Server
var initOnce sync.Once
var initErr error

// Init initializes config, the optional database, and third-party clients, and wires services.
func Init(ctx context.Context) error {
	// If a server has already been injected (e.g., tests), do not override or init heavy deps.
	if checkoutServer != nil {
		return nil
	}
	var err error
	if config.AppConfig == nil {
		config.AppConfig, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}
	cfg := config.AppConfig

	var svcOpts []checkoutapp.ServiceOption
	if cfg.DatabaseURL != "" {
		if err := database.Initialize(ctx, cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := checkoutdb.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
		svcOpts = append(svcOpts, checkoutapp.WithRecorder(checkoutdb.Recorder{}))
		slog.Info("checkout session ledger enabled")
	}

	gateway := stripegw.New(cfg.StripeSecretKey, stripegw.WithAPIURL(cfg.StripeAPIURL))
	svc := checkoutapp.NewService(gateway, svcOpts...)

	var srvOpts []grpcserver.Option
	if cfg.FirebaseProjectID != "" || cfg.AuthRequired() {
		verifier, err := grpcserver.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID)
		if err != nil {
			return fmt.Errorf("failed to initialize firebase auth: %w", err)
		}
		srvOpts = append(srvOpts, grpcserver.WithTokenVerifier(verifier, cfg.AuthRequired()))
		slog.Info("firebase id token verification enabled", "required", cfg.AuthRequired())
	}

	checkoutServer = grpcserver.New(svc, srvOpts...)
	return nil
}

func GetServer() *grpcserver.Server { return checkoutServer }

// SetServer allows tests to inject a server built on a fake gateway.
func SetServer(s *grpcserver.Server) { checkoutServer = s }

// Ensure runs Init() once per process and returns any initialization error.
func Ensure() error {
	initOnce.Do(func() {
		initErr = Init(context.Background())
	})
	return initErr
}
