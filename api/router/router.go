package router

import (
	"log/slog"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	bootstrap "github.com/tbeaudouin05/flutter-checkout/api/bootstrap"
	grpcserver "github.com/tbeaudouin05/flutter-checkout/api/services/checkout/grpc"
)

// NewRouter returns the central HTTP router for the API using grpc-gateway.
// It serves the checkout callables over the Firebase callable protocol.
func NewRouter() http.Handler {
	// Initialize app dependencies (non-fatal here; an uninitialized server answers UNAVAILABLE).
	if err := bootstrap.Ensure(); err != nil {
		slog.Error("bootstrap ensure failed", "err", err)
	}

	return newMux(bootstrap.GetServer())
}

func newMux(srv *grpcserver.Server) http.Handler {
	mux := runtime.NewServeMux(runtime.WithIncomingHeaderMatcher(grpcserver.HeaderMatcher))
	if srv == nil {
		return grpcserver.UnavailableHandler(mux)
	}
	if err := grpcserver.RegisterGateway(mux, srv); err != nil {
		slog.Error("failed to register grpc-gateway", "err", err)
	}
	return mux
}
