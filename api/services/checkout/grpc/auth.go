package grpcserver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// TokenVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// NewFirebaseVerifier builds a verifier for projectID's ID tokens.
//
// Credentials come from GOOGLE_APPLICATION_CREDENTIALS or the runtime's default
// service account: https://firebase.google.com/docs/admin/setup#initialize-sdk
func NewFirebaseVerifier(ctx context.Context, projectID string) (TokenVerifier, error) {
	var cfg *firebase.Config
	if projectID != "" {
		cfg = &firebase.Config{ProjectID: projectID}
	}
	firebaseApp, err := firebase.NewApp(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	client, err := firebaseApp.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase auth client: %w", err)
	}
	return client, nil
}

type uidKey struct{}

// UIDFromContext returns the Firebase uid of a verified caller.
func UIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(uidKey{}).(string)
	return uid, ok
}

// AuthInterceptor checks the caller's Firebase ID token. A token that is present must
// verify. A missing token is accepted unless required. With a nil verifier every call passes.
func AuthInterceptor(v TokenVerifier, required bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if v == nil {
			return handler(ctx, req)
		}
		idToken := bearerToken(firstMetadata(ctx, "authorization"))
		if idToken == "" {
			if required {
				return nil, status.Error(codes.Unauthenticated, "missing id token")
			}
			return handler(ctx, req)
		}
		tok, err := v.VerifyIDToken(ctx, idToken)
		if err != nil {
			slog.Warn("id token rejected", "method", info.FullMethod, "request_id", RequestIDFromContext(ctx), "err", err)
			return nil, status.Error(codes.Unauthenticated, "invalid id token")
		}
		return handler(context.WithValue(ctx, uidKey{}, tok.UID), req)
	}
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
