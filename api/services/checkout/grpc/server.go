package grpcserver

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tbeaudouin05/flutter-checkout/api/services/checkout/app"
)

// Server exposes the checkout app service as the two callable functions.
type Server struct {
	svc   app.Service
	chain grpc.UnaryServerInterceptor
}

var _ CheckoutServer = (*Server)(nil)

type options struct {
	verifier     TokenVerifier
	authRequired bool
	interceptors []grpc.UnaryServerInterceptor
}

// Option configures New.
type Option func(*options)

// WithTokenVerifier verifies Firebase ID tokens sent as `Authorization: Bearer <token>`.
// With required set, calls without a token are rejected.
func WithTokenVerifier(v TokenVerifier, required bool) Option {
	return func(o *options) {
		o.verifier = v
		o.authRequired = required
	}
}

// WithUnaryInterceptor appends an interceptor after the built-in ones.
func WithUnaryInterceptor(i grpc.UnaryServerInterceptor) Option {
	return func(o *options) { o.interceptors = append(o.interceptors, i) }
}

func New(svc app.Service, opts ...Option) *Server {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	interceptors := append([]grpc.UnaryServerInterceptor{
		RecoveryInterceptor(),
		RequestLogInterceptor(),
		AuthInterceptor(o.verifier, o.authRequired),
	}, o.interceptors...)
	return &Server{svc: svc, chain: grpc_middleware.ChainUnaryServer(interceptors...)}
}

// UnaryInterceptor returns the interceptor chain shared by the gRPC server and the HTTP callables.
func (s *Server) UnaryInterceptor() grpc.UnaryServerInterceptor { return s.chain }

// GetPaymentSession returns the hosted URL of a new one-time payment session, or null.
func (s *Server) GetPaymentSession(ctx context.Context, data *structpb.Struct) (*structpb.Value, error) {
	return s.callable(ctx, app.ModePayment, data, s.svc.CreatePaymentSession), nil
}

// GetSubscriptionSession returns the hosted URL of a new monthly subscription session, or null.
func (s *Server) GetSubscriptionSession(ctx context.Context, data *structpb.Struct) (*structpb.Value, error) {
	return s.callable(ctx, app.ModeSubscription, data, s.svc.CreateSubscriptionSession), nil
}

// callable is the error boundary: every failure is logged and answered with null.
func (s *Server) callable(ctx context.Context, mode app.Mode, data *structpb.Struct, create func(context.Context, float64) (string, error)) (result *structpb.Value) {
	logger := slog.With("mode", mode, "request_id", RequestIDFromContext(ctx))
	if uid, ok := UIDFromContext(ctx); ok {
		logger = logger.With("uid", uid)
	}
	defer func() {
		if p := recover(); p != nil {
			logger.Error("panic creating checkout session", "panic", fmt.Sprint(p))
			result = structpb.NewNullValue()
		}
	}()

	amount, err := amountFrom(data)
	if err != nil {
		logger.Error("error reading amount", "err", err)
		return structpb.NewNullValue()
	}
	url, err := create(ctx, amount)
	if err != nil {
		logger.Error("error creating checkout session", "amount", amount, "err", err)
		return structpb.NewNullValue()
	}
	return structpb.NewStringValue(url)
}

// amountFrom reads data.amount, which may be a number or a numeric string.
func amountFrom(data *structpb.Struct) (float64, error) {
	v, ok := data.GetFields()["amount"]
	if !ok {
		return 0, fmt.Errorf("amount is missing")
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return k.NumberValue, nil
	case *structpb.Value_StringValue:
		f, err := strconv.ParseFloat(strings.TrimSpace(k.StringValue), 64)
		if err != nil {
			return 0, fmt.Errorf("amount %q is not a number", k.StringValue)
		}
		return f, nil
	case *structpb.Value_NullValue:
		return 0, fmt.Errorf("amount is null")
	default:
		return 0, fmt.Errorf("amount has unsupported type %T", k)
	}
}
