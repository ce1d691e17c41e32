package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gw "github.com/tbeaudouin05/flutter-checkout/api/services/checkout/gateway"
)

// Service defines the checkout session operations behind the two callable functions.
type Service interface {
	CreatePaymentSession(ctx context.Context, amount float64) (string, error)
	CreateSubscriptionSession(ctx context.Context, amount float64) (string, error)
}

// SessionRecorder stores created sessions. It is optional.
type SessionRecorder interface {
	RecordSession(ctx context.Context, rec SessionRecord) error
}

type serviceImpl struct {
	gw       gw.CheckoutGateway
	recorder SessionRecorder
	now      func() time.Time
}

// ServiceOption configures NewService.
type ServiceOption func(*serviceImpl)

// WithRecorder records every created session with r.
func WithRecorder(r SessionRecorder) ServiceOption {
	return func(s *serviceImpl) { s.recorder = r }
}

// WithClock overrides the clock used to stamp session records.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *serviceImpl) { s.now = now }
}

func NewService(g gw.CheckoutGateway, opts ...ServiceOption) Service {
	s := serviceImpl{gw: g, now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// CreatePaymentSession creates a one-time payment session and returns its hosted URL
func (s serviceImpl) CreatePaymentSession(ctx context.Context, amount float64) (string, error) {
	return s.createSession(ctx, SessionRequest{Mode: ModePayment, Amount: amount})
}

// CreateSubscriptionSession creates a monthly subscription session and returns its hosted URL
func (s serviceImpl) CreateSubscriptionSession(ctx context.Context, amount float64) (string, error) {
	return s.createSession(ctx, SessionRequest{Mode: ModeSubscription, Amount: amount})
}

func (s serviceImpl) createSession(ctx context.Context, req SessionRequest) (string, error) {
	params, err := BuildSessionParams(req)
	if err != nil {
		return "", err
	}

	sess, err := s.gw.NewCheckoutSession(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: error creating %s session: %v", ErrGateway, req.Mode, err)
	}
	if sess.URL == "" {
		return "", fmt.Errorf("%w: %s session %q", ErrEmptyURL, req.Mode, sess.ID)
	}
	slog.Info("checkout session created", "mode", req.Mode, "session_id", sess.ID, "unit_amount", *params.LineItems[0].PriceData.UnitAmount)

	if s.recorder != nil {
		rec := SessionRecord{
			SessionID:  sess.ID,
			Mode:       req.Mode,
			UnitAmount: *params.LineItems[0].PriceData.UnitAmount,
			Currency:   Currency,
			CreatedAt:  s.now(),
		}
		if err := s.recorder.RecordSession(ctx, rec); err != nil {
			slog.Warn("failed to record checkout session", "session_id", sess.ID, "err", err)
		}
	}
	return sess.URL, nil
}
