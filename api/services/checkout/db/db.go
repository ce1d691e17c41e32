package db

import (
	"context"
	"fmt"

	database "github.com/tbeaudouin05/flutter-checkout/api/database"
	"github.com/tbeaudouin05/flutter-checkout/api/services/checkout/app"
)

const createCheckoutSessionTable = `CREATE TABLE IF NOT EXISTS checkout_session (
    id BIGSERIAL PRIMARY KEY,
    stripe_session_id TEXT NOT NULL UNIQUE,
    mode TEXT NOT NULL,
    unit_amount BIGINT NOT NULL,
    currency TEXT NOT NULL,
    created_at BIGINT NOT NULL
)`

const insertCheckoutSession = `INSERT INTO checkout_session (stripe_session_id, mode, unit_amount, currency, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (stripe_session_id) DO NOTHING`

// EnsureSchema creates the checkout_session table if it does not exist.
func EnsureSchema(ctx context.Context) error {
	conn := database.GetDB()
	if conn == nil {
		return fmt.Errorf("database not initialized")
	}
	if _, err := conn.ExecContext(ctx, createCheckoutSessionTable); err != nil {
		return fmt.Errorf("error creating checkout_session table: %w", err)
	}
	return nil
}

// RecordSession stores a created session. Recording the same session twice is a no-op.
// created_at is stored in ms.
func RecordSession(ctx context.Context, rec app.SessionRecord) error {
	conn := database.GetDB()
	if conn == nil {
		return fmt.Errorf("database not initialized")
	}
	if rec.SessionID == "" {
		return fmt.Errorf("session id is empty")
	}
	_, err := conn.ExecContext(ctx, insertCheckoutSession,
		rec.SessionID, string(rec.Mode), rec.UnitAmount, rec.Currency, rec.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("error inserting checkout_session: %w", err)
	}
	return nil
}

// Recorder adapts the package functions to app.SessionRecorder.
type Recorder struct{}

func (Recorder) RecordSession(ctx context.Context, rec app.SessionRecord) error {
	return RecordSession(ctx, rec)
}
