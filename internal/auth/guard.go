package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/pyropark/storefront/internal/api"
	"github.com/pyropark/storefront/internal/session"
)

// ValidatePath is the endpoint that accepts any valid session
const ValidatePath = "/auth/validate"

// Guard checks that a stored session is still accepted by the server.
// Rejection is handled by the api pipeline; other failures keep the session.
type Guard struct {
	client   Doer
	sessions interface {
		Get() (session.Session, bool)
	}
	logger *slog.Logger
}

// NewGuard creates a guard
func NewGuard(client Doer, sessions session.Store, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{client: client, sessions: sessions, logger: logger}
}

// Check validates the current session, if any
func (g *Guard) Check(ctx context.Context) error {
	if _, ok := g.sessions.Get(); !ok {
		return nil
	}

	_, err := g.client.Do(api.WithQuiet(ctx), api.Request{Path: ValidatePath})
	switch {
	case err == nil:
		g.logger.Debug("session valid")
	case api.IsUnauthorized(err):
		g.logger.Info("session rejected by server")
	default:
		g.logger.Warn("session validation unavailable", "error", err)
	}
	return err
}

// Run checks once, then every interval until ctx is done. An interval of
// zero checks only once.
func (g *Guard) Run(ctx context.Context, interval time.Duration) error {
	_ = g.Check(ctx)
	if interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_ = g.Check(ctx)
		}
	}
}
