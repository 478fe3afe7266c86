// Package session restores the authenticated session at startup.
package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"storefront/clientcore/internal/migration"
	"storefront/clientcore/internal/model"
	"storefront/clientcore/internal/repository"
	"storefront/clientcore/pkg/jwt"
)

type Outcome string

const (
	// OutcomeSkipped means no session was remembered.
	OutcomeSkipped  Outcome = "skipped"
	OutcomeRestored Outcome = "restored"
	// OutcomeCleared means a remembered session turned out to be invalid and
	// was forgotten.
	OutcomeCleared Outcome = "cleared"
)

// Auth is what the bootstrapper needs from the central store.
type Auth interface {
	GetCurrentUser(ctx context.Context) (*model.Profile, error)
	ForceLogout(ctx context.Context)
}

type Bootstrapper struct {
	kv     repository.KVStore
	auth   Auth
	logger *zap.Logger
	now    func() time.Time
}

func NewBootstrapper(kv repository.KVStore, auth Auth, logger *zap.Logger) *Bootstrapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bootstrapper{
		kv:     kv,
		auth:   auth,
		logger: logger.Named("session"),
		now:    time.Now,
	}
}

// Run re-validates a remembered session with the server. It never fails:
// anything short of a confirmed user leaves the client anonymous.
func (b *Bootstrapper) Run(ctx context.Context) Outcome {
	remembered, err := repository.GetBool(ctx, b.kv, repository.KeyAuthenticated)
	if err != nil {
		b.logger.Warn("failed to read authenticated flag", zap.Error(err))
		return OutcomeSkipped
	}
	if !remembered {
		return OutcomeSkipped
	}

	token, err := b.kv.Get(ctx, repository.KeyToken)
	if err != nil {
		b.logger.Warn("failed to read bearer token", zap.Error(err))
	}
	if len(token) > 0 && jwt.IsExpired(string(token), b.now()) {
		b.logger.Info("stored token expired, clearing session")
		if err := b.kv.Delete(ctx, repository.KeyToken); err != nil {
			b.logger.Warn("failed to drop expired token", zap.Error(err))
		}
		b.auth.ForceLogout(ctx)
		return OutcomeCleared
	}

	user, err := b.auth.GetCurrentUser(ctx)
	if err != nil {
		b.logger.Info("remembered session rejected", zap.Error(err))
		return OutcomeCleared
	}
	b.logger.Info("session restored", zap.Int64("user_id", user.ID))
	return OutcomeRestored
}

// Startup runs the legacy migration and then the session restore. Neither
// step can stop the application from starting.
func Startup(ctx context.Context, reconciler *migration.Reconciler, boot *Bootstrapper) (migration.Result, Outcome) {
	res := reconciler.Run(ctx)
	return res, boot.Run(ctx)
}
