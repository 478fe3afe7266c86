// Package migration folds the legacy store's durable cart and favorites into
// the central store, once.
package migration

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/clientcore/internal/model"
	"storefront/clientcore/internal/repository"
)

type Outcome string

const (
	OutcomeMigrated Outcome = "migrated"
	// OutcomeAlreadyRan means this reconciler already ran in this process.
	OutcomeAlreadyRan Outcome = "already_ran"
	// OutcomeClaimed means another process sharing the store holds the marker.
	OutcomeClaimed Outcome = "claimed"
	OutcomeFailed  Outcome = "failed"
)

type Result struct {
	Outcome   Outcome
	CartLines int
	Favorites int
	Owner     string
	// Err is the first non-fatal error met on the way, if any.
	Err error
}

// Target is the slice of the central store the migration writes into. Both
// methods merge by product id and must not notify.
type Target interface {
	MergeCartLine(ctx context.Context, p model.Product, quantity int)
	MergeFavorite(ctx context.Context, p model.FavoriteEntry)
}

type Observer interface {
	ObserveMigration(result string, cartLines, favorites int)
}

type Reconciler struct {
	kv       repository.KVStore
	target   Target
	logger   *zap.Logger
	observer Observer
	ran      atomic.Bool
}

func NewReconciler(kv repository.KVStore, target Target, logger *zap.Logger, observer Observer) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		kv:       kv,
		target:   target,
		logger:   logger.Named("migration"),
		observer: observer,
	}
}

// Run migrates at most once per Reconciler and at most once per shared store.
// It never returns an error; problems are logged and reported in the Result.
// A run that ends OutcomeFailed left nothing behind and may be retried.
func (r *Reconciler) Run(ctx context.Context) Result {
	res := r.run(ctx)
	if r.observer != nil {
		r.observer.ObserveMigration(string(res.Outcome), res.CartLines, res.Favorites)
	}
	r.logger.Info("legacy migration finished",
		zap.String("outcome", string(res.Outcome)),
		zap.Int("cart_lines", res.CartLines),
		zap.Int("favorites", res.Favorites),
		zap.String("owner", res.Owner),
	)
	return res
}

func (r *Reconciler) run(ctx context.Context) Result {
	if !r.ran.CompareAndSwap(false, true) {
		return Result{Outcome: OutcomeAlreadyRan}
	}

	// Both snapshots are read before the marker is claimed. A store error
	// leaves the legacy keys and the marker untouched so a later run retries.
	var res Result
	var lines []model.CartLine
	if err := r.read(ctx, repository.KeyCart, &lines); err != nil {
		if !errors.Is(err, repository.ErrCorrupt) {
			r.ran.Store(false)
			return Result{Outcome: OutcomeFailed, Err: err}
		}
		res.Err, lines = err, nil
	}
	var favs []model.FavoriteEntry
	if err := r.read(ctx, repository.KeyFavorites, &favs); err != nil {
		if !errors.Is(err, repository.ErrCorrupt) {
			r.ran.Store(false)
			return Result{Outcome: OutcomeFailed, Err: err}
		}
		if res.Err == nil {
			res.Err = err
		}
		favs = nil
	}

	owner := uuid.NewString()
	claimed, err := r.kv.SetNX(ctx, repository.KeyMigrationDone, []byte(owner))
	if err != nil {
		r.logger.Error("failed to claim migration marker", zap.Error(err))
		r.ran.Store(false)
		return Result{Outcome: OutcomeFailed, Err: err}
	}
	if !claimed {
		return Result{Outcome: OutcomeClaimed}
	}
	res.Outcome, res.Owner = OutcomeMigrated, owner

	for _, l := range lines {
		r.target.MergeCartLine(ctx, l.Product, max(1, l.Quantity))
		res.CartLines++
	}
	for _, f := range favs {
		r.target.MergeFavorite(ctx, f)
		res.Favorites++
	}

	// The marker is held from here on, so a key that fails to delete is never
	// folded twice.
	for _, key := range []string{repository.KeyCart, repository.KeyFavorites} {
		if err := r.kv.Delete(ctx, key); err != nil {
			r.logger.Error("failed to delete legacy snapshot", zap.String("key", key), zap.Error(err))
			if res.Err == nil {
				res.Err = err
			}
		}
	}
	return res
}

// read decodes one legacy snapshot. Only an error wrapping
// repository.ErrCorrupt may be treated as an empty snapshot.
func (r *Reconciler) read(ctx context.Context, key string, dst any) error {
	_, err := repository.GetJSON(ctx, r.kv, key, dst)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrCorrupt):
		r.logger.Warn("legacy snapshot is unreadable, treating as empty", zap.String("key", key), zap.Error(err))
	default:
		r.logger.Error("failed to read legacy snapshot", zap.String("key", key), zap.Error(err))
	}
	return err
}
