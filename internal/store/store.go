// Package store is the central client state container. Every mutation is an
// Action applied by a pure reducer under one lock; asynchronous operations
// dispatch pending/fulfilled/rejected actions around their API call.
package store

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"storefront/clientcore/internal/api"
	"storefront/clientcore/internal/model"
	"storefront/clientcore/internal/notify"
	"storefront/clientcore/internal/repository"
)

var ErrEmptyCart = errors.New("cart is empty")

// Action is anything the reducer understands. Type is the stable name used
// for metrics and logs, e.g. "cart/add" or "auth/login/fulfilled".
type Action interface {
	Type() string
}

type Phase string

const (
	PhasePending   Phase = "pending"
	PhaseFulfilled Phase = "fulfilled"
	PhaseRejected  Phase = "rejected"
)

// AsyncAction marks one phase of a network-backed operation.
type AsyncAction struct {
	Op      string
	Phase   Phase
	Payload any
	Err     error
}

func (a AsyncAction) Type() string { return a.Op + "/" + string(a.Phase) }

type State struct {
	Cart      CartState      `json:"cart"`
	Favorites FavoritesState `json:"favorites"`
	Auth      AuthState      `json:"auth"`
	Orders    OrderState     `json:"orders"`
	Products  ProductState   `json:"products"`
}

func reduce(s State, a Action) State {
	s.Cart = reduceCart(s.Cart, a)
	s.Favorites = reduceFavorites(s.Favorites, a)
	s.Auth = reduceAuth(s.Auth, a)
	s.Orders = reduceOrders(s.Orders, a)
	s.Products = reduceProducts(s.Products, a)
	return s
}

type AuthService interface {
	Login(ctx context.Context, creds model.Credentials) (*api.Session, error)
	Register(ctx context.Context, reg model.Registration) (*api.Session, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*model.Profile, error)
	UpdateProfile(ctx context.Context, update model.ProfileUpdate) (*model.Profile, error)
}

type ProductService interface {
	List(ctx context.Context, query model.ProductQuery) (model.ProductPage, error)
	Get(ctx context.Context, id int64) (*model.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, in model.ProductInput) (*model.Product, error)
	Update(ctx context.Context, id int64, in model.ProductInput) (*model.Product, error)
	Delete(ctx context.Context, id int64) error
}

type OrderService interface {
	Create(ctx context.Context, req model.OrderRequest) (*model.OrderDetail, error)
	ListMine(ctx context.Context) ([]model.OrderSummary, error)
	Get(ctx context.Context, id int64) (*model.OrderDetail, error)
}

type DispatchObserver interface {
	ObserveDispatch(action string)
}

// Deps wires a Store. KV is required; the services are only needed by the
// operations that call them.
type Deps struct {
	KV       repository.KVStore
	Auth     AuthService
	Products ProductService
	Orders   OrderService
	Notifier notify.Notifier
	Logger   *zap.Logger
	Metrics  DispatchObserver
	PageSize int
}

type Store struct {
	mu    sync.Mutex
	state State

	kv       repository.KVStore
	auth     AuthService
	products ProductService
	orders   OrderService
	notifier notify.Notifier
	logger   *zap.Logger
	metrics  DispatchObserver
	validate *validator.Validate

	lmu       sync.Mutex
	listeners map[int]func(State)
	nextID    int

	followUps sync.WaitGroup
}

// New builds the store and hydrates the cart and favorites slices from their
// durable snapshots. A snapshot that does not decode is logged and ignored.
func New(ctx context.Context, d Deps) *Store {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	pageSize := d.PageSize
	if pageSize <= 0 {
		pageSize = 8
	}
	s := &Store{
		kv:        d.KV,
		auth:      d.Auth,
		products:  d.Products,
		orders:    d.Orders,
		notifier:  notify.OrNop(d.Notifier),
		logger:    logger.Named("store"),
		metrics:   d.Metrics,
		validate:  newValidator(),
		listeners: make(map[int]func(State)),
	}
	s.state = State{
		Auth:     AuthState{Status: StatusAnonymous},
		Products: newProductState(pageSize),
	}
	s.hydrate(ctx)
	return s
}

func (s *Store) hydrate(ctx context.Context) {
	if s.kv == nil {
		return
	}
	var lines []model.CartLine
	if _, err := repository.GetJSON(ctx, s.kv, repository.KeyStoreCart, &lines); err != nil {
		s.logger.Warn("discarding unreadable cart snapshot", zap.Error(err))
		lines = nil
	}
	for _, l := range lines {
		s.state.Cart = reduceCart(s.state.Cart, MergeCartLine{Product: l.Product, Quantity: l.Quantity})
	}

	var favs []model.FavoriteEntry
	if _, err := repository.GetJSON(ctx, s.kv, repository.KeyStoreFavorites, &favs); err != nil {
		s.logger.Warn("discarding unreadable favorites snapshot", zap.Error(err))
		favs = nil
	}
	for _, f := range favs {
		s.state.Favorites = reduceFavorites(s.state.Favorites, AddToFavorites{Product: f})
	}
}

// State returns the current snapshot. Slices inside it are never mutated in
// place, so the snapshot stays valid after later dispatches.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies a to the state, writes any changed durable slice through to
// the KV store and then notifies subscribers outside the lock.
func (s *Store) Dispatch(ctx context.Context, a Action) State {
	s.mu.Lock()
	prev := s.state
	next := reduce(prev, a)
	s.state = next
	s.persist(ctx, a, next)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ObserveDispatch(a.Type())
	}
	s.logger.Debug("dispatch", zap.String("action", a.Type()))

	for _, fn := range s.snapshotListeners() {
		fn(next)
	}
	return next
}

func (s *Store) persist(ctx context.Context, a Action, next State) {
	if s.kv == nil {
		return
	}
	typ := a.Type()
	switch {
	case strings.HasPrefix(typ, "cart/"):
		if err := repository.SetJSON(ctx, s.kv, repository.KeyStoreCart, nonNilLines(next.Cart.Lines)); err != nil {
			s.logger.Error("failed to persist cart", zap.Error(err))
		}
	case strings.HasPrefix(typ, "favorites/"):
		if err := repository.SetJSON(ctx, s.kv, repository.KeyStoreFavorites, nonNilFavorites(next.Favorites.Items)); err != nil {
			s.logger.Error("failed to persist favorites", zap.Error(err))
		}
	case strings.HasPrefix(typ, "auth/") && !strings.HasSuffix(typ, "/"+string(PhasePending)):
		if err := repository.SetBool(ctx, s.kv, repository.KeyAuthenticated, next.Auth.IsAuthenticated); err != nil {
			s.logger.Error("failed to persist authenticated flag", zap.Error(err))
		}
	}
}

// Subscribe registers fn to receive every new state. The returned function
// removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) snapshotListeners() []func(State) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	out := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

// Wait blocks until background follow-ups started by earlier operations have
// finished.
func (s *Store) Wait() {
	s.followUps.Wait()
}

func (s *Store) goFollowUp(fn func()) {
	s.followUps.Add(1)
	go func() {
		defer s.followUps.Done()
		fn()
	}()
}

func (s *Store) pending(ctx context.Context, op string) {
	s.Dispatch(ctx, AsyncAction{Op: op, Phase: PhasePending})
}

func (s *Store) fulfilled(ctx context.Context, op string, payload any) {
	s.Dispatch(ctx, AsyncAction{Op: op, Phase: PhaseFulfilled, Payload: payload})
}

func (s *Store) rejected(ctx context.Context, op string, err error) {
	s.logger.Debug("operation failed", zap.String("op", op), zap.Error(err))
	s.Dispatch(ctx, AsyncAction{Op: op, Phase: PhaseRejected, Err: err})
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := api.AsError(err); ok {
		return apiErr.Message
	}
	return err.Error()
}
