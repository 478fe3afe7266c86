package store

import (
	"context"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"storefront/clientcore/internal/api"
	"storefront/clientcore/internal/model"
	"storefront/clientcore/internal/notify"
	"storefront/clientcore/internal/repository"
)

type fakeAuth struct {
	mu sync.Mutex

	loginErr    error
	registerErr error
	logoutErr   error
	meErr       error
	updateErr   error

	profile *model.Profile
	// meGate, when set, holds Me until it is closed.
	meGate        chan struct{}
	registerCalls int
	meCalls       int
	logoutCalls   int
}

func (f *fakeAuth) Login(_ context.Context, creds model.Credentials) (*api.Session, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &api.Session{User: f.profile, Token: "tok"}, nil
}

func (f *fakeAuth) Register(_ context.Context, reg model.Registration) (*api.Session, error) {
	f.mu.Lock()
	f.registerCalls++
	f.mu.Unlock()
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &api.Session{}, nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeAuth) Me(context.Context) (*model.Profile, error) {
	f.mu.Lock()
	f.meCalls++
	gate := f.meGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if f.meErr != nil {
		return nil, f.meErr
	}
	return f.profile, nil
}

func (f *fakeAuth) UpdateProfile(_ context.Context, u model.ProfileUpdate) (*model.Profile, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	p := *f.profile
	p.FirstName = u.FirstName
	return &p, nil
}

type fakeProducts struct {
	queries []model.ProductQuery
	page    model.ProductPage
	listErr error
	nextID  int64
}

func (f *fakeProducts) List(_ context.Context, q model.ProductQuery) (model.ProductPage, error) {
	f.queries = append(f.queries, q)
	if f.listErr != nil {
		return model.ProductPage{}, f.listErr
	}
	return f.page, nil
}

func (f *fakeProducts) Get(_ context.Context, id int64) (*model.Product, error) {
	return &model.Product{ID: id, Title: "Selected"}, nil
}

func (f *fakeProducts) Categories(context.Context) ([]string, error) {
	return []string{"lamps", "desks"}, nil
}

func (f *fakeProducts) Create(_ context.Context, in model.ProductInput) (*model.Product, error) {
	f.nextID++
	return &model.Product{ID: 100 + f.nextID, Title: in.Title, Price: in.Price}, nil
}

func (f *fakeProducts) Update(_ context.Context, id int64, in model.ProductInput) (*model.Product, error) {
	return &model.Product{ID: id, Title: in.Title, Price: in.Price}, nil
}

func (f *fakeProducts) Delete(context.Context, int64) error { return nil }

type fakeOrders struct {
	created   []model.OrderRequest
	createErr error
	list      []model.OrderSummary
	nextID    int64
}

func (f *fakeOrders) Create(_ context.Context, req model.OrderRequest) (*model.OrderDetail, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	f.nextID++
	return &model.OrderDetail{ID: f.nextID, Status: model.OrderStatusProcessing}, nil
}

func (f *fakeOrders) ListMine(context.Context) ([]model.OrderSummary, error) {
	return f.list, nil
}

func (f *fakeOrders) Get(_ context.Context, id int64) (*model.OrderDetail, error) {
	return &model.OrderDetail{ID: id, Status: model.OrderStatusShipped}, nil
}

type harness struct {
	store    *Store
	kv       repository.KVStore
	auth     *fakeAuth
	products *fakeProducts
	orders   *fakeOrders
	notes    *notify.Recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithKV(t, repository.NewMemoryKVStore())
}

func newHarnessWithKV(t *testing.T, kv repository.KVStore) *harness {
	t.Helper()
	h := &harness{
		kv:       kv,
		auth:     &fakeAuth{profile: &model.Profile{ID: 1, Email: "a@b.com", FirstName: "Ann"}},
		products: &fakeProducts{},
		orders:   &fakeOrders{},
		notes:    notify.NewRecorder(32),
	}
	h.store = New(context.Background(), Deps{
		KV:       kv,
		Auth:     h.auth,
		Products: h.products,
		Orders:   h.orders,
		Notifier: h.notes,
		PageSize: 8,
	})
	return h
}

func fakeProduct(f *gofakeit.Faker, id int64) model.Product {
	return model.Product{
		ID:       id,
		Title:    f.ProductName(),
		Price:    decimal.NewFromFloat(f.Price(1, 500)).Round(2),
		Category: f.Word(),
		Image:    f.URL(),
	}
}
