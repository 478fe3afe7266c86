package session

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/clientcore/internal/api"
	"storefront/clientcore/internal/migration"
	"storefront/clientcore/internal/repository"
	"storefront/clientcore/internal/store"
)

type backend struct {
	srv  *httptest.Server
	hits atomic.Int32
}

func newBackend(t *testing.T, status int, body string) *backend {
	t.Helper()
	b := &backend{}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func newStore(t *testing.T, kv repository.KVStore, b *backend) *store.Store {
	t.Helper()
	client := api.New(api.Config{BaseURL: b.srv.URL, Timeout: 2 * time.Second}, kv)
	s := store.New(context.Background(), store.Deps{KV: kv, Auth: api.NewAuthAPI(client)})
	client.OnUnauthorized(s.ForceLogout)
	return s
}

func token(t *testing.T, exp time.Time) []byte {
	t.Helper()
	s, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.RegisteredClaims{
		ExpiresAt: gojwt.NewNumericDate(exp),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	return []byte(s)
}

func TestBootstrap_SkipsWithoutFlag(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKVStore()
	b := newBackend(t, http.StatusOK, `{"user":{"id":1}}`)
	s := newStore(t, kv, b)

	assert.Equal(t, OutcomeSkipped, NewBootstrapper(kv, s, nil).Run(ctx))
	assert.Equal(t, int32(0), b.hits.Load())
	assert.Equal(t, store.StatusAnonymous, s.State().Auth.Status)
}

func TestBootstrap_Restores(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKVStore()
	require.NoError(t, repository.SetBool(ctx, kv, repository.KeyAuthenticated, true))
	require.NoError(t, kv.Set(ctx, repository.KeyToken, token(t, time.Now().Add(time.Hour))))
	b := newBackend(t, http.StatusOK, `{"user":{"id":9,"email":"a@b.com","firstName":"Ann"}}`)
	s := newStore(t, kv, b)

	assert.Equal(t, OutcomeRestored, NewBootstrapper(kv, s, nil).Run(ctx))
	auth := s.State().Auth
	assert.True(t, auth.IsAuthenticated)
	require.NotNil(t, auth.User)
	assert.Equal(t, int64(9), auth.User.ID)
}

func TestBootstrap_ServerRejectionClears(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKVStore()
	require.NoError(t, repository.SetBool(ctx, kv, repository.KeyAuthenticated, true))
	b := newBackend(t, http.StatusUnauthorized, `{"error":"Authentication required"}`)
	s := newStore(t, kv, b)

	assert.Equal(t, OutcomeCleared, NewBootstrapper(kv, s, nil).Run(ctx))
	remembered, err := repository.GetBool(ctx, kv, repository.KeyAuthenticated)
	require.NoError(t, err)
	assert.False(t, remembered)
	assert.False(t, s.State().Auth.IsAuthenticated)
}

func TestBootstrap_ExpiredTokenSkipsRequest(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKVStore()
	require.NoError(t, repository.SetBool(ctx, kv, repository.KeyAuthenticated, true))
	require.NoError(t, kv.Set(ctx, repository.KeyToken, token(t, time.Now().Add(-time.Hour))))
	b := newBackend(t, http.StatusOK, `{"user":{"id":1}}`)
	s := newStore(t, kv, b)

	assert.Equal(t, OutcomeCleared, NewBootstrapper(kv, s, nil).Run(ctx))
	assert.Equal(t, int32(0), b.hits.Load())

	remembered, err := repository.GetBool(ctx, kv, repository.KeyAuthenticated)
	require.NoError(t, err)
	assert.False(t, remembered)
	raw, err := kv.Get(ctx, repository.KeyToken)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestStartup_MigratesThenRestores(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKVStore()
	require.NoError(t, repository.SetBool(ctx, kv, repository.KeyAuthenticated, true))
	require.NoError(t, kv.Set(ctx, repository.KeyCart, []byte(`[{"id":1,"quantity":2}]`)))
	b := newBackend(t, http.StatusOK, `{"id":3,"email":"x@y.z"}`)
	s := newStore(t, kv, b)

	res, outcome := Startup(ctx, migration.NewReconciler(kv, s, nil, nil), NewBootstrapper(kv, s, nil))

	assert.Equal(t, migration.OutcomeMigrated, res.Outcome)
	assert.Equal(t, OutcomeRestored, outcome)
	state := s.State()
	require.Len(t, state.Cart.Lines, 1)
	assert.Equal(t, 2, state.Cart.Lines[0].Quantity)
	assert.Equal(t, int64(3), state.Auth.User.ID)
}
