package repository

import "context"

type namespacedKVStore struct {
	inner  KVStore
	prefix string
}

// Namespaced scopes every key under ns, e.g. "shop:cart". An empty ns returns
// inner unchanged.
func Namespaced(inner KVStore, ns string) KVStore {
	if ns == "" {
		return inner
	}
	return &namespacedKVStore{inner: inner, prefix: ns + ":"}
}

func (s *namespacedKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *namespacedKVStore) Set(ctx context.Context, key string, value []byte) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s *namespacedKVStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

func (s *namespacedKVStore) SetNX(ctx context.Context, key string, value []byte) (bool, error) {
	return s.inner.SetNX(ctx, s.prefix+key, value)
}
