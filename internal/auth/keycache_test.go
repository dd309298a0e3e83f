package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeys(t *testing.T, kids ...string) map[string]*rsa.PublicKey {
	t.Helper()
	keys := make(map[string]*rsa.PublicKey, len(kids))
	for _, kid := range kids {
		priv, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		keys[kid] = &priv.PublicKey
	}
	return keys
}

func TestKeyCacheFetchesOnce(t *testing.T) {
	fetched := 0
	keys := testKeys(t, "kid-1")
	cache := NewKeyCache(func(ctx context.Context) (map[string]*rsa.PublicKey, error) {
		fetched++
		return keys, nil
	}, time.Hour)

	for i := 0; i < 3; i++ {
		got, err := cache.Key(context.Background(), "kid-1")
		require.NoError(t, err)
		assert.Same(t, keys["kid-1"], got)
	}
	assert.Equal(t, 1, fetched)
}

func TestKeyCacheRefreshesOnUnknownKid(t *testing.T) {
	fetched := 0
	old := testKeys(t, "kid-old")
	rotated := testKeys(t, "kid-new")
	cache := NewKeyCache(func(ctx context.Context) (map[string]*rsa.PublicKey, error) {
		fetched++
		if fetched == 1 {
			return old, nil
		}
		return rotated, nil
	}, time.Hour)

	_, err := cache.Key(context.Background(), "kid-old")
	require.NoError(t, err)

	// kid-new is not cached, so one forced refresh picks up the rotation.
	got, err := cache.Key(context.Background(), "kid-new")
	require.NoError(t, err)
	assert.Same(t, rotated["kid-new"], got)
	assert.Equal(t, 2, fetched)
}

func TestKeyCacheUnknownKidAfterRefresh(t *testing.T) {
	cache := NewKeyCache(func(ctx context.Context) (map[string]*rsa.PublicKey, error) {
		return testKeys(t, "kid-1"), nil
	}, time.Hour)

	_, err := cache.Key(context.Background(), "kid-missing")
	assert.ErrorContains(t, err, "kid-missing")
}

func TestKeyCacheFetchError(t *testing.T) {
	cache := NewKeyCache(func(ctx context.Context) (map[string]*rsa.PublicKey, error) {
		return nil, errors.New("jwks down")
	}, time.Hour)

	_, err := cache.Key(context.Background(), "kid-1")
	assert.ErrorContains(t, err, "jwks down")
}

func TestKeyCacheInvalidate(t *testing.T) {
	fetched := 0
	cache := NewKeyCache(func(ctx context.Context) (map[string]*rsa.PublicKey, error) {
		fetched++
		return testKeys(t, "kid-1"), nil
	}, time.Hour)

	_, err := cache.Key(context.Background(), "kid-1")
	require.NoError(t, err)
	cache.Invalidate()
	_, err = cache.Key(context.Background(), "kid-1")
	require.NoError(t, err)
	assert.Equal(t, 2, fetched)
}

func TestFetchJWKS(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// 65537 encodes to "AQAB".
		_, _ = w.Write([]byte(`{"keys":[
			{"kty":"RSA","kid":"k1","n":"AQAB","e":"AQAB"},
			{"kty":"EC","kid":"k2"}
		]}`))
	}))
	defer srv.Close()

	keys, err := fetchJWKS(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, 65537, keys["k1"].E)
}

func TestFetchJWKSNoUsableKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"keys":[{"kty":"EC","kid":"k2"}]}`))
	}))
	defer srv.Close()

	_, err := fetchJWKS(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "no usable RSA keys")
}

func TestMiddlewareNilVerifierPassesThrough(t *testing.T) {
	called := false
	h := Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	v := &Verifier{}
	h := Middleware(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
