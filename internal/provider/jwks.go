package provider

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const jwksCacheTTL = time.Hour

type jwk struct {
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	N   string `json:"n"` // base64url modulus
	E   string `json:"e"` // base64url exponent
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

// KeySet fetches and caches a provider's published JWKS. Keys are re-fetched
// at most once per hour, with ETag revalidation when the provider supplies
// one. Safe for concurrent use.
type KeySet struct {
	url  string
	http *http.Client

	mu        sync.RWMutex
	keys      *jwkSet
	fetchedAt time.Time
	etag      string
}

// NewKeySet creates a JWKS client for the given endpoint.
func NewKeySet(url string, client *http.Client) *KeySet {
	return &KeySet{url: url, http: client}
}

// Keyfunc adapts the key set to golang-jwt's verification callback, picking
// the RSA key matching the token's kid header.
func (k *KeySet) Keyfunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token has no kid header")
		}
		return k.RSAKey(ctx, kid)
	}
}

// RSAKey returns the public key with the given kid, fetching the set when
// the cache is cold or stale.
func (k *KeySet) RSAKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	set, err := k.get(ctx)
	if err != nil {
		return nil, err
	}

	for _, key := range set.Keys {
		if key.Kid == kid && strings.EqualFold(key.Kty, "RSA") {
			return parseRSAKey(key)
		}
	}

	// The provider may have rotated keys since the last fetch.
	set, err = k.refresh(ctx)
	if err != nil {
		return nil, err
	}
	for _, key := range set.Keys {
		if key.Kid == kid && strings.EqualFold(key.Kty, "RSA") {
			return parseRSAKey(key)
		}
	}

	return nil, fmt.Errorf("no RSA key with kid %q", kid)
}

func (k *KeySet) get(ctx context.Context) (*jwkSet, error) {
	k.mu.RLock()
	set := k.keys
	fresh := time.Since(k.fetchedAt) < jwksCacheTTL
	k.mu.RUnlock()

	if set != nil && fresh {
		return set, nil
	}
	return k.refresh(ctx)
}

func (k *KeySet) refresh(ctx context.Context) (*jwkSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.url, nil)
	if err != nil {
		return nil, err
	}

	k.mu.RLock()
	if k.etag != "" {
		req.Header.Set("If-None-Match", k.etag)
	}
	k.mu.RUnlock()

	resp, err := k.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		k.mu.Lock()
		set := k.keys
		k.fetchedAt = time.Now()
		k.mu.Unlock()
		return set, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jwks endpoint returned status %d", resp.StatusCode)
	}

	var set jwkSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to decode jwks: %w", err)
	}

	k.mu.Lock()
	k.keys = &set
	k.fetchedAt = time.Now()
	k.etag = resp.Header.Get("ETag")
	k.mu.Unlock()

	return &set, nil
}

func parseRSAKey(key jwk) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(key.N)
	if err != nil {
		return nil, fmt.Errorf("bad modulus in jwk %s: %w", key.Kid, err)
	}
	eb, err := base64.RawURLEncoding.DecodeString(key.E)
	if err != nil {
		return nil, fmt.Errorf("bad exponent in jwk %s: %w", key.Kid, err)
	}

	e := 0
	for _, b := range eb {
		e = (e << 8) | int(b)
	}
	if e == 0 {
		e = 65537
	}

	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}, nil
}
