// Package auth verifies bearer tokens against the identity provider's
// published JWKS. Signing keys are fetched over HTTP behind a circuit
// breaker and cached in-process.
package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Shorabul/Homigo-Server/pkg/httpclient"
	"github.com/Shorabul/Homigo-Server/pkg/middleware"
)

// Claims represents the identity claims carried by an access token.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// jwk is a single RSA key entry in a JWKS document.
type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

// VerifierConfig holds configuration for the JWKS token verifier.
type VerifierConfig struct {
	JWKSURL  string
	Issuer   string
	Audience string
	KeyTTL   time.Duration
}

// Verifier validates RS256 access tokens against the identity provider's
// public key set. Keys are cached by kid and refreshed after KeyTTL or on
// an unknown kid.
type Verifier struct {
	cfg    VerifierConfig
	client *httpclient.CircuitBreakerClient
	logger *slog.Logger

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

// NewVerifier creates a new JWKS-backed token verifier.
func NewVerifier(cfg VerifierConfig, client *httpclient.CircuitBreakerClient, logger *slog.Logger) *Verifier {
	if cfg.KeyTTL <= 0 {
		cfg.KeyTTL = 15 * time.Minute
	}
	return &Verifier{
		cfg:    cfg,
		client: client,
		logger: logger,
		keys:   make(map[string]*rsa.PublicKey),
	}
}

// Verify parses and validates a token, returning the verified principal.
// Any failure (bad signature, expiry, wrong issuer or audience, unknown
// key) is returned as an error; callers translate it to a single 401.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*middleware.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token missing kid header")
		}

		return v.keyFor(ctx, kid)
	},
		jwt.WithIssuer(v.cfg.Issuer),
		jwt.WithAudience(v.cfg.Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid access token claims")
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("token missing email claim")
	}

	return &middleware.Principal{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
	}, nil
}

// keyFor returns the public key for the given kid, refreshing the key set
// when the cache is stale or the kid is unknown.
func (v *Verifier) keyFor(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	key, ok := v.keys[kid]
	fresh := time.Since(v.fetchedAt) < v.cfg.KeyTTL
	v.mu.RUnlock()

	if ok && fresh {
		return key, nil
	}

	if err := v.refresh(ctx); err != nil {
		// A stale key beats no key when the provider is unreachable.
		if ok {
			v.logger.WarnContext(ctx, "jwks refresh failed, using cached key",
				slog.String("kid", kid),
				slog.String("error", err.Error()),
			)
			return key, nil
		}
		return nil, err
	}

	v.mu.RLock()
	key, ok = v.keys[kid]
	v.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("signing key %q not found in jwks", kid)
	}

	return key, nil
}

// refresh fetches the JWKS document and replaces the cached key set.
func (v *Verifier) refresh(ctx context.Context) error {
	resp, err := v.client.Get(ctx, v.cfg.JWKSURL)
	if err != nil {
		return fmt.Errorf("fetch jwks: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read jwks body: %w", err)
	}

	var doc jwks
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("decode jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		pub, err := parseRSAKey(k)
		if err != nil {
			v.logger.WarnContext(ctx, "skipping unparsable jwks key",
				slog.String("kid", k.Kid),
				slog.String("error", err.Error()),
			)
			continue
		}
		keys[k.Kid] = pub
	}

	if len(keys) == 0 {
		return fmt.Errorf("jwks document contains no usable RSA keys")
	}

	v.mu.Lock()
	v.keys = keys
	v.fetchedAt = time.Now().UTC()
	v.mu.Unlock()

	v.logger.DebugContext(ctx, "jwks refreshed",
		slog.Int("keys", len(keys)),
	)

	return nil
}

// parseRSAKey builds an rsa.PublicKey from the base64url modulus and exponent.
func parseRSAKey(k jwk) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}

	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}

	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}
	if e <= 0 {
		return nil, fmt.Errorf("invalid exponent")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}
