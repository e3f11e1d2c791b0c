package auth

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

const testClientID = "client-123.apps.googleusercontent.com"

type googleClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name,omitempty"`
	GivenName     string `json:"given_name,omitempty"`
	FamilyName    string `json:"family_name,omitempty"`
}

// certTransport answers every request with Google's key set for one RSA key
type certTransport struct {
	key   *rsa.PrivateKey
	kid   string
	hits  atomic.Int32
	down  atomic.Bool
	hosts chan string
}

func newCertTransport(t *testing.T) *certTransport {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return &certTransport{key: key, kid: "kid-1", hosts: make(chan string, 64)}
}

func (ct *certTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	ct.hits.Add(1)
	select {
	case ct.hosts <- r.URL.Host:
	default:
	}
	if ct.down.Load() {
		return &http.Response{StatusCode: http.StatusServiceUnavailable, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}, Request: r}, nil
	}

	body, err := json.Marshal(map[string]any{
		"keys": []map[string]string{{
			"kid": ct.kid,
			"kty": "RSA",
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(ct.key.PublicKey.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(ct.key.PublicKey.E)).Bytes()),
		}},
	})
	if err != nil {
		return nil, err
	}
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "public, max-age=600")
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(body)), Header: h, Request: r}, nil
}

func (ct *certTransport) verifier(t *testing.T, clientID string) *GoogleVerifier {
	t.Helper()
	v, err := NewGoogleVerifier(context.Background(), clientID, option.WithHTTPClient(&http.Client{Transport: ct}))
	require.NoError(t, err)
	return v
}

func (ct *certTransport) sign(t *testing.T, claims googleClaims, kid string) string {
	return signWith(t, ct.key, claims, kid)
}

func signWith(t *testing.T, key *rsa.PrivateKey, claims googleClaims, kid string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	s, err := token.SignedString(key)
	require.NoError(t, err)
	return s
}

func validGoogleClaims() googleClaims {
	return googleClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://accounts.google.com",
			Subject:   "1098765",
			Audience:  jwt.ClaimStrings{testClientID},
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email:         "g@x.com",
		EmailVerified: true,
		Name:          "Grace Hopper",
		GivenName:     "Grace",
		FamilyName:    "Hopper",
	}
}

func TestGoogleVerifierAccepts(t *testing.T) {
	ct := newCertTransport(t)
	v := ct.verifier(t, testClientID)

	id, err := v.Verify(context.Background(), ct.sign(t, validGoogleClaims(), ct.kid))
	require.NoError(t, err)
	assert.Equal(t, &Identity{Subject: "1098765", Email: "g@x.com", Name: "Grace Hopper", GivenName: "Grace", FamilyName: "Hopper"}, id)
	assert.Equal(t, "www.googleapis.com", <-ct.hosts)

	_, err = v.Verify(context.Background(), ct.sign(t, validGoogleClaims(), ct.kid))
	require.NoError(t, err)
	assert.Equal(t, int32(1), ct.hits.Load(), "keys are cached")
}

func TestGoogleVerifierRejects(t *testing.T) {
	ct := newCertTransport(t)

	cases := map[string]func(c *googleClaims){
		"wrong audience":     func(c *googleClaims) { c.Audience = jwt.ClaimStrings{"someone-else"} },
		"wrong issuer":       func(c *googleClaims) { c.Issuer = "https://evil.example.com" },
		"expired":            func(c *googleClaims) { c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour)) },
		"unverified email":   func(c *googleClaims) { c.EmailVerified = false },
		"missing email":      func(c *googleClaims) { c.Email = "" },
		"missing expiration": func(c *googleClaims) { c.ExpiresAt = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			v := ct.verifier(t, testClientID)
			claims := validGoogleClaims()
			mutate(&claims)

			_, err := v.Verify(context.Background(), ct.sign(t, claims, ct.kid))
			assert.ErrorIs(t, err, ErrUpstream)
		})
	}
}

func TestGoogleVerifierUnknownKeysDoNotRefetch(t *testing.T) {
	ct := newCertTransport(t)
	v := ct.verifier(t, testClientID)

	for i := 0; i < 20; i++ {
		_, err := v.Verify(context.Background(), ct.sign(t, validGoogleClaims(), fmt.Sprintf("bogus-%d", i)))
		assert.ErrorIs(t, err, ErrUpstream)
	}
	assert.Equal(t, int32(1), ct.hits.Load(), "one key set fetch serves every lookup until max-age")

	_, err := v.Verify(context.Background(), ct.sign(t, validGoogleClaims(), ct.kid))
	assert.NoError(t, err)
	assert.Equal(t, int32(1), ct.hits.Load())
}

func TestGoogleVerifierForeignKey(t *testing.T) {
	ct := newCertTransport(t)
	v := ct.verifier(t, testClientID)

	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), signWith(t, other, validGoogleClaims(), ct.kid))
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestGoogleVerifierCertsUnavailable(t *testing.T) {
	ct := newCertTransport(t)
	ct.down.Store(true)
	v := ct.verifier(t, testClientID)

	_, err := v.Verify(context.Background(), ct.sign(t, validGoogleClaims(), ct.kid))
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestGoogleVerifierRequiresClientID(t *testing.T) {
	ct := newCertTransport(t)
	v := ct.verifier(t, "")

	_, err := v.Verify(context.Background(), ct.sign(t, validGoogleClaims(), ct.kid))
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, int32(0), ct.hits.Load())
}

func TestGoogleVerifierMalformed(t *testing.T) {
	ct := newCertTransport(t)
	v := ct.verifier(t, testClientID)

	_, err := v.Verify(context.Background(), "x.y.z")
	assert.ErrorIs(t, err, ErrUpstream)
}
