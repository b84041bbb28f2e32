package ratelimit_test

import (
	"encoding/base64"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/secondsky/ratelimit"
)

func bearerToken(payload string) string {
	encode := base64.RawURLEncoding.EncodeToString
	return encode([]byte(`{"alg":"none"}`)) + "." + encode([]byte(payload)) + ".sig"
}

func TestByIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/upload", nil)
	r.RemoteAddr = "203.0.113.5:41000"
	assert.Equal(t, "ip:203.0.113.5", ratelimit.ByIP(r))

	// The first forwarded hop wins over RemoteAddr.
	r.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	assert.Equal(t, "ip:198.51.100.7", ratelimit.ByIP(r))
}

func TestByIPPath(t *testing.T) {
	r := httptest.NewRequest("POST", "/upload", nil)
	r.RemoteAddr = "203.0.113.5:41000"
	assert.Equal(t, "ip:203.0.113.5:/upload", ratelimit.ByIPPath(r))
}

func TestByHeader(t *testing.T) {
	keyFn := ratelimit.ByHeader("X-API-Key")

	r := httptest.NewRequest("GET", "/", nil)
	assert.Equal(t, "key:"+ratelimit.AnonymousKey, keyFn(r))

	r.Header.Set("X-API-Key", "abc123")
	assert.Equal(t, "key:abc123", keyFn(r))
}

func TestByBearerSubject(t *testing.T) {
	tt := []struct {
		desc string
		auth string
		want string
	}{
		{
			desc: "no authorization header",
			auth: "",
			want: "user:" + ratelimit.AnonymousKey,
		},
		{
			desc: "valid token subject",
			auth: "Bearer " + bearerToken(`{"sub":"42"}`),
			want: "user:42",
		},
		{
			desc: "not a bearer scheme",
			auth: "Basic dXNlcjpwYXNz",
			want: "user:" + ratelimit.InvalidTokenKey,
		},
		{
			desc: "malformed token",
			auth: "Bearer not-a-jwt",
			want: "user:" + ratelimit.InvalidTokenKey,
		},
		{
			desc: "token without subject",
			auth: "Bearer " + bearerToken(`{"iss":"someone"}`),
			want: "user:" + ratelimit.InvalidTokenKey,
		},
	}

	for _, ts := range tt {
		t.Run(ts.desc, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if ts.auth != "" {
				r.Header.Set("Authorization", ts.auth)
			}
			assert.Equal(t, ts.want, ratelimit.ByBearerSubject(r))
		})
	}
}

func TestCompose(t *testing.T) {
	keyFn := ratelimit.Compose("|", ratelimit.ByBearerSubject, ratelimit.ByIPPath)

	r := httptest.NewRequest("POST", "/upload", nil)
	r.RemoteAddr = "203.0.113.5:41000"
	r.Header.Set("Authorization", "Bearer "+bearerToken(`{"sub":"42"}`))

	want := "user:42|ip:203.0.113.5:/upload"
	assert.Equal(t, want, keyFn(r))

	// Replaying the same request yields the same key.
	assert.Equal(t, want, keyFn(r))
}
