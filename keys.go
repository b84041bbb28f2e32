package ratelimit

import (
	"encoding/base64"
	"encoding/json"
	"net"
	"net/http"
	"strings"
)

// KeyFunc derives a limiter key from an HTTP request. It must be
// deterministic: the same logical request always yields the same key, which
// is what lets concurrent requests land on the same counter. A KeyFunc never
// fails; when identity cannot be extracted it falls back to a sentinel so a
// malformed request is still throttled as a single bucket rather than
// escaping rate limiting entirely.
type KeyFunc func(r *http.Request) string

// Sentinel identities used when extraction fails.
const (
	AnonymousKey    = "anonymous"
	InvalidTokenKey = "invalid-token"
)

// ByIP keys requests by client IP: the first hop of X-Forwarded-For when
// present, otherwise the host part of RemoteAddr.
func ByIP(r *http.Request) string {
	return "ip:" + clientIP(r)
}

// ByIPPath keys requests by client IP and URL path, so each endpoint gets
// its own budget per client.
func ByIPPath(r *http.Request) string {
	return "ip:" + clientIP(r) + ":" + r.URL.Path
}

// ByHeader keys requests by the value of the named header, typically an API
// key. Requests without the header share the anonymous bucket.
func ByHeader(name string) KeyFunc {
	return func(r *http.Request) string {
		value := strings.TrimSpace(r.Header.Get(name))
		if value == "" {
			value = AnonymousKey
		}
		return "key:" + value
	}
}

// ByBearerSubject keys requests by the subject claim of the bearer token in
// the Authorization header. The token is decoded, not verified; verification
// belongs to the auth layer, this only needs a stable identity. Requests
// without a bearer token map to the anonymous bucket, undecodable tokens to
// the invalid-token bucket.
func ByBearerSubject(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "user:" + AnonymousKey
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "user:" + InvalidTokenKey
	}
	sub, ok := bearerSubject(strings.TrimSpace(auth[len(prefix):]))
	if !ok {
		return "user:" + InvalidTokenKey
	}
	return "user:" + sub
}

// Compose joins the outputs of several generators with a separator to build
// compound keys, e.g. per-user-per-endpoint.
func Compose(sep string, fns ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(fns))
		for _, fn := range fns {
			parts = append(parts, fn(r))
		}
		return strings.Join(parts, sep)
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// bearerSubject extracts the sub claim from an unverified JWT payload.
func bearerSubject(token string) (string, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", false
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", false
	}
	var claims struct {
		Subject string `json:"sub"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}
