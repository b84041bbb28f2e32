package ratelimit

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

// Quota headers attached to every evaluated response.
const (
	HeaderLimit      = "X-RateLimit-Limit"
	HeaderRemaining  = "X-RateLimit-Remaining"
	HeaderReset      = "X-RateLimit-Reset"
	HeaderRetryAfter = "Retry-After"
)

// deniedBody is the JSON payload of a 429 response.
type deniedBody struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int64  `json:"retryAfter"`
}

// Middleware wraps an existing http.Handler and performs admission control
// before forwarding the request. Denied requests are answered with 429, a
// Retry-After header and a JSON body; allowed requests are forwarded with
// quota headers attached to the eventual response.
//
// Store failures never surface as a 5xx: the limiter's FailurePolicy
// resolves them and the middleware just logs the degradation.
//
// Example:
//
//	limited := ratelimit.Middleware(limiter, ratelimit.WithKeyFunc(ratelimit.ByIP))
//	http.ListenAndServe(":8080", limited(mux))
func Middleware(limiter Limiter, opts ...Option) func(http.Handler) http.Handler {
	cfg := NewConfig(opts...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip-check runs before key generation so skipped requests
			// never cost a store read.
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := cfg.KeyFunc(r)
			requestID := uuid.NewString()

			decision, err := limiter.Evaluate(r.Context(), key)
			if err != nil {
				cfg.Logger.Errorf("rate limiting degraded for key %q (request %s): %v", key, requestID, err)
			}

			writeQuotaHeaders(w.Header(), decision)

			if !decision.Allowed {
				cfg.Logger.Debugf("denied key %q (request %s): remaining=%d tier=%q", key, requestID, decision.Remaining, decision.Tier)
				writeDenied(w, decision)
				return
			}

			cfg.Logger.Debugf("allowed key %q (request %s): remaining=%d", key, requestID, decision.Remaining)
			next.ServeHTTP(w, r)
		})
	}
}

func writeQuotaHeaders(h http.Header, d Decision) {
	h.Set(HeaderLimit, strconv.FormatInt(d.Limit, 10))
	h.Set(HeaderRemaining, strconv.FormatInt(d.Remaining, 10))
	if !d.ResetAt.IsZero() {
		h.Set(HeaderReset, strconv.FormatInt(d.ResetAt.Unix(), 10))
	}
}

func writeDenied(w http.ResponseWriter, d Decision) {
	retryAfter := d.RetryAfterSeconds()
	if retryAfter <= 0 {
		retryAfter = 1
	}

	message := "you have sent too many requests to this service, slow down please"
	if d.Tier != "" {
		message = "you have exceeded the " + d.Tier + " rate limit, slow down please"
	}

	w.Header().Set(HeaderRetryAfter, strconv.FormatInt(retryAfter, 10))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(deniedBody{
		Error:      "Too Many Requests",
		Message:    message,
		RetryAfter: retryAfter,
	})
}
