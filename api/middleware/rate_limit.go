package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/shareit-backend/api/responses"
	pkgerrors "github.com/angelmondragon/shareit-backend/pkg/errors"
	"github.com/angelmondragon/shareit-backend/pkg/logger"
)

// RateLimitStore is satisfied by *redis.Client.
type RateLimitStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// SignupPolicy bounds how often one client IP or one email may register.
// A zero limit switches that counter off.
type SignupPolicy struct {
	Window     time.Duration
	IPLimit    int
	EmailLimit int
}

// signupCounter names one fixed window checked before POST /users.
type signupCounter struct {
	kind  string
	limit int
	// subject returns the counted value, or "" to skip the counter for this request.
	subject func(r *http.Request, body []byte) string
}

// SignupRateLimit counts signups per client IP and per hashed, lower-cased email.
// Exceeding either window answers 429 before the user is created.
func SignupRateLimit(policy SignupPolicy, store RateLimitStore, logg *logger.Logger) func(http.Handler) http.Handler {
	counters := make([]signupCounter, 0, 2)
	if policy.IPLimit > 0 {
		counters = append(counters, signupCounter{kind: "ip", limit: policy.IPLimit, subject: func(r *http.Request, _ []byte) string {
			return clientIP(r)
		}})
	}
	if policy.EmailLimit > 0 {
		counters = append(counters, signupCounter{kind: "email", limit: policy.EmailLimit, subject: func(_ *http.Request, body []byte) string {
			if email := signupEmail(body); email != "" {
				return hashValue(email)
			}
			return ""
		}})
	}

	return func(next http.Handler) http.Handler {
		if store == nil || policy.Window <= 0 || len(counters) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			for _, counter := range counters {
				subject := counter.subject(r, body)
				if subject == "" {
					continue
				}
				allowed, attempts, err := store.FixedWindowAllow(ctx, "signup:"+counter.kind+":"+subject, int64(counter.limit), policy.Window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if !allowed {
					if logg != nil {
						logg.Warn(logg.WithFields(ctx, map[string]any{
							"scope":          counter.kind,
							"subject":        subject,
							"attempts":       attempts,
							"limit":          counter.limit,
							"window_seconds": int(policy.Window.Seconds()),
						}), "signup.rate_limit.blocked")
					}
					responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many signup attempts"))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the socket peer.
func clientIP(r *http.Request) string {
	if first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// signupEmail returns the normalized email of a signup payload, "" when absent or unparsable.
func signupEmail(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(payload, &body) != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Email))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
