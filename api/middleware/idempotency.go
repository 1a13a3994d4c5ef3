package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/shareit-backend/api/responses"
	pkgerrors "github.com/angelmondragon/shareit-backend/pkg/errors"
	"github.com/angelmondragon/shareit-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/shareit-backend/pkg/redis"
)

// IdempotencyHeader opts a mutating request into response replay.
const IdempotencyHeader = "Idempotency-Key"

const (
	replayHeader   = "Idempotent-Replay"
	idempotencyTTL = 24 * time.Hour
)

// idempotentRoutes maps each method to the route patterns that create or decide something.
var idempotentRoutes = map[string][]string{
	http.MethodPost:  {"/users", "/items", "/items/{itemID}/comment", "/bookings", "/requests"},
	http.MethodPatch: {"/bookings/{bookingID}"},
}

func idempotentRoute(method, pattern string) bool {
	for _, candidate := range idempotentRoutes[method] {
		if candidate == pattern {
			return true
		}
	}
	return false
}

// storedResponse is the JSON document kept in redis for one key.
type storedResponse struct {
	Fingerprint string `json:"fingerprint"`
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
}

func (s storedResponse) replay(w http.ResponseWriter) {
	if s.ContentType != "" {
		w.Header().Set("Content-Type", s.ContentType)
	}
	w.Header().Set(replayHeader, "true")
	w.WriteHeader(s.Status)
	_, _ = w.Write(s.Body)
}

type replayer struct {
	store pkgredis.IdempotencyStore
	logg  *logger.Logger
}

// Idempotency replays the response recorded for a repeated Idempotency-Key.
// Requests without the header, and routes outside idempotentRoutes, pass through.
// Server errors are never recorded so the client may retry them.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	rp := replayer{store: store, logg: logg}
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if key == "" || !idempotentRoute(r.Method, routePattern(r)) {
				next.ServeHTTP(w, r)
				return
			}
			rp.serve(w, r, key, next)
		})
	}
}

func (rp replayer) serve(w http.ResponseWriter, r *http.Request, key string, next http.Handler) {
	ctx := r.Context()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		responses.WriteError(ctx, rp.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	storeKey := rp.store.IdempotencyKey(callerScope(r), key)
	fingerprint := requestFingerprint(r.URL.RawQuery, body)

	previous, found, err := rp.lookup(r, storeKey)
	if err != nil {
		responses.WriteError(ctx, rp.logg, w, err)
		return
	}
	if found {
		if previous.Fingerprint != fingerprint {
			responses.WriteError(ctx, rp.logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with a different request").
				WithDetails(map[string]string{"key": key}))
			return
		}
		previous.replay(w)
		return
	}

	capture := &responseCapture{statusRecorder: statusRecorder{ResponseWriter: w}}
	next.ServeHTTP(capture, r)
	if capture.Status() >= http.StatusInternalServerError {
		return
	}
	rp.save(r, storeKey, storedResponse{
		Fingerprint: fingerprint,
		Status:      capture.Status(),
		ContentType: capture.Header().Get("Content-Type"),
		Body:        capture.body.Bytes(),
	})
}

func (rp replayer) lookup(r *http.Request, storeKey string) (storedResponse, bool, error) {
	var stored storedResponse
	raw, err := rp.store.Get(r.Context(), storeKey)
	switch {
	case errors.Is(err, redis.Nil):
		return stored, false, nil
	case err != nil:
		return stored, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency")
	case raw == "":
		return stored, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return stored, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record")
	}
	return stored, true, nil
}

// save logs failures instead of failing the request; the handler already answered.
func (rp replayer) save(r *http.Request, storeKey string, resp storedResponse) {
	payload, err := json.Marshal(resp)
	if err == nil {
		_, err = rp.store.SetNX(r.Context(), storeKey, string(payload), idempotencyTTL)
	}
	if err != nil && rp.logg != nil {
		rp.logg.Error(rp.logg.WithField(r.Context(), "idempotency_key", storeKey), "idempotency.persist_failed", err)
	}
}

// callerScope keeps keys from different callers and routes apart.
func callerScope(r *http.Request) string {
	caller := "anonymous"
	if id, ok := UserIDFromContext(r.Context()); ok {
		caller = strconv.FormatInt(id, 10)
	}
	return caller + "|" + r.Method + "|" + r.URL.Path
}

// requestFingerprint covers the query string because PATCH /bookings/{id} carries its decision there.
func requestFingerprint(rawQuery string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(rawQuery))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

type responseCapture struct {
	statusRecorder
	body bytes.Buffer
}

func (c *responseCapture) Write(b []byte) (int, error) {
	c.body.Write(b)
	return c.statusRecorder.Write(b)
}
