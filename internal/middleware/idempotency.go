package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/pkordes/trip-planner/backend/internal/auth"
)

const (
	idempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
)

// ErrCacheMiss is returned by a ResponseCache when no entry exists.
var ErrCacheMiss = errors.New("cache miss")

// ResponseCache stores serialized responses by key.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisResponseCache is a ResponseCache backed by Redis strings.
type RedisResponseCache struct {
	client *redis.Client
}

// NewRedisResponseCache returns a ResponseCache using client.
func NewRedisResponseCache(client *redis.Client) *RedisResponseCache {
	return &RedisResponseCache{client: client}
}

func (c *RedisResponseCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return data, err
}

func (c *RedisResponseCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

type cachedResponse struct {
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// NewIdempotencyHandler replays the first response to a POST or PUT carrying an
// Idempotency-Key header for 24 hours. Keys are scoped to the caller, method
// and path. Only 2xx responses are cached, and a cache outage never fails the
// request.
func NewIdempotencyHandler(cache ResponseCache, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(idempotencyHeader)
			if key == "" || (r.Method != http.MethodPost && r.Method != http.MethodPut) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			cacheKey := "idempotency:" + auth.UserID(ctx).String() + ":" + r.Method + ":" + r.URL.Path + ":" + key

			data, err := cache.Get(ctx, cacheKey)
			switch {
			case err == nil:
				var cached cachedResponse
				if err := json.Unmarshal(data, &cached); err == nil {
					if cached.ContentType != "" {
						w.Header().Set("Content-Type", cached.ContentType)
					}
					w.Header().Set("Idempotent-Replayed", "true")
					w.WriteHeader(cached.StatusCode)
					_, _ = w.Write(cached.Body)
					return
				}
				log.WarnContext(ctx, "idempotency: corrupt cache entry", "key", cacheKey)
			case !errors.Is(err, ErrCacheMiss):
				log.WarnContext(ctx, "idempotency: cache lookup failed", "error", err)
			}

			var body bytes.Buffer
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&body)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			// Only successes are replayed; errors such as 409 must reach the handler again on retry.
			if status < http.StatusOK || status >= http.StatusMultipleChoices {
				return
			}
			raw, err := json.Marshal(cachedResponse{
				StatusCode:  status,
				ContentType: ww.Header().Get("Content-Type"),
				Body:        body.Bytes(),
			})
			if err != nil {
				return
			}
			if err := cache.Set(ctx, cacheKey, raw, idempotencyTTL); err != nil {
				log.WarnContext(ctx, "idempotency: cache store failed", "error", err)
			}
		})
	}
}
