package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"transfers24/internal/payment"
)

// CallbackDeduper remembers gateway callbacks that were already verified.
type CallbackDeduper interface {
	Processed(ctx context.Context, sessionID, orderID string) (bool, error)
	MarkProcessed(ctx context.Context, sessionID, orderID string) error
}

func callbackKey(prefix, sessionID, orderID string) string {
	return prefix + ":" + sessionID + ":" + orderID
}

type redisCallbackDeduper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (d *redisCallbackDeduper) Processed(ctx context.Context, sessionID, orderID string) (bool, error) {
	n, err := d.client.Exists(ctx, callbackKey(d.prefix, sessionID, orderID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *redisCallbackDeduper) MarkProcessed(ctx context.Context, sessionID, orderID string) error {
	return d.client.Set(ctx, callbackKey(d.prefix, sessionID, orderID), "1", d.ttl).Err()
}

type memoryCallbackDeduper struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	ttl    time.Duration
	nextGC time.Time
}

func newMemoryCallbackDeduper(ttl time.Duration) *memoryCallbackDeduper {
	return &memoryCallbackDeduper{
		seen:   make(map[string]time.Time),
		ttl:    ttl,
		nextGC: time.Now().Add(ttl),
	}
}

func (d *memoryCallbackDeduper) Processed(_ context.Context, sessionID, orderID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	exp, ok := d.seen[callbackKey("", sessionID, orderID)]
	return ok && exp.After(time.Now()), nil
}

func (d *memoryCallbackDeduper) MarkProcessed(_ context.Context, sessionID, orderID string) error {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.seen[callbackKey("", sessionID, orderID)] = now.Add(d.ttl)
	if now.After(d.nextGC) {
		for key, exp := range d.seen {
			if exp.Before(now) {
				delete(d.seen, key)
			}
		}
		d.nextGC = now.Add(d.ttl)
	}
	return nil
}

// NewCallbackDeduper builds a Redis deduper and falls back to in-memory on failure.
func NewCallbackDeduper(addr, pass string, db int, ttl time.Duration) (CallbackDeduper, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if addr == "" {
		return newMemoryCallbackDeduper(ttl), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return newMemoryCallbackDeduper(ttl), err
	}

	return &redisCallbackDeduper{
		client: client,
		prefix: "p24:callback",
		ttl:    ttl,
	}, nil
}

// CallbackDedup acknowledges repeated status callbacks for an already verified
// session/order pair without running them again.
func CallbackDedup(deduper CallbackDeduper) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if deduper == nil {
				return next(c)
			}

			sessionID := c.FormValue(payment.FieldSessionID)
			orderID := c.FormValue(payment.FieldOrderID)
			if sessionID == "" || orderID == "" {
				return next(c)
			}

			done, err := deduper.Processed(c.Request().Context(), sessionID, orderID)
			if err != nil {
				return next(c)
			}
			if done {
				// The gateway only needs "OK" to stop retrying.
				return c.String(http.StatusOK, "OK")
			}

			return next(c)
		}
	}
}
