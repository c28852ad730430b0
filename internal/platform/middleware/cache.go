package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/oncology/clinic/internal/platform/cache"
)

const (
	CacheHeader = "X-Cache"
	cacheHit    = "HIT"
	cacheMiss   = "MISS"
)

// KeyFunc derives the cache key for a request. An empty key disables caching
// for that request.
type KeyFunc func(c echo.Context) string

// ListKey keys list routes by entity and normalized query string.
func ListKey(keys cache.Keys) KeyFunc {
	return func(c echo.Context) string {
		return keys.List(c.QueryParams())
	}
}

// bufferedResponseWriter captures the response so it can be stored after the
// handler returns.
type bufferedResponseWriter struct {
	writer     http.ResponseWriter
	buf        *bytes.Buffer
	statusCode int
}

func newBufferedResponseWriter(w http.ResponseWriter) *bufferedResponseWriter {
	return &bufferedResponseWriter{
		writer:     w,
		buf:        &bytes.Buffer{},
		statusCode: http.StatusOK,
	}
}

func (w *bufferedResponseWriter) Header() http.Header {
	return w.writer.Header()
}

func (w *bufferedResponseWriter) Write(b []byte) (int, error) {
	return w.buf.Write(b)
}

func (w *bufferedResponseWriter) WriteHeader(code int) {
	w.statusCode = code
}

func (w *bufferedResponseWriter) flushTo() error {
	w.writer.WriteHeader(w.statusCode)
	if w.buf.Len() > 0 {
		_, err := w.writer.Write(w.buf.Bytes())
		return err
	}
	return nil
}

// ResponseCache serves GET responses from store and records 2xx responses on
// a miss. Store faults are logged and the request falls through to the handler.
func ResponseCache(store cache.Cache, ttl time.Duration, keyFn KeyFunc, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet {
				return next(c)
			}
			key := keyFn(c)
			if key == "" {
				return next(c)
			}
			ctx := req.Context()

			data, ok, err := store.Get(ctx, key)
			if err != nil {
				logger.Warn().Err(err).Str("key", key).Str("request_id", GetRequestID(c)).Msg("cache read failed")
			}
			if ok {
				c.Response().Header().Set(CacheHeader, cacheHit)
				return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, data)
			}

			res := c.Response()
			origWriter := res.Writer
			buf := newBufferedResponseWriter(origWriter)
			res.Writer = buf

			if err := next(c); err != nil {
				res.Writer = origWriter
				return err
			}
			res.Writer = origWriter

			if buf.statusCode >= 200 && buf.statusCode < 300 {
				if err := store.Set(ctx, key, buf.buf.Bytes(), ttl); err != nil {
					logger.Warn().Err(err).Str("key", key).Str("request_id", GetRequestID(c)).Msg("cache write failed")
				}
			}

			res.Header().Set(CacheHeader, cacheMiss)
			return buf.flushTo()
		}
	}
}

// Cacher builds a ResponseCache middleware for a route's key function.
type Cacher func(keyFn KeyFunc) echo.MiddlewareFunc

// NewCacher binds the store, TTL and logger shared by all cached routes.
func NewCacher(store cache.Cache, ttl time.Duration, logger zerolog.Logger) Cacher {
	return func(keyFn KeyFunc) echo.MiddlewareFunc {
		return ResponseCache(store, ttl, keyFn, logger)
	}
}
