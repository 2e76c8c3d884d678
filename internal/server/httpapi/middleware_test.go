package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/and161185/o1chat/internal/limiter"
)

func TestLogging_RecordsStatus(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	h := Logging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	entries := logs.FilterMessage("http").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "/users", fields["path"])
	require.EqualValues(t, http.StatusTeapot, fields["code"])
}

func TestRecover_CatchesPanic(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.ErrorLevel)
	h := Recover(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("oh no")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/send", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, 1, logs.FilterMessage("panic").Len())
}

func TestRecover_NoPanicPassThrough(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.ErrorLevel)
	h := Recover(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Zero(t, logs.Len())
}

type stubLimiter struct {
	ok    bool
	retry time.Duration
	err   error
	keys  [][]byte
}

var _ limiter.Limiter = (*stubLimiter)(nil)

func (s *stubLimiter) Allow(_ context.Context, key []byte) (bool, time.Duration, error) {
	s.keys = append(s.keys, key)
	return s.ok, s.retry, s.err
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	serve := func(l *stubLimiter) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req.RemoteAddr = "10.1.2.3:5555"
		RateLimit(l, zaptest.NewLogger(t))(next).ServeHTTP(rec, req)
		return rec
	}

	allowed := &stubLimiter{ok: true}
	require.Equal(t, http.StatusOK, serve(allowed).Code)
	require.Equal(t, [][]byte{limiter.HashIP("10.1.2.3")}, allowed.keys)

	blocked := &stubLimiter{retry: 1500 * time.Millisecond}
	rec := serve(blocked)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "1", rec.Header().Get("Retry-After"))

	broken := &stubLimiter{err: errors.New("backend down")}
	require.Equal(t, http.StatusOK, serve(broken).Code)
}
