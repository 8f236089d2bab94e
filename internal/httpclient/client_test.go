package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/tessro/onair/internal/errors"
)

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "onair-test" {
			t.Errorf("User-Agent = %q, want onair-test", got)
		}
		_, _ = w.Write([]byte(`{"name":"On Air"}`))
	}))
	defer srv.Close()

	c := New(WithUserAgent("onair-test"))
	var out struct {
		Name string `json:"name"`
	}
	if err := c.GetJSON(context.Background(), srv.URL, &out); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if out.Name != "On Air" {
		t.Errorf("Name = %q, want On Air", out.Name)
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := New(WithRetries(3, time.Millisecond))
	body, err := c.GetBytes(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("GetBytes() error = %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(WithRetries(3, time.Millisecond))
	_, err := c.GetBytes(context.Background(), srv.URL)

	var se *StatusError
	if !errors.As(err, &se) || se.Status != http.StatusNotFound {
		t.Fatalf("GetBytes() error = %v, want 404 StatusError", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestRetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(WithRetries(2, time.Millisecond))
	_, err := c.GetBytes(context.Background(), srv.URL)
	var se *StatusError
	if !errors.As(err, &se) || se.Status != http.StatusServiceUnavailable {
		t.Errorf("GetBytes() error = %v, want wrapped 503", err)
	}
}

func slowServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientTimeout(t *testing.T) {
	srv := slowServer(t)
	c := New(WithTimeout(20*time.Millisecond), WithRetries(0, 0))

	_, err := c.GetBytes(context.Background(), srv.URL)
	if !errors.Is(err, apperrors.ErrTimeout) {
		t.Errorf("GetBytes() error = %v, want ErrTimeout", err)
	}
}

func TestContextDeadlineIsTimeout(t *testing.T) {
	srv := slowServer(t)
	c := New(WithRetries(0, 0))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.GetBytes(ctx, srv.URL)
	if !errors.Is(err, apperrors.ErrTimeout) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("GetBytes() error = %v, want ErrTimeout wrapping the deadline", err)
	}
}

func TestCancelIsNotTimeout(t *testing.T) {
	srv := slowServer(t)
	c := New(WithRetries(0, 0))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.GetBytes(ctx, srv.URL)
	if !errors.Is(err, context.Canceled) || errors.Is(err, apperrors.ErrTimeout) {
		t.Errorf("GetBytes() error = %v, want context.Canceled", err)
	}
}
