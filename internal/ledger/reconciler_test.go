package ledger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LoaderSpot/LoaderSpot/internal/common/httpx"
)

func fastClient() *httpx.Client {
	c := httpx.NewWithConfig(httpx.RetryConfig{
		MaxRetries: 2,
		BaseDelay:  time.Millisecond,
		MaxDelay:   time.Millisecond,
		Timeout:    time.Second,
	})
	c.SetDelayFunc(func(time.Duration) {})
	return c
}

func TestKnownPresent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"1.2.215.832": {"fullversion": "1.2.215.832.g8f6e41fa"}}`))
	}))
	defer srv.Close()

	r := NewReconciler(fastClient(), srv.URL, FieldFullVersion)
	known, err := r.Known(context.Background(), "1.2.215.832.g8f6e41fa")
	if err != nil {
		t.Fatalf("Known: %v", err)
	}
	if !known {
		t.Error("present version reported novel")
	}
}

func TestKnownAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"1.2.215.832": {"fullversion": "1.2.215.832.g8f6e41fa"}}`))
	}))
	defer srv.Close()

	r := NewReconciler(fastClient(), srv.URL, FieldFullVersion)
	known, err := r.Known(context.Background(), "1.2.216.1.gabcdef12")
	if err != nil {
		t.Fatalf("Known: %v", err)
	}
	if known {
		t.Error("novel version reported present")
	}
}

func TestKnownFetchFailure(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewReconciler(fastClient(), srv.URL, FieldFullVersion)
	_, err := r.Known(context.Background(), "1.2.216.1.gabcdef12")
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("err = %v, want ErrFetch", err)
	}
	if hits != 3 {
		t.Errorf("server hit %d times, want 3 (1 attempt + 2 retries)", hits)
	}
}

func TestKnownMalformedLedger(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	}))
	defer srv.Close()

	r := NewReconciler(fastClient(), srv.URL, FieldFullVersion)
	_, err := r.Known(context.Background(), "1.2.216.1.gabcdef12")
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
	if errors.Is(err, ErrFetch) {
		t.Error("malformed ledger misreported as fetch failure")
	}
}

func TestKnownEmptyCandidate(t *testing.T) {
	r := NewReconciler(fastClient(), "http://unused.invalid", FieldFullVersion)
	_, err := r.Known(context.Background(), "")
	if !errors.Is(err, ErrEmptyVersion) {
		t.Errorf("err = %v, want ErrEmptyVersion", err)
	}
}

func TestKnownNotFoundStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	// A 404 is not retried but still means the ledger is unavailable,
	// which is indeterminate, not "absent".
	r := NewReconciler(fastClient(), srv.URL, FieldFullVersion)
	_, err := r.Known(context.Background(), "1.2.216.1.gabcdef12")
	if !errors.Is(err, ErrFetch) {
		t.Errorf("err = %v, want ErrFetch", err)
	}
}
