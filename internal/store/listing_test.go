package store

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LoaderSpot/LoaderSpot/internal/common/httpx"
)

const listingPage = `<!DOCTYPE html>
<html>
<body>
  <h1>Music Player</h1>
  <div class="description">Stream music on your device.</div>
  <div class="product-version">Version 1.2.26.1187.g36b715a1 (latest)</div>
</body>
</html>`

func fastClient() *httpx.Client {
	c := httpx.NewWithConfig(httpx.RetryConfig{
		MaxRetries: 2,
		BaseDelay:  time.Millisecond,
		MaxDelay:   time.Millisecond,
		Timeout:    5 * time.Second,
	})
	c.SetDelayFunc(func(time.Duration) {})
	return c
}

func TestExtractFindsVersionInListing(t *testing.T) {
	ext, err := Extract([]byte(listingPage), DefaultVersionXPath)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !ext.Found {
		t.Fatal("Extract() did not find a version")
	}
	if ext.Version != "1.2.26.1187.g36b715a1" {
		t.Errorf("version = %q", ext.Version)
	}
}

func TestExtractNoRecognizableVersionIsNotAnError(t *testing.T) {
	page := `<html><body><div class="version">Varies with device</div></body></html>`
	ext, err := Extract([]byte(page), DefaultVersionXPath)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if ext.Found {
		t.Errorf("Extract() found %q in text with no version", ext.Version)
	}
}

func TestExtractMissingNode(t *testing.T) {
	page := `<html><body><p>no version block here</p></body></html>`
	_, err := Extract([]byte(page), DefaultVersionXPath)
	if !errors.Is(err, ErrNoVersionNode) {
		t.Errorf("Extract() error = %v, want ErrNoVersionNode", err)
	}
}

func TestExtractInvalidXPath(t *testing.T) {
	_, err := Extract([]byte(listingPage), `//div[`)
	if !errors.Is(err, ErrInvalidXPath) {
		t.Errorf("Extract() error = %v, want ErrInvalidXPath", err)
	}
}

func TestCheckerFetchesListing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingPage))
	}))
	defer server.Close()

	checker := NewChecker(fastClient(), server.URL, "")
	ext, err := checker.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !ext.Found || ext.Version != "1.2.26.1187.g36b715a1" {
		t.Errorf("Check() = %+v", ext)
	}
}

func TestCheckerReportsFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	checker := NewChecker(fastClient(), server.URL, "")
	_, err := checker.Check(context.Background())
	if !errors.Is(err, ErrListingFetch) {
		t.Errorf("Check() error = %v, want ErrListingFetch", err)
	}
}
