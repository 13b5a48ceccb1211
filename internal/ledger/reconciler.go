package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/LoaderSpot/LoaderSpot/internal/common/httpx"
)

// ErrFetch is returned when the ledger could not be retrieved after all
// retries. It must never be conflated with "version absent": absent
// means confirmed novel, fetch failure means unknown, do not act.
var ErrFetch = errors.New("failed to fetch ledger")

// Reconciler decides whether an extracted version is already known to
// the remote ledger. Each call fetches a fresh snapshot; the reconciler
// itself keeps no state between calls.
type Reconciler struct {
	client *httpx.Client
	url    string
	mode   FieldMode
}

// NewReconciler creates a reconciler for the ledger at url.
func NewReconciler(client *httpx.Client, url string, mode FieldMode) *Reconciler {
	if client == nil {
		client = httpx.New()
	}
	return &Reconciler{client: client, url: url, mode: mode}
}

// Known reports whether candidate already exists in the ledger.
//
// The result is tri-state and callers branch on all three outcomes:
// (true, nil) the version is present, skip it; (false, nil) the ledger
// was fetched and the version is confirmed absent, notify; (_, err) the
// ledger could not be fetched or parsed, log and take no action.
func (r *Reconciler) Known(ctx context.Context, candidate string) (bool, error) {
	if candidate == "" {
		return false, ErrEmptyVersion
	}

	snapshot, err := r.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	return snapshot.Contains(candidate), nil
}

// Snapshot fetches and parses the current ledger.
func (r *Reconciler) Snapshot(ctx context.Context) (*Ledger, error) {
	resp, err := r.client.Get(ctx, r.url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	return Parse(data, r.mode)
}
