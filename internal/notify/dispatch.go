package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/LoaderSpot/LoaderSpot/internal/common/httpx"
)

var (
	// ErrDispatchRejected is returned when the events API does not
	// answer 204
	ErrDispatchRejected = errors.New("repository dispatch rejected")
)

// dispatchAPI is the repository-events endpoint, repo interpolated.
const dispatchAPI = "https://api.github.com/repos/%s/dispatches"

// dispatchBody is the event payload. The receiving workflow reads the
// version from v and the source from s.
type dispatchBody struct {
	EventType     string        `json:"event_type"`
	ClientPayload clientPayload `json:"client_payload"`
}

type clientPayload struct {
	V string `json:"v"`
	S string `json:"s"`
}

// Dispatcher triggers repository-dispatch events.
type Dispatcher struct {
	client *httpx.Client
	repo   string
	token  string
	// apiURL overrides the events endpoint, for tests
	apiURL string
}

// NewDispatcher creates a dispatcher for the given "owner/name"
// repository. A nil client gets the default retry configuration.
func NewDispatcher(client *httpx.Client, repo, token string) *Dispatcher {
	if client == nil {
		client = httpx.New()
	}
	return &Dispatcher{
		client: client,
		repo:   repo,
		token:  token,
		apiURL: fmt.Sprintf(dispatchAPI, repo),
	}
}

// SetAPIURL overrides the endpoint, mainly for tests.
func (d *Dispatcher) SetAPIURL(url string) {
	d.apiURL = url
}

// Send fires a webhook-event dispatch carrying the version and source.
func (d *Dispatcher) Send(ctx context.Context, version, source string) error {
	body := dispatchBody{
		EventType: "webhook-event",
		ClientPayload: clientPayload{
			V: version,
			S: source,
		},
	}

	headers := map[string]string{
		"Accept":        "application/vnd.github+json",
		"Authorization": "Bearer " + d.token,
	}

	resp, err := d.client.PostJSON(ctx, d.apiURL, body, headers)
	if err != nil {
		return fmt.Errorf("failed to post dispatch: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("%w: status %d", ErrDispatchRejected, resp.StatusCode)
	}
	return nil
}
