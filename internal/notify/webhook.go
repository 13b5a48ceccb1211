// Package notify delivers novel-version reports to the configured
// sinks: the webhook endpoint, the repository dispatch API and the
// submission form.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/LoaderSpot/LoaderSpot/internal/common/httpx"
)

var (
	// ErrWebhookRejected is returned when the webhook answers outside 2xx
	ErrWebhookRejected = errors.New("webhook rejected the payload")
)

// Payload is the JSON body sent to the webhook. BuildType is either
// the detected label string or the JSON literal false when the label
// could not be determined.
type Payload struct {
	VersionInfo map[string]string `json:"versionInfo"`
	BuildType   any               `json:"buildType"`
	Source      string            `json:"source"`
}

// NewPayload assembles a payload. An empty or "false" label is encoded
// as the literal false.
func NewPayload(versionInfo map[string]string, label, source string) Payload {
	var buildType any = false
	if label != "" && label != "false" {
		buildType = label
	}
	return Payload{
		VersionInfo: versionInfo,
		BuildType:   buildType,
		Source:      source,
	}
}

// Webhook posts payloads to a single endpoint.
type Webhook struct {
	client *httpx.Client
	url    string
}

// NewWebhook creates a webhook sink. A nil client gets the default
// retry configuration.
func NewWebhook(client *httpx.Client, url string) *Webhook {
	if client == nil {
		client = httpx.New()
	}
	return &Webhook{client: client, url: url}
}

// Send posts the payload and returns the endpoint's reply text. Any
// 2xx status is success. The endpoint may answer with a full HTML
// status page; in that case the reply is extracted from the page.
func (w *Webhook) Send(ctx context.Context, p Payload) (string, error) {
	resp, err := w.client.PostJSON(ctx, w.url, p, nil)
	if err != nil {
		return "", fmt.Errorf("failed to post webhook: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read webhook reply: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d", ErrWebhookRejected, resp.StatusCode)
	}

	return ExtractReply(string(body)), nil
}

// ExtractReply pulls the human-readable status text out of a webhook
// reply. HTML replies carry the message in a centered div; anything
// else is returned trimmed.
func ExtractReply(body string) string {
	if !strings.Contains(body, "<div") {
		return strings.TrimSpace(body)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return strings.TrimSpace(body)
	}

	var reply string
	doc.Find("div").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		style, _ := s.Attr("style")
		if strings.Contains(style, "text-align:center") || strings.Contains(style, "text-align: center") {
			reply = strings.TrimSpace(s.Text())
			return false
		}
		return true
	})

	if reply == "" {
		return strings.TrimSpace(doc.Find("body").Text())
	}
	return reply
}
