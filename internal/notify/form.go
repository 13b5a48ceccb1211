package notify

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/LoaderSpot/LoaderSpot/internal/common/httpx"
)

// DefaultFormComment is submitted when no comment is given.
const DefaultFormComment = "from LoaderSpot"

// Form posts discovered versions to a form endpoint. Form failures are
// reported but callers treat them as non-fatal: the form is a
// secondary record, not the primary notification.
type Form struct {
	client       *httpx.Client
	url          string
	versionEntry string
	commentEntry string
}

// NewForm creates a form sink. Entry IDs name the form fields for the
// version and the comment.
func NewForm(client *httpx.Client, url, versionEntry, commentEntry string) *Form {
	if client == nil {
		client = httpx.New()
	}
	return &Form{
		client:       client,
		url:          url,
		versionEntry: versionEntry,
		commentEntry: commentEntry,
	}
}

// Submit posts one version to the form. An empty comment falls back to
// the default.
func (f *Form) Submit(ctx context.Context, version, comment string) error {
	if comment == "" {
		comment = DefaultFormComment
	}

	values := url.Values{
		f.versionEntry: {version},
		f.commentEntry: {comment},
	}

	resp, err := f.client.PostForm(ctx, f.url, values)
	if err != nil {
		return fmt.Errorf("failed to post form: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("form submission returned status %d", resp.StatusCode)
	}
	return nil
}
