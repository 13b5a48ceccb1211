// Package store checks an app-store product listing for the currently
// published release version.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/antchfx/htmlquery"

	"github.com/LoaderSpot/LoaderSpot/internal/common/httpx"
	"github.com/LoaderSpot/LoaderSpot/internal/version"
)

var (
	// ErrListingFetch is returned when the listing page cannot be fetched
	ErrListingFetch = errors.New("failed to fetch store listing")
	// ErrInvalidXPath is returned when the XPath expression syntax is invalid
	ErrInvalidXPath = errors.New("invalid XPath expression")
	// ErrNoVersionNode is returned when no node matches the XPath
	ErrNoVersionNode = errors.New("no version node found in listing")
)

// DefaultVersionXPath locates the version line in the listing's
// additional-information block.
const DefaultVersionXPath = `//div[contains(@class, 'version')]`

// Checker fetches a listing page and extracts the published version.
type Checker struct {
	client *httpx.Client
	url    string
	xpath  string
}

// NewChecker creates a checker for one listing URL. An empty xpath
// uses the default. A nil client gets the default retry configuration.
func NewChecker(client *httpx.Client, url, xpath string) *Checker {
	if client == nil {
		client = httpx.New()
	}
	if xpath == "" {
		xpath = DefaultVersionXPath
	}
	return &Checker{client: client, url: url, xpath: xpath}
}

// Check fetches the listing and runs the release grammar over the text
// of the first node matching the XPath. A page whose version node
// carries no recognizable version yields Found=false, not an error.
func (c *Checker) Check(ctx context.Context) (version.Extraction, error) {
	resp, err := c.client.Get(ctx, c.url)
	if err != nil {
		return version.Extraction{}, fmt.Errorf("%w: %v", ErrListingFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return version.Extraction{}, fmt.Errorf("%w: status %d", ErrListingFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return version.Extraction{}, fmt.Errorf("%w: %v", ErrListingFetch, err)
	}

	return Extract(body, c.xpath)
}

// Extract locates the version node by XPath and runs the release
// grammar over its text.
func Extract(content []byte, xpath string) (version.Extraction, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(content))
	if err != nil {
		return version.Extraction{}, fmt.Errorf("failed to parse listing HTML: %w", err)
	}

	nodes, err := htmlquery.QueryAll(doc, xpath)
	if err != nil {
		return version.Extraction{}, fmt.Errorf("%w: %v", ErrInvalidXPath, err)
	}
	if len(nodes) == 0 {
		return version.Extraction{}, fmt.Errorf("%w: %s", ErrNoVersionNode, xpath)
	}

	text := htmlquery.InnerText(nodes[0])
	return version.Extract(text, version.GrammarRelease), nil
}
