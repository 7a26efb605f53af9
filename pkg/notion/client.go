// Package notion wraps the Notion API for campaign brief intake: listing
// campaign pages and parsing their briefs into prospecting inputs.
package notion

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the Notion API operations used by campaign intake.
type Client interface {
	// BlockChildren fetches one page of a block's children.
	BlockChildren(ctx context.Context, blockID string, cursor string) (*notionapi.GetChildrenResponse, error)
	// SearchPages searches for pages matching the query.
	SearchPages(ctx context.Context, query string) ([]*notionapi.Page, error)
}

// ClientOption configures the Notion client.
type ClientOption func(*notionClient)

// WithRateLimit overrides the default Notion rate limit (3 req/s).
func WithRateLimit(rps float64) ClientOption {
	return func(c *notionClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

// notionClient implements Client by wrapping a *notionapi.Client.
type notionClient struct {
	inner   *notionapi.Client
	limiter *rate.Limiter
}

// NewClient creates a new Notion client with the given integration token.
// By default, API calls are throttled to 3 req/s (Notion's rate limit).
func NewClient(token string, opts ...ClientOption) Client {
	c := &notionClient{
		inner:   notionapi.NewClient(notionapi.Token(token)),
		limiter: rate.NewLimiter(3, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wait blocks until the rate limiter allows one event, or ctx is cancelled.
func (c *notionClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *notionClient) BlockChildren(ctx context.Context, blockID string, cursor string) (*notionapi.GetChildrenResponse, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "notion: rate limit")
	}
	pagination := &notionapi.Pagination{PageSize: 100}
	if cursor != "" {
		pagination.StartCursor = notionapi.Cursor(cursor)
	}
	resp, err := c.inner.Block.GetChildren(ctx, notionapi.BlockID(blockID), pagination)
	if err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("notion: get children of %s", blockID))
	}
	return resp, nil
}

func (c *notionClient) SearchPages(ctx context.Context, query string) ([]*notionapi.Page, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "notion: rate limit")
	}
	resp, err := c.inner.Search.Do(ctx, &notionapi.SearchRequest{
		Query: query,
		Filter: notionapi.SearchFilter{
			Property: "object",
			Value:    "page",
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "notion: search pages")
	}

	var pages []*notionapi.Page
	for _, obj := range resp.Results {
		if page, ok := obj.(*notionapi.Page); ok {
			pages = append(pages, page)
		}
	}
	return pages, nil
}
