// Package fetch retrieves business web pages through a chain of fetchers,
// falling back from plain HTTP to the Jina reader when a site blocks bots.
package fetch

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// PageFetcher retrieves and parses one page. Implementations report whether
// they can handle a URL so the chain can skip them cheaply.
type PageFetcher interface {
	Name() string
	Supports(pageURL string) bool
	Fetch(ctx context.Context, pageURL string) (*model.Page, error)
}

// Chain tries fetchers in priority order and returns the first success.
type Chain struct {
	fetchers []PageFetcher
}

func NewChain(fetchers ...PageFetcher) *Chain {
	return &Chain{fetchers: fetchers}
}

// Fetch tries each fetcher in order for a single URL. Returns the first
// successful page, or the last error if all fail.
func (c *Chain) Fetch(ctx context.Context, pageURL string) (*model.Page, error) {
	var lastErr error
	for _, f := range c.fetchers {
		if !f.Supports(pageURL) {
			continue
		}
		page, err := f.Fetch(ctx, pageURL)
		if err == nil && page != nil {
			return page, nil
		}
		if err != nil {
			zap.L().Debug("fetch: fetcher failed, trying next",
				zap.String("fetcher", f.Name()),
				zap.String("url", pageURL),
				zap.Error(err),
			)
			lastErr = err
		}
	}
	if lastErr != nil {
		return nil, eris.Wrap(lastErr, "fetch: all fetchers failed")
	}
	return nil, eris.Errorf("fetch: no suitable fetcher for url: %s", pageURL)
}
