package fetcher

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/resilience"
)

// HTTPFetcher downloads candidate files over HTTP with transient-failure
// retries.
type HTTPFetcher struct {
	client *http.Client
	retry  resilience.RetryConfig
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: 60 * time.Second},
		retry:  resilience.DefaultRetryConfig(),
	}
}

// Download fetches the URL and returns the response body. The caller must
// close the returned ReadCloser. Transient statuses (429, 5xx) are retried
// with backoff.
func (h *HTTPFetcher) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	cfg := h.retry
	cfg.OnRetry = resilience.RetryLogger("http_fetcher", "download")

	return resilience.DoVal(ctx, cfg, func(ctx context.Context) (io.ReadCloser, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, eris.Wrap(err, "http_fetcher: create request")
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; LeadGenBot/1.0)")

		resp, err := h.client.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "http_fetcher: fetch")
		}

		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			err := eris.Errorf("http_fetcher: status %d for %s", resp.StatusCode, url)
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return nil, resilience.NewTransientError(err, resp.StatusCode)
			}
			return nil, err
		}

		return resp.Body, nil
	})
}
