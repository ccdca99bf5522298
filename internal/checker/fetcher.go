package checker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/pagewatch-dev/pagewatch/internal/config"
)

// Fetcher retrieves the target page body. Implementations must enforce
// the configured timeout and surface it distinctly.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ErrFetchTimeout marks a fetch cancelled at the timeout boundary.
var ErrFetchTimeout = errors.New("Request timeout")

// maxBodyBytes bounds how much of the page is read for matching.
const maxBodyBytes = 2 << 20

type httpFetcher struct {
	client    *http.Client
	userAgent string
	timeout   config.FetchConfig
}

func NewHTTPFetcher(cfg config.FetchConfig) Fetcher {
	return &httpFetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent: cfg.UserAgent,
		timeout:   cfg,
	}
}

func (f *httpFetcher) Fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

	if err != nil {
		return "", fmt.Errorf("invalid request: %v", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)

	if err != nil {
		if isTimeout(err) {
			return "", ErrFetchTimeout
		}
		return "", fmt.Errorf("request failed: %v", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("HTTP error: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))

	if err != nil {
		if isTimeout(err) {
			return "", ErrFetchTimeout
		}
		return "", fmt.Errorf("failed to read response body: %v", err)
	}

	return string(body), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
