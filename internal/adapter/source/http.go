package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/avalanche-stats/internal/domain"
)

// maxDatasetBytes bounds the dataset download. The real file is well under 1 MiB.
const maxDatasetBytes = 32 << 20

// HTTPFetcher implements pipeline.Fetcher by downloading region_summary.json.
type HTTPFetcher struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPFetcher creates a fetcher for url with a per-request timeout.
func NewHTTPFetcher(url string, timeout time.Duration, logger *slog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Fetch downloads and parses the dataset.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]domain.RegionSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch region summaries: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("dataset server error: status %d: %s", resp.StatusCode, body)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDatasetBytes))
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	summaries, err := domain.ParseRegionSummaries(data)
	if err != nil {
		return nil, err
	}
	f.logger.Debug("dataset downloaded", "url", f.url, "bytes", len(data), "regions", len(summaries))
	return summaries, nil
}
