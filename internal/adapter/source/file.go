package source

import (
	"context"
	"fmt"
	"os"

	"github.com/couchcryptid/avalanche-stats/internal/domain"
)

// FileFetcher implements pipeline.Fetcher by reading a local region_summary.json.
type FileFetcher struct {
	path string
}

// NewFileFetcher creates a fetcher for path.
func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{path: path}
}

// Fetch reads and parses the file on every call so edits are picked up on refresh.
func (f *FileFetcher) Fetch(ctx context.Context) ([]domain.RegionSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read dataset file: %w", err)
	}
	return domain.ParseRegionSummaries(data)
}
