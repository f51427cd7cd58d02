package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/NomadCrew/nomad-crew-planner/logger"
	"github.com/NomadCrew/nomad-crew-planner/pkg/pexels"
)

const adapterCoverImage = "cover_image"

// ImageSearcher finds a landscape photo for a destination.
type ImageSearcher interface {
	Enabled() bool
	SearchDestinationImage(ctx context.Context, query string) (string, error)
}

// CoverImageService picks the cover image of a new trip. Lookup failures
// fall back to a deterministic placeholder and are never surfaced.
type CoverImageService struct {
	searcher ImageSearcher
	metrics  *AdapterMetrics
	log      *zap.SugaredLogger
}

// NewCoverImageService creates the service. A nil searcher always uses the
// placeholder.
func NewCoverImageService(searcher ImageSearcher, metrics *AdapterMetrics) *CoverImageService {
	return &CoverImageService{
		searcher: searcher,
		metrics:  metrics,
		log:      logger.GetLogger().Named("cover-image"),
	}
}

func (s *CoverImageService) CoverImage(ctx context.Context, destination string) string {
	if s.searcher != nil && s.searcher.Enabled() {
		if query := pexels.BuildSearchQuery(destination); query != "" {
			start := time.Now()
			found, err := s.searcher.SearchDestinationImage(ctx, query)
			s.metrics.observe(adapterCoverImage, start, err)
			if err != nil {
				s.log.Warnw("Cover image lookup failed, using placeholder", "destination", destination, "error", err)
			} else if found != "" {
				return found
			}
		}
	}
	return FallbackCoverURL(destination)
}

// FallbackCoverURL is the placeholder cover for a destination. The same
// destination always maps to the same image.
func FallbackCoverURL(destination string) string {
	seed := strings.Join(strings.Fields(destination), "")
	return fmt.Sprintf("https://picsum.photos/seed/%s/800/600", url.PathEscape(seed))
}
