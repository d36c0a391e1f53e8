// Package platform implements the configured content sources: HTML help
// centers, Reddit communities and RSS/Atom feeds.
package platform

import (
	"context"
	"errors"

	"github.com/jonesrussell/faqhub/internal/domain"
)

// ErrNoContent is returned by Fetch when a page yields no usable text.
var ErrNoContent = errors.New("no content extracted")

// Source discovers content URLs for one platform and fetches them.
type Source interface {
	Platform() string
	Discover(ctx context.Context) ([]string, error)
	Fetch(ctx context.Context, url string) (*domain.RawContent, error)
}

// Limited is implemented by sources that cap how many URLs a run processes.
type Limited interface {
	MaxArticles() int
}
