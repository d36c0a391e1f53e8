package dedup

import (
	"context"
	"errors"

	"github.com/jonesrussell/faqhub/infrastructure/logger"
	"github.com/jonesrussell/faqhub/internal/domain"
)

// ArticleRef identifies the first article stored with a fingerprint.
type ArticleRef struct {
	ID  int64
	URL string
}

// Result is the outcome of a duplicate check.
type Result struct {
	IsDuplicate bool
	Existing    *ArticleRef
}

// Store looks up the article that owns a fingerprint. Implementations return
// domain.ErrNotFound when none exists.
type Store interface {
	FindByContentHash(ctx context.Context, hash string) (*domain.Article, error)
}

// Cache is an optional fast path in front of Store.
type Cache interface {
	Get(ctx context.Context, fingerprint string) (*ArticleRef, error)
	Set(ctx context.Context, fingerprint string, ref ArticleRef) error
	Forget(ctx context.Context, fingerprint string) error
}

// Index answers exact-match duplicate queries.
type Index struct {
	store  Store
	cache  Cache
	logger logger.Logger
}

// NewIndex creates an Index. cache may be nil.
func NewIndex(store Store, cache Cache, log logger.Logger) *Index {
	if log == nil {
		log = logger.NewNop()
	}
	return &Index{store: store, cache: cache, logger: log}
}

// CheckDuplicate reports whether an article with the same fingerprint exists.
// Lookup failures are logged and reported as not duplicate.
func (i *Index) CheckDuplicate(ctx context.Context, fingerprint string) Result {
	if fingerprint == "" {
		return Result{}
	}

	if i.cache != nil {
		ref, cacheErr := i.cache.Get(ctx, fingerprint)
		switch {
		case cacheErr == nil:
			return Result{IsDuplicate: true, Existing: ref}
		case !errors.Is(cacheErr, domain.ErrNotFound):
			i.logger.Warn("Fingerprint cache lookup failed",
				logger.String("fingerprint", fingerprint),
				logger.Error(cacheErr),
			)
		}
	}

	article, err := i.store.FindByContentHash(ctx, fingerprint)
	if errors.Is(err, domain.ErrNotFound) {
		return Result{}
	}
	if err != nil {
		i.logger.Warn("Duplicate lookup failed, treating content as new",
			logger.String("fingerprint", fingerprint),
			logger.Error(err),
		)
		return Result{}
	}

	ref := ArticleRef{ID: article.ID, URL: article.URL}
	i.Remember(ctx, fingerprint, ref)

	return Result{IsDuplicate: true, Existing: &ref}
}

// Remember primes the cache after an article with fingerprint has been stored.
func (i *Index) Remember(ctx context.Context, fingerprint string, ref ArticleRef) {
	if i.cache == nil || fingerprint == "" {
		return
	}
	if err := i.cache.Set(ctx, fingerprint, ref); err != nil {
		i.logger.Debug("Fingerprint cache write failed", logger.Error(err))
	}
}

// Forget drops a cached owner whose content no longer has fingerprint.
func (i *Index) Forget(ctx context.Context, fingerprint string) {
	if i.cache == nil || fingerprint == "" {
		return
	}
	if err := i.cache.Forget(ctx, fingerprint); err != nil {
		i.logger.Warn("Fingerprint cache invalidation failed",
			logger.String("fingerprint", fingerprint),
			logger.Error(err),
		)
	}
}
