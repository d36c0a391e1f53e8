package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pgvector/pgvector-go"

	"github.com/jonesrussell/faqhub/infrastructure/logger"
	"github.com/jonesrussell/faqhub/infrastructure/retry"
	"github.com/jonesrussell/faqhub/internal/database"
	"github.com/jonesrussell/faqhub/internal/dedup"
	"github.com/jonesrussell/faqhub/internal/domain"
	"github.com/jonesrussell/faqhub/internal/embedding"
	"github.com/jonesrussell/faqhub/internal/language"
	"github.com/jonesrussell/faqhub/internal/metrics"
	"github.com/jonesrussell/faqhub/internal/quality"
	"github.com/jonesrussell/faqhub/internal/slug"
)

// maxDerivedQuestionLength bounds a question taken from the body when the title is empty.
const maxDerivedQuestionLength = 200

var (
	// ErrEmbeddingDisabled is returned by Reembed when no embedder is configured.
	ErrEmbeddingDisabled = errors.New("embedding is not configured")
	// ErrNilContent is returned when Ingest is called without content.
	ErrNilContent = errors.New("raw content is nil")
)

// Result describes what the pipeline did with one item.
type Result struct {
	Outcome         domain.Outcome
	SkipReason      domain.SkipReason
	ArticleID       int64
	Slug            string
	IsDuplicate     bool
	DuplicateOf     *int64
	Language        string
	QualityTier     domain.QualityTier
	EmbeddingStatus domain.EmbeddingStatus
}

// Deps are the stages the pipeline is built from. Generator and Metrics may be nil.
type Deps struct {
	Articles  ArticleStore
	Writer    *Writer
	Hasher    *dedup.Hasher
	Index     *dedup.Index
	Detector  *language.Detector
	Scorer    *quality.Scorer
	Generator *embedding.Generator
	Slugs     *slug.Allocator
	Policy    retry.Policy
	Logger    logger.Logger
	Metrics   *metrics.Metrics
}

// Pipeline ingests raw content one item at a time.
type Pipeline struct {
	Deps
}

// NewPipeline creates a Pipeline.
func NewPipeline(deps Deps) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	return &Pipeline{Deps: deps}
}

// Ingest runs raw through every stage. Content rejections are reported as
// skipped results, not errors; an error means the item failed.
func (p *Pipeline) Ingest(ctx context.Context, raw *domain.RawContent) (res Result, err error) {
	if raw == nil {
		return Result{Outcome: domain.OutcomeFailed}, ErrNilContent
	}

	start := time.Now()
	defer func() {
		if err != nil {
			res.Outcome = domain.OutcomeFailed
		}
		p.Metrics.RecordIngest(raw.Platform, string(res.Outcome), string(res.SkipReason), time.Since(start))
	}()

	log := p.Logger.With(logger.String("platform", raw.Platform), logger.String("url", raw.URL))

	body := strings.TrimSpace(raw.Body)
	if body == "" {
		return skipped(domain.SkipEmptyContent), nil
	}

	assessment := p.Scorer.Score(raw.Title, body)
	if assessment.Rejected {
		log.Debug("Skipping short content", logger.Int("length", utf8.RuneCountInString(body)))
		return skipped(domain.SkipTooShort), nil
	}

	fingerprint := p.Hasher.Hash(raw.Text())

	existing, err := p.findExisting(ctx, raw.URL)
	if err != nil {
		return Result{}, err
	}

	p.forgetReplacedFingerprint(ctx, existing, fingerprint)
	isDuplicate, duplicateOf := p.checkDuplicate(ctx, fingerprint, raw.URL, existing)

	detection := p.Detector.Detect(raw.Text())
	if !p.Detector.Accepts(detection, raw.Multilingual) {
		log.Debug("Skipping content in another language",
			logger.String("language", detection.Language),
			logger.Float64("confidence", detection.Confidence),
		)
		return skipped(domain.SkipWrongLanguage), nil
	}
	lang := p.Detector.Target()
	if detection.IsReliable {
		lang = detection.Language
	}

	question := questionFor(raw.Title, body)
	article := &domain.Article{
		URL:         raw.URL,
		Question:    question,
		Answer:      body,
		Category:    raw.Category,
		Platform:    raw.Platform,
		ContentType: raw.ContentType,
		Source:      raw.Source,
		Language:    lang,
		IsDuplicate: isDuplicate,
		DuplicateOf: duplicateOf,
		IsVerified:  raw.ContentType.IsPlatformOfficial(),
		Votes:       assessment.Votes(),
		QualityTier: assessment.Tier,
		CrawlStatus: domain.CrawlStatusActive,
	}
	if fingerprint != "" {
		article.ContentHash = &fingerprint
	}

	paragraphs, replace := p.embed(ctx, article, existing, log)

	if existing != nil {
		article.Slug = existing.Slug
	} else if article.Slug, err = p.Slugs.Allocate(ctx, question); err != nil {
		return Result{}, fmt.Errorf("allocate slug: %w", err)
	}

	written, err := p.Writer.Upsert(ctx, article, paragraphs, replace)
	if err != nil && existing == nil && database.IsUniqueViolation(err, database.SlugConstraint) {
		log.Warn("Slug taken concurrently, allocating a new one", logger.String("slug", article.Slug))
		if article.Slug, err = p.Slugs.Allocate(ctx, question); err != nil {
			return Result{}, fmt.Errorf("allocate slug: %w", err)
		}
		written, err = p.Writer.Upsert(ctx, article, paragraphs, replace)
	}
	if err != nil {
		return Result{}, err
	}

	if duplicateOf == nil {
		p.Index.Remember(ctx, fingerprint, dedup.ArticleRef{ID: written.ID, URL: article.URL})
	}

	res = Result{
		Outcome:         domain.OutcomeUpdated,
		ArticleID:       written.ID,
		Slug:            article.Slug,
		IsDuplicate:     isDuplicate,
		DuplicateOf:     duplicateOf,
		Language:        lang,
		QualityTier:     assessment.Tier,
		EmbeddingStatus: written.EmbeddingStatus,
	}
	switch {
	case isDuplicate:
		res.Outcome = domain.OutcomeDuplicate
	case written.Created:
		res.Outcome = domain.OutcomeCreated
	}

	log.Info("Article ingested",
		logger.String("outcome", string(res.Outcome)),
		logger.Int64("article_id", res.ArticleID),
		logger.String("slug", res.Slug),
		logger.String("embedding_status", string(res.EmbeddingStatus)),
	)

	return res, nil
}

// Reembed regenerates the paragraph set of a stored article.
func (p *Pipeline) Reembed(ctx context.Context, article *domain.Article) (domain.EmbeddingStatus, error) {
	if p.Generator == nil {
		return article.EmbeddingStatus, ErrEmbeddingDisabled
	}

	result := p.Generator.Embed(ctx, article.Answer)
	p.Metrics.RecordEmbeddings(len(result.Paragraphs), result.Failed)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return article.EmbeddingStatus, ctxErr
	}

	status := result.Status()
	if err := p.Writer.ReplaceEmbeddings(ctx, article.ID, toDomainParagraphs(result), status); err != nil {
		return article.EmbeddingStatus, err
	}
	return status, nil
}

func (p *Pipeline) findExisting(ctx context.Context, url string) (*domain.Article, error) {
	existing, err := retry.Do(ctx, p.Policy, func(ctx context.Context) (*domain.Article, error) {
		return p.Articles.FindByURL(ctx, url)
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("look up article by url: %w", err)
	}
	return existing, nil
}

// checkDuplicate looks up the fingerprint. A match against the URL's own
// stored row still marks the content duplicate but points at no other article.
func (p *Pipeline) checkDuplicate(ctx context.Context, fingerprint, url string, existing *domain.Article) (bool, *int64) {
	check := p.Index.CheckDuplicate(ctx, fingerprint)
	if !check.IsDuplicate || check.Existing == nil {
		return false, nil
	}
	if check.Existing.URL == url || (existing != nil && check.Existing.ID == existing.ID) {
		return true, nil
	}

	id := check.Existing.ID
	return true, &id
}

// forgetReplacedFingerprint drops the cached owner of content the URL no
// longer serves, so later copies of that content are not matched against it.
func (p *Pipeline) forgetReplacedFingerprint(ctx context.Context, existing *domain.Article, fingerprint string) {
	if existing == nil || existing.ContentHash == nil || existing.DuplicateOf != nil {
		return
	}
	if old := *existing.ContentHash; old != fingerprint {
		p.Index.Forget(ctx, old)
	}
}

// embed decides the paragraph set to store with article and sets its
// embedding status. The second return value reports whether the stored
// paragraphs should be replaced.
func (p *Pipeline) embed(
	ctx context.Context,
	article, existing *domain.Article,
	log logger.Logger,
) ([]domain.Paragraph, bool) {
	if existing != nil &&
		existing.EmbeddingStatus == domain.EmbeddingStatusComplete &&
		existing.Question == article.Question &&
		existing.Answer == article.Answer {
		article.EmbeddingStatus = domain.EmbeddingStatusComplete
		return nil, false
	}

	if article.DuplicateOf != nil || p.Generator == nil {
		article.EmbeddingStatus = domain.EmbeddingStatusNone
		return nil, true
	}

	result := p.Generator.Embed(ctx, article.Answer)
	p.Metrics.RecordEmbeddings(len(result.Paragraphs), result.Failed)
	if result.Failed > 0 {
		log.Warn("Some paragraphs were not embedded",
			logger.Int("requested", result.Requested),
			logger.Int("failed", result.Failed),
		)
	}

	article.EmbeddingStatus = result.Status()
	return toDomainParagraphs(result), true
}

func toDomainParagraphs(result embedding.Result) []domain.Paragraph {
	paragraphs := make([]domain.Paragraph, 0, len(result.Paragraphs))
	for _, para := range result.Paragraphs {
		paragraphs = append(paragraphs, domain.Paragraph{
			Position:  para.Position,
			Text:      para.Text,
			Embedding: pgvector.NewVector(para.Embedding),
		})
	}
	return paragraphs
}

func questionFor(title, body string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}

	first, _, _ := strings.Cut(body, "\n")
	first = strings.TrimSpace(first)
	if utf8.RuneCountInString(first) <= maxDerivedQuestionLength {
		return first
	}
	return strings.TrimSpace(string([]rune(first)[:maxDerivedQuestionLength]))
}

func skipped(reason domain.SkipReason) Result {
	return Result{Outcome: domain.OutcomeSkipped, SkipReason: reason}
}
