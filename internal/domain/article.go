// Package domain defines the records that flow through ingestion and search.
package domain

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// ContentType classifies where an article's content comes from.
type ContentType string

const (
	ContentTypeOfficial  ContentType = "official"
	ContentTypeCommunity ContentType = "community"
	ContentTypeNews      ContentType = "news"
	ContentTypePolicy    ContentType = "policy"
	ContentTypeFAQ       ContentType = "faq"
)

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeOfficial, ContentTypeCommunity, ContentTypeNews, ContentTypePolicy, ContentTypeFAQ:
		return true
	default:
		return false
	}
}

// IsPlatformOfficial reports whether content of this type is published by the platform itself.
func (t ContentType) IsPlatformOfficial() bool {
	return t == ContentTypeOfficial || t == ContentTypePolicy
}

// CrawlStatus is the soft lifecycle state of an article.
type CrawlStatus string

const (
	CrawlStatusActive CrawlStatus = "active"
	CrawlStatusError  CrawlStatus = "error"
)

// EmbeddingStatus tracks whether an article's paragraph set matches its content.
type EmbeddingStatus string

const (
	// EmbeddingStatusComplete means every eligible paragraph was embedded and stored.
	EmbeddingStatusComplete EmbeddingStatus = "complete"
	// EmbeddingStatusPartial means some paragraph embeddings failed.
	EmbeddingStatusPartial EmbeddingStatus = "partial"
	// EmbeddingStatusNone means no paragraph could be embedded.
	EmbeddingStatusNone EmbeddingStatus = "none"
	// EmbeddingStatusStale means the stored paragraphs belong to an older content version.
	EmbeddingStatusStale EmbeddingStatus = "stale"
)

// NeedsReprocessing reports whether the article should be picked up by reembed.
func (s EmbeddingStatus) NeedsReprocessing() bool {
	return s != EmbeddingStatusComplete
}

// QualityTier is the heuristic low/medium/high classification.
type QualityTier string

const (
	QualityLow    QualityTier = "low"
	QualityMedium QualityTier = "medium"
	QualityHigh   QualityTier = "high"
)

// Article is one ingested content record, unique by URL.
type Article struct {
	ID          int64       `db:"id"               json:"id"`
	URL         string      `db:"url"              json:"url"`
	Question    string      `db:"question"         json:"question"`
	Answer      string      `db:"answer"           json:"answer"`
	Category    string      `db:"category"         json:"category"`
	Platform    string      `db:"platform"         json:"platform"`
	ContentType ContentType `db:"content_type"     json:"content_type"`
	Source      string      `db:"source"           json:"source"`
	Language    string      `db:"language"         json:"language"`
	Slug        string      `db:"slug"             json:"slug"`
	ContentHash *string     `db:"content_hash"     json:"content_hash,omitempty"`
	// IsDuplicate is set when the fingerprint was already stored, including
	// by this URL's own earlier crawl. DuplicateOf names the other article
	// when there is one; only those copies are hidden from search.
	IsDuplicate     bool            `db:"is_duplicate"     json:"is_duplicate"`
	DuplicateOf     *int64          `db:"duplicate_of"     json:"duplicate_of,omitempty"`
	IsVerified      bool            `db:"is_verified"      json:"is_verified"`
	Votes           int             `db:"votes"            json:"votes"`
	QualityTier     QualityTier     `db:"quality_tier"     json:"quality_tier"`
	CrawlStatus     CrawlStatus     `db:"crawl_status"     json:"crawl_status"`
	EmbeddingStatus EmbeddingStatus `db:"embedding_status" json:"embedding_status"`
	CreatedAt       time.Time       `db:"created_at"       json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"       json:"updated_at"`
	LastCrawledAt   *time.Time      `db:"last_crawled_at"  json:"last_crawled_at,omitempty"`
}

// Paragraph is one embedded paragraph of an article.
type Paragraph struct {
	ID        int64           `db:"id"`
	ArticleID int64           `db:"article_id"`
	Position  int             `db:"position"`
	Text      string          `db:"text"`
	Embedding pgvector.Vector `db:"embedding"`
	CreatedAt time.Time       `db:"created_at"`
}
