// Package config defines the faqhub configuration, built once at start and
// injected into every crawler and pipeline stage.
package config

import (
	"fmt"
	"time"

	infraconfig "github.com/jonesrussell/faqhub/infrastructure/config"
	infraredis "github.com/jonesrussell/faqhub/infrastructure/redis"
)

// Default service configuration values.
const (
	defaultServiceName    = "faqhub"
	defaultServiceVersion = "1.0.0"
	defaultServicePort    = 8080
	defaultLogLevel       = "info"
	defaultLogFormat      = "json"
)

// Default database configuration values.
const (
	defaultDBHost         = "localhost"
	defaultDBPort         = 5432
	defaultDBUser         = "postgres"
	defaultDBName         = "faqhub"
	defaultDBSSLMode      = "disable"
	defaultDBMaxConns     = 10
	defaultDBMaxIdleConns = 5
	defaultDBConnLifetime = 30 * time.Minute
)

// Default pipeline thresholds.
const (
	defaultDedupMinLength        = 100
	defaultTargetLanguage        = "en"
	defaultLanguageMinLength     = 20
	defaultReliabilityThreshold  = 0.5
	defaultQualityMinLength      = 150
	defaultEmbeddingModel        = "text-embedding-3-small"
	defaultEmbeddingDimensions   = 1536
	defaultMaxParagraphs         = 8
	defaultMinParagraphLength    = 50
	defaultEmbeddingTimeout      = 30 * time.Second
	defaultRedisFingerprintTTL   = 7 * 24 * time.Hour
	defaultRedisKeyPrefix        = "faqhub"
	defaultSearchMinScore        = 0.7
	defaultSearchCandidateLimit  = 200
	defaultSearchResultLimit     = 10
	defaultSearchMaxSnippets     = 3
	defaultRequestTimeout        = 30 * time.Second
	defaultRetryMaxAttempts      = 3
	defaultRetryBaseDelay        = time.Second
	defaultRetryMaxDelay         = 30 * time.Second
	defaultRetryFactor           = 1.5
	defaultPlatformRatePerSecond = 0.5
	defaultPlatformBurst         = 1
	defaultPlatformMaxArticles   = 50
	defaultSchedule              = "0 */6 * * *"
)

// Config holds the application configuration.
type Config struct {
	Service   ServiceConfig    `yaml:"service"`
	Database  DatabaseConfig   `yaml:"database"`
	Redis     RedisConfig      `yaml:"redis"`
	Embedding EmbeddingConfig  `yaml:"embedding"`
	Features  FeatureFlags     `yaml:"features"`
	Pipeline  PipelineConfig   `yaml:"pipeline"`
	Crawler   CrawlerConfig    `yaml:"crawler"`
	Search    SearchConfig     `yaml:"search"`
	Logging   LoggingConfig    `yaml:"logging"`
	Platforms []PlatformConfig `yaml:"platforms"`
}

// ServiceConfig holds service identity and runtime settings.
type ServiceConfig struct {
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Port        int      `env:"FAQHUB_PORT"  yaml:"port"`
	Debug       bool     `env:"APP_DEBUG"    yaml:"debug"`
	CORSOrigins []string `env:"CORS_ORIGINS" yaml:"cors_origins"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host                  string        `env:"POSTGRES_HOST"     yaml:"host"`
	Port                  int           `env:"POSTGRES_PORT"     yaml:"port"`
	User                  string        `env:"POSTGRES_USER"     yaml:"user"`
	Password              string        `env:"POSTGRES_PASSWORD" yaml:"password"`
	Database              string        `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode               string        `yaml:"sslmode"`
	MaxConnections        int           `yaml:"max_connections"`
	MaxIdleConns          int           `yaml:"max_idle_connections"`
	ConnectionMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// DSN returns the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode)
}

// RedisConfig configures the optional fingerprint cache.
type RedisConfig struct {
	Enabled        bool              `env:"REDIS_ENABLED" yaml:"enabled"`
	Client         infraredis.Config `yaml:",inline"`
	FingerprintTTL time.Duration     `yaml:"fingerprint_ttl"`
}

// EmbeddingConfig configures the embedding service client and paragraph splitting.
type EmbeddingConfig struct {
	APIKey             string        `env:"OPENAI_API_KEY"  yaml:"api_key"`
	BaseURL            string        `env:"OPENAI_BASE_URL" yaml:"base_url"`
	Model              string        `yaml:"model"`
	Dimensions         int           `yaml:"dimensions"`
	MaxParagraphs      int           `yaml:"max_paragraphs"`
	MinParagraphLength int           `yaml:"min_paragraph_length"`
	Timeout            time.Duration `yaml:"timeout"`
}

// FeatureFlags gate optional crawlers and pipeline features.
type FeatureFlags struct {
	EnableContentDeduplication   bool `env:"ENABLE_CONTENT_DEDUPLICATION"   yaml:"enable_content_deduplication"`
	EnableGetYourGuidePagination bool `env:"ENABLE_GETYOURGUIDE_PAGINATION" yaml:"enable_getyourguide_pagination"`
	EnableViatorScraping         bool `env:"ENABLE_VIATOR_SCRAPING"         yaml:"enable_viator_scraping"`
	EnableCommunityCrawling      bool `env:"ENABLE_COMMUNITY_CRAWLING"      yaml:"enable_community_crawling"`
}

// PipelineConfig holds the thresholds of the ingestion stages.
type PipelineConfig struct {
	Dedup    DedupConfig    `yaml:"dedup"`
	Language LanguageConfig `yaml:"language"`
	Quality  QualityConfig  `yaml:"quality"`
}

// DedupConfig configures content fingerprinting.
type DedupConfig struct {
	MinContentLength int `yaml:"min_content_length"`
}

// LanguageConfig configures the language gate.
type LanguageConfig struct {
	Target               string  `env:"TARGET_LANGUAGE" yaml:"target"`
	MinLength            int     `yaml:"min_length"`
	ReliabilityThreshold float64 `yaml:"reliability_threshold"`
}

// QualityConfig configures the quality scorer.
type QualityConfig struct {
	MinLength int `yaml:"min_length"`
}

// CrawlerConfig holds settings shared by every source.
type CrawlerConfig struct {
	RequestTimeout time.Duration `yaml:"request_timeout"`
	UserAgent      string        `env:"CRAWLER_USER_AGENT" yaml:"user_agent"`
	Schedule       string        `env:"CRAWLER_SCHEDULE"   yaml:"schedule"`
	Retry          RetryConfig   `yaml:"retry"`
}

// RetryConfig configures the retry policy applied at every I/O boundary.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
	// Backoff is "linear" or "multiplicative".
	Backoff string  `yaml:"backoff"`
	Factor  float64 `yaml:"factor"`
}

// SearchConfig configures the search API ranking.
type SearchConfig struct {
	MinScore       float64 `yaml:"min_score"`
	CandidateLimit int     `yaml:"candidate_limit"`
	ResultLimit    int     `yaml:"result_limit"`
	MaxSnippets    int     `yaml:"max_snippets"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from a YAML file, applies defaults, then env overrides.
func Load(path string) (*Config, error) {
	cfg, loadErr := infraconfig.LoadWithDefaults(path, SetDefaults)
	if loadErr != nil {
		return nil, fmt.Errorf("load config: %w", loadErr)
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return cfg, nil
}

// SetDefaults applies default values to all configuration sections.
func SetDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setRedisDefaults(&cfg.Redis)
	setEmbeddingDefaults(&cfg.Embedding)
	setPipelineDefaults(&cfg.Pipeline)
	setCrawlerDefaults(&cfg.Crawler)
	setSearchDefaults(&cfg.Search)
	setLoggingDefaults(&cfg.Logging)

	for i := range cfg.Platforms {
		cfg.Platforms[i].setDefaults()
	}
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == 0 {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
	if d.MaxConnections == 0 {
		d.MaxConnections = defaultDBMaxConns
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = defaultDBMaxIdleConns
	}
	if d.ConnectionMaxLifetime == 0 {
		d.ConnectionMaxLifetime = defaultDBConnLifetime
	}
}

func setRedisDefaults(r *RedisConfig) {
	if r.FingerprintTTL == 0 {
		r.FingerprintTTL = defaultRedisFingerprintTTL
	}
	if r.Client.KeyPrefix == "" {
		r.Client.KeyPrefix = defaultRedisKeyPrefix
	}
}

func setEmbeddingDefaults(e *EmbeddingConfig) {
	if e.Model == "" {
		e.Model = defaultEmbeddingModel
	}
	if e.Dimensions == 0 {
		e.Dimensions = defaultEmbeddingDimensions
	}
	if e.MaxParagraphs == 0 {
		e.MaxParagraphs = defaultMaxParagraphs
	}
	if e.MinParagraphLength == 0 {
		e.MinParagraphLength = defaultMinParagraphLength
	}
	if e.Timeout == 0 {
		e.Timeout = defaultEmbeddingTimeout
	}
}

func setPipelineDefaults(p *PipelineConfig) {
	if p.Dedup.MinContentLength == 0 {
		p.Dedup.MinContentLength = defaultDedupMinLength
	}
	if p.Language.Target == "" {
		p.Language.Target = defaultTargetLanguage
	}
	if p.Language.MinLength == 0 {
		p.Language.MinLength = defaultLanguageMinLength
	}
	if p.Language.ReliabilityThreshold == 0 {
		p.Language.ReliabilityThreshold = defaultReliabilityThreshold
	}
	if p.Quality.MinLength == 0 {
		p.Quality.MinLength = defaultQualityMinLength
	}
}

func setCrawlerDefaults(c *CrawlerConfig) {
	if c.RequestTimeout == 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.Schedule == "" {
		c.Schedule = defaultSchedule
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = defaultRetryMaxAttempts
	}
	if c.Retry.BaseDelay == 0 {
		c.Retry.BaseDelay = defaultRetryBaseDelay
	}
	if c.Retry.MaxDelay == 0 {
		c.Retry.MaxDelay = defaultRetryMaxDelay
	}
	if c.Retry.Backoff == "" {
		c.Retry.Backoff = BackoffMultiplicative
	}
	if c.Retry.Factor == 0 {
		c.Retry.Factor = defaultRetryFactor
	}
}

func setSearchDefaults(s *SearchConfig) {
	if s.MinScore == 0 {
		s.MinScore = defaultSearchMinScore
	}
	if s.CandidateLimit == 0 {
		s.CandidateLimit = defaultSearchCandidateLimit
	}
	if s.ResultLimit == 0 {
		s.ResultLimit = defaultSearchResultLimit
	}
	if s.MaxSnippets == 0 {
		s.MaxSnippets = defaultSearchMaxSnippets
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}
