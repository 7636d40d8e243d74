package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"BrainCandy/internal/domain"
)

const (
	defaultTimezone      = "America/Chicago"
	configPathEnv        = "BRAINCANDY_CONFIG"
	telegramTokenEnv     = "TELEGRAM_BOT_TOKEN"
	telegramChannelEnv   = "TELEGRAM_CHANNEL_ID"
	telegramReviewerEnv  = "TELEGRAM_REVIEWER_CHAT_ID"
	storageDriverEnv     = "STORAGE_DRIVER"
	storagePathEnv       = "STORAGE_PATH"
	storageDSNEnv        = "STORAGE_DSN"
	redisAddrEnv         = "REDIS_ADDR"
	redisPasswordEnv     = "REDIS_PASSWORD"
	redisDBEnv           = "REDIS_DB"
	httpAddrEnv          = "HTTP_ADDR"
	timezoneEnv          = "TIMEZONE"
	logLevelEnv          = "LOG_LEVEL"
	scoreThresholdEnv    = "SCORE_THRESHOLD"
	reviewBatchSizeEnv   = "REVIEW_BATCH_SIZE"
	hackerNewsEnabledEnv = "HACKER_NEWS_ENABLED"
)

// Storage drivers.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig             `yaml:"logging"`
	Telegram   TelegramConfig            `yaml:"telegram"`
	Storage    StorageConfig             `yaml:"storage"`
	Scheduler  SchedulerConfig           `yaml:"scheduler"`
	Curation   CurationConfig            `yaml:"curation"`
	Scoring    ScoringConfig             `yaml:"scoring"`
	Filters    FilterConfig              `yaml:"filters"`
	HackerNews HackerNewsConfig          `yaml:"hackerNews"`
	Discovery  DiscoveryConfig           `yaml:"discovery"`
	HTTP       HTTPConfig                `yaml:"http"`
	Redirects  map[string]string         `yaml:"redirects"`
	Sites      []SiteConfig              `yaml:"sites"`
	Canonical  []domain.CanonicalReading `yaml:"canonical"`
}

// LoggingConfig selects verbosity and handler format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TelegramConfig wires all data required to send and receive messages.
type TelegramConfig struct {
	BotToken       string        `yaml:"botToken"`
	ChannelID      string        `yaml:"channelId"`
	ReviewerChatID string        `yaml:"reviewerChatId"`
	APIBase        string        `yaml:"apiBase"`
	Timeout        time.Duration `yaml:"timeout"`
	PollTimeout    int           `yaml:"pollTimeout"`
}

// StorageConfig picks the key-value backend for persisted state.
type StorageConfig struct {
	Driver string      `yaml:"driver"`
	Path   string      `yaml:"path"`
	DSN    string      `yaml:"dsn"`
	Redis  RedisConfig `yaml:"redis"`
}

// RedisConfig describes the Redis connection for the redis driver.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// SchedulerConfig defines when each run mode fires.
type SchedulerConfig struct {
	Timezone         string         `yaml:"timezone"`
	TrainingSpec     string         `yaml:"trainingSpec"`
	ProductionSpec   string         `yaml:"productionSpec"`
	PostingSpec      string         `yaml:"postingSpec"`
	DiscoverySpec    string         `yaml:"discoverySpec"`
	PostingStartHour int            `yaml:"postingStartHour"`
	PostingEndHour   int            `yaml:"postingEndHour"`
	location         *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// InPostingWindow reports whether t falls inside the posting hours, inclusive.
func (s SchedulerConfig) InPostingWindow(t time.Time) bool {
	hour := t.In(s.Location()).Hour()
	return hour >= s.PostingStartHour && hour <= s.PostingEndHour
}

// CurationConfig holds queue sizes, caps and pacing.
type CurationConfig struct {
	ReviewBatchSize    int           `yaml:"reviewBatchSize"`
	MaxQueueSize       int           `yaml:"maxQueueSize"`
	MaxPerSource       int           `yaml:"maxPerSource"`
	LowVolumeThreshold int           `yaml:"lowVolumeThreshold"`
	PostsPerCycle      int           `yaml:"postsPerCycle"`
	ProductionFallback int           `yaml:"productionFallback"`
	DrainCount         int           `yaml:"drainCount"`
	FeedEntryLimit     int           `yaml:"feedEntryLimit"`
	ShuffleFeeds       bool          `yaml:"shuffleFeeds"`
	SourceDelay        time.Duration `yaml:"sourceDelay"`
	SendDelay          time.Duration `yaml:"sendDelay"`
	PostDelay          time.Duration `yaml:"postDelay"`
}

// ScoringConfig parametrizes the scorer.
type ScoringConfig struct {
	Threshold        float64          `yaml:"threshold"`
	TitlePenalty     float64          `yaml:"titlePenalty"`
	BadTitlePatterns []string         `yaml:"badTitlePatterns"`
	PopularityTiers  []PopularityTier `yaml:"popularityTiers"`
	PreferredBonus   float64          `yaml:"preferredBonus"`
}

// PopularityTier grants Bonus to candidates with at least MinPoints.
type PopularityTier struct {
	MinPoints int     `yaml:"minPoints"`
	Bonus     float64 `yaml:"bonus"`
}

// FilterConfig lists the blocklists applied to every candidate.
type FilterConfig struct {
	NeverResurface  []string `yaml:"neverResurface"`
	BlockedDomains  []string `yaml:"blockedDomains"`
	BlockedKeywords []string `yaml:"blockedKeywords"`
	PremiumMarkers  []string `yaml:"premiumMarkers"`
}

// HackerNewsConfig describes the Algolia search adapter.
type HackerNewsConfig struct {
	Enabled          bool          `yaml:"enabled"`
	Endpoint         string        `yaml:"endpoint"`
	MinPoints        int           `yaml:"minPoints"`
	MaxArticles      int           `yaml:"maxArticles"`
	HitsPerPage      int           `yaml:"hitsPerPage"`
	PreferredDomains []string      `yaml:"preferredDomains"`
	Timeout          time.Duration `yaml:"timeout"`
}

// DiscoveryConfig tunes source discovery.
type DiscoveryConfig struct {
	MinPoints     int           `yaml:"minPoints"`
	Pages         int           `yaml:"pages"`
	HitsPerPage   int           `yaml:"hitsPerPage"`
	MinDomainHits int           `yaml:"minDomainHits"`
	MaxSubstacks  int           `yaml:"maxSubstacks"`
	Promote       int           `yaml:"promote"`
	ReportSize    int           `yaml:"reportSize"`
	FeedPatterns  []string      `yaml:"feedPatterns"`
	IgnoreDomains []string      `yaml:"ignoreDomains"`
	UserAgent     string        `yaml:"userAgent"`
	Timeout       time.Duration `yaml:"timeout"`
}

// HTTPConfig enables the status API when Addr is set.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// SiteConfig describes a single feed with its scanner strategy.
type SiteConfig struct {
	Name     string            `yaml:"name" json:"name"`
	Scanner  string            `yaml:"scanner" json:"scanner"`
	URL      string            `yaml:"url" json:"url"`
	Category string            `yaml:"category" json:"category"`
	Options  map[string]string `yaml:"options" json:"options,omitempty"`
}

// Load reads YAML configuration (if present) over the defaults and applies environment overrides.
// An explicit path wins over BRAINCANDY_CONFIG.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sites) == 0 {
		cfg.Sites = Default().Sites
	}
	for i := range cfg.Sites {
		if cfg.Sites[i].Scanner == "" {
			cfg.Sites[i].Scanner = "rss"
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the curation pipeline cannot work with.
func (c Config) Validate() error {
	var errs []error
	if c.Scoring.Threshold < 0 || c.Scoring.Threshold > 1 {
		errs = append(errs, fmt.Errorf("scoring.threshold %.2f outside [0,1]", c.Scoring.Threshold))
	}
	if c.Curation.MaxQueueSize <= 0 {
		errs = append(errs, errors.New("curation.maxQueueSize must be positive"))
	}
	if c.Curation.MaxPerSource <= 0 {
		errs = append(errs, errors.New("curation.maxPerSource must be positive"))
	}
	if c.Curation.ReviewBatchSize <= 0 {
		errs = append(errs, errors.New("curation.reviewBatchSize must be positive"))
	}
	switch c.Storage.Driver {
	case DriverJSON, DriverSQLite, DriverRedis:
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver))
	}
	return errors.Join(errs...)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChannelEnv); v != "" {
		c.Telegram.ChannelID = v
	}
	if v := os.Getenv(telegramReviewerEnv); v != "" {
		c.Telegram.ReviewerChatID = v
	}

	if v := os.Getenv(storageDriverEnv); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv(storagePathEnv); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv(storageDSNEnv); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Storage.Redis.Addr = v
	}
	if v := os.Getenv(redisPasswordEnv); v != "" {
		c.Storage.Redis.Password = v
	}
	if v := os.Getenv(redisDBEnv); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.Storage.Redis.DB = db
		} else {
			log.Printf("config: ignoring %s=%q: %v", redisDBEnv, v, err)
		}
	}

	if v := os.Getenv(httpAddrEnv); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv(timezoneEnv); v != "" {
		c.Scheduler.Timezone = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(scoreThresholdEnv); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Scoring.Threshold = f
		} else {
			log.Printf("config: ignoring %s=%q: %v", scoreThresholdEnv, v, err)
		}
	}
	if v := os.Getenv(reviewBatchSizeEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Curation.ReviewBatchSize = n
		} else {
			log.Printf("config: ignoring %s=%q: %v", reviewBatchSizeEnv, v, err)
		}
	}
	if v := os.Getenv(hackerNewsEnabledEnv); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.HackerNews.Enabled = b
		} else {
			log.Printf("config: ignoring %s=%q: %v", hackerNewsEnabledEnv, v, err)
		}
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		tz = defaultTimezone
		loc, err = time.LoadLocation(tz)
		if err != nil {
			loc = time.UTC
		}
	}
	c.Scheduler.Timezone = tz
	c.Scheduler.location = loc
}
