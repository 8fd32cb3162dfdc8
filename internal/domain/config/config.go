package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	domainerr "mdblog/internal/domain/errors"
)

type Config struct {
	Site  SiteConfig  `yaml:"site"`
	Build BuildConfig `yaml:"build"`
}

type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Author      string `yaml:"author"`
	SiteURL     string `yaml:"site_url"`
	Language    string `yaml:"language"`
}

type SlugStrategy string

const (
	SlugPercent       SlugStrategy = "percent"
	SlugTransliterate SlugStrategy = "transliterate"
)

type BuildConfig struct {
	SourceDir    string       `yaml:"source_dir"`
	PublicDir    string       `yaml:"public_dir"`
	ArticlesDir  string       `yaml:"articles_dir"`
	TagsDir      string       `yaml:"tags_dir"`
	TemplatesDir string       `yaml:"templates_dir"`
	StaticDir    string       `yaml:"static_dir"`
	IndexFile    string       `yaml:"index_file"`
	SlugStrategy SlugStrategy `yaml:"slug_strategy"`
	// BaseURLPrefix is prepended to every generated link, e.g. "/blog".
	BaseURLPrefix string    `yaml:"base_url_prefix"`
	FeedSize      int       `yaml:"feed_size"`
	Now           time.Time `yaml:"-"`
}

func Default() Config {
	return Config{
		Site: SiteConfig{
			Title:    "Blog",
			Language: "ja",
		},
		Build: BuildConfig{
			SourceDir:    "markdowns",
			PublicDir:    "public",
			ArticlesDir:  "articles",
			TagsDir:      "tags",
			TemplatesDir: "templates",
			StaticDir:    "static",
			IndexFile:    "articles.json",
			SlugStrategy: SlugPercent,
			FeedSize:     20,
			Now:          time.Now(),
		},
	}
}

func (c Config) Validate() error {
	var ve domainerr.ValidationError

	if strings.TrimSpace(c.Site.Title) == "" {
		ve.Add("site.title", "must not be empty")
	}
	if su := strings.TrimSpace(c.Site.SiteURL); su != "" && !isValidAbsURL(su) {
		ve.Add("site.site_url", "must be a valid absolute URL")
	}

	if strings.TrimSpace(c.Build.SourceDir) == "" {
		ve.Add("build.source_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.PublicDir) == "" {
		ve.Add("build.public_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.ArticlesDir) == "" {
		ve.Add("build.articles_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.TagsDir) == "" {
		ve.Add("build.tags_dir", "must not be empty")
	}
	if idx := strings.TrimSpace(c.Build.IndexFile); idx == "" {
		ve.Add("build.index_file", "must not be empty")
	} else if !filepath.IsLocal(filepath.FromSlash(idx)) {
		ve.Add("build.index_file", "must be a relative path inside public_dir")
	}

	switch c.Build.SlugStrategy {
	case SlugPercent, SlugTransliterate:
	default:
		ve.Add("build.slug_strategy", "must be 'percent' or 'transliterate'")
	}

	if bp := strings.TrimSpace(c.Build.BaseURLPrefix); bp != "" {
		if !strings.HasPrefix(bp, "/") {
			ve.Add("build.base_url_prefix", "must start with '/'")
		}
		if strings.HasSuffix(bp, "/") {
			ve.Add("build.base_url_prefix", "must not end with '/'")
		}
	}
	if c.Build.FeedSize < 0 {
		ve.Add("build.feed_size", "must not be negative")
	}

	if ve.HasAny() {
		return ve
	}
	return nil
}

func isValidAbsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// Environment variables that override values from the config file.
const (
	EnvSourceDir     = "MDBLOG_SOURCE_DIR"
	EnvPublicDir     = "MDBLOG_PUBLIC_DIR"
	EnvSlugStrategy  = "MDBLOG_SLUG_STRATEGY"
	EnvBaseURLPrefix = "MDBLOG_BASE_URL_PREFIX"
	EnvSiteURL       = "MDBLOG_SITE_URL"
	EnvFeedSize      = "MDBLOG_FEED_SIZE"
)

// ApplyEnv overlays MDBLOG_* variables on cfg. lookup is os.LookupEnv in production.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvSourceDir); ok {
		c.Build.SourceDir = v
	}
	if v, ok := lookup(EnvPublicDir); ok {
		c.Build.PublicDir = v
	}
	if v, ok := lookup(EnvSlugStrategy); ok {
		c.Build.SlugStrategy = SlugStrategy(strings.ToLower(strings.TrimSpace(v)))
	}
	if v, ok := lookup(EnvBaseURLPrefix); ok {
		c.Build.BaseURLPrefix = v
	}
	if v, ok := lookup(EnvSiteURL); ok {
		c.Site.SiteURL = v
	}
	if v, ok := lookup(EnvFeedSize); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.Build.FeedSize = n
		}
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	return finish(cfg, data)
}

// LoadOrDefault behaves like Load but falls back to Default when path does not exist.
func LoadOrDefault(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return finish(cfg, nil)
		}
		return cfg, err
	}
	return finish(cfg, data)
}

func finish(cfg Config, data []byte) (Config, error) {
	// fields present in the file override Default, the rest are kept
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	if cfg.Build.Now.IsZero() {
		cfg.Build.Now = time.Now()
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Marshal renders cfg as YAML, used by `mdblog init`.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
