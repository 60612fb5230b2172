package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/folio/internal/markdown"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Content  ContentConfig     `yaml:"content"`
	Markdown MarkdownConfig    `yaml:"markdown"`
	Site     SiteConfig        `yaml:"site"`
	Live     LiveConfig        `yaml:"live"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.Markdown.Validate(); err != nil {
		return err
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	return c.Live.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port              int           `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.ReadHeaderTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.ShutdownTimeout, validation.Required, validation.Min(time.Second)),
	)
}

// ContentConfig describes the content tree.
//
// Root holds one directory per category. AssetsDir names the root-level
// folder with images referenced by documents; it is served statically and
// never listed. Exclude holds extra doublestar patterns matched against
// root-level directory names.
type ContentConfig struct {
	Root      string   `yaml:"root"`
	AssetsDir string   `yaml:"assets_dir"`
	Exclude   []string `yaml:"exclude"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.AssetsDir, validation.By(singleSegment)),
		validation.Field(&c.Exclude, validation.Each(validation.By(globPattern))),
	)
}

// MarkdownConfig configures the Markdown renderer.
type MarkdownConfig struct {
	Extensions []string `yaml:"extensions"`
	HardWraps  bool     `yaml:"hard_wraps"`
	Unsafe     bool     `yaml:"unsafe"`
	HeadingIDs bool     `yaml:"heading_ids"`
}

// Validate validates the Markdown configuration.
func (c *MarkdownConfig) Validate() error {
	known := make([]any, 0)
	for _, name := range markdown.ExtensionNames() {
		known = append(known, name)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Extensions, validation.Each(validation.In(known...))),
	)
}

// Options converts the configuration into renderer options.
func (c *MarkdownConfig) Options() markdown.Options {
	return markdown.Options{
		Extensions: c.Extensions,
		HardWraps:  c.HardWraps,
		Unsafe:     c.Unsafe,
		HeadingIDs: c.HeadingIDs,
	}
}

// SiteConfig holds the presentational page settings.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Heading     string `yaml:"heading"`
	Footer      string `yaml:"footer"`
	FooterURL   string `yaml:"footer_url"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.FooterURL, is.URL),
	)
}

// LiveConfig controls live reload of open pages when content changes.
type LiveConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Debounce  time.Duration `yaml:"debounce"`
	Throttle  time.Duration `yaml:"throttle"`
	Heartbeat time.Duration `yaml:"heartbeat"`
}

// Validate validates the live reload configuration.
func (c *LiveConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.Throttle, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.Heartbeat, validation.Min(time.Duration(0))),
	)
}

func singleSegment(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
		return errors.New("must be a single directory name")
	}
	return nil
}

func globPattern(value any) error {
	s, _ := value.(string)
	if !doublestar.ValidatePattern(s) {
		return fmt.Errorf("invalid pattern %q", s)
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port:              8080,
				ReadHeaderTimeout: 5 * time.Second,
				ShutdownTimeout:   10 * time.Second,
			},
		},
		Content: ContentConfig{
			Root:      "./content",
			AssetsDir: "Images",
			Exclude:   []string{".*"},
		},
		Markdown: MarkdownConfig{
			Unsafe:     true,
			HeadingIDs: true,
		},
		Site: SiteConfig{
			Title:       "Summary",
			Description: "Summary of course content",
			Heading:     "Welcome to the Summary!",
		},
		Live: LiveConfig{
			Enabled:   false,
			Debounce:  200 * time.Millisecond,
			Throttle:  time.Second,
			Heartbeat: 30 * time.Second,
		},
	}
}
