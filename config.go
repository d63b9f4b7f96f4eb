package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	BaseURL     string `yaml:"base_url"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type Config struct {
	Server          string        `yaml:"server"`
	Database        string        `yaml:"database"`
	Dsn             string        `yaml:"dsn"`
	Cache           bool          `yaml:"cache"`
	LogLevel        string        `yaml:"log_level"`
	TokenSecret     string        `yaml:"token_secret"`
	TokenMaxAge     time.Duration `yaml:"token_max_age"`
	Admins          []string      `yaml:"admins"`
	PostInterval    time.Duration `yaml:"post_interval"`
	TreeWorkers     int           `yaml:"tree_workers"`
	DefaultPageSize int           `yaml:"default_page_size"`
	MaxPageSize     int           `yaml:"max_page_size"`
	Language        string        `yaml:"language"`
	Seed            bool          `yaml:"seed"`
	OpenAI          OpenAIConfig  `yaml:"openai"`
	Site            SiteConfig    `yaml:"site"`
}

func NewConfig() *Config {
	return &Config{
		Server:          ":8080",
		Database:        "sqlite",
		Dsn:             "./db/debateboard.sqlite",
		LogLevel:        "info",
		TokenMaxAge:     7 * 24 * time.Hour,
		PostInterval:    10 * time.Second,
		TreeWorkers:     4,
		DefaultPageSize: 10,
		MaxPageSize:     100,
		Language:        "pt",
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Site: SiteConfig{
			Title:       "DebateBoard",
			Description: "Debates com argumentos a favor e contra",
		},
	}
}

// Load applies, in order, the YAML file named by --config, the environment
// and the remaining command line flags.
func (c *Config) Load(args []string) error {
	fs := pflag.NewFlagSet("debateboard", pflag.ContinueOnError)
	configFile := fs.StringP("config", "c", "", "path to a YAML config file")
	server := fs.String("server", c.Server, "address to listen on")
	db := fs.String("database", c.Database, "storage backend: sqlite, postgres or memory")
	dsn := fs.String("dsn", c.Dsn, "database connection string")
	cache := fs.Bool("cache", c.Cache, "cache topic lookups and root totals")
	logLevel := fs.String("log-level", c.LogLevel, "debug, info, warn or error")
	seed := fs.Bool("seed", c.Seed, "insert the default topics into an empty database")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			return err
		}
		if err = yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parsing %s: %w", *configFile, err)
		}
	}

	c.loadEnv(os.Getenv)

	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "server":
			c.Server = *server
		case "database":
			c.Database = *db
		case "dsn":
			c.Dsn = *dsn
		case "cache":
			c.Cache = *cache
		case "log-level":
			c.LogLevel = *logLevel
		case "seed":
			c.Seed = *seed
		}
	})
	return c.Validate()
}

func (c *Config) loadEnv(getenv func(string) string) {
	if port := getenv("PORT"); port != "" {
		if !strings.Contains(port, ":") {
			port = ":" + port
		}
		c.Server = port
	}
	if v := getenv("DEBATE_DATABASE"); v != "" {
		c.Database = v
	}
	if v := getenv("DEBATE_DSN"); v != "" {
		c.Dsn = v
	}
	if v := getenv("DEBATE_TOKEN_SECRET"); v != "" {
		c.TokenSecret = v
	}
	if v := getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Database {
	case "sqlite", "postgres", "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown database %q", c.Database))
	}
	if len(c.TokenSecret) < 16 {
		errs = append(errs, errors.New("token_secret must be set to at least 16 characters"))
	}
	if c.DefaultPageSize < 1 || c.MaxPageSize < c.DefaultPageSize {
		errs = append(errs, errors.New("page sizes must satisfy 1 <= default_page_size <= max_page_size"))
	}
	return errors.Join(errs...)
}

func (c *Config) isAdmin(email string) bool {
	for _, a := range c.Admins {
		if strings.EqualFold(a, email) {
			return true
		}
	}
	return false
}
