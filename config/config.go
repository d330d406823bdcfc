package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RawFile is one raw quote listing and the line format it uses
type RawFile struct {
	Name   string
	Format string
}

// Config represents the application configuration
type Config struct {
	// Input and output artifacts
	RawDir     string
	RawFiles   []RawFile
	QuotesFile string
	ImageDir   string
	SeedFile   string
	FailureLog string

	// Screenshot collector configuration
	ChromeWSURL     string
	ChromeProxy     string
	TargetAuthor    string
	PageLoadTimeout time.Duration
	PostWaitTimeout time.Duration
	SettleDelay     time.Duration
	RecordDelay     time.Duration
	ViewportWidth   int
	ViewportHeight  int

	// Relational store configuration
	StoreDriver string
	StoreDSN    string

	// Blob store configuration
	BlobDriver     string
	RedisAddr      string
	RedisDB        int
	RedisKeyPrefix string
	MemcacheAddr   string

	// Lookup service configuration
	Port int

	// Environment
	Environment string

	// parseErrs holds the numeric variables that could not be parsed
	parseErrs []error
}

const defaultRawFiles = "list.txt:space,list-2.txt:pipe,list-3.txt:pipe"

// LoadConfig loads the configuration from environment variables with defaults.
// Malformed numbers are reported by Validate.
func LoadConfig() *Config {
	c := &Config{
		RawDir:         getEnv("RAW_DIR", "fufufafa-memorable-quotes/raw"),
		RawFiles:       parseRawFiles(getEnv("RAW_FILES", defaultRawFiles)),
		QuotesFile:     getEnv("QUOTES_FILE", "quotes.json"),
		ImageDir:       getEnv("IMAGE_DIR", "scraped-images"),
		SeedFile:       getEnv("SEED_FILE", "seed.sql"),
		FailureLog:     getEnv("FAILURE_LOG", "failures.log"),
		ChromeWSURL:    getEnv("CHROME_WS_URL", ""),
		ChromeProxy:    getEnv("CHROME_PROXY", ""),
		TargetAuthor:   getEnv("TARGET_AUTHOR", "fufufafa"),
		StoreDriver:    getEnv("STORE_DRIVER", "sqlite"),
		StoreDSN:       getEnv("STORE_DSN", "fuaas.db"),
		BlobDriver:     getEnv("BLOB_DRIVER", "redis"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", "fuaas:img:"),
		MemcacheAddr:   getEnv("MEMCACHE_ADDR", "localhost:11211"),
		Environment:    getEnv("FUAAS_ENVIRONMENT", "development"),
	}

	c.PageLoadTimeout = time.Duration(c.getEnvInt("PAGE_LOAD_TIMEOUT_SECONDS", 30)) * time.Second
	c.PostWaitTimeout = time.Duration(c.getEnvInt("POST_WAIT_TIMEOUT_SECONDS", 10)) * time.Second
	c.SettleDelay = time.Duration(c.getEnvInt("SETTLE_DELAY_MS", 1500)) * time.Millisecond
	c.RecordDelay = time.Duration(c.getEnvInt("RECORD_DELAY_MS", 2000)) * time.Millisecond
	c.ViewportWidth = c.getEnvInt("VIEWPORT_WIDTH", 800)
	c.ViewportHeight = c.getEnvInt("VIEWPORT_HEIGHT", 1200)
	c.RedisDB = c.getEnvInt("REDIS_DB", 0)
	c.Port = c.getEnvInt("PORT", 8787)

	return c
}

// Validate checks the configuration for values the pipeline cannot run with
func (c *Config) Validate() error {
	if len(c.parseErrs) > 0 {
		return c.parseErrs[0]
	}
	if len(c.RawFiles) == 0 {
		return fmt.Errorf("RAW_FILES must name at least one file")
	}
	for _, f := range c.RawFiles {
		if f.Name == "" {
			return fmt.Errorf("RAW_FILES contains an empty file name")
		}
		if f.Format != "space" && f.Format != "pipe" {
			return fmt.Errorf("unknown format %q for raw file %s", f.Format, f.Name)
		}
	}
	if strings.TrimSpace(c.TargetAuthor) == "" {
		return fmt.Errorf("TARGET_AUTHOR must not be empty")
	}
	if c.PageLoadTimeout <= 0 || c.PostWaitTimeout <= 0 {
		return fmt.Errorf("page load and post wait timeouts must be positive")
	}
	if c.SettleDelay < 0 || c.RecordDelay < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		return fmt.Errorf("viewport must be positive, got %dx%d", c.ViewportWidth, c.ViewportHeight)
	}
	switch c.StoreDriver {
	case "sqlite", "libsql":
	default:
		return fmt.Errorf("unsupported store driver: %s", c.StoreDriver)
	}
	switch c.BlobDriver {
	case "redis", "memcache":
	default:
		return fmt.Errorf("unsupported blob driver: %s", c.BlobDriver)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return nil
}

// parseRawFiles parses "name:format,name:format". A name without a format uses the pipe format.
func parseRawFiles(value string) []RawFile {
	var files []RawFile
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, format, found := strings.Cut(part, ":")
		if !found {
			format = "pipe"
		}
		files = append(files, RawFile{
			Name:   strings.TrimSpace(name),
			Format: strings.TrimSpace(format),
		})
	}
	return files
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt reads an integer variable, recording a parse error and returning defaultValue
// when the value is malformed
func (c *Config) getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		c.parseErrs = append(c.parseErrs, fmt.Errorf("invalid %s %q: must be an integer", key, value))
		return defaultValue
	}
	return n
}
