// Package config handles application configuration loading.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"looksee/internal/domain"
)

// DefaultPath is the configuration file looked up when no --config flag
// or LOOKSEE_CONFIG variable is given.
const DefaultPath = "looksee.yaml"

// Settings holds the scalar configuration under the `settings:` key.
type Settings struct {
	DefaultTableName string  `yaml:"default_table_name"`
	LogFile          string  `yaml:"log_file"`
	LogLevel         string  `yaml:"log_level"`
	LogMaxSizeMB     int     `yaml:"log_max_size_mb"`
	ListenAddr       string  `yaml:"listen_addr"`
	SampleRows       int     `yaml:"sample_rows"`
	RateLimitRPS     float64 `yaml:"rate_limit_rps"`
	RateLimitBurst   int     `yaml:"rate_limit_burst"`
	DatasetCatalog   string  `yaml:"dataset_catalog"`
	SessionTTLMins   int     `yaml:"session_ttl_minutes"`
}

// Publish holds the optional document publishing configuration.
type Publish struct {
	ServerURL string `yaml:"server_url"`
	Document  string `yaml:"document"`
	Schedule  string `yaml:"schedule"` // cron spec; empty disables scheduled publishing
}

// Config is the full looksee configuration.
type Config struct {
	Settings      Settings          `yaml:"settings"`
	ReadFunctions map[string]string `yaml:"read_functions"`
	ReadOptions   map[string]string `yaml:"read_options"`
	Publish       Publish           `yaml:"publish"`
}

// readFunctionPattern is the shape a read-function identifier must have
// before it is ever interpolated into SQL. Anything else in the config file
// is rejected at load time.
var readFunctionPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// readOptionPattern limits each read-option fragment to a key=value pair
// whose value is a quoted literal or a bare token. Like read-function names,
// option text is interpolated into the read call and so is validated at load
// time rather than trusted. Quoted values may not contain commas.
var readOptionPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*=(?:'[^']*'|[A-Za-z0-9_.+-]+)$`)

// Load reads and validates the configuration file. A missing or malformed
// file is a hard startup failure (domain.ConfigError).
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return nil, domain.ErrConfig("configuration file %q: %v", path, err)
	}

	cfg := &Config{}
	dec := yaml.NewDecoder(strings.NewReader(string(raw)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, domain.ErrConfig("parse %q: %v", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Settings.DefaultTableName == "" {
		c.Settings.DefaultTableName = "dataset"
	}
	if c.Settings.LogFile == "" {
		c.Settings.LogFile = "looksee.log"
	}
	if c.Settings.LogMaxSizeMB == 0 {
		c.Settings.LogMaxSizeMB = 500
	}
	if c.Settings.ListenAddr == "" {
		c.Settings.ListenAddr = ":8080"
	}
	if c.Settings.SampleRows == 0 {
		c.Settings.SampleRows = 20480
	}
	if c.Settings.RateLimitRPS == 0 {
		c.Settings.RateLimitRPS = 100
	}
	if c.Settings.RateLimitBurst == 0 {
		c.Settings.RateLimitBurst = 200
	}
	if c.Settings.SessionTTLMins == 0 {
		c.Settings.SessionTTLMins = 30
	}
	if len(c.ReadFunctions) == 0 {
		c.ReadFunctions = map[string]string{
			"csv":     "read_csv_auto",
			"tsv":     "read_csv_auto",
			"parquet": "read_parquet",
			"json":    "read_json_auto",
		}
	}
}

func (c *Config) validate() error {
	if !identOK(c.Settings.DefaultTableName) {
		return domain.ErrConfig("settings.default_table_name %q is not a valid identifier", c.Settings.DefaultTableName)
	}
	for ext, fn := range c.ReadFunctions {
		if !readFunctionPattern.MatchString(fn) {
			return domain.ErrConfig("read_functions.%s: %q is not a valid read function identifier", ext, fn)
		}
	}
	for ext, opt := range c.ReadOptions {
		if _, ok := c.ReadFunctions[strings.ToLower(ext)]; !ok {
			return domain.ErrConfig("read_options.%s has no matching read_functions entry", ext)
		}
		for _, frag := range strings.Split(opt, ",") {
			if !readOptionPattern.MatchString(strings.TrimSpace(frag)) {
				return domain.ErrConfig("read_options.%s: %q is not a key=value option", ext, strings.TrimSpace(frag))
			}
		}
	}
	return nil
}

func identOK(name string) bool {
	return readFunctionPattern.MatchString(strings.ToLower(name))
}

// SlogLevel maps the configured log level string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Settings.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ReadFunction returns the engine read function for a lower-cased extension.
func (c *Config) ReadFunction(ext string) (string, bool) {
	fn, ok := c.ReadFunctions[strings.ToLower(ext)]
	return fn, ok
}

// String renders a redaction-free single-line summary for startup logging.
func (c *Config) String() string {
	exts := make([]string, 0, len(c.ReadFunctions))
	for ext := range c.ReadFunctions {
		exts = append(exts, ext)
	}
	return fmt.Sprintf("table=%s log=%s formats=%d", c.Settings.DefaultTableName, c.Settings.LogFile, len(exts))
}
