package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the full application configuration: defaults, overlaid by an
// optional JSON file, overlaid by DATASCOPE_* environment variables.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Data    DataConfig    `koanf:"data"`
	Log     LogConfig     `koanf:"log"`
	Report  ReportConfig  `koanf:"report"`
	Mailbox MailboxConfig `koanf:"mailbox"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DataConfig struct {
	Dir                  string `koanf:"dir"`
	Watch                bool   `koanf:"watch"`
	DefaultDataset       string `koanf:"default_dataset"`
	Charset              string `koanf:"charset"`
	CategoricalThreshold int    `koanf:"categorical_threshold"`
	PreviewRows          int    `koanf:"preview_rows"`
}

type LogConfig struct {
	File      string `koanf:"file"`
	Level     string `koanf:"level"`
	MaxSizeMB int64  `koanf:"max_size_mb"`
}

type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
}

type ReportConfig struct {
	Enabled    bool       `koanf:"enabled"`
	Dir        string     `koanf:"dir"`
	Schedule   string     `koanf:"schedule"`
	Recipients []string   `koanf:"recipients"`
	SMTP       SMTPConfig `koanf:"smtp"`
}

type MailboxConfig struct {
	Enabled       bool   `koanf:"enabled"`
	Server        string `koanf:"server"`
	Username      string `koanf:"username"`
	Password      string `koanf:"password"`
	Folder        string `koanf:"folder"`
	SubjectMarker string `koanf:"subject_marker"`
	Poll          string `koanf:"poll"`
	LookbackDays  int    `koanf:"lookback_days"`
}

const envPrefix = "DATASCOPE_"

func defaults() map[string]any {
	return map[string]any{
		"server.host":                "0.0.0.0",
		"server.port":                8000,
		"server.shutdown_timeout":    "10s",
		"data.dir":                   "./data",
		"data.watch":                 true,
		"data.default_dataset":       "",
		"data.charset":               "",
		"data.categorical_threshold": 20,
		"data.preview_rows":          100,
		"log.file":                   "./logs/datascope.log",
		"log.level":                  "info",
		"log.max_size_mb":            10,
		"report.enabled":             false,
		"report.dir":                 "./reports",
		"report.schedule":            "@every 24h",
		"mailbox.enabled":            false,
		"mailbox.folder":             "INBOX",
		"mailbox.poll":               "@every 15m",
		"mailbox.lookback_days":      3,
	}
}

// Load builds the configuration. path may be empty or point at a JSON file;
// a missing file is not an error, only an unreadable or invalid one is.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// 1. built-in defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. optional JSON config file
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), json.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	// 3. environment overrides, DATASCOPE_SERVER_PORT=9000 style
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout %s", c.Server.ShutdownTimeout)
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("data directory must be set")
	}
	if c.Data.CategoricalThreshold < 1 {
		return fmt.Errorf("invalid categorical threshold %d", c.Data.CategoricalThreshold)
	}
	if c.Data.PreviewRows < 1 {
		return fmt.Errorf("invalid preview row count %d", c.Data.PreviewRows)
	}
	if c.Log.File == "" {
		return fmt.Errorf("log file must be set")
	}
	if c.Report.Enabled {
		if c.Report.Schedule == "" {
			return fmt.Errorf("report schedule must be set when reports are enabled")
		}
		if len(c.Report.Recipients) > 0 && (c.Report.SMTP.Host == "" || c.Report.SMTP.From == "") {
			return fmt.Errorf("smtp host and from address must be set to email reports")
		}
	}
	if c.Mailbox.Enabled {
		if c.Mailbox.Server == "" || c.Mailbox.Username == "" {
			return fmt.Errorf("mailbox server and username must be set when the mailbox source is enabled")
		}
	}
	return nil
}

// Addr returns the host:port the HTTP server binds.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// MaxLogBytes returns the log rotation threshold in bytes.
func (c *Config) MaxLogBytes() int64 {
	return c.Log.MaxSizeMB << 20
}
