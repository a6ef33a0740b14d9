package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultFiles are tried in order when no config file is named explicitly.
var DefaultFiles = []string{"remind.yaml", "remind.yml", "remind.toml"}

// Load builds the configuration. An explicit path must exist; otherwise
// the first of DefaultFiles present in the working directory is used, if any.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	} else {
		for _, name := range DefaultFiles {
			if _, err := os.Stat(name); err != nil {
				continue
			}
			if err := loadFile(name, &cfg); err != nil {
				return Config{}, err
			}
			break
		}
	}

	if err := loadFromEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file not found: %s", path)
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format: %s", path)
	}
	return nil
}

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Addr = ":" + v
	}
	if v := os.Getenv("REMIND_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("REMIND_DEFAULT_OWNER"); v != "" {
		cfg.DefaultOwner = v
	}
	if v := os.Getenv("REMIND_STORAGE"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("REMIND_DATA"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("REMIND_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("REMIND_TIME"); v != "" {
		cfg.Reminder.Time = v
	}
	if v := os.Getenv("REMIND_TIMEZONE"); v != "" {
		cfg.Reminder.Timezone = v
	}
	if v := os.Getenv("EMAIL_SMTP_SERVER"); v != "" {
		cfg.Email.SMTPServer = v
	}
	if v := os.Getenv("EMAIL_SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("EMAIL_SMTP_PORT: %w", err)
		}
		cfg.Email.SMTPPort = port
	}
	if v := os.Getenv("EMAIL_SENDER"); v != "" {
		cfg.Email.Sender = v
	}
	if v := os.Getenv("EMAIL_PASSWORD"); v != "" {
		cfg.Email.Password = v
	}
	if v := os.Getenv("EMAIL_RECIPIENTS"); v != "" {
		cfg.Email.Recipients = splitList(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks settings that cannot be repaired with a default.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverJSON, DriverSQLite:
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.DefaultOwner == "" {
		return fmt.Errorf("default_owner must not be empty")
	}
	if c.Email.Enabled() {
		if c.Email.Sender == "" {
			return fmt.Errorf("email.sender_email is required when smtp_server is set")
		}
		if len(c.Email.Recipients) == 0 {
			return fmt.Errorf("email.recipients is required when smtp_server is set")
		}
	}
	return nil
}
