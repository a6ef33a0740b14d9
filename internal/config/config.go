// Package config loads application settings from defaults, an optional
// YAML or TOML file, and environment variables, in that order.
package config

// Storage driver names.
const (
	DriverJSON     = "json"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the full application configuration.
type Config struct {
	Addr         string            `yaml:"addr" toml:"addr"`
	APIKey       string            `yaml:"api_key" toml:"api_key"`
	DefaultOwner string            `yaml:"default_owner" toml:"default_owner"`
	Owners       map[string]string `yaml:"owners" toml:"owners"`
	Storage      Storage           `yaml:"storage" toml:"storage"`
	Reminder     Reminder          `yaml:"reminder" toml:"reminder"`
	Email        Email             `yaml:"email" toml:"email"`
	Log          Log               `yaml:"log" toml:"log"`
}

// Storage selects and locates the task repository.
type Storage struct {
	Driver string `yaml:"driver" toml:"driver"`
	Path   string `yaml:"path" toml:"path"`
	DSN    string `yaml:"dsn" toml:"dsn"`
}

// Reminder configures the daily trigger.
type Reminder struct {
	Time     string `yaml:"time" toml:"time"`
	Timezone string `yaml:"timezone" toml:"timezone"`
}

// Email configures SMTP delivery of the reminder digest.
type Email struct {
	SMTPServer string   `yaml:"smtp_server" toml:"smtp_server"`
	SMTPPort   int      `yaml:"smtp_port" toml:"smtp_port"`
	Sender     string   `yaml:"sender_email" toml:"sender_email"`
	Password   string   `yaml:"sender_password" toml:"sender_password"`
	Recipients []string `yaml:"recipients" toml:"recipients"`
}

// Log configures the application logger.
type Log struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Enabled reports whether an SMTP server is configured.
func (e Email) Enabled() bool {
	return e.SMTPServer != ""
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:         ":5000",
		DefaultOwner: "default",
		Owners:       map[string]string{},
		Storage:      Storage{Driver: DriverJSON},
		Reminder:     Reminder{Time: "08:00"},
		Email:        Email{SMTPPort: 587},
		Log:          Log{Level: "info", Format: "text"},
	}
}

// DisplayName returns the configured display name for owner, or owner itself.
func (c Config) DisplayName(owner string) string {
	if name, ok := c.Owners[owner]; ok && name != "" {
		return name
	}
	return owner
}
