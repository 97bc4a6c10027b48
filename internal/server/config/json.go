package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/voxkeeper/internal/flagx"
	"github.com/dmitrijs2005/voxkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations accept
// "15m" style strings or integer nanoseconds.
type JsonConfig struct {
	DatabaseDSN      string         `json:"database_dsn"`
	LogLevel         string         `json:"log_level"`
	LogBackend       string         `json:"log_backend"`
	PasswordScheme   string         `json:"password_scheme"`
	MaxLoginAttempts int            `json:"max_login_attempts"`
	TicketSecret     string         `json:"ticket_secret"`
	TicketTTL        timex.Duration `json:"ticket_ttl"`
	TicketFile       string         `json:"ticket_file"`
	S3RootUser       string         `json:"s3_root_user"`
	S3RootPassword   string         `json:"s3_root_password"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
	ArchiveURLTTL    timex.Duration `json:"archive_url_ttl"`
}

// parseJson loads the file named by -c/-config, if any, and copies every
// field that is set in it onto config. Fields missing from the file keep
// their current values. An unreadable or malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.LogLevel, c.LogLevel)
	overlay(&config.LogBackend, c.LogBackend)
	overlay(&config.PasswordScheme, c.PasswordScheme)
	overlay(&config.MaxLoginAttempts, c.MaxLoginAttempts)
	overlay(&config.TicketSecret, c.TicketSecret)
	overlay(&config.TicketTTL, c.TicketTTL.Duration)
	overlay(&config.TicketFile, c.TicketFile)
	overlay(&config.S3RootUser, c.S3RootUser)
	overlay(&config.S3RootPassword, c.S3RootPassword)
	overlay(&config.S3Bucket, c.S3Bucket)
	overlay(&config.S3Region, c.S3Region)
	overlay(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	overlay(&config.ArchiveURLTTL, c.ArchiveURLTTL.Duration)
}

func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
