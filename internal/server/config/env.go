package config

import (
	"errors"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/voxkeeper/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv overlays values from the process environment. A .env file is
// loaded first: the one named by -env, or ./.env when present. Variables
// already set in the environment win over the file.
//
// The database can be given as DATABASE_DSN or as the parts DB_HOST,
// DB_PORT, DB_NAME, POSTGRES_USER and POSTGRES_PASSWORD; the DSN wins.
func parseEnv(config *Config) {
	if err := loadDotEnv(flagx.EnvFileFlags()); err != nil {
		panic(err)
	}

	if dsn := env("DATABASE_DSN"); dsn != "" {
		config.DatabaseDSN = dsn
	} else if dsn := dsnFromParts(); dsn != "" {
		config.DatabaseDSN = dsn
	}

	setString(&config.LogLevel, "LOG_LEVEL")
	setString(&config.LogBackend, "LOG_BACKEND")
	setString(&config.PasswordScheme, "PASSWORD_SCHEME")
	setString(&config.TicketSecret, "TICKET_SECRET")
	setString(&config.TicketFile, "TICKET_FILE")
	setString(&config.S3RootUser, "S3_ROOT_USER")
	setString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")

	if v := env("MAX_LOGIN_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.MaxLoginAttempts = n
		}
	}
	setDuration(&config.TicketTTL, "TICKET_TTL")
	setDuration(&config.ArchiveURLTTL, "ARCHIVE_URL_TTL")
}

func loadDotEnv(path string) error {
	if path != "" {
		return godotenv.Load(path)
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func dsnFromParts() string {
	host, user := env("DB_HOST"), env("POSTGRES_USER")
	if host == "" && user == "" {
		return ""
	}
	if host == "" {
		host = "localhost"
	}
	port := env("DB_PORT")
	if port == "" {
		port = "5432"
	}
	name := env("DB_NAME")
	if name == "" {
		name = "assistant_testing"
	}

	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + name,
		RawQuery: "sslmode=disable",
	}
	if user != "" {
		u.User = url.UserPassword(user, os.Getenv("POSTGRES_PASSWORD"))
	}
	return u.String()
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func setString(dst *string, key string) {
	if v := env(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := env(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
		}
	}
}
