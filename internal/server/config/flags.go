package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/voxkeeper/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-d string            PostgreSQL DSN
//	-l string            log level
//	-log-backend string  slog or zap
//	-scheme string       password scheme (sha256, argon2id)
//	-m int               failed logins before a session locks
//	-s string            session ticket secret
//	-t int               session ticket validity, minutes
//	-f string            session ticket file
//	-u string            S3 root user
//	-p string            S3 root password
//	-b string            S3 bucket name
//	-g string            S3 region
//	-e string            S3 base endpoint
//	-x int               archive URL validity, minutes
//
// os.Args is filtered with flagx.FilterArgs first so flags owned by other
// components (-c, -env) do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-l", "-log-backend", "-scheme", "-m", "-s", "-t", "-f", "-u", "-p", "-b", "-g", "-e", "-x"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogBackend, "log-backend", config.LogBackend, "log backend (slog, zap)")
	fs.StringVar(&config.PasswordScheme, "scheme", config.PasswordScheme, "password scheme (sha256, argon2id)")
	fs.IntVar(&config.MaxLoginAttempts, "m", config.MaxLoginAttempts, "failed logins before lockout")
	fs.StringVar(&config.TicketSecret, "s", config.TicketSecret, "session ticket secret")
	ticketTTL := fs.Int("t", int(config.TicketTTL.Minutes()), "session ticket validity (in minutes)")
	fs.StringVar(&config.TicketFile, "f", config.TicketFile, "session ticket file")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	archiveTTL := fs.Int("x", int(config.ArchiveURLTTL.Minutes()), "archive URL validity (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TicketTTL = time.Duration(*ticketTTL) * time.Minute
	config.ArchiveURLTTL = time.Duration(*archiveTTL) * time.Minute
}
