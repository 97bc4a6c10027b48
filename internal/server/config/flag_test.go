package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-d", "db", "-l", "debug", "-log-backend", "zap", "-scheme", "argon2id", "-m", "3",
			"-s", "secret", "-t", "10", "-f", "/tmp/ticket",
			"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint", "-x", "5",
		}, expected: &Config{
			DatabaseDSN:      "db",
			LogLevel:         "debug",
			LogBackend:       "zap",
			PasswordScheme:   "argon2id",
			MaxLoginAttempts: 3,
			TicketSecret:     "secret",
			TicketTTL:        10 * time.Minute,
			TicketFile:       "/tmp/ticket",
			S3RootUser:       "user",
			S3RootPassword:   "password",
			S3Bucket:         "bucket",
			S3Region:         "us-west-1",
			S3BaseEndpoint:   "http://endpoint",
			ArchiveURLTTL:    5 * time.Minute,
		}},
		{name: "foreign flags are ignored", args: []string{"cmd", "-c", "cfg.json", "-env", ".env", "-d", "db"},
			expected: &Config{DatabaseDSN: "db"}},
		{name: "bad int panics", args: []string{"cmd", "-m", "many"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origArgs := os.Args
			t.Cleanup(func() { os.Args = origArgs })
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(tt.expected, config))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
