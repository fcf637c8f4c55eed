package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv points HOME at an empty directory and clears every variable Load reads
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		"IGFAKECHECK_USERNAME",
		"IGFAKECHECK_PASSWORD",
		"IGFAKECHECK_CREDENTIALS",
		"IGFAKECHECK_SESSION_FILE",
		"IGFAKECHECK_USER_AGENT",
		"IGFAKECHECK_REPORT_FILE",
		"IGFAKECHECK_USERS_TO_CHECK",
		"IGFAKECHECK_REQUESTS_PER_MINUTE",
		"IGFAKECHECK_LOG_LEVEL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "settings.json", cfg.Instagram.SessionFile)
	assert.Equal(t, 30*time.Second, cfg.Instagram.Timeout)
	assert.Empty(t, cfg.Instagram.UserAgent, "empty means the client default")
	assert.Empty(t, cfg.Instagram.Credentials)
	assert.Equal(t, 5, cfg.Analysis.UsersToCheck)
	assert.Equal(t, "instagram_users_report.json", cfg.Analysis.ReportFile)
	assert.Equal(t, 500*time.Millisecond, cfg.RateLimit.MinSpacing)
	assert.True(t, cfg.Retry.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestParseCredentialList(t *testing.T) {
	t.Run("keeps order", func(t *testing.T) {
		creds, err := ParseCredentialList("alice:one, bob:two:with:colons,,carol:")
		require.NoError(t, err)
		assert.Equal(t, []Credential{
			{Username: "alice", Password: "one"},
			{Username: "bob", Password: "two:with:colons"},
			{Username: "carol", Password: ""},
		}, creds)
	})

	t.Run("newlines allow commas in passwords", func(t *testing.T) {
		creds, err := ParseCredentialList("alice:one,two\r\n\nbob:three\n")
		require.NoError(t, err)
		assert.Equal(t, []Credential{
			{Username: "alice", Password: "one,two"},
			{Username: "bob", Password: "three"},
		}, creds)
	})

	t.Run("rejects pair without separator", func(t *testing.T) {
		_, err := ParseCredentialList("alice:one,bob")
		assert.Error(t, err)
	})

	t.Run("rejects empty username", func(t *testing.T) {
		_, err := ParseCredentialList(":secret")
		assert.Error(t, err)
	})
}

func TestLoadFromEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("IGFAKECHECK_USERNAME", "primary")
	t.Setenv("IGFAKECHECK_PASSWORD", "pw0")
	t.Setenv("IGFAKECHECK_CREDENTIALS", "backup1:pw1,backup2:pw2")
	t.Setenv("IGFAKECHECK_SESSION_FILE", "/tmp/session.json")
	t.Setenv("IGFAKECHECK_REPORT_FILE", "/tmp/report.json")
	t.Setenv("IGFAKECHECK_USERS_TO_CHECK", "12")
	t.Setenv("IGFAKECHECK_REQUESTS_PER_MINUTE", "10")
	t.Setenv("IGFAKECHECK_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	cfg.Instagram.Credentials = []Credential{{Username: "fromfile", Password: "pwf"}}
	require.NoError(t, cfg.LoadFromEnv())

	usernames := make([]string, 0, len(cfg.Instagram.Credentials))
	for _, c := range cfg.Instagram.Credentials {
		usernames = append(usernames, c.Username)
	}
	assert.Equal(t, []string{"primary", "fromfile", "backup1", "backup2"}, usernames)
	assert.Equal(t, "pw0", cfg.Instagram.Credentials[0].Password)
	assert.Equal(t, "/tmp/session.json", cfg.Instagram.SessionFile)
	assert.Equal(t, "/tmp/report.json", cfg.Analysis.ReportFile)
	assert.Equal(t, 12, cfg.Analysis.UsersToCheck)
	assert.Equal(t, 10, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvInvalidNumbers(t *testing.T) {
	isolateEnv(t)
	t.Setenv("IGFAKECHECK_USERS_TO_CHECK", "many")

	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromEnv())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
instagram:
  credentials:
    - username: alice
      password: secret1
    - username: bob
      password: secret2
  session_file: /var/lib/igfakecheck/settings.json
  timeout: 45s
analysis:
  users_to_check: 8
retry:
  enabled: false
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	require.Len(t, cfg.Instagram.Credentials, 2)
	assert.Equal(t, "alice", cfg.Instagram.Credentials[0].Username)
	assert.Equal(t, "secret2", cfg.Instagram.Credentials[1].Password)
	assert.Equal(t, "/var/lib/igfakecheck/settings.json", cfg.Instagram.SessionFile)
	assert.Equal(t, 45*time.Second, cfg.Instagram.Timeout)
	assert.Equal(t, 8, cfg.Analysis.UsersToCheck)
	assert.False(t, cfg.Retry.Enabled)
	assert.Equal(t, "warn", cfg.Logging.Level)
	// Untouched values keep their defaults
	assert.Equal(t, DefaultReportFile, cfg.Analysis.ReportFile)

	t.Run("invalid yaml", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("instagram: [unclosed"), 0600))
		assert.Error(t, DefaultConfig().LoadFromFile(bad))
	})

	t.Run("missing explicit file", func(t *testing.T) {
		assert.Error(t, DefaultConfig().LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")))
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"count too low", func(c *Config) { c.Analysis.UsersToCheck = 0 }, true},
		{"count too high", func(c *Config) { c.Analysis.UsersToCheck = 21 }, true},
		{"count at max", func(c *Config) { c.Analysis.UsersToCheck = 20 }, false},
		{"credential without username", func(c *Config) {
			c.Instagram.Credentials = []Credential{{Password: "x"}}
		}, true},
		{"no session file", func(c *Config) { c.Instagram.SessionFile = "" }, true},
		{"no report file", func(c *Config) { c.Analysis.ReportFile = "" }, true},
		{"zero timeout", func(c *Config) { c.Instagram.Timeout = 0 }, true},
		{"zero rate", func(c *Config) { c.RateLimit.RequestsPerMinute = 0 }, true},
		{"negative spacing", func(c *Config) { c.RateLimit.MinSpacing = -time.Second }, true},
		{"retry without attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }, true},
		{"disabled retry without attempts", func(c *Config) {
			c.Retry.Enabled = false
			c.Retry.MaxAttempts = 0
		}, false},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Instagram.Credentials = []Credential{{Username: "a", Password: "1"}, {Username: "b", Password: "2"}}

	cfg.MergeCommandLineFlags(map[string]interface{}{
		"username":       "flaguser",
		"password":       "flagpass",
		"session-file":   "custom.json",
		"report-file":    "out.json",
		"users-to-check": 3,
		"log-level":      "error",
	})

	assert.Equal(t, []Credential{{Username: "flaguser", Password: "flagpass"}}, cfg.Instagram.Credentials)
	assert.Equal(t, "custom.json", cfg.Instagram.SessionFile)
	assert.Equal(t, "out.json", cfg.Analysis.ReportFile)
	assert.Equal(t, 3, cfg.Analysis.UsersToCheck)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Instagram.Credentials = []Credential{{Username: "alice", Password: "pw"}}
	cfg.Analysis.UsersToCheck = 7
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, cfg, loaded)
}

func TestLoad(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis:\n  users_to_check: 9\nlogging:\n  level: warn\n"), 0600))
	t.Setenv("IGFAKECHECK_LOG_LEVEL", "debug")

	cfg, err := Load(path, map[string]interface{}{"users-to-check": 4})
	require.NoError(t, err)

	// flags beat file, env beats file
	assert.Equal(t, 4, cfg.Analysis.UsersToCheck)
	assert.Equal(t, "debug", cfg.Logging.Level)

	_, err = Load(path, map[string]interface{}{"users-to-check": 50})
	assert.Error(t, err)
}
