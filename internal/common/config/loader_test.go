package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: loan-wizard
backend:
  base_url: http://backend:8081
workers:
  record-loan-submission:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 30000, cfg.Backend.Timeout)
	assert.Equal(t, 5000, cfg.Wizard.LockWarningTTL)
	assert.Equal(t, 24*time.Hour, GetDuration(cfg.Wizard.DraftTTL))
	assert.Equal(t, int64(10<<20), cfg.Wizard.MaxUploadBytes)
	assert.Equal(t, "loan-application-review", cfg.Wizard.ReviewProcessID)
	assert.Equal(t, "+91", cfg.Notifications.SMS.CountryCode)
	assert.Equal(t, "loan-applications", cfg.Database.Elasticsearch.Index)
	assert.Equal(t, "info", cfg.Logging.Level)

	w := GetWorkerConfig(cfg, "record-loan-submission")
	assert.True(t, w.Enabled)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 30000, w.Timeout)
	assert.Equal(t, 3, w.MaxRetries)
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_LOAN_BACKEND", "http://expanded:9000")
	path := writeConfig(t, `
backend:
  base_url: ${TEST_LOAN_BACKEND}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://expanded:9000", cfg.Backend.BaseURL)
}

func TestLoadFromFile_UnsetPlaceholdersAreEmpty(t *testing.T) {
	t.Setenv("TEST_ES_URL", "http://es:9200")
	path := writeConfig(t, `
backend:
  base_url: ${TEST_UNSET_BACKEND}
database:
  elasticsearch:
    addresses:
      - ${TEST_ES_URL}
      - ${TEST_UNSET_ES}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Backend.BaseURL)
	assert.Equal(t, []string{"http://es:9200"}, cfg.Database.Elasticsearch.Addresses)
	assert.Equal(t, "http://es:9200", cfg.Database.Elasticsearch.URL)
	assert.EqualError(t, cfg.Require(SectionBackend), "backend.base_url is required")
}

func TestLoadFromFile_RejectsNegativeTTL(t *testing.T) {
	path := writeConfig(t, `
wizard:
  lock_warning_ttl: -1
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lock_warning_ttl")
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestRequire(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		sections []Section
		wantErr  string
	}{
		{
			name:     "backend missing",
			sections: []Section{SectionBackend},
			wantErr:  "backend.base_url",
		},
		{
			name:     "redis present",
			cfg:      Config{Database: DatabaseConfig{Redis: RedisConfig{Address: "localhost:6379"}}},
			sections: []Section{SectionRedis},
		},
		{
			name:     "postgres without user",
			cfg:      Config{Database: DatabaseConfig{Postgres: PostgresConfig{Host: "db", Database: "loans"}}},
			sections: []Section{SectionPostgres},
			wantErr:  "database.postgres.user",
		},
		{
			name:     "elasticsearch from addresses",
			cfg:      Config{Database: DatabaseConfig{Elasticsearch: ElasticsearchConfig{Addresses: []string{"http://es:9200"}}}},
			sections: []Section{SectionElasticsearch},
		},
		{
			name:     "camunda missing",
			sections: []Section{SectionCamunda},
			wantErr:  "camunda.broker_address",
		},
		{
			name: "email enabled without sender",
			cfg: func() Config {
				var c Config
				c.Notifications.Email.Enabled = true
				return c
			}(),
			sections: []Section{SectionNotifications},
			wantErr:  "from_email",
		},
		{
			name:     "unknown section",
			sections: []Section{"bogus"},
			wantErr:  "unknown config section",
		},
		{
			name: "nothing required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Require(tt.sections...)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIsWorkerEnabled(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"notify-loan-applicant": {Enabled: false},
	}}
	assert.False(t, IsWorkerEnabled(cfg, "notify-loan-applicant"))
	assert.True(t, IsWorkerEnabled(cfg, "index-loan-application"))
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "loans", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=loans sslmode=disable", p.GetDSN())
}
