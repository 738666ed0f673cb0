package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReadNonExistentFile(t *testing.T) {
	_, err := readFileToConfig(filepath.Join(t.TempDir(), "213213231312"))
	assert.ErrorContains(t, err, "no such file or directory")
}

func TestReadFileToConfig(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	assert.NoError(t, os.WriteFile(configFile, []byte(`
bigquery:
  projectID: artie-project
  location: EU
staging:
  datasetPrefix: my_staging_
  tableTTLMs: 3600000
jobPollTimeoutSeconds: 300
`), 0644))

	config, err := readFileToConfig(configFile)
	assert.NoError(t, err)
	assert.NoError(t, config.Validate())

	assert.Equal(t, "artie-project", config.BigQuery.ProjectID)
	assert.Equal(t, "EU", config.BigQuery.Location)
	assert.Equal(t, "my_staging_", config.Staging.DatasetPrefix)
	// Unset keys fall back to defaults.
	assert.Equal(t, DefaultStagingTablePrefix, config.Staging.TablePrefix)
	assert.Equal(t, time.Hour, config.StagingTableTTL())
	assert.Equal(t, 5*time.Minute, config.JobPollTimeout())
}

func TestConfig_LoadDefaultValues(t *testing.T) {
	var config Config
	config.LoadDefaultValues()

	assert.Equal(t, DefaultLocation, config.BigQuery.Location)
	assert.Equal(t, DefaultStagingDatasetPrefix, config.Staging.DatasetPrefix)
	assert.Equal(t, DefaultStagingTablePrefix, config.Staging.TablePrefix)
	assert.Equal(t, 24*time.Hour, config.StagingTableTTL())
	assert.Equal(t, time.Duration(0), config.JobPollTimeout())
}

func TestConfig_Validate(t *testing.T) {
	var config *Config
	assert.ErrorContains(t, config.Validate(), "config is nil")

	config = &Config{}
	config.LoadDefaultValues()
	assert.ErrorContains(t, config.Validate(), "projectID is required")

	config.BigQuery.ProjectID = "artie-project"
	assert.NoError(t, config.Validate())

	config.Staging.TableTTLMs = -5
	assert.ErrorContains(t, config.Validate(), "staging table TTL")

	config.Staging.TableTTLMs = defaultStagingTableTTLMs
	config.JobPollTimeoutSeconds = -1
	assert.ErrorContains(t, config.Validate(), "job poll timeout")
}

func TestLoadSettings(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	assert.NoError(t, os.WriteFile(configFile, []byte(`
bigquery:
  projectID: artie-project
`), 0644))

	settings, remaining, err := LoadSettings([]string{"-c", configFile, "-v", "query", "SELECT 1"}, true)
	assert.NoError(t, err)
	assert.True(t, settings.VerboseLogging)
	assert.Equal(t, "artie-project", settings.Config.BigQuery.ProjectID)
	assert.Equal(t, []string{"query", "SELECT 1"}, remaining)
}
