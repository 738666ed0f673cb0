package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultLocation             = "US"
	DefaultStagingDatasetPrefix = "spark_bigquery_staging_"
	DefaultStagingTablePrefix   = "spark_bigquery_"

	// Staging tables and cached query results share the same retention window.
	defaultStagingTableTTLMs = 24 * 60 * 60 * 1000
)

type Sentry struct {
	DSN string `yaml:"dsn"`
}

type BigQuery struct {
	// PathToCredentials is _optional_ if you have GOOGLE_APPLICATION_CREDENTIALS set as an env var
	// Links to credentials: https://cloud.google.com/docs/authentication/application-default-credentials#GAC
	PathToCredentials string `yaml:"pathToCredentials"`
	ProjectID         string `yaml:"projectID"`
	Location          string `yaml:"location"`
}

type Staging struct {
	DatasetPrefix string `yaml:"datasetPrefix"`
	TablePrefix   string `yaml:"tablePrefix"`
	TableTTLMs    int64  `yaml:"tableTTLMs"`
	// Bucket is only required when loading local files through a GCS staging location.
	Bucket string `yaml:"bucket"`
}

type Config struct {
	BigQuery BigQuery `yaml:"bigquery"`
	Staging  Staging  `yaml:"staging"`

	// JobPollTimeoutSeconds bounds how long we block on a submitted job.
	// Zero keeps the original behavior of waiting indefinitely.
	JobPollTimeoutSeconds int `yaml:"jobPollTimeoutSeconds"`

	Reporting struct {
		Sentry *Sentry `yaml:"sentry"`
	} `yaml:"reporting"`

	Telemetry struct {
		Metrics struct {
			Provider string         `yaml:"provider"`
			Settings map[string]any `yaml:"settings,omitempty"`
		} `yaml:"metrics"`
	} `yaml:"telemetry"`
}

func (c *Config) LoadDefaultValues() {
	if c.BigQuery.Location == "" {
		c.BigQuery.Location = DefaultLocation
	}

	if c.Staging.DatasetPrefix == "" {
		c.Staging.DatasetPrefix = DefaultStagingDatasetPrefix
	}

	if c.Staging.TablePrefix == "" {
		c.Staging.TablePrefix = DefaultStagingTablePrefix
	}

	if c.Staging.TableTTLMs == 0 {
		c.Staging.TableTTLMs = defaultStagingTableTTLMs
	}
}

func (c Config) StagingTableTTL() time.Duration {
	return time.Duration(c.Staging.TableTTLMs) * time.Millisecond
}

func (c Config) JobPollTimeout() time.Duration {
	return time.Duration(c.JobPollTimeoutSeconds) * time.Second
}

func readFileToConfig(pathToConfig string) (*Config, error) {
	file, err := os.Open(pathToConfig)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	var config Config
	if err = yaml.Unmarshal(bytes, &config); err != nil {
		return nil, err
	}

	config.LoadDefaultValues()
	return &config, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}

	if c.BigQuery.ProjectID == "" {
		return fmt.Errorf("config is invalid, bigquery projectID is required")
	}

	if c.Staging.TableTTLMs <= 0 {
		return fmt.Errorf("config is invalid, staging table TTL has to be a positive number of milliseconds, current value: %v", c.Staging.TableTTLMs)
	}

	if c.JobPollTimeoutSeconds < 0 {
		return fmt.Errorf("config is invalid, job poll timeout cannot be negative, current value: %v", c.JobPollTimeoutSeconds)
	}

	return nil
}
