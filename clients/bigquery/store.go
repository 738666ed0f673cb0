package bigquery

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dfengine/bqbridge/lib/config"
	"github.com/dfengine/bqbridge/lib/telemetry/metrics"
)

// Store orchestrates query and load jobs against BigQuery and owns the
// staging-table lifecycle. It is safe for concurrent use.
type Store struct {
	cfg     config.Config
	client  JobClient
	staging *stagingDatasets
	cache   *resultCache
}

func NewStore(cfg config.Config, client JobClient) *Store {
	return &Store{
		cfg:     cfg,
		client:  client,
		staging: newStagingDatasets(cfg, client),
		cache:   newResultCache(cfg.StagingTableTTL()),
	}
}

// EnsureStagingDataset returns the staging dataset for the given location,
// creating it if it does not exist yet. An empty location falls back to the
// configured default.
func (s *Store) EnsureStagingDataset(ctx context.Context, location string) (DatasetReference, error) {
	return s.staging.ensure(ctx, location)
}

// ResolveQuery returns a table holding the results of query, reusing a
// previous run of the same (query, dialect) pair while it is still within the
// staging table's retention window. The returned reference always points at a
// table whose job has already completed successfully.
func (s *Store) ResolveQuery(ctx context.Context, query string, useStandardSQL bool, priority Priority) (TableReference, error) {
	key := cacheKey{query: query, useStandardSQL: useStandardSQL}
	ref, hit, err := s.cache.resolve(ctx, key, func() (TableReference, error) {
		return s.runQuery(ctx, query, useStandardSQL, priority)
	})

	if hit {
		metrics.FromContext(ctx).Incr("query.cache.hit", nil)
	} else {
		metrics.FromContext(ctx).Incr("query.cache.miss", nil)
	}
	metrics.FromContext(ctx).Gauge("query.cache.size", float64(s.cache.size()), nil)

	return ref, err
}

func (s *Store) runQuery(ctx context.Context, query string, useStandardSQL bool, priority Priority) (TableReference, error) {
	dataset, err := s.EnsureStagingDataset(ctx, s.cfg.BigQuery.Location)
	if err != nil {
		return TableReference{}, err
	}

	destination := TableReference{
		ProjectID: s.cfg.BigQuery.ProjectID,
		DatasetID: dataset.DatasetID,
		TableID:   s.newStagingTableID(),
	}

	if priority == PriorityDefault {
		priority = PriorityBatch
	}

	jobConfig := QueryJobConfig{
		Query:          query,
		UseStandardSQL: useStandardSQL,
		Priority:       priority,
		Destination:    destination,
		// Results are materialized into a full table rather than returned inline.
		AllowLargeResults: true,
		// The destination is always freshly named, so WriteEmpty is just a safety
		// net against a name collision clobbering another query's results.
		WriteDisposition:  WriteEmpty,
		CreateDisposition: CreateIfNeeded,
	}

	start := time.Now()
	job, err := s.client.SubmitQuery(ctx, s.newJobID(), jobConfig)
	if err != nil {
		return TableReference{}, fmt.Errorf("failed to submit query job: %w", err)
	}

	slog.Info("Submitted query job",
		slog.String("jobID", job.ID()),
		slog.String("destination", destination.String()),
		slog.String("priority", string(priority)),
	)

	if err := s.waitForJob(ctx, job); err != nil {
		return TableReference{}, err
	}

	metrics.FromContext(ctx).Timing("job.duration", time.Since(start), map[string]string{"type": "query"})
	return destination, nil
}

// Load bulk-imports the Parquet files under sourceURI into destination.
// Loads are never cached, every call performs real work. Zero-valued
// dispositions defer to the service defaults.
func (s *Store) Load(ctx context.Context, sourceURI string, destination TableReference, writeDisposition WriteDisposition, createDisposition CreateDisposition) error {
	jobConfig := LoadJobConfig{
		SourceURIs:        []string{expandWildcard(sourceURI)},
		Destination:       destination,
		WriteDisposition:  writeDisposition,
		CreateDisposition: createDisposition,
	}

	start := time.Now()
	job, err := s.client.SubmitLoad(ctx, s.newJobID(), jobConfig)
	if err != nil {
		return fmt.Errorf("failed to submit load job: %w", err)
	}

	slog.Info("Submitted load job",
		slog.String("jobID", job.ID()),
		slog.String("sourceURI", sourceURI),
		slog.String("destination", destination.String()),
	)

	if err := s.waitForJob(ctx, job); err != nil {
		return err
	}

	metrics.FromContext(ctx).Timing("job.duration", time.Since(start), map[string]string{"type": "load"})
	return nil
}

type Uploader interface {
	UploadLocalFileToGCS(ctx context.Context, bucket, prefix, filepath string) (string, error)
	DeleteFolder(ctx context.Context, bucket, folder string) error
}

// LoadLocalFiles stages the given local Parquet files under a unique prefix in
// the staging bucket, loads the whole prefix into destination, then cleans the
// staged files up once the load job has committed.
func (s *Store) LoadLocalFiles(ctx context.Context, uploader Uploader, filePaths []string, destination TableReference, writeDisposition WriteDisposition, createDisposition CreateDisposition) error {
	bucket := s.cfg.Staging.Bucket
	if bucket == "" {
		return fmt.Errorf("staging bucket is not configured")
	}

	prefix := s.cfg.Staging.TablePrefix + uuid.New().String()
	for _, filePath := range filePaths {
		uri, err := uploader.UploadLocalFileToGCS(ctx, bucket, prefix, filePath)
		if err != nil {
			return fmt.Errorf("failed to stage %s: %w", filePath, err)
		}

		slog.Debug("Staged file for load", slog.String("uri", uri))
	}

	metrics.FromContext(ctx).Count("load.files.staged", int64(len(filePaths)), nil)

	if err := s.Load(ctx, fmt.Sprintf("gs://%s/%s", bucket, prefix), destination, writeDisposition, createDisposition); err != nil {
		// Leave the staged files in place so a failed load can be inspected.
		return err
	}

	// The staged files were only an input to the load job, so a failed cleanup
	// does not fail the load.
	if err := uploader.DeleteFolder(ctx, bucket, prefix); err != nil {
		slog.Warn("Failed to clean up staged files",
			slog.String("bucket", bucket),
			slog.String("prefix", prefix),
			slog.Any("err", err),
		)
	}

	return nil
}

func (s *Store) waitForJob(ctx context.Context, job Job) error {
	if timeout := s.cfg.JobPollTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return job.Wait(ctx)
}

// newStagingTableID - timestamp (second resolution) plus a random suffix, so
// two queries submitted within the same second cannot collide.
func (s *Store) newStagingTableID() string {
	return fmt.Sprintf("%s%s_%d", s.cfg.Staging.TablePrefix, time.Now().UTC().Format("20060102150405"), rand.Int31())
}

func (s *Store) newJobID() string {
	return fmt.Sprintf("%s-%s", s.cfg.BigQuery.ProjectID, uuid.New().String())
}

func expandWildcard(sourceURI string) string {
	return strings.TrimSuffix(sourceURI, "/") + "/*"
}

// ParseTableReference parses "project.dataset.table" notation.
func ParseTableReference(value string) (TableReference, error) {
	parts := strings.Split(value, ".")
	if len(parts) != 3 {
		return TableReference{}, fmt.Errorf("invalid table reference %q, expected project.dataset.table", value)
	}

	for _, part := range parts {
		if part == "" {
			return TableReference{}, fmt.Errorf("invalid table reference %q, expected project.dataset.table", value)
		}
	}

	return TableReference{ProjectID: parts[0], DatasetID: parts[1], TableID: parts[2]}, nil
}
