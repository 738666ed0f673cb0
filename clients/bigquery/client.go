package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/option"

	"github.com/dfengine/bqbridge/lib/config"
)

// Job is a submitted unit of remote work. Wait blocks until the job reaches a
// terminal state and returns nil only if it succeeded.
type Job interface {
	ID() string
	Wait(ctx context.Context) error
}

// JobClient is the narrow surface of the warehouse API that the store consumes.
type JobClient interface {
	GetDataset(ctx context.Context, ref DatasetReference) error
	CreateDataset(ctx context.Context, ref DatasetReference, metadata DatasetMetadata) error
	SubmitQuery(ctx context.Context, jobID string, jobConfig QueryJobConfig) (Job, error)
	SubmitLoad(ctx context.Context, jobID string, jobConfig LoadJobConfig) (Job, error)
}

type apiClient struct {
	client *bigquery.Client
}

func NewJobClient(ctx context.Context, cfg config.BigQuery) (JobClient, error) {
	var opts []option.ClientOption
	if cfg.PathToCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.PathToCredentials))
	}

	client, err := bigquery.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to start bigquery client: %w", err)
	}

	return apiClient{client: client}, nil
}

func (a apiClient) GetDataset(ctx context.Context, ref DatasetReference) error {
	_, err := a.client.DatasetInProject(ref.ProjectID, ref.DatasetID).Metadata(ctx)
	return err
}

func (a apiClient) CreateDataset(ctx context.Context, ref DatasetReference, metadata DatasetMetadata) error {
	return a.client.DatasetInProject(ref.ProjectID, ref.DatasetID).Create(ctx, &bigquery.DatasetMetadata{
		Location:               metadata.Location,
		Description:            metadata.Description,
		DefaultTableExpiration: metadata.DefaultTableExpiration,
	})
}

func (a apiClient) SubmitQuery(ctx context.Context, jobID string, jobConfig QueryJobConfig) (Job, error) {
	query := a.client.Query(jobConfig.Query)
	query.JobID = jobID
	query.UseLegacySQL = !jobConfig.UseStandardSQL
	query.AllowLargeResults = jobConfig.AllowLargeResults
	query.Dst = a.client.
		DatasetInProject(jobConfig.Destination.ProjectID, jobConfig.Destination.DatasetID).
		Table(jobConfig.Destination.TableID)

	if jobConfig.Priority == PriorityInteractive {
		query.Priority = bigquery.InteractivePriority
	} else if jobConfig.Priority == PriorityBatch {
		query.Priority = bigquery.BatchPriority
	}

	if disposition, ok := toSDKWriteDisposition(jobConfig.WriteDisposition); ok {
		query.WriteDisposition = disposition
	}
	if disposition, ok := toSDKCreateDisposition(jobConfig.CreateDisposition); ok {
		query.CreateDisposition = disposition
	}

	job, err := query.Run(ctx)
	if err != nil {
		return nil, err
	}

	return sdkJob{job: job}, nil
}

func (a apiClient) SubmitLoad(ctx context.Context, jobID string, jobConfig LoadJobConfig) (Job, error) {
	gcsRef := bigquery.NewGCSReference(jobConfig.SourceURIs...)
	gcsRef.SourceFormat = bigquery.Parquet

	loader := a.client.
		DatasetInProject(jobConfig.Destination.ProjectID, jobConfig.Destination.DatasetID).
		Table(jobConfig.Destination.TableID).
		LoaderFrom(gcsRef)
	loader.JobID = jobID

	if disposition, ok := toSDKWriteDisposition(jobConfig.WriteDisposition); ok {
		loader.WriteDisposition = disposition
	}
	if disposition, ok := toSDKCreateDisposition(jobConfig.CreateDisposition); ok {
		loader.CreateDisposition = disposition
	}

	job, err := loader.Run(ctx)
	if err != nil {
		return nil, err
	}

	return sdkJob{job: job}, nil
}

func toSDKWriteDisposition(disposition WriteDisposition) (bigquery.TableWriteDisposition, bool) {
	switch disposition {
	case WriteEmpty:
		return bigquery.WriteEmpty, true
	case WriteTruncate:
		return bigquery.WriteTruncate, true
	case WriteAppend:
		return bigquery.WriteAppend, true
	default:
		return "", false
	}
}

func toSDKCreateDisposition(disposition CreateDisposition) (bigquery.TableCreateDisposition, bool) {
	switch disposition {
	case CreateIfNeeded:
		return bigquery.CreateIfNeeded, true
	case CreateNever:
		return bigquery.CreateNever, true
	default:
		return "", false
	}
}

type sdkJob struct {
	job *bigquery.Job
}

func (s sdkJob) ID() string {
	return s.job.ID()
}

func (s sdkJob) Wait(ctx context.Context) error {
	status, err := s.job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("failed to wait for job %s: %w", s.job.ID(), err)
	}

	if err := status.Err(); err != nil {
		return fmt.Errorf("job %s failed: %w", s.job.ID(), err)
	}

	return nil
}
