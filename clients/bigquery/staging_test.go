package bigquery

import (
	"context"
	"time"

	"google.golang.org/api/googleapi"
)

func (b *BigQueryTestSuite) TestEnsureStagingDatasetAlreadyExists() {
	ctx := context.Background()

	ref, err := b.store.EnsureStagingDataset(ctx, "US")
	b.Require().NoError(err)
	b.Equal(DatasetReference{ProjectID: "p", DatasetID: "spark_bigquery_staging_us"}, ref)
	b.Empty(b.fakeClient.createdDatasets)
}

func (b *BigQueryTestSuite) TestEnsureStagingDatasetCreatesOnNotFound() {
	ctx := context.Background()
	b.fakeClient.getDatasetErrs = []error{notFoundErr()}

	ref, err := b.store.EnsureStagingDataset(ctx, "EU")
	b.Require().NoError(err)
	b.Equal("spark_bigquery_staging_eu", ref.DatasetID)

	b.Require().Len(b.fakeClient.createdMetadata, 1)
	b.Equal("EU", b.fakeClient.createdMetadata[0].Location)
	b.Equal(24*time.Hour, b.fakeClient.createdMetadata[0].DefaultTableExpiration)
}

func (b *BigQueryTestSuite) TestEnsureStagingDatasetIsIdempotent() {
	ctx := context.Background()
	b.fakeClient.getDatasetErrs = []error{notFoundErr()}

	first, err := b.store.EnsureStagingDataset(ctx, "US")
	b.Require().NoError(err)

	// The second call is served from memory without touching the remote service.
	second, err := b.store.EnsureStagingDataset(ctx, "US")
	b.Require().NoError(err)

	b.Equal(first, second)
	b.Equal(1, b.fakeClient.getDatasetCalls)
	b.Len(b.fakeClient.createdDatasets, 1)
}

func (b *BigQueryTestSuite) TestEnsureStagingDatasetLocationIsCaseInsensitive() {
	ctx := context.Background()

	first, err := b.store.EnsureStagingDataset(ctx, "us")
	b.Require().NoError(err)

	second, err := b.store.EnsureStagingDataset(ctx, "US")
	b.Require().NoError(err)

	b.Equal(first, second)
	b.Equal(1, b.fakeClient.getDatasetCalls)
}

func (b *BigQueryTestSuite) TestEnsureStagingDatasetDefaultLocation() {
	ctx := context.Background()

	ref, err := b.store.EnsureStagingDataset(ctx, "")
	b.Require().NoError(err)
	b.Equal("spark_bigquery_staging_us", ref.DatasetID)
}

func (b *BigQueryTestSuite) TestEnsureStagingDatasetCreationConflictIsNotFatal() {
	ctx := context.Background()
	b.fakeClient.getDatasetErrs = []error{notFoundErr()}
	b.fakeClient.createDatasetErr = &googleapi.Error{Code: 409, Message: "Already Exists: Dataset"}

	ref, err := b.store.EnsureStagingDataset(ctx, "US")
	b.Require().NoError(err)
	b.Equal("spark_bigquery_staging_us", ref.DatasetID)
}

func (b *BigQueryTestSuite) TestEnsureStagingDatasetCreationErrorPropagates() {
	ctx := context.Background()
	b.fakeClient.getDatasetErrs = []error{notFoundErr()}
	b.fakeClient.createDatasetErr = &googleapi.Error{Code: 403, Message: "Access Denied"}

	_, err := b.store.EnsureStagingDataset(ctx, "US")
	b.ErrorContains(err, "failed to create staging dataset")
}

func (b *BigQueryTestSuite) TestEnsureStagingDatasetLookupErrorPropagates() {
	ctx := context.Background()
	b.fakeClient.getDatasetErrs = []error{&googleapi.Error{Code: 500, Message: "Internal"}}

	_, err := b.store.EnsureStagingDataset(ctx, "US")
	b.ErrorContains(err, "failed to fetch staging dataset")

	// Failures are not memoized, the next call retries the lookup.
	_, err = b.store.EnsureStagingDataset(ctx, "US")
	b.NoError(err)
	b.Equal(2, b.fakeClient.getDatasetCalls)
}
