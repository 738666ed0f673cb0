package bigquery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/dfengine/bqbridge/lib/config"
)

const stagingDatasetDescription = "Temporary staging datasets for the dataframe connector"

// stagingDatasets lazily creates the per-location staging dataset.
// Once a location has been resolved it is served from memory for the rest of
// the process lifetime.
type stagingDatasets struct {
	cfg    config.Config
	client JobClient

	mu   sync.Mutex
	refs map[string]DatasetReference
}

func newStagingDatasets(cfg config.Config, client JobClient) *stagingDatasets {
	return &stagingDatasets{
		cfg:    cfg,
		client: client,
		refs:   map[string]DatasetReference{},
	}
}

func (s *stagingDatasets) ensure(ctx context.Context, location string) (DatasetReference, error) {
	if location == "" {
		location = config.DefaultLocation
	}

	key := strings.ToLower(location)

	s.mu.Lock()
	defer s.mu.Unlock()
	if ref, ok := s.refs[key]; ok {
		return ref, nil
	}

	ref := DatasetReference{
		ProjectID: s.cfg.BigQuery.ProjectID,
		DatasetID: s.cfg.Staging.DatasetPrefix + key,
	}

	switch err := s.client.GetDataset(ctx, ref); {
	case err == nil:
	case IsNotFoundErr(err):
		metadata := DatasetMetadata{
			Location:               location,
			Description:            stagingDatasetDescription,
			DefaultTableExpiration: s.cfg.StagingTableTTL(),
		}

		if createErr := s.client.CreateDataset(ctx, ref, metadata); createErr != nil {
			// A concurrent caller may have created the dataset between our lookup and
			// this create, which is an acceptable outcome.
			if !IsAlreadyExistsErr(createErr) {
				return DatasetReference{}, fmt.Errorf("failed to create staging dataset %s: %w", ref.DatasetID, createErr)
			}
		} else {
			slog.Info("Created staging dataset",
				slog.String("dataset", ref.DatasetID),
				slog.String("location", location),
				slog.Duration("tableTTL", metadata.DefaultTableExpiration),
			)
		}
	default:
		return DatasetReference{}, fmt.Errorf("failed to fetch staging dataset %s: %w", ref.DatasetID, err)
	}

	s.refs[key] = ref
	return ref, nil
}
