package bigquery

import (
	"strings"

	"github.com/google/uuid"
)

func (b *BigQueryTestSuite) TestNewStagingTableIDFormat() {
	b.Regexp(stagingTableIDPattern, b.store.newStagingTableID())
}

func (b *BigQueryTestSuite) TestNewStagingTableIDUniqueness() {
	// Generated back to back within the same second, so uniqueness rides
	// entirely on the random suffix.
	seen := map[string]bool{}
	for range 25 {
		tableID := b.store.newStagingTableID()
		b.False(seen[tableID], "duplicate table id: %s", tableID)
		seen[tableID] = true
	}
}

func (b *BigQueryTestSuite) TestNewJobID() {
	jobID := b.store.newJobID()
	b.True(strings.HasPrefix(jobID, "p-"))

	_, err := uuid.Parse(strings.TrimPrefix(jobID, "p-"))
	b.NoError(err)

	b.NotEqual(jobID, b.store.newJobID())
}

func (b *BigQueryTestSuite) TestExpandWildcard() {
	b.Equal("gs://bucket/path/*", expandWildcard("gs://bucket/path"))
	b.Equal("gs://bucket/path/*", expandWildcard("gs://bucket/path/"))
}

func (b *BigQueryTestSuite) TestParseTableReference() {
	ref, err := ParseTableReference("p.dataset.table")
	b.Require().NoError(err)
	b.Equal(TableReference{ProjectID: "p", DatasetID: "dataset", TableID: "table"}, ref)

	for _, invalid := range []string{"", "p.dataset", "p.dataset.table.extra", "p..table"} {
		_, err = ParseTableReference(invalid)
		b.ErrorContains(err, "invalid table reference")
	}
}
