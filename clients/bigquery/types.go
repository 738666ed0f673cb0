package bigquery

import (
	"fmt"
	"time"
)

type TableReference struct {
	ProjectID string
	DatasetID string
	TableID   string
}

func (t TableReference) String() string {
	return fmt.Sprintf("%s.%s.%s", t.ProjectID, t.DatasetID, t.TableID)
}

type DatasetReference struct {
	ProjectID string
	DatasetID string
}

func (d DatasetReference) String() string {
	return fmt.Sprintf("%s.%s", d.ProjectID, d.DatasetID)
}

type DatasetMetadata struct {
	Location               string
	Description            string
	DefaultTableExpiration time.Duration
}

type Priority string

const (
	// PriorityDefault lets the service decide, which today means batch.
	PriorityDefault     Priority = ""
	PriorityBatch       Priority = "BATCH"
	PriorityInteractive Priority = "INTERACTIVE"
)

// WriteDisposition and CreateDisposition zero values mean "use the service default".
type WriteDisposition string

const (
	WriteDefault  WriteDisposition = ""
	WriteEmpty    WriteDisposition = "WRITE_EMPTY"
	WriteTruncate WriteDisposition = "WRITE_TRUNCATE"
	WriteAppend   WriteDisposition = "WRITE_APPEND"
)

type CreateDisposition string

const (
	CreateDefault  CreateDisposition = ""
	CreateIfNeeded CreateDisposition = "CREATE_IF_NEEDED"
	CreateNever    CreateDisposition = "CREATE_NEVER"
)

type QueryJobConfig struct {
	Query          string
	UseStandardSQL bool
	Priority       Priority
	Destination    TableReference
	// AllowLargeResults has to be enabled when materializing into a destination table.
	AllowLargeResults bool
	WriteDisposition  WriteDisposition
	CreateDisposition CreateDisposition
}

type LoadJobConfig struct {
	SourceURIs        []string
	Destination       TableReference
	WriteDisposition  WriteDisposition
	CreateDisposition CreateDisposition
}
