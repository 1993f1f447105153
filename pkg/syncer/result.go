package syncer

import (
	"fmt"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/contactmirror/pkg/cluster"
	"github.com/agentstation/contactmirror/pkg/contacts"
)

// Result represents the outcome of a sync run.
type Result struct {
	// Core data
	Golden []contacts.GoldenContact

	// Safe records that were carried through without merging.
	Safe []contacts.ContactRecord

	// Metadata
	Metadata ResultMetadata

	// Issues
	Errors   []error
	Warnings []string
}

// ResultMetadata contains metadata about the sync run.
type ResultMetadata struct {
	// StartTime when the run started
	StartTime utc.Time

	// EndTime when the run completed
	EndTime utc.Time

	// Duration of the run
	Duration time.Duration

	// Accounts that were synced
	Accounts []contacts.AccountID

	// Strategy used for duplicate detection
	Strategy cluster.Type

	// SaveMode used when writing the final set
	SaveMode SaveMode

	// DryRun indicates the save stage was skipped
	DryRun bool

	// Statistics about the run
	Stats ResultStatistics
}

// ResultStatistics contains statistics about the sync run.
type ResultStatistics struct {
	RecordsFetched  int
	ClustersFound   int
	GoldenRecords   int
	SafeRecords     int
	RecordsInserted int
	RecordsDeleted  int
}

// IsSuccess returns true if the run completed without errors.
func (r *Result) IsSuccess() bool {
	return len(r.Errors) == 0
}

// FinalRecords returns the complete record set the run produced: one
// golden record per approved cluster plus every safe record promoted
// as-is. This is the set written to each account during save.
func (r *Result) FinalRecords() []contacts.GoldenContact {
	final := make([]contacts.GoldenContact, 0, len(r.Golden)+len(r.Safe))
	final = append(final, r.Golden...)
	for _, rec := range r.Safe {
		final = append(final, rec.Golden())
	}
	return final
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	if !r.IsSuccess() {
		return fmt.Sprintf("Sync failed with %d errors", len(r.Errors))
	}

	stats := r.Metadata.Stats
	if r.Metadata.DryRun {
		return fmt.Sprintf("Dry run completed. %d records fetched, %d clusters merged into %d golden records.",
			stats.RecordsFetched, stats.ClustersFound, stats.GoldenRecords)
	}

	return fmt.Sprintf("Sync completed. %d records fetched, %d clusters merged, %d records written to %d accounts.",
		stats.RecordsFetched, stats.ClustersFound, stats.RecordsInserted, len(r.Metadata.Accounts))
}

// Finalize completes the result by setting end time and duration.
func (r *Result) Finalize() {
	r.Metadata.EndTime = utc.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
}

// NewResult creates a new result with defaults.
func NewResult() *Result {
	return &Result{
		Golden:   []contacts.GoldenContact{},
		Safe:     []contacts.ContactRecord{},
		Errors:   []error{},
		Warnings: []string{},
		Metadata: ResultMetadata{
			StartTime: utc.Now(),
			Accounts:  []contacts.AccountID{},
		},
	}
}
