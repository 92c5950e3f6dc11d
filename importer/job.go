package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/teranos/kpix/ixgest/table"
)

// Document is one source row bound for the store. The destination index is
// carried by the Job, and no document ID is assigned: the store generates one.
type Document struct {
	Line   int
	Fields table.Record
}

// MarshalJSON encodes the document body in column order.
func (d Document) MarshalJSON() ([]byte, error) {
	return d.Fields.MarshalJSON()
}

// Job is the in-memory set of documents submitted by one import. It is
// discarded once the bulk call returns.
type Job struct {
	ID        string
	Source    string
	Index     string
	Columns   []string
	Documents []Document
	Enriched  int
}

// Result describes the outcome of an import
type Result struct {
	JobID     string    `json:"job_id"`
	Source    string    `json:"source"`
	Index     string    `json:"index"`
	Rows      int       `json:"rows"`
	Submitted int       `json:"submitted"`
	Indexed   int       `json:"indexed"`
	Failed    int       `json:"failed"`
	Enriched  int       `json:"enriched,omitempty"`
	DryRun    bool      `json:"dry_run"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Error     string    `json:"error,omitempty"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Duration is the wall time of the import
func (r *Result) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Confirmation is the single line printed after a successful import.
func Confirmation(count int, index string) string {
	return fmt.Sprintf("Imported %d records into index '%s'", count, index)
}

// ItemFailure is a document the store refused within a bulk request
type ItemFailure struct {
	Line   int    `json:"line"`
	Status int    `json:"status"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// BulkError reports a bulk request the store only partially accepted, or
// rejected entirely. Indexed documents stay indexed; nothing is retried.
type BulkError struct {
	Indexed  int
	Failed   int
	Unsent   int           // documents in chunks after the failing one
	Failures []ItemFailure // first few failures, in submission order
}

// MaxReportedFailures bounds BulkError.Failures
const MaxReportedFailures = 5

func (e *BulkError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d documents rejected", e.Failed, e.Indexed+e.Failed)
	if e.Unsent > 0 {
		fmt.Fprintf(&b, ", %d not sent", e.Unsent)
	}
	for i, f := range e.Failures {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "line %d: %s (%s)", f.Line, f.Reason, f.Type)
	}
	return b.String()
}
