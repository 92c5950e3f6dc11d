// Package importer turns a delimited source file into documents and bulk
// writes them into a document store.
package importer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/kpix/errors"
	"github.com/teranos/kpix/ixgest/kpi"
	"github.com/teranos/kpix/ixgest/source"
	"github.com/teranos/kpix/ixgest/table"
	"github.com/teranos/kpix/logger"
)

// Store is the bulk-write collaborator. Submit writes docs into index as one
// bulk operation and returns how many documents were written. When the store
// rejects some documents the error wraps a *BulkError with the counts.
type Store interface {
	Submit(ctx context.Context, index string, docs []Document) (int, error)
}

// Options controls how the source is read and transformed
type Options struct {
	Delimiter    rune     // zero means ';'
	NAValues     []string // nil selects table.DefaultNAValues
	DerivePeriod bool     // add Period Start/End from Reference Period
	DryRun       bool     // build the job but skip the store
}

// Importer runs one-shot imports against a Store
type Importer struct {
	store  Store
	opts   Options
	logger *zap.SugaredLogger
}

// New creates an importer. A nil logger falls back to the global one.
func New(store Store, opts Options, log *zap.SugaredLogger) *Importer {
	if log == nil {
		log = logger.ComponentLogger("importer")
	}
	return &Importer{store: store, opts: opts, logger: log}
}

// Prepare reads the source and builds the job without touching the store.
// The file is closed before Prepare returns.
func (im *Importer) Prepare(path, index string) (*Job, error) {
	resolved, err := source.Resolve(path)
	if err != nil {
		return nil, err
	}

	tbl, err := table.ReadFile(resolved, table.Options{
		Delimiter: im.opts.Delimiter,
		NAValues:  im.opts.NAValues,
	})
	if err != nil {
		return nil, err
	}

	job := &Job{
		ID:        uuid.New().String(),
		Source:    resolved,
		Index:     index,
		Columns:   tbl.Header,
		Documents: make([]Document, len(tbl.Records)),
	}

	if im.opts.DerivePeriod {
		job.Enriched = kpi.DerivePeriod(tbl.Records)
	}

	for i, rec := range tbl.Records {
		job.Documents[i] = Document{Line: rec.Line, Fields: rec}
	}
	return job, nil
}

// Run imports the file at path into index. The returned Result is non-nil
// even on failure so callers can report what happened.
func (im *Importer) Run(ctx context.Context, path, index string) (*Result, error) {
	result := &Result{
		Source:    path,
		Index:     index,
		DryRun:    im.opts.DryRun,
		StartTime: time.Now(),
	}

	finish := func(err error) (*Result, error) {
		result.EndTime = time.Now()
		if err != nil {
			result.Success = false
			result.Error = err.Error()
			result.Message = "import failed"
			return result, err
		}
		result.Success = true
		if im.opts.DryRun {
			result.Message = "dry run: nothing written"
		} else {
			result.Message = Confirmation(result.Submitted, index)
		}
		return result, nil
	}

	if index == "" {
		return finish(errors.Mark(errors.New("index name cannot be empty"), errors.ErrInvalidConfig))
	}

	job, err := im.Prepare(path, index)
	if err != nil {
		return finish(err)
	}

	result.JobID = job.ID
	result.Source = job.Source
	result.Rows = len(job.Documents)
	result.Enriched = job.Enriched

	log := im.logger.With(logger.FieldJobID, job.ID, logger.FieldIndex, index)
	log.Infow("Prepared import job",
		logger.FieldFile, job.Source,
		logger.FieldCount, len(job.Documents),
		logger.FieldColumns, len(job.Columns))

	result.Submitted = len(job.Documents)
	if im.opts.DryRun {
		return finish(nil)
	}

	written, err := im.store.Submit(logger.WithJobID(ctx, job.ID), index, job.Documents)
	result.Indexed = written
	if err != nil {
		var bulkErr *BulkError
		if errors.As(err, &bulkErr) {
			result.Indexed = bulkErr.Indexed
			result.Failed = bulkErr.Failed
		}
		log.Errorw("Bulk submission failed",
			logger.FieldError, err,
			logger.FieldErrorType, errors.Category(err),
			logger.FieldCount, result.Indexed,
			logger.FieldFailed, result.Failed)
		return finish(errors.Wrapf(err, "failed to import %s into index %q", job.Source, index))
	}

	result.EndTime = time.Now()
	log.Infow("Import complete",
		logger.FieldCount, written,
		logger.FieldDurationMS, result.Duration().Milliseconds())
	return finish(nil)
}
