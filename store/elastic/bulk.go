package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/teranos/kpix/errors"
	"github.com/teranos/kpix/importer"
	"github.com/teranos/kpix/logger"
)

// bulkResponse is the body of a 2xx _bulk response
type bulkResponse struct {
	Took   int                   `json:"took"`
	Errors bool                  `json:"errors"`
	Items  []map[string]bulkItem `json:"items"`
}

type bulkItem struct {
	Status int        `json:"status"`
	Error  *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// errorResponse is the body of a non-2xx response
type errorResponse struct {
	Error  errorBody `json:"error"`
	Status int       `json:"status"`
}

// Submit writes docs into index. Documents are framed into chunks of
// ChunkSize index actions; the first chunk with any rejected document stops
// the submission and is reported as a *importer.BulkError.
func (c *Client) Submit(ctx context.Context, index string, docs []importer.Document) (int, error) {
	log := c.logger.With(logger.FieldsFromContext(ctx)...).
		With(logger.FieldOperation, "bulk", logger.FieldIndex, index)

	indexed := 0
	for start := 0; start < len(docs); start += c.cfg.ChunkSize {
		end := start + c.cfg.ChunkSize
		if end > len(docs) {
			end = len(docs)
		}
		chunk := docs[start:end]

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return indexed, errors.Wrap(err, "bulk submission interrupted")
			}
		}

		ok, bulkErr, err := c.submitChunk(ctx, index, chunk)
		indexed += ok
		if err != nil {
			return indexed, err
		}
		if bulkErr != nil {
			for _, f := range bulkErr.Failures {
				log.Warnw("Document rejected",
					logger.FieldLine, f.Line,
					logger.FieldErrorType, f.Type,
					logger.FieldError, f.Reason)
			}
			bulkErr.Indexed = indexed
			bulkErr.Unsent = len(docs) - end
			return indexed, errors.Mark(bulkErr, errors.ErrBulkWrite)
		}
		log.Debugw("Bulk chunk accepted",
			logger.FieldBatchSize, len(chunk),
			logger.FieldCount, indexed,
			logger.FieldTotalCount, len(docs))
	}
	return indexed, nil
}

// EncodeBulk frames docs as newline-delimited action/document pairs.
func EncodeBulk(index string, docs []importer.Document) ([]byte, error) {
	action, err := json.Marshal(map[string]map[string]string{"index": {"_index": index}})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	for _, d := range docs {
		body, err := json.Marshal(d)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode document from line %d", d.Line)
		}
		buf.Write(action)
		buf.WriteByte('\n')
		buf.Write(body)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// submitChunk sends one bulk request. It returns the number of documents
// indexed, a BulkError when any document was rejected, or err when the
// request itself could not be made.
func (c *Client) submitChunk(ctx context.Context, index string, chunk []importer.Document) (int, *importer.BulkError, error) {
	body, err := EncodeBulk(index, chunk)
	if err != nil {
		return 0, nil, err
	}

	reqCtx, cancel := c.requestContext(ctx)
	defer cancel()

	opts := []func(*esapi.BulkRequest){
		c.es.Bulk.WithContext(reqCtx),
		c.es.Bulk.WithIndex(index),
	}
	if c.cfg.Refresh {
		opts = append(opts, c.es.Bulk.WithRefresh("true"))
	}
	if jobID, ok := logger.JobIDFromContext(ctx); ok {
		opts = append(opts, c.es.Bulk.WithOpaqueID(jobID))
	}

	res, err := c.es.Bulk(bytes.NewReader(body), opts...)
	if err != nil {
		return 0, nil, c.connectionError(err)
	}
	defer drain(res)

	if res.IsError() {
		var er errorResponse
		_ = json.NewDecoder(res.Body).Decode(&er)
		failure := importer.ItemFailure{Status: res.StatusCode, Type: er.Error.Type, Reason: er.Error.Reason}
		if failure.Reason == "" {
			failure.Reason = res.Status()
		}
		if len(chunk) > 0 {
			failure.Line = chunk[0].Line
		}
		return 0, &importer.BulkError{Failed: len(chunk), Failures: []importer.ItemFailure{failure}}, nil
	}

	var br bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&br); err != nil {
		return 0, nil, errors.Mark(errors.Wrap(err, "failed to decode bulk response"), errors.ErrBulkWrite)
	}
	if len(br.Items) != len(chunk) {
		return 0, nil, errors.Mark(
			errors.Newf("bulk response has %d items for %d documents", len(br.Items), len(chunk)),
			errors.ErrBulkWrite)
	}

	ok := 0
	var bulkErr *importer.BulkError
	for i, item := range br.Items {
		var result bulkItem
		for _, r := range item {
			result = r
		}
		if result.Error == nil && result.Status >= 200 && result.Status < 300 {
			ok++
			continue
		}
		if bulkErr == nil {
			bulkErr = &importer.BulkError{}
		}
		bulkErr.Failed++
		if len(bulkErr.Failures) < importer.MaxReportedFailures {
			f := importer.ItemFailure{Line: chunk[i].Line, Status: result.Status}
			if result.Error != nil {
				f.Type, f.Reason = result.Error.Type, result.Error.Reason
			} else {
				f.Reason = fmt.Sprintf("status %d", result.Status)
			}
			bulkErr.Failures = append(bulkErr.Failures, f)
		}
	}
	return ok, bulkErr, nil
}
