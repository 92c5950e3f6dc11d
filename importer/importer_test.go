package importer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teranos/kpix/errors"
)

// fakeStore records submissions and appends them to an in-memory index,
// the way a real store appends auto-ID documents.
type fakeStore struct {
	calls   int
	indexes map[string][]string
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{indexes: map[string][]string{}}
}

func (s *fakeStore) Submit(ctx context.Context, index string, docs []Document) (int, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	for _, d := range docs {
		data, err := json.Marshal(d)
		if err != nil {
			return 0, err
		}
		s.indexes[index] = append(s.indexes[index], string(data))
	}
	return len(docs), nil
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kpis.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestImporter(store Store, opts Options) *Importer {
	return New(store, opts, zap.NewNop().Sugar())
}

func TestRun_SubmitsOneDocumentPerRow(t *testing.T) {
	store := newFakeStore()
	path := writeSource(t, "a;b\n1;\n;2\n")

	result, err := newTestImporter(store, Options{}).Run(context.Background(), path, "kpis")
	require.NoError(t, err)

	assert.Equal(t, 1, store.calls)
	assert.Equal(t, []string{`{"a":1}`, `{"b":2}`}, store.indexes["kpis"])

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, 2, result.Submitted)
	assert.Equal(t, 2, result.Indexed)
	assert.Equal(t, 0, result.Failed)
	assert.NotEmpty(t, result.JobID)
	assert.Equal(t, "Imported 2 records into index 'kpis'", result.Message)
	assert.False(t, result.EndTime.Before(result.StartTime))
}

func TestRun_ConfirmationCountMatchesDataRows(t *testing.T) {
	store := newFakeStore()
	path := writeSource(t, "x;y;z\n1;2;3\n;;\n4;;6\nNA;n/a;\n")

	result, err := newTestImporter(store, Options{}).Run(context.Background(), path, "kpis")
	require.NoError(t, err)

	assert.Equal(t, 4, result.Submitted)
	assert.Len(t, store.indexes["kpis"], 4)
	assert.Equal(t, Confirmation(4, "kpis"), result.Message)
	assert.Equal(t, []string{`{"x":1,"y":2,"z":3}`, `{}`, `{"x":4,"z":6}`, `{}`}, store.indexes["kpis"])
}

func TestRun_RerunAppends(t *testing.T) {
	store := newFakeStore()
	path := writeSource(t, "a\n1\n2\n3\n")
	im := newTestImporter(store, Options{})

	_, err := im.Run(context.Background(), path, "kpis")
	require.NoError(t, err)
	_, err = im.Run(context.Background(), path, "kpis")
	require.NoError(t, err)

	assert.Len(t, store.indexes["kpis"], 6)
}

func TestRun_MissingSourceNeverCallsStore(t *testing.T) {
	store := newFakeStore()
	missing := filepath.Join(t.TempDir(), "missing.csv")

	result, err := newTestImporter(store, Options{}).Run(context.Background(), missing, "kpis")
	require.Error(t, err)

	assert.True(t, errors.Is(err, errors.ErrSourceFile))
	assert.True(t, errors.IsInputError(err))
	assert.Equal(t, 0, store.calls)
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestRun_MalformedInputNeverCallsStore(t *testing.T) {
	store := newFakeStore()
	path := writeSource(t, "a;b\n1;2;3\n")

	_, err := newTestImporter(store, Options{}).Run(context.Background(), path, "kpis")
	require.Error(t, err)

	assert.True(t, errors.Is(err, errors.ErrMalformedInput))
	assert.Equal(t, 0, store.calls)
}

func TestRun_ConnectionErrorPropagates(t *testing.T) {
	store := newFakeStore()
	store.err = errors.Mark(errors.New("dial tcp 127.0.0.1:1: connect: connection refused"), errors.ErrConnection)
	path := writeSource(t, "a\n1\n")

	result, err := newTestImporter(store, Options{}).Run(context.Background(), path, "kpis")
	require.Error(t, err)

	assert.True(t, errors.Is(err, errors.ErrConnection))
	assert.Equal(t, 1, store.calls)
	assert.False(t, result.Success)
	assert.Equal(t, 0, result.Indexed)
	assert.NotContains(t, result.Message, "Imported")
}

func TestRun_PartialBulkFailureIsSurfaced(t *testing.T) {
	store := newFakeStore()
	store.err = errors.Mark(&BulkError{
		Indexed: 2,
		Failed:  1,
		Failures: []ItemFailure{
			{Line: 3, Status: 400, Type: "mapper_parsing_exception", Reason: "failed to parse field [Value]"},
		},
	}, errors.ErrBulkWrite)
	path := writeSource(t, "Value\n1\nx\n3\n")

	result, err := newTestImporter(store, Options{}).Run(context.Background(), path, "kpis")
	require.Error(t, err)

	assert.True(t, errors.Is(err, errors.ErrBulkWrite))
	var bulkErr *BulkError
	require.True(t, errors.As(err, &bulkErr))
	assert.Equal(t, 1, bulkErr.Failed)

	assert.False(t, result.Success)
	assert.Equal(t, 3, result.Submitted)
	assert.Equal(t, 2, result.Indexed)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, err.Error(), "line 3: failed to parse field [Value]")
}

func TestRun_DryRunSkipsStore(t *testing.T) {
	store := newFakeStore()
	path := writeSource(t, "a\n1\n2\n")

	result, err := newTestImporter(store, Options{DryRun: true}).Run(context.Background(), path, "kpis")
	require.NoError(t, err)

	assert.Equal(t, 0, store.calls)
	assert.True(t, result.DryRun)
	assert.Equal(t, 2, result.Submitted)
	assert.Equal(t, 0, result.Indexed)
}

func TestRun_EmptyIndexRejected(t *testing.T) {
	store := newFakeStore()
	path := writeSource(t, "a\n1\n")

	_, err := newTestImporter(store, Options{}).Run(context.Background(), path, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
	assert.Equal(t, 0, store.calls)
}

func TestRun_DirectorySourceUsesNewestExport(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "combined_kpis_100.csv"), []byte("v\nold\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "combined_kpis_200.csv"), []byte("v\nnew\n"), 0644))
	store := newFakeStore()

	result, err := newTestImporter(store, Options{}).Run(context.Background(), dir, "kpis")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "combined_kpis_200.csv"), result.Source)
	assert.Equal(t, []string{`{"v":"new"}`}, store.indexes["kpis"])
}

func TestPrepare_DerivePeriod(t *testing.T) {
	path := writeSource(t, "Reference Period;DevOps Score\n01.07.2024-30.09.2024;100\n;0\n")

	job, err := newTestImporter(newFakeStore(), Options{DerivePeriod: true}).Prepare(path, "kpis")
	require.NoError(t, err)

	assert.Equal(t, 1, job.Enriched)
	require.Len(t, job.Documents, 2)
	data, err := json.Marshal(job.Documents[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"Reference Period":"01.07.2024-30.09.2024","DevOps Score":100,
		"Period Start":"2024-07-01","Period End":"2024-09-30"}`, string(data))
	assert.Equal(t, 3, job.Documents[1].Line)
}

func TestPrepare_CustomDelimiterAndNAValues(t *testing.T) {
	path := writeSource(t, "a,b\n-,NA\n")

	job, err := newTestImporter(newFakeStore(), Options{Delimiter: ',', NAValues: []string{"-"}}).Prepare(path, "kpis")
	require.NoError(t, err)

	data, err := json.Marshal(job.Documents[0])
	require.NoError(t, err)
	assert.Equal(t, `{"b":"NA"}`, string(data))
}

func TestBulkError_Message(t *testing.T) {
	err := &BulkError{
		Indexed: 8,
		Failed:  2,
		Failures: []ItemFailure{
			{Line: 4, Type: "mapper_parsing_exception", Reason: "bad date"},
			{Line: 9, Type: "version_conflict_engine_exception", Reason: "conflict"},
		},
	}
	assert.Equal(t, "2 of 10 documents rejected: line 4: bad date (mapper_parsing_exception); line 9: conflict (version_conflict_engine_exception)", err.Error())
}
