// Package table reads delimiter-separated text into typed records.
//
// The first non-blank line is the header. Every data row must have exactly as
// many fields as the header, and all text must be valid UTF-8. A header cell
// may be blank only if its column holds no values; such columns are named
// "Unnamed: <index>". Cells that are empty or match an NA marker are
// dropped from the row's record, so a record only ever holds the columns that
// carried a value on that row. Column types are inferred from all non-missing
// cells of a column (see Kind).
package table

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/teranos/kpix/errors"
)

const bom = "\ufeff"

// Options controls parsing.
type Options struct {
	// Delimiter separates fields. Zero means ';'.
	Delimiter rune
	// NAValues are cell texts treated as missing in addition to "".
	// nil selects DefaultNAValues; an empty non-nil slice disables them.
	NAValues []string
}

// Table is a parsed source file.
type Table struct {
	Header  []string
	Kinds   []Kind
	Records []Record
}

// Rows returns the number of data rows, header excluded.
func (t *Table) Rows() int {
	return len(t.Records)
}

// ReadFile opens path, parses it and closes it before returning.
func ReadFile(path string, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to open %s", path), errors.ErrSourceFile)
	}
	defer f.Close()

	t, err := Parse(f, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return t, nil
}

// Parse reads a whole delimited document from r.
func Parse(r io.Reader, opts Options) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	if reader.Comma == 0 {
		reader.Comma = ';'
	}
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.Mark(errors.New("no header row"), errors.ErrMalformedInput)
	}
	if err != nil {
		return nil, readError(err)
	}
	header[0] = strings.TrimPrefix(header[0], bom)
	headerLine, _ := reader.FieldPos(0)
	if err := checkUTF8(header, headerLine); err != nil {
		return nil, err
	}
	unnamed, err := nameColumns(header)
	if err != nil {
		return nil, err
	}

	na := naSet(opts.NAValues)

	// cells[row][col]; missing cells are kept as "" and flagged in present
	var cells [][]string
	var present [][]bool
	var lines []int
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, readError(err)
		}
		line, _ := reader.FieldPos(0)
		if err := checkUTF8(row, line); err != nil {
			return nil, err
		}
		flags := make([]bool, len(row))
		for i, c := range row {
			flags[i] = !na[c]
			if flags[i] && unnamed[i] {
				return nil, errors.Mark(
					errors.Newf("line %d: value %q in column %d, which has no header", line, c, i+1),
					errors.ErrMalformedInput)
			}
		}
		cells = append(cells, row)
		present = append(present, flags)
		lines = append(lines, line)
	}

	kinds := make([]Kind, len(header))
	column := make([]string, 0, len(cells))
	for col := range header {
		column = column[:0]
		for i := range cells {
			if present[i][col] {
				column = append(column, cells[i][col])
			}
		}
		kinds[col] = inferKind(column)
	}

	records := make([]Record, len(cells))
	for i, row := range cells {
		rec := Record{Line: lines[i]}
		for col, c := range row {
			if !present[i][col] {
				continue
			}
			rec.Fields = append(rec.Fields, Field{Name: header[col], Value: convert(c, kinds[col])})
		}
		records[i] = rec
	}

	return &Table{Header: header, Kinds: kinds, Records: records}, nil
}

// nameColumns names blank header cells "Unnamed: <index>" and rejects
// duplicates. It reports which columns were unnamed.
func nameColumns(header []string) ([]bool, error) {
	unnamed := make([]bool, len(header))
	seen := make(map[string]int, len(header))
	for i, name := range header {
		if name == "" {
			unnamed[i] = true
			name = "Unnamed: " + strconv.Itoa(i)
			header[i] = name
		}
		if prev, ok := seen[name]; ok {
			return nil, errors.Mark(errors.Newf("header column %d duplicates column %d (%q)", i+1, prev+1, name), errors.ErrMalformedInput)
		}
		seen[name] = i
	}
	return unnamed, nil
}

func checkUTF8(cells []string, line int) error {
	for _, c := range cells {
		if !utf8.ValidString(c) {
			err := errors.Newf("line %d: invalid UTF-8", line)
			return errors.Mark(errors.WithHint(err, "re-save the file with UTF-8 encoding"), errors.ErrMalformedInput)
		}
	}
	return nil
}

func naSet(values []string) map[string]bool {
	if values == nil {
		values = DefaultNAValues
	}
	set := make(map[string]bool, len(values)+1)
	set[""] = true
	for _, v := range values {
		set[v] = true
	}
	return set
}

func readError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		wrapped := errors.Wrapf(pe.Err, "line %d", pe.Line)
		if errors.Is(pe.Err, csv.ErrFieldCount) {
			wrapped = errors.WithHint(wrapped, "every row needs as many fields as the header; check the delimiter")
		}
		return errors.Mark(wrapped, errors.ErrMalformedInput)
	}
	return errors.Mark(errors.Wrap(err, "failed to read source"), errors.ErrSourceFile)
}
