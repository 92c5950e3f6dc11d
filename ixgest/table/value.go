package table

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind is the type chosen for a column by best-effort parsing of its cells.
type Kind int

const (
	String Kind = iota
	Int
	Float
	Bool
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	default:
		return "string"
	}
}

// Value is a single typed cell.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

// StringValue wraps s as a string-typed value.
func StringValue(s string) Value {
	return Value{Kind: String, Str: s}
}

// Interface returns the Go value for JSON encoding.
func (v Value) Interface() interface{} {
	switch v.Kind {
	case Int:
		return v.Int
	case Float:
		return v.Float
	case Bool:
		return v.Bool
	default:
		return v.Str
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// Text returns the value as it would read in the source file.
func (v Value) Text() string {
	switch v.Kind {
	case Int:
		return strconv.FormatInt(v.Int, 10)
	case Float:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(v.Bool)
	default:
		return v.Str
	}
}

// DefaultNAValues are the cell texts treated as missing when no explicit
// list is configured. The empty string is always missing.
var DefaultNAValues = []string{
	"#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

var (
	trueLiterals  = map[string]bool{"True": true, "TRUE": true, "true": true}
	falseLiterals = map[string]bool{"False": true, "FALSE": true, "false": true}
)

func parseInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

func parseFloat(s string) (float64, bool) {
	// strconv accepts hex floats and inf/infinity; neither is a plain decimal
	// and infinities cannot be encoded as JSON.
	if strings.ContainsAny(s, "xXpP_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func parseBool(s string) (bool, bool) {
	if trueLiterals[s] {
		return true, true
	}
	if falseLiterals[s] {
		return false, true
	}
	return false, false
}

// inferKind picks the narrowest kind every cell in the column parses as.
func inferKind(cells []string) Kind {
	if len(cells) == 0 {
		return String
	}
	allInt, allFloat, allBool := true, true, true
	for _, c := range cells {
		if allInt {
			_, allInt = parseInt(c)
		}
		if allFloat {
			_, allFloat = parseFloat(c)
		}
		if allBool {
			_, allBool = parseBool(c)
		}
		if !allInt && !allFloat && !allBool {
			return String
		}
	}
	switch {
	case allInt:
		return Int
	case allFloat:
		return Float
	case allBool:
		return Bool
	default:
		return String
	}
}

// convert interprets s as kind. The caller guarantees s parses, since kind
// came from inferKind over the same cells.
func convert(s string, kind Kind) Value {
	switch kind {
	case Int:
		n, _ := parseInt(s)
		return Value{Kind: Int, Int: n}
	case Float:
		f, _ := parseFloat(s)
		return Value{Kind: Float, Float: f}
	case Bool:
		b, _ := parseBool(s)
		return Value{Kind: Bool, Bool: b}
	default:
		return StringValue(s)
	}
}
