// Package kpi holds enrichments specific to the combined KPI exports.
package kpi

import (
	"regexp"
	"time"

	"github.com/teranos/kpix/ixgest/table"
)

// Column names used by the combined KPI export.
const (
	ReferencePeriodColumn = "Reference Period"
	PeriodStartColumn     = "Period Start"
	PeriodEndColumn       = "Period End"
)

// e.g. "01.07.2024-30.09.2024"
var periodPattern = regexp.MustCompile(`(\d{2})\.(\d{2})\.(\d{4})-(\d{2})\.(\d{2})\.(\d{4})`)

// ParsePeriod extracts the start and end dates from a reference period of the
// form dd.mm.yyyy-dd.mm.yyyy. Surrounding text is ignored.
func ParsePeriod(s string) (start, end time.Time, ok bool) {
	m := periodPattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, time.Time{}, false
	}
	start, err := time.Parse("2006-01-02", m[3]+"-"+m[2]+"-"+m[1])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err = time.Parse("2006-01-02", m[6]+"-"+m[5]+"-"+m[4])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// DerivePeriod adds Period Start and Period End (ISO yyyy-mm-dd) to every
// record whose Reference Period parses. It returns how many records were
// enriched; records without a usable period are left untouched.
func DerivePeriod(records []table.Record) int {
	enriched := 0
	for i := range records {
		v, ok := records[i].Get(ReferencePeriodColumn)
		if !ok {
			continue
		}
		start, end, ok := ParsePeriod(v.Text())
		if !ok {
			continue
		}
		records[i].Set(PeriodStartColumn, table.StringValue(start.Format("2006-01-02")))
		records[i].Set(PeriodEndColumn, table.StringValue(end.Format("2006-01-02")))
		enriched++
	}
	return enriched
}
