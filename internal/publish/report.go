// Package publish renders a merge result into the five-tab report workbook
// and hands it to a sink (Google Sheets, an .xlsx file or a SQL database).
//
// The tab layout is sink independent: Tabs builds the grids once and every
// sink writes them in order.
package publish

import (
	"fmt"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"reportmerge/internal/mapping"
	"reportmerge/internal/merge"
	"reportmerge/internal/table"
	"reportmerge/internal/validate"
)

// Report is everything a sink writes for one merge.
type Report struct {
	Title     string
	Output    *table.Table
	Sources   map[mapping.SourceID]*table.Table
	Warnings  []validate.Warning
	Generated time.Time
}

// NewReport assembles a Report from the merge inputs and result. An empty
// title gets DefaultTitle, prefixed after the profile that named the output.
func NewReport(title string, in merge.Inputs, res merge.Result, now time.Time) Report {
	if title == "" {
		var profile string
		if res.Output != nil {
			profile = res.Output.Name
		}
		title = DefaultTitle(TitlePrefix(profile), now)
	}
	return Report{
		Title:     title,
		Output:    res.Output,
		Sources:   in.Sources(),
		Warnings:  res.Warnings,
		Generated: now,
	}
}

// TitlePrefix derives a title prefix from a profile name: "Indeed_Standard"
// gives "Indeed", "Weekly_Summary" is kept as is.
func TitlePrefix(profile string) string {
	p := strings.TrimSuffix(strings.TrimSpace(profile), "_Standard")
	if p == "" {
		return "Merged"
	}
	return p
}

// DefaultTitle returns "<prefix>_Report_YYYYMMDD_HHMMSS".
func DefaultTitle(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_Report_%s", prefix, now.Format("20060102_150405"))
}

// MergedRows is the number of data rows in the merged output.
func (r Report) MergedRows() int { return r.Output.Len() }

// MergedColumns is the number of columns in the merged output.
func (r Report) MergedColumns() int { return r.Output.Width() }

// TotalRows counts the data rows of the merged output and the three raw
// exports.
func (r Report) TotalRows() int {
	n := r.Output.Len()
	for _, src := range mapping.Sources {
		n += r.Sources[src].Len()
	}
	return n
}

// Fingerprint hashes the merged grid (headers and rendered cells). Equal
// outputs give equal fingerprints, so sinks use it as the run key.
func (r Report) Fingerprint() string {
	h := xxh3.New()
	sep := []byte{0x1f}
	end := []byte{0x1e}
	if r.Output != nil {
		for _, c := range r.Output.Columns {
			_, _ = h.WriteString(c)
			_, _ = h.Write(sep)
		}
		_, _ = h.Write(end)
		for _, row := range r.Output.Rows {
			for _, v := range row {
				_, _ = h.WriteString(table.Text(v))
				_, _ = h.Write(sep)
			}
			_, _ = h.Write(end)
		}
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
