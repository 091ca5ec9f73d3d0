// Package export renders a project's risks as CSV or PDF reports
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
)

// CSVHeader is the column order of the CSV report
var CSVHeader = []string{
	"ID", "Title", "Description", "Category", "Probability", "Impact", "Score",
	"Priority", "Status", "Assignee", "Tags", "Mitigation", "Created At", "Updated At",
}

var csvReplacer = strings.NewReplacer(
	",", ";",
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
)

// csvField replaces commas with semicolons and line breaks with spaces so
// every risk stays on one line for spreadsheet imports
func csvField(s string) string {
	return strings.TrimSpace(csvReplacer.Replace(s))
}

// CSVRow returns the fields of one risk in CSVHeader order
func CSVRow(r *model.Risk) []string {
	mitigation := ""
	if r.Mitigation != nil {
		mitigation = r.Mitigation.Overview
	}

	row := []string{
		r.ID.String(),
		r.Title,
		r.Description,
		string(r.Category),
		strconv.Itoa(int(r.Probability)),
		strconv.Itoa(int(r.Impact)),
		strconv.Itoa(r.Score()),
		string(r.Priority()),
		string(r.Status),
		r.Assignee,
		strings.Join(r.Tags, "; "),
		mitigation,
		formatTime(r.CreatedAt),
		formatTime(r.UpdatedAt),
	}
	for i := range row {
		row[i] = csvField(row[i])
	}
	return row
}

// WriteCSV writes the header and one row per risk
func WriteCSV(w io.Writer, risks []*model.Risk) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return goerr.Wrap(err, "failed to write CSV header")
	}
	for _, r := range risks {
		if err := cw.Write(CSVRow(r)); err != nil {
			return goerr.Wrap(err, "failed to write CSV row", goerr.V("risk_id", r.ID))
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return goerr.Wrap(err, "failed to flush CSV")
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// FileName returns a download name such as "riskpilot-payment-platform-20240102.csv"
func FileName(p *model.Project, ext string, now time.Time) string {
	var sb strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(p.Name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastDash = false
		case !lastDash && sb.Len() > 0:
			sb.WriteByte('-')
			lastDash = true
		}
	}
	slug := strings.Trim(sb.String(), "-")
	if slug == "" {
		slug = "project"
	}
	if len(slug) > 50 {
		slug = strings.Trim(slug[:50], "-")
	}
	return "riskpilot-" + slug + "-" + now.UTC().Format("20060102") + "." + ext
}
