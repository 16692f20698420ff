package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/psylab-id/smds27/internal/models"
	"github.com/psylab-id/smds27/internal/utils"
)

// RenderReport flattens a Report into displayable text: narrative body,
// numbered source list (or a plain no-sources notice), then the
// disclaimer. An unavailable report renders as notice + disclaimer only.
func RenderReport(rep *models.Report, locale string) string {
	var b strings.Builder
	if rep.Unavailable || strings.TrimSpace(rep.Body) == "" {
		b.WriteString(utils.T(locale, "report.unavailable"))
	} else {
		b.WriteString(rep.Body)
		b.WriteString("\n\n---\n")
		if len(rep.Citations) > 0 {
			b.WriteString(utils.T(locale, "report.sources") + ":\n")
			for i, c := range rep.Citations {
				fmt.Fprintf(&b, "%d. %s - %s\n", i+1, c.Title, c.URL)
			}
		} else {
			b.WriteString(utils.T(locale, "report.nosources") + "\n")
		}
	}
	b.WriteString("\n" + rep.Disclaimer + "\n")
	return b.String()
}

// BuildResultText renders the downloadable text artifact: header, profile,
// scores, every answer, then the rendered report.
func BuildResultText(rec *models.AssessmentRecord, rep *models.Report, locale string) string {
	sep := strings.Repeat("=", 50)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", utils.T(locale, "export.title"), sep)
	fmt.Fprintf(&b, "Date: %s\n\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("PROFILE:\n")
	fmt.Fprintf(&b, "- Alias: %s\n", rec.Profile.Alias)
	fmt.Fprintf(&b, "- Age: %d\n", rec.Profile.Age)
	fmt.Fprintf(&b, "- Gender: %s\n", rec.Profile.Gender)
	fmt.Fprintf(&b, "- Occupation: %s\n\n", rec.Profile.Occupation)

	b.WriteString("RESULT:\n")
	fmt.Fprintf(&b, "- Total score: %d (range %d-%d)\n", rec.TotalScore, MinTotalScore, MaxTotalScore)
	label := rec.Severity.LabelI18n[locale]
	if label == "" {
		label = rec.Severity.Label
	}
	fmt.Fprintf(&b, "- Category: %s", label)
	if desc := rec.Severity.DescI18n[locale]; desc != "" {
		fmt.Fprintf(&b, " — %s", desc)
	}
	b.WriteString("\n")
	for _, name := range Dimensions() {
		if ds, ok := rec.DimensionScores[name]; ok {
			fmt.Fprintf(&b, "- %s: %d/%d\n", name, ds.Sum, ds.ItemCount*LikertMax)
		}
	}

	b.WriteString("\nANSWERS:\n")
	for id := 1; id <= ItemCount; id++ {
		fmt.Fprintf(&b, "Q%d: %d\n", id, rec.Responses[id])
	}

	fmt.Fprintf(&b, "\n%s\nANALYSIS:\n%s\n\n", sep, sep)
	b.WriteString(RenderReport(rep, locale))
	return b.String()
}

// ExportFilename names the downloadable artifact after the alias and the
// assessment time, with the alias reduced to header-safe characters.
func ExportFilename(alias string, t time.Time) string {
	var safe strings.Builder
	for _, r := range alias {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			safe.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			safe.WriteByte('_')
		}
	}
	name := safe.String()
	if name == "" {
		name = "anon"
	}
	return fmt.Sprintf("SMDS27_Result_%s_%s.txt", name, t.Format("20060102_150405"))
}

// RecordCSVHeader is the fixed column order shared with the spreadsheet
// collaborator: timestamp, profile, 27 items, total, category.
func RecordCSVHeader() []string {
	header := []string{"timestamp", "alias", "age", "gender", "occupation"}
	for i := 1; i <= ItemCount; i++ {
		header = append(header, "item_"+itoa(i))
	}
	return append(header, "total_score", "category")
}

// ExportRecordsCSV renders stored assessment records into CSV for the
// admin surface.
func ExportRecordsCSV(recs []*models.AssessmentRecord) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(RecordCSVHeader()); err != nil {
		return nil, err
	}
	for _, rec := range recs {
		row := []string{
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
			rec.Profile.Alias,
			itoa(rec.Profile.Age),
			rec.Profile.Gender,
			rec.Profile.Occupation,
		}
		for id := 1; id <= ItemCount; id++ {
			row = append(row, itoa(rec.Responses[id]))
		}
		row = append(row, itoa(rec.TotalScore), rec.Severity.Label)
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func itoa(v int) string { return strconv.Itoa(v) }
