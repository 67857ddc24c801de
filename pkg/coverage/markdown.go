package coverage

import (
	"fmt"
	"io"
	"strconv"

	md "github.com/nao1215/markdown"
)

// maxMissingRows bounds the missing-village table of the markdown summary.
const maxMissingRows = 50

// Markdown writes a human-readable summary of the audit to w.
func (a *Result) Markdown(w io.Writer) error {
	r := a.Report
	doc := md.NewMarkdown(w).
		H1(fmt.Sprintf("Coverage: %s", r.Source)).
		PlainText(fmt.Sprintf("Baseline %s, generated at %s.", md.Bold(r.Baseline), r.GeneratedAt)).
		LF().
		Table(md.TableSet{
			Header: []string{"Total villages", "Matched", "Missing", "Coverage"},
			Rows: [][]string{{
				strconv.Itoa(r.TotalVillages),
				strconv.Itoa(r.Matched),
				strconv.Itoa(r.Missing),
				fmt.Sprintf("%.2f%%", r.CoveragePercent),
			}},
		})

	if len(a.Missing) > 0 {
		rows := make([][]string, 0, min(len(a.Missing), maxMissingRows))
		for _, u := range a.Missing[:min(len(a.Missing), maxMissingRows)] {
			rows = append(rows, []string{u.Code, u.Name, u.DistrictName, u.RegencyName, u.ProvinceName})
		}
		doc = doc.H2("Missing villages").
			Table(md.TableSet{
				Header: []string{"Code", "Village", "District", "Regency", "Province"},
				Rows:   rows,
			})
		if len(a.Missing) > maxMissingRows {
			doc = doc.PlainText(fmt.Sprintf("... and %d more.", len(a.Missing)-maxMissingRows))
		}
	}

	return doc.Build()
}
