package teardown

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Report is the terminal record for one target. Exactly one Report is
// produced per target, whatever happened along the way.
type Report struct {
	Group    string
	Err      error
	Duration time.Duration
}

// Summary aggregates the reports of one cleanup run.
type Summary struct {
	Reports   []Report
	Succeeded int
	Failed    int
}

func summarize(reports []Report) Summary {
	s := Summary{Reports: reports}
	for _, r := range reports {
		if r.Err == nil {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}

// Render writes the summary as a table.
func (s Summary) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Resource Group", "Result", "Duration"})
	for _, r := range s.Reports {
		result := "deleted"
		if r.Err != nil {
			result = r.Err.Error()
		}
		t.AppendRow(table.Row{r.Group, result, r.Duration.Round(time.Second)})
	}
	t.AppendFooter(table.Row{"total", fmt.Sprintf("%d succeeded, %d failed", s.Succeeded, s.Failed), ""})
	t.Render()
}
