package crawl

import (
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jonesrussell/faqhub/internal/crawler"
	"github.com/jonesrussell/faqhub/internal/domain"
)

// RenderSummary writes one row per platform with its outcome counts.
func RenderSummary(w io.Writer, summary *crawler.RunSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	duration := summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond)
	t.SetTitle("Run " + summary.RunID + " (" + duration.String() + ")")

	t.AppendHeader(table.Row{"Platform", "Discovered", "Created", "Updated", "Duplicate", "Skipped", "Failed", "Notes"})
	for _, p := range summary.Platforms {
		t.AppendRow(table.Row{
			p.Platform,
			p.Discovered,
			p.Outcomes[domain.OutcomeCreated],
			p.Outcomes[domain.OutcomeUpdated],
			p.Outcomes[domain.OutcomeDuplicate],
			p.Outcomes[domain.OutcomeSkipped],
			p.Outcomes[domain.OutcomeFailed],
			notes(p),
		})
	}
	t.AppendFooter(table.Row{
		"Total", "",
		summary.Total(domain.OutcomeCreated),
		summary.Total(domain.OutcomeUpdated),
		summary.Total(domain.OutcomeDuplicate),
		summary.Total(domain.OutcomeSkipped),
		summary.Total(domain.OutcomeFailed),
		"",
	})

	t.Render()
}

func notes(p *crawler.PlatformSummary) string {
	if p.Err != nil {
		return "discovery failed: " + p.Err.Error()
	}

	reasons := make([]string, 0, len(p.Skipped))
	for reason, n := range p.Skipped {
		reasons = append(reasons, string(reason)+"="+strconv.Itoa(n))
	}
	sort.Strings(reasons)
	return strings.Join(reasons, " ")
}
