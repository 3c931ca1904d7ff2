package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/trials-mcp/internal/core/domain"
)

// summaryLimit truncates summaries in search listings; details show them in full.
const summaryLimit = 300

// RenderResult formats a tool result as markdown for humans and chat models.
func RenderResult(r domain.ToolResult) string {
	switch {
	case r.Error != nil:
		return renderError(r.Error)
	case r.Page != nil:
		return renderPage(r.Page)
	case r.Trial != nil:
		return renderTrial(r.Trial)
	case r.Count != nil:
		return fmt.Sprintf("**Matching trials:** %d", *r.Count)
	default:
		return "No result."
	}
}

func renderError(e *domain.ToolError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error (%s): %s", e.Kind, e.Message)
	for _, f := range e.Fields {
		fmt.Fprintf(&b, "\n- %s %s", f.Field, f.Reason)
	}
	return b.String()
}

func renderPage(p *domain.TrialPage) string {
	if len(p.Trials) == 0 {
		return "No trials found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Clinical trials\n**Total found:** %d\n**Showing:** %d\n", p.TotalCount, len(p.Trials))
	for i := range p.Trials {
		t := &p.Trials[i]
		fmt.Fprintf(&b, "\n### %d. %s (%s)\n", i+1, orNA(t.Title), t.NCTID)
		writeFacts(&b, t)
		if t.Summary != "" {
			fmt.Fprintf(&b, "- **Summary:** %s\n", truncate(t.Summary, summaryLimit))
		}
	}
	if p.NextPageToken != "" {
		fmt.Fprintf(&b, "\nMore results available. Next page token: `%s`\n", p.NextPageToken)
	}
	return b.String()
}

func renderTrial(t *domain.TrialRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n**NCT ID:** %s\n", orNA(t.Title), t.NCTID)
	if t.OfficialTitle != "" && t.OfficialTitle != t.Title {
		fmt.Fprintf(&b, "**Official title:** %s\n", t.OfficialTitle)
	}
	b.WriteString("\n")
	writeFacts(&b, t)
	if t.StudyType != "" {
		fmt.Fprintf(&b, "- **Study type:** %s\n", t.StudyType)
	}
	if t.Sponsor != "" {
		fmt.Fprintf(&b, "- **Sponsor:** %s\n", t.Sponsor)
	}
	if t.StartDate != "" {
		fmt.Fprintf(&b, "- **Start date:** %s\n", t.StartDate)
	}
	if len(t.Conditions) > 0 {
		fmt.Fprintf(&b, "- **Conditions:** %s\n", strings.Join(t.Conditions, ", "))
	}
	if len(t.Locations) > 0 {
		b.WriteString("- **Locations:**\n")
		for _, l := range t.Locations {
			fmt.Fprintf(&b, "  - %s\n", formatLocation(l))
		}
	}
	if t.Summary != "" {
		fmt.Fprintf(&b, "\n### Summary\n%s\n", t.Summary)
	}
	return b.String()
}

func writeFacts(b *strings.Builder, t *domain.TrialRecord) {
	fmt.Fprintf(b, "- **Status:** %s\n", orNA(string(t.Status)))
	phases := make([]string, len(t.Phases))
	for i, p := range t.Phases {
		phases[i] = string(p)
	}
	fmt.Fprintf(b, "- **Phase:** %s\n", orNA(strings.Join(phases, ", ")))
	if t.Enrollment > 0 {
		fmt.Fprintf(b, "- **Enrollment:** %d\n", t.Enrollment)
	}
}

func formatLocation(l domain.TrialLocation) string {
	var parts []string
	for _, s := range []string{l.Facility, l.City, l.State, l.Country} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}
