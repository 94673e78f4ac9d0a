package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/patchwork/internal/core/domain"
	"go.trai.ch/patchwork/internal/ui/style"
	"go.trai.ch/zerr"
)

const shortHashLen = 7

// FormatReport renders a run report as a table of task outcomes followed by a
// one-line summary. Colors follow profile.
func FormatReport(report *domain.Report, profile termenv.Profile) string {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(profile)

	var (
		header   = r.NewStyle().Bold(true).Foreground(style.Iris)
		ok       = r.NewStyle().Foreground(style.Green)
		failed   = r.NewStyle().Foreground(style.Red)
		muted    = r.NewStyle().Foreground(style.Slate)
		idWidth  = 0
		resolved = 0
	)

	for _, o := range report.Outcomes {
		idWidth = max(idWidth, len(o.TaskID))
		if o.Status == domain.StatusResolved {
			resolved++
		}
	}

	var b strings.Builder
	title := fmt.Sprintf("Run %s on %s", report.RunID, report.Branch)
	b.WriteString(header.Render(title))
	if report.PlanDigest != "" {
		b.WriteString(muted.Render(" (plan " + report.PlanDigest + ")"))
	}
	b.WriteString("\n")

	for _, o := range report.Outcomes {
		icon := ok.Render(style.Check)
		if o.Status != domain.StatusResolved {
			icon = failed.Render(style.Cross)
		}

		hash := o.CommitHash
		if len(hash) > shortHashLen {
			hash = hash[:shortHashLen]
		}

		line := fmt.Sprintf("  %s %-*s  %s", icon, idWidth, o.TaskID, o.Title)
		switch {
		case hash != "":
			line += "  " + muted.Render(hash)
		case o.Status == domain.StatusResolved:
			line += "  " + muted.Render("no changes")
		}
		line += "  " + muted.Render(o.Duration.Round(time.Millisecond).String())
		b.WriteString(line + "\n")

		if o.Diagnostic != "" {
			for _, d := range strings.Split(strings.TrimRight(o.Diagnostic, "\n"), "\n") {
				b.WriteString("      " + failed.Render(d) + "\n")
			}
		}
	}

	total := len(report.Outcomes)
	summary := fmt.Sprintf("%d task(s): %d resolved, %d failed", total, resolved, total-resolved)
	if commits := report.Commits(); len(commits) > 0 {
		summary += fmt.Sprintf(", %d commit(s)", len(commits))
	}
	b.WriteString(summary + "\n")

	return b.String()
}

// WriteJSONReport writes report to w as indented JSON followed by a newline.
func WriteJSONReport(w io.Writer, report *domain.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal report")
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return zerr.Wrap(err, "failed to write report")
	}
	return nil
}
