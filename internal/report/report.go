package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"arbsweep/internal/apply"
	"arbsweep/internal/artifact"
	"arbsweep/internal/backup"
	"arbsweep/internal/catalog"
	"arbsweep/internal/common"
	"arbsweep/internal/diagnostic"
	"arbsweep/internal/resolve"
)

// maxPreview caps the rows listed by Preview.
const maxPreview = 20

// ExtractStats summarizes a freshly built artifact.
func ExtractStats(f *artifact.File, files int, path string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Extraction complete"))
	b.WriteString("\n")

	total, approved := f.Count()
	reuse, create := 0, 0

	names := make([]string, 0, len(f.Categories))
	for name := range f.Categories {
		names = append(names, name)
	}

	sort.Strings(names)

	var lines []string

	for _, name := range names {
		c := f.Categories[name]
		if c == nil {
			continue
		}

		reuse += len(c.Reuse)
		create += len(c.Create)
		lines = append(lines, row(name, fmt.Sprintf("%d reuse, %d create", len(c.Reuse), len(c.Create)), valueStyle))
	}

	lines = append([]string{
		row("Files scanned", files, valueStyle),
		row("Candidates", total, valueStyle),
		row("Reuse", reuse, successStyle),
		row("Create", create, warningStyle),
		row("Pre-approved", approved, mutedStyle),
		"",
	}, lines...)

	b.WriteString(boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
	b.WriteString("\n")

	if path != "" {
		b.WriteString(mutedStyle.Render("Mapping written to " + path))
		b.WriteString("\n")
	}

	return b.String()
}

// Preview lists the changes an apply run is about to make.
func Preview(changes []artifact.Change, accessor string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%d %s to apply", len(changes), common.Plural(len(changes), "change"))))
	b.WriteString("\n")

	for i, c := range changes {
		if i == maxPreview {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("... and %d more", len(changes)-maxPreview)))
			b.WriteString("\n")

			break
		}

		e := c.Target()
		action := successStyle.Render(string(c.Action()))
		if c.Action() == resolve.Create {
			action = warningStyle.Render(string(c.Action()))
		}

		fmt.Fprintf(&b, "%s %s %s -> %s.%s\n",
			mutedStyle.Render(e.Location()),
			action,
			common.Truncate(e.Literal, 40),
			accessor, e.Key)
	}

	return b.String()
}

// Summary renders the result of an apply run.
func Summary(s *apply.Summary) string {
	var b strings.Builder

	title := "Apply complete"
	if s.DryRun {
		title = "Dry run complete (nothing written)"
	}

	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	keys := "none"
	if len(s.KeysAdded) > 0 {
		keys = strings.Join(s.KeysAdded, ", ")
	}

	lines := []string{
		row("Applied", s.Applied, successStyle),
		row("Already applied", s.AlreadyApplied, mutedStyle),
		row("Stale", s.Stale, warningStyle),
		row("Failed", s.Failed, errorStyle),
		row("Keys added", keys, valueStyle),
	}

	b.WriteString(boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
	b.WriteString("\n")

	for _, f := range s.Files {
		switch {
		case f.Err != nil:
			b.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", f.Path, f.Err)))
		case f.BackupID != "":
			b.WriteString(successStyle.Render("✓ "+f.Path) + mutedStyle.Render(" (backup "+f.BackupID[:8]+")"))
		case f.Changed:
			b.WriteString(successStyle.Render("✓ " + f.Path))
		default:
			b.WriteString(mutedStyle.Render("- " + f.Path + " (unchanged)"))
		}

		b.WriteString("\n")
	}

	for _, o := range s.Outcomes {
		if o.Err == nil || o.Kind != apply.OutcomeStale && o.Kind != apply.OutcomeFailed {
			continue
		}

		style := warningStyle
		if o.Kind == apply.OutcomeFailed {
			style = errorStyle
		}

		b.WriteString(style.Render(fmt.Sprintf("%s %s: %v", o.Kind, o.Entry.Location(), o.Err)))
		b.WriteString("\n")
	}

	return b.String()
}

// Diagnostics renders validation findings, errors first.
func Diagnostics(d *diagnostic.Diagnostics) string {
	var b strings.Builder

	for _, list := range []struct {
		items []diagnostic.Diagnostic
		style lipgloss.Style
	}{
		{d.Errors, errorStyle},
		{d.Warnings, warningStyle},
		{d.Infos, mutedStyle},
	} {
		for _, item := range list.items {
			b.WriteString(list.style.Render(item.Severity.String() + " " + item.String()))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// Backups lists backup records, newest first.
func Backups(records []*backup.Record) string {
	if len(records) == 0 {
		return mutedStyle.Render("No backups.") + "\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%d %s", len(records), common.Plural(len(records), "backup"))))
	b.WriteString("\n")

	for _, r := range records {
		fmt.Fprintf(&b, "%s  %s  %s  %s\n",
			valueStyle.Render(r.ID[:8]),
			mutedStyle.Render(r.Timestamp.Local().Format("2006-01-02 15:04:05")),
			r.Source,
			mutedStyle.Render(fmt.Sprintf("%d bytes", r.Size)))
	}

	return b.String()
}

// Gaps lists catalog keys missing from some locale.
func Gaps(gaps []catalog.Gap) string {
	if len(gaps) == 0 {
		return successStyle.Render("Every key is present in every locale.") + "\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%d %s with missing locales", len(gaps), common.Plural(len(gaps), "key"))))
	b.WriteString("\n")

	for _, g := range gaps {
		fmt.Fprintf(&b, "%s %s\n", valueStyle.Render(g.Key), warningStyle.Render("missing "+strings.Join(g.Missing, ", ")))
	}

	return b.String()
}

// Unused lists catalog keys no source file references.
func Unused(keys []string) string {
	if len(keys) == 0 {
		return successStyle.Render("Every key is referenced.") + "\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%d unused %s", len(keys), common.Plural(len(keys), "key"))))
	b.WriteString("\n")

	for _, k := range keys {
		b.WriteString(warningStyle.Render(k))
		b.WriteString("\n")
	}

	return b.String()
}

// Duplicates lists texts of locale that several keys carry.
func Duplicates(locale string, dups []catalog.Duplicate) string {
	if len(dups) == 0 {
		return successStyle.Render("No shared "+locale+" texts.") + "\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%d %s %s shared by several keys", len(dups), locale, common.Plural(len(dups), "text"))))
	b.WriteString("\n")

	for _, d := range dups {
		fmt.Fprintf(&b, "%s %s\n", valueStyle.Render(common.Truncate(d.Text, 40)), mutedStyle.Render(strings.Join(d.Keys, ", ")))
	}

	return b.String()
}
