// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"

	"taskrush/internal/analytics"
	"taskrush/internal/service"
	"taskrush/internal/timer"
)

const (
	// ListSeparator is the separator line for list sections.
	ListSeparator = "------------"

	// BarWidth is the width of the focus progress bar.
	BarWidth = 20
)

// FormatTask formats a task line for the selected list.
// Format: "{N:>4}  [x] {TITLE}  ({META})\n"
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %s\n", num, taskLine(task))
}

// FormatTaskIndented formats a task line for a named list section.
func FormatTaskIndented(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "    %4d  %s\n", num, taskLine(task))
}

func taskLine(task service.Task) string {
	check := " "
	if task.IsCompleted {
		check = "x"
	}
	line := fmt.Sprintf("[%s] %s", check, normalizeTitle(task.Title))
	if meta := taskMeta(task); meta != "" {
		line += "  (" + meta + ")"
	}
	return line
}

func taskMeta(task service.Task) string {
	var parts []string
	if task.Priority != nil {
		parts = append(parts, fmt.Sprintf("P%d", *task.Priority))
	}
	if task.EstimatedMinutes > 0 {
		parts = append(parts, FormatMinutes(task.EstimatedMinutes))
	}
	if task.IsCompleted && task.ActualMinutes > 0 {
		parts = append(parts, "took "+FormatMinutes(task.ActualMinutes))
	}
	return strings.Join(parts, ", ")
}

// FormatNotes prints task notes indented under a task line.
func FormatNotes(w io.Writer, notes string) {
	for _, line := range strings.Split(strings.TrimRight(norm.NFC.String(notes), "\n"), "\n") {
		fmt.Fprintf(w, "        %s\n", line)
	}
}

// FormatListHeader formats a list section header.
func FormatListHeader(w io.Writer, letter string, list service.List, selected bool) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, listTitle(letter, list, selected))
	fmt.Fprintln(w, ListSeparator)
}

// FormatListName formats a list line for the lists command.
func FormatListName(w io.Writer, letter string, list service.List, selected bool) {
	fmt.Fprintf(w, "%s  %s\n", list.Color, listTitle(letter, list, selected))
}

func listTitle(letter string, list service.List, selected bool) string {
	title := letter + ") " + normalizeListTitle(list.Name)
	if selected {
		title += " [selected]"
	}
	return title
}

// FormatMinutes renders a minute count, e.g. "25m", "1h05m" or "2m30s".
func FormatMinutes(minutes float64) string {
	seconds := int(math.Round(minutes * 60))
	if seconds%60 != 0 {
		return fmt.Sprintf("%dm%02ds", seconds/60, seconds%60)
	}
	m := seconds / 60
	if m >= 60 {
		return fmt.Sprintf("%dh%02dm", m/60, m%60)
	}
	return fmt.Sprintf("%dm", m)
}

// FormatTimer renders the focus view for a snapshot on one line.
func FormatTimer(w io.Writer, s timer.Snapshot) {
	state := s.State()
	if state == timer.Idle {
		fmt.Fprintln(w, "No focus session.")
		return
	}
	filled := int(math.Round(s.Progress() * BarWidth))
	bar := strings.Repeat("#", filled) + strings.Repeat("-", BarWidth-filled)
	fmt.Fprintf(w, "%s  %s  [%s] %3.0f%%  %s\n",
		timer.Format(s.RemainingSeconds), normalizeTitle(s.TaskTitle), bar, s.Progress()*100, state)
}

// FormatCompletion renders the summary shown when a session finishes.
func FormatCompletion(w io.Writer, s timer.Snapshot) {
	fmt.Fprintln(w, "Mission complete!")
	fmt.Fprintf(w, "  %s\n", normalizeTitle(s.TaskTitle))
	fmt.Fprintf(w, "  Focused: %s of %s\n",
		FormatMinutes(float64(s.ElapsedMinutes())), FormatMinutes(s.ExpectedMinutes))
	if early := s.EarlyMinutes(); early > 0 {
		fmt.Fprintf(w, "  Finished %s early\n", FormatMinutes(early))
	}
}

// FormatStats renders a focus report as a table and a summary.
func FormatStats(w io.Writer, r analytics.Report) {
	fmt.Fprintf(w, "Focus insights since %s\n\n", r.Since.Format("2006-01-02"))
	if len(r.Days) == 0 {
		fmt.Fprintln(w, "No tasks in the last 14 days.")
		return
	}
	fmt.Fprintf(w, "%-8s %8s %8s %6s %5s\n", "DAY", "EST", "ACTUAL", "FOCUS", "DONE")
	for _, d := range r.Days {
		fmt.Fprintf(w, "%-8s %8s %8s %5.0f%% %5d\n",
			d.Label, FormatMinutes(d.TotalEstimated), FormatMinutes(d.TotalActual), d.FocusPercent, d.TasksCompleted)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Focus minutes:   %.0fm\n", math.Round(r.Summary.TotalActual))
	fmt.Fprintf(w, "Average focus:   %.0f%%\n", r.Summary.AvgFocus)
	fmt.Fprintf(w, "Tasks completed: %d\n", r.Summary.TasksCompleted)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
// - Text is NFC-normalized
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return norm.NFC.String(title)
}

// normalizeListTitle normalizes a list title for display.
// Empty or whitespace-only titles become "(untitled)".
func normalizeListTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return norm.NFC.String(title)
}
