// Package analytics computes focus statistics from task history.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"taskrush/internal/service"
)

// WindowDays is the number of calendar days covered by a report, today included.
const WindowDays = 14

// MaxFocusPercent caps a day's focus percentage.
const MaxFocusPercent = 150

// Day is one row of the report.
type Day struct {
	Date           string // YYYY-MM-DD, UTC
	Label          string // e.g. "Mar 14"
	TotalEstimated float64
	TotalActual    float64
	FocusPercent   float64
	TasksCompleted int
}

// Summary aggregates the rows of a report.
type Summary struct {
	TotalActual    float64
	AvgFocus       float64
	TasksCompleted int
}

// Report is the focus statistics for a window of days.
type Report struct {
	Since   time.Time
	Days    []Day
	Summary Summary
}

// TaskSource fetches the tasks created at or after a point in time.
type TaskSource interface {
	ListTasksSince(ctx context.Context, since time.Time) ([]service.Task, error)
}

// WindowStart returns midnight UTC of the first day of the window ending at now.
func WindowStart(now time.Time) time.Time {
	y, m, d := now.UTC().AddDate(0, 0, -(WindowDays - 1)).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Load fetches the window's tasks from src and computes the report.
func Load(ctx context.Context, src TaskSource, now time.Time) (Report, error) {
	since := WindowStart(now)
	tasks, err := src.ListTasksSince(ctx, since)
	if err != nil {
		return Report{}, fmt.Errorf("load tasks since %s: %w", since.Format(time.DateOnly), err)
	}
	r := Compute(tasks)
	r.Since = since
	return r, nil
}

// Compute buckets tasks by the day they were completed, or created when not
// completed. Only completed tasks add minutes and counts, so open tasks
// yield empty rows for their creation day.
func Compute(tasks []service.Task) Report {
	byDate := make(map[string]*Day)
	for _, t := range tasks {
		at := t.CreatedAt
		if t.CompletedAt != nil {
			at = *t.CompletedAt
		}
		at = at.UTC()
		key := at.Format(time.DateOnly)
		row, ok := byDate[key]
		if !ok {
			row = &Day{Date: key, Label: at.Format("Jan 2")}
			byDate[key] = row
		}
		if t.IsCompleted {
			row.TasksCompleted++
			row.TotalEstimated += t.EstimatedMinutes
			row.TotalActual += t.ActualMinutes
		}
	}

	var r Report
	for _, row := range byDate {
		row.FocusPercent = FocusPercent(row.TotalActual, row.TotalEstimated)
		r.Days = append(r.Days, *row)
	}
	sort.Slice(r.Days, func(i, j int) bool { return r.Days[i].Date < r.Days[j].Date })

	var focusSum float64
	for _, d := range r.Days {
		r.Summary.TotalActual += d.TotalActual
		r.Summary.TasksCompleted += d.TasksCompleted
		focusSum += d.FocusPercent
	}
	if len(r.Days) > 0 {
		r.Summary.AvgFocus = focusSum / float64(len(r.Days))
	}
	return r
}

// FocusPercent is actual over estimated as a percentage, capped at
// MaxFocusPercent. Zero when nothing was estimated.
func FocusPercent(actual, estimated float64) float64 {
	if estimated <= 0 {
		return 0
	}
	return min(MaxFocusPercent, actual/estimated*100)
}
