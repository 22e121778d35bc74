package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"taskrush/internal/analytics"
	"taskrush/internal/service"
	"taskrush/internal/testutil"
	"taskrush/internal/timer"
)

func prio(p int) *int { return &p }

func sampleTasks() []service.Task {
	return []service.Task{
		{ID: "1", Title: "Write report", Priority: prio(1), EstimatedMinutes: 25},
		{ID: "2", Title: "Draft\nslides", EstimatedMinutes: 90, IsCompleted: true, ActualMinutes: 75},
		{ID: "3", Title: "  "},
		{ID: "4", Title: "Cafe\u0301", EstimatedMinutes: 1.5},
	}
}

func TestFormatTask(t *testing.T) {
	var buf bytes.Buffer
	for i, task := range sampleTasks() {
		FormatTask(&buf, i+1, task)
	}
	testutil.GoldenString(t, "tasks", buf.String())
}

func TestFormatListSection(t *testing.T) {
	var buf bytes.Buffer
	FormatListHeader(&buf, "a", service.List{Name: "Work"}, true)
	for i, task := range sampleTasks()[:2] {
		FormatTaskIndented(&buf, i+1, task)
	}
	FormatNotes(&buf, "first line\nsecond line\n")
	testutil.GoldenString(t, "list_section", buf.String())
}

func TestFormatListName(t *testing.T) {
	var buf bytes.Buffer
	FormatListName(&buf, "a", service.List{Name: "Work", Color: "#3b82f6"}, true)
	FormatListName(&buf, "b", service.List{Name: "", Color: "#ef4444"}, false)
	assert.Equal(t, "#3b82f6  a) Work [selected]\n#ef4444  b) (untitled)\n", buf.String())
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0m"},
		{25, "25m"},
		{1.5, "1m30s"},
		{60, "1h00m"},
		{95, "1h35m"},
		{0.25, "0m15s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMinutes(tt.in), "FormatMinutes(%v)", tt.in)
	}
}

func TestFormatTimer(t *testing.T) {
	var buf bytes.Buffer
	FormatTimer(&buf, timer.Snapshot{})
	FormatTimer(&buf, timer.Snapshot{
		TaskID: "t1", TaskTitle: "Write report", ExpectedMinutes: 25,
		TotalSeconds: 1500, RemainingSeconds: 750, IsRunning: true,
	})
	FormatTimer(&buf, timer.Snapshot{
		TaskID: "t1", TaskTitle: "Write report", ExpectedMinutes: 25,
		TotalSeconds: 1500, RemainingSeconds: 750,
	})
	testutil.GoldenString(t, "timer", buf.String())
}

func TestFormatCompletion(t *testing.T) {
	var buf bytes.Buffer
	FormatCompletion(&buf, timer.Snapshot{
		TaskID: "t1", TaskTitle: "Write report", ExpectedMinutes: 25,
		TotalSeconds: 1500, RemainingSeconds: 900, Finished: true,
	})
	testutil.GoldenString(t, "completion", buf.String())
}

func TestFormatCompletion_OnTime(t *testing.T) {
	var buf bytes.Buffer
	FormatCompletion(&buf, timer.Snapshot{
		TaskID: "t1", TaskTitle: "Write report", ExpectedMinutes: 25,
		TotalSeconds: 1500, Finished: true,
	})
	assert.NotContains(t, buf.String(), "early")
}

func TestFormatStats(t *testing.T) {
	r := analytics.Report{
		Since: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Days: []analytics.Day{
			{Date: "2026-03-08", Label: "Mar 8", TotalEstimated: 20, TotalActual: 10, FocusPercent: 50, TasksCompleted: 1},
			{Date: "2026-03-10", Label: "Mar 10", TotalEstimated: 40, TotalActual: 60, FocusPercent: 150, TasksCompleted: 2},
			{Date: "2026-03-12", Label: "Mar 12"},
		},
		Summary: analytics.Summary{TotalActual: 70, AvgFocus: 200.0 / 3, TasksCompleted: 3},
	}
	var buf bytes.Buffer
	FormatStats(&buf, r)
	testutil.GoldenString(t, "stats", buf.String())
}

func TestFormatStats_Empty(t *testing.T) {
	var buf bytes.Buffer
	FormatStats(&buf, analytics.Report{Since: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)})
	assert.Equal(t, "Focus insights since 2026-03-01\n\nNo tasks in the last 14 days.\n", buf.String())
}
