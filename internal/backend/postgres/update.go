package postgres

import (
	"fmt"
	"strings"
	"time"

	"taskrush/internal/service"
)

// update accumulates SET clauses with positional arguments.
type update struct {
	sets []string
	args []any
}

func (u *update) set(column string, value any) {
	u.args = append(u.args, value)
	u.sets = append(u.sets, fmt.Sprintf("%s = $%d", column, len(u.args)))
}

// sql returns the statement for table, scoped to id and userID, or "" when
// nothing is set.
func (u *update) sql(table, id, userID, returning string) (string, []any) {
	if len(u.sets) == 0 {
		return "", nil
	}
	args := append(u.args, id, userID)
	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d AND user_id = $%d RETURNING %s",
		table, strings.Join(u.sets, ", "), len(args)-1, len(args), returning)
	return q, args
}

func listUpdate(p service.ListPatch, now time.Time) *update {
	u := &update{}
	if p.Name != nil {
		u.set("name", *p.Name)
	}
	if p.Color != nil {
		u.set("color", *p.Color)
	}
	if p.SortOrder != nil {
		u.set("sort_order", *p.SortOrder)
	}
	if len(u.sets) > 0 {
		u.set("updated_at", now)
	}
	return u
}

func taskUpdate(p service.TaskPatch, now time.Time) *update {
	u := &update{}
	if p.Title != nil {
		u.set("title", *p.Title)
	}
	if p.Notes != nil {
		u.set("notes", *p.Notes)
	}
	if p.ListID != nil {
		u.set("list_id", *p.ListID)
	}
	if p.IsCompleted != nil {
		u.set("is_completed", *p.IsCompleted)
	}
	if p.EstimatedMinutes != nil {
		u.set("estimated_minutes", *p.EstimatedMinutes)
	}
	if p.ActualMinutes != nil {
		u.set("actual_minutes", *p.ActualMinutes)
	}
	if p.Priority.Set {
		u.set("priority", p.Priority.Value)
	}
	if p.SortOrder != nil {
		u.set("sort_order", *p.SortOrder)
	}
	if p.ScheduledDate.Set {
		var v any
		if p.ScheduledDate.Value != nil {
			v = p.ScheduledDate.Value.Format(time.DateOnly)
		}
		u.set("scheduled_date", v)
	}
	if p.CompletedAt.Set {
		u.set("completed_at", p.CompletedAt.Value)
	}
	if len(u.sets) > 0 {
		u.set("updated_at", now)
	}
	return u
}
