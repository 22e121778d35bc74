package commands

import (
	"fmt"

	"taskrush/internal/service"
)

// findTaskByNumber returns the task with the given 1-based display number.
func findTaskByNumber(tasks []service.Task, num int) (service.Task, error) {
	if num < 1 || num > len(tasks) {
		return service.Task{}, fmt.Errorf("task number out of range: %d", num)
	}
	return tasks[num-1], nil
}
