package client

import (
	"fmt"

	"github.com/burnsbros/taskdeck/internal/domain"
)

// AssigneeSummary renders a task's assignee list for display: no assignees
// is "Unassigned", one is the name, more is "name +N".
func AssigneeSummary(task domain.Task) string {
	if len(task.Assignees) == 0 {
		return "Unassigned"
	}

	name := task.Assignees[0].User.Name
	if name == "" {
		name = task.Assignees[0].User.Email
	}

	if len(task.Assignees) == 1 {
		return name
	}
	return fmt.Sprintf("%s +%d", name, len(task.Assignees)-1)
}
