package handler

import (
	"fmt"
	"time"

	"github.com/taskboard/task-api/internal/core/domain"
)

// timeLayout is the legacy wire format for every timestamp: UTC, second
// resolution, no zone suffix.
const timeLayout = "2006-01-02 15:04:05"

// dueDateLayouts are the accepted input formats for dueDate, in the order
// they are tried. The shipped frontend sends either the wire format or the
// value of an HTML datetime-local input.
var dueDateLayouts = []string{
	timeLayout,
	"2006-01-02T15:04",
	time.RFC3339,
	"2006-01-02",
}

func toTaskResponse(t *domain.Task) taskResponse {
	resp := taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		UserID:      t.OwnerID,
		CreatedAt:   t.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:   t.UpdatedAt.UTC().Format(timeLayout),
	}
	if t.DueDate != nil {
		due := t.DueDate.UTC().Format(timeLayout)
		resp.DueDate = &due
	}
	return resp
}

func toTaskResponses(tasks []*domain.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return out
}

// parseDueDate parses an optional dueDate value. Empty means no due date.
func parseDueDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			utc := t.UTC().Truncate(time.Second)
			return &utc, nil
		}
	}
	return nil, fmt.Errorf("unrecognized due date %q", s)
}
