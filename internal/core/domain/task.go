package domain

import (
	"errors"
	"time"
)

// TaskStatus is the lifecycle state of a task. The uppercase wire values are
// part of the legacy contract and must not change.
type TaskStatus string

const (
	StatusPending   TaskStatus = "PENDING"
	StatusCompleted TaskStatus = "COMPLETED"
)

var ErrTaskNotFound = errors.New("task not found")

// Task is the core record. Every store access filters by both ID and OwnerID;
// a task id alone never authorizes anything.
type Task struct {
	ID          int64      `bson:"_id"`
	Title       string     `bson:"title"`
	Description string     `bson:"description,omitempty"`
	Status      TaskStatus `bson:"status"`
	DueDate     *time.Time `bson:"due_date,omitempty"`
	OwnerID     int64      `bson:"owner_id"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at"`
}
