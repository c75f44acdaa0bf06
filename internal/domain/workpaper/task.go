package workpaper

import (
	"time"

	"github.com/fdccore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TaskType classifies client-visible tasks
type TaskType string

const (
	TaskTypeQueries         TaskType = "queries"
	TaskTypeDocumentRequest TaskType = "document_request"
	TaskTypeReviewRequired  TaskType = "review_required"
)

// String returns the string representation of TaskType
func (t TaskType) String() string {
	return string(t)
}

// TaskStatus is the lifecycle state of a task
type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "open"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// String returns the string representation of TaskStatus
func (s TaskStatus) String() string {
	return string(s)
}

// Task is a client-visible notification row. The "queries" task is fully
// derived: its existence and count are a pure function of the job's open
// queries and it is recomputed from scratch on every query transition.
type Task struct {
	shared.BaseEntity
	ClientID    uuid.UUID  `json:"client_id"`
	JobID       uuid.UUID  `json:"job_id"`
	Type        TaskType   `json:"task_type"`
	Status      TaskStatus `json:"status"`
	Title       string     `json:"title"`
	OpenCount   int        `json:"open_count"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewQueriesTask creates the derived open-queries task for a job
func NewQueriesTask(clientID, jobID uuid.UUID, openCount int) *Task {
	return &Task{
		BaseEntity: shared.NewBaseEntity(),
		ClientID:   clientID,
		JobID:      jobID,
		Type:       TaskTypeQueries,
		Status:     TaskStatusOpen,
		Title:      "You have queries to answer",
		OpenCount:  openCount,
	}
}

// SetOpenCount refreshes the open-query count and reopens a completed task
func (t *Task) SetOpenCount(count int) {
	t.OpenCount = count
	if t.Status == TaskStatusCompleted {
		t.Status = TaskStatusOpen
		t.CompletedAt = nil
	}
	t.Touch()
}

// Complete marks the task done with a timestamp. Idempotent.
func (t *Task) Complete() {
	if t.Status == TaskStatusCompleted {
		return
	}
	now := time.Now()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
	t.OpenCount = 0
	t.UpdatedAt = now
}
