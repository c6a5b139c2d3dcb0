package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
)

const (
	MaxTaskTitleLength       = 100
	MaxTaskDescriptionLength = 1000
)

// TaskStatus represents the workflow state of a task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "Todo"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusReview     TaskStatus = "Review"
	TaskStatusCompleted  TaskStatus = "Completed"
	TaskStatusCancelled  TaskStatus = "Cancelled"
)

// IsValid reports whether s is a known status.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// TaskPriority represents the urgency of a task.
type TaskPriority string

const (
	TaskPriorityLow      TaskPriority = "Low"
	TaskPriorityMedium   TaskPriority = "Medium"
	TaskPriorityHigh     TaskPriority = "High"
	TaskPriorityCritical TaskPriority = "Critical"
)

// IsValid reports whether p is a known priority.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityCritical:
		return true
	}
	return false
}

// Task is a unit of work inside a tenant.
type Task struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	DueDate     *time.Time
	CompletedAt *time.Time
	AssignedTo  *uuid.UUID
	AssignedBy  uuid.UUID
	Watchers    []uuid.UUID
	CustomerID  *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskParams holds the input for creating a task.
type TaskParams struct {
	TenantID    uuid.UUID
	Title       string
	Description string
	Priority    TaskPriority
	DueDate     *time.Time
	AssignedTo  *uuid.UUID
	AssignedBy  uuid.UUID
	Watchers    []uuid.UUID
	CustomerID  *uuid.UUID
}

// NewTask is a factory function to create a valid new task.
func NewTask(params TaskParams) (*Task, error) {
	title := strings.TrimSpace(params.Title)
	if err := validateTaskText(title, params.Description); err != nil {
		return nil, err
	}
	if params.AssignedBy == uuid.Nil {
		return nil, apperrors.ErrAssignerRequired
	}

	priority := params.Priority
	if priority == "" {
		priority = TaskPriorityMedium
	}
	if !priority.IsValid() {
		return nil, apperrors.ErrInvalidTaskPriority
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		TenantID:    params.TenantID,
		Title:       title,
		Description: params.Description,
		Status:      TaskStatusTodo,
		Priority:    priority,
		DueDate:     params.DueDate,
		AssignedTo:  params.AssignedTo,
		AssignedBy:  params.AssignedBy,
		CustomerID:  params.CustomerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	task.SetWatchers(params.Watchers)
	return task, nil
}

func validateTaskText(title, description string) error {
	if title == "" {
		return apperrors.ErrTitleRequired
	}
	if len(title) > MaxTaskTitleLength {
		return apperrors.ErrTitleTooLong
	}
	if len(description) > MaxTaskDescriptionLength {
		return apperrors.ErrDescriptionTooLong
	}
	return nil
}

// Rename changes title and description.
func (t *Task) Rename(title, description string) error {
	title = strings.TrimSpace(title)
	if err := validateTaskText(title, description); err != nil {
		return err
	}
	t.Title = title
	t.Description = description
	t.touch()
	return nil
}

// SetStatus moves the task to a new status. CompletedAt is stamped the first
// time the task becomes Completed and cleared when it leaves that state.
func (t *Task) SetStatus(status TaskStatus) error {
	if !status.IsValid() {
		return apperrors.ErrInvalidTaskStatus
	}
	if status == t.Status {
		return nil
	}

	t.Status = status
	if status == TaskStatusCompleted {
		if t.CompletedAt == nil {
			now := time.Now().UTC()
			t.CompletedAt = &now
		}
	} else {
		t.CompletedAt = nil
	}
	t.touch()
	return nil
}

// SetPriority changes the task priority.
func (t *Task) SetPriority(priority TaskPriority) error {
	if !priority.IsValid() {
		return apperrors.ErrInvalidTaskPriority
	}
	t.Priority = priority
	t.touch()
	return nil
}

// Assign sets or clears the assignee. It reports whether the assignee changed.
func (t *Task) Assign(assignee *uuid.UUID) bool {
	if sameAssignee(t.AssignedTo, assignee) {
		return false
	}
	t.AssignedTo = assignee
	t.touch()
	return true
}

// SetWatchers replaces the watcher list, dropping nil and duplicate ids.
func (t *Task) SetWatchers(watchers []uuid.UUID) {
	seen := make(map[uuid.UUID]struct{}, len(watchers))
	out := make([]uuid.UUID, 0, len(watchers))
	for _, w := range watchers {
		if w == uuid.Nil {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	t.Watchers = out
	t.touch()
}

// IsAssignedTo checks if the task is assigned to the given user.
func (t *Task) IsAssignedTo(userID uuid.UUID) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

// IsOverdue reports whether the task is past its due date and still open.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == TaskStatusCompleted || t.Status == TaskStatusCancelled {
		return false
	}
	return t.DueDate.Before(now)
}

func (t *Task) touch() {
	t.UpdatedAt = time.Now().UTC()
}

func sameAssignee(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
