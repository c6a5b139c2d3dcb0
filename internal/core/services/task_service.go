package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

// TaskService implements business logic for task management
type TaskService struct {
	taskRepo     ports.TaskRepository
	userRepo     ports.UserRepository
	customerRepo ports.CustomerRepository
	notifier     ports.NotificationService
	logger       *slog.Logger
}

var _ ports.TaskService = (*TaskService)(nil)

// NewTaskService creates a new task service
func NewTaskService(
	taskRepo ports.TaskRepository,
	userRepo ports.UserRepository,
	customerRepo ports.CustomerRepository,
	notifier ports.NotificationService,
	logger *slog.Logger,
) ports.TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		userRepo:     userRepo,
		customerRepo: customerRepo,
		notifier:     notifier,
		logger:       logger.With("component", "tasks"),
	}
}

// CreateTask creates a task in the actor's tenant and notifies the assignee.
func (s *TaskService) CreateTask(ctx context.Context, params ports.CreateTaskParams) (*domain.Task, error) {
	task, err := domain.NewTask(domain.TaskParams{
		TenantID:    params.Actor.TenantID,
		Title:       params.Title,
		Description: params.Description,
		Priority:    params.Priority,
		DueDate:     params.DueDate,
		AssignedTo:  params.AssignedTo,
		AssignedBy:  params.Actor.UserID,
		Watchers:    params.Watchers,
		CustomerID:  params.CustomerID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.checkReferences(ctx, task); err != nil {
		return nil, err
	}

	created, err := s.taskRepo.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyNewTask(ctx, created)
	return created, nil
}

// GetTask returns a task of the actor's tenant.
func (s *TaskService) GetTask(ctx context.Context, actor domain.Identity, taskID uuid.UUID) (*domain.Task, error) {
	return s.taskRepo.GetByID(ctx, actor.TenantID, taskID)
}

// ListTasks lists tasks of the actor's tenant.
func (s *TaskService) ListTasks(ctx context.Context, params ports.ListTasksParams) ([]*domain.Task, error) {
	limit, offset := normalizePage(params.Limit, params.Offset)
	return s.taskRepo.List(ctx, ports.TaskFilter{
		TenantID:   params.Actor.TenantID,
		Status:     params.Status,
		AssignedTo: params.AssignedTo,
		Limit:      limit,
		Offset:     offset,
	})
}

// UpdateTask applies a partial update. The assignee and watchers are told
// about the change; a newly assigned user is told about the assignment only.
func (s *TaskService) UpdateTask(ctx context.Context, params ports.UpdateTaskParams) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, params.Actor.TenantID, params.TaskID)
	if err != nil {
		return nil, err
	}

	if params.Title != nil || params.Description != nil {
		title, description := task.Title, task.Description
		if params.Title != nil {
			title = *params.Title
		}
		if params.Description != nil {
			description = *params.Description
		}
		if err := task.Rename(title, description); err != nil {
			return nil, err
		}
	}
	if params.Status != nil {
		if err := task.SetStatus(*params.Status); err != nil {
			return nil, err
		}
	}
	if params.Priority != nil {
		if err := task.SetPriority(*params.Priority); err != nil {
			return nil, err
		}
	}
	if params.DueDate != nil {
		task.DueDate = params.DueDate
	}

	reassigned := false
	switch {
	case params.ClearAssignee:
		reassigned = task.Assign(nil)
	case params.AssignedTo != nil:
		reassigned = task.Assign(params.AssignedTo)
	}
	if params.SetWatchers {
		task.SetWatchers(params.Watchers)
	}

	if err := s.checkReferences(ctx, task); err != nil {
		return nil, err
	}

	updated, err := s.taskRepo.Update(ctx, task)
	if err != nil {
		return nil, err
	}

	if reassigned && updated.AssignedTo != nil {
		s.notifier.NotifyTaskReassigned(ctx, updated, params.Actor.UserID)
	} else {
		s.notifier.NotifyTaskUpdate(ctx, updated, params.Actor.UserID)
	}
	return updated, nil
}

// checkReferences makes sure every user and customer a task points at
// belongs to the task's tenant. Notifications are addressed by user id, so
// a foreign id here would leak task details to another tenant.
func (s *TaskService) checkReferences(ctx context.Context, task *domain.Task) error {
	seen := make(map[uuid.UUID]struct{}, len(task.Watchers)+1)
	check := func(userID uuid.UUID) error {
		if _, ok := seen[userID]; ok {
			return nil
		}
		seen[userID] = struct{}{}
		_, err := s.userRepo.GetByID(ctx, task.TenantID, userID)
		return err
	}

	if task.AssignedTo != nil {
		if err := check(*task.AssignedTo); err != nil {
			return err
		}
	}
	for _, watcher := range task.Watchers {
		if err := check(watcher); err != nil {
			return err
		}
	}
	if task.CustomerID != nil {
		if _, err := s.customerRepo.GetByID(ctx, task.TenantID, *task.CustomerID); err != nil {
			return err
		}
	}
	return nil
}
