package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

const taskColumns = `id, tenant_id, title, description, status, priority, due_date, completed_at,
	assigned_to, assigned_by, watchers, customer_id, created_at, updated_at`

// TaskRepository is the secondary adapter for task persistence.
type TaskRepository struct {
	pool *pgxpool.Pool
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

// NewTaskRepository creates a new task repository.
func NewTaskRepository(pool *pgxpool.Pool) ports.TaskRepository {
	return &TaskRepository{pool: pool}
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t                    domain.Task
		status, priority     string
		dueDate, completedAt pgtype.Timestamptz
		assignedTo, customer pgtype.UUID
		watchers             []pgtype.UUID
	)
	err := row.Scan(
		&t.ID, &t.TenantID, &t.Title, &t.Description, &status, &priority, &dueDate, &completedAt,
		&assignedTo, &t.AssignedBy, &watchers, &customer, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Status = domain.TaskStatus(status)
	t.Priority = domain.TaskPriority(priority)
	t.DueDate = fromNullTime(dueDate)
	t.CompletedAt = fromNullTime(completedAt)
	t.AssignedTo = fromNullUUID(assignedTo)
	t.CustomerID = fromNullUUID(customer)
	t.Watchers = fromUUIDArray(watchers)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}

// Create persists a new task.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	q := `
		INSERT INTO tasks (id, tenant_id, title, description, status, priority, due_date, completed_at,
			assigned_to, assigned_by, watchers, customer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + taskColumns

	created, err := scanTask(GetDBTX(ctx, r.pool).QueryRow(ctx, q,
		task.ID, task.TenantID, task.Title, task.Description, string(task.Status), string(task.Priority),
		toNullTime(task.DueDate), toNullTime(task.CompletedAt), toNullUUID(task.AssignedTo), task.AssignedBy,
		toUUIDArray(task.Watchers), toNullUUID(task.CustomerID), task.CreatedAt, task.UpdatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return created, nil
}

// GetByID returns a task of the given tenant.
func (r *TaskRepository) GetByID(ctx context.Context, tenantID, taskID uuid.UUID) (*domain.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE tenant_id = $1 AND id = $2`

	task, err := scanTask(GetDBTX(ctx, r.pool).QueryRow(ctx, q, tenantID, taskID))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// Update writes the mutable fields of a task back.
func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	q := `
		UPDATE tasks SET
			title = $3, description = $4, status = $5, priority = $6, due_date = $7,
			completed_at = $8, assigned_to = $9, watchers = $10, customer_id = $11, updated_at = $12
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + taskColumns

	updated, err := scanTask(GetDBTX(ctx, r.pool).QueryRow(ctx, q,
		task.TenantID, task.ID, task.Title, task.Description, string(task.Status), string(task.Priority),
		toNullTime(task.DueDate), toNullTime(task.CompletedAt), toNullUUID(task.AssignedTo),
		toUUIDArray(task.Watchers), toNullUUID(task.CustomerID), task.UpdatedAt,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return updated, nil
}

// List returns tasks of a tenant, newest first.
func (r *TaskRepository) List(ctx context.Context, filter ports.TaskFilter) ([]*domain.Task, error) {
	where := []string{"tenant_id = $1"}
	args := []any{filter.TenantID}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		where = append(where, fmt.Sprintf("assigned_to = $%d", len(args)))
	}

	args = append(args, filter.Limit, filter.Offset)
	q := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		taskColumns, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}
