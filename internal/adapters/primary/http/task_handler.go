package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/skycrm-backend/internal/adapters/primary/validation"
	"github.com/lorrc/skycrm-backend/internal/core/domain"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
)

// TaskHandler handles HTTP requests for tasks
type TaskHandler struct {
	taskService  ports.TaskService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService ports.TaskService, errorHandler *ErrorHandler, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskService:  taskService,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "task"),
	}
}

// RegisterRoutes sets up the routing for all task endpoints.
func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListTasks)
	r.Post("/", h.HandleCreateTask)
	r.Get("/{taskID}", h.HandleGetTask)
	r.Patch("/{taskID}", h.HandleUpdateTask)
}

// --- Request DTOs ---

// CreateTaskRequest defines the expected JSON body for creating a task
type CreateTaskRequest struct {
	Title       string   `json:"title" validate:"notblank,max=100"`
	Description string   `json:"description" validate:"max=1000"`
	Priority    string   `json:"priority" validate:"omitempty,oneof=Low Medium High Critical"`
	DueDate     *string  `json:"dueDate"`
	AssignedTo  *string  `json:"assignedTo"`
	Watchers    []string `json:"watchers"`
	CustomerID  *string  `json:"customerId"`
}

// UpdateTaskRequest carries a partial update. Absent fields are unchanged;
// an empty assignedTo clears the assignee.
type UpdateTaskRequest struct {
	Title       *string   `json:"title" validate:"omitempty,notblank,max=100"`
	Description *string   `json:"description" validate:"omitempty,max=1000"`
	Status      *string   `json:"status" validate:"omitempty,oneof=Todo 'In Progress' Review Completed Cancelled"`
	Priority    *string   `json:"priority" validate:"omitempty,oneof=Low Medium High Critical"`
	DueDate     *string   `json:"dueDate"`
	AssignedTo  *string   `json:"assignedTo"`
	Watchers    *[]string `json:"watchers"`
}

func toTaskDTOs(tasks []*domain.Task) []domain.TaskSnapshot {
	out := make([]domain.TaskSnapshot, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, domain.NewTaskSnapshot(t))
	}
	return out
}

// --- Handlers ---

// HandleListTasks handles GET /tasks
func (h *TaskHandler) HandleListTasks(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.errorHandler)
	if !ok {
		return
	}

	pagination := validation.ParsePagination(r, maxItemsPerPage)

	assignedTo, err := validation.ParseUUIDQueryParam(r, "assignedTo")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.ListTasksParams{
		Actor:      identity,
		AssignedTo: assignedTo,
		Limit:      pagination.Limit + 1,
		Offset:     pagination.Offset,
	}
	if status := validation.ParseStringQueryParam(r, "status"); status != nil {
		s := domain.TaskStatus(*status)
		params.Status = &s
	}

	tasks, err := h.taskService.ListTasks(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WritePaginatedSimple(w, toTaskDTOs(tasks), pagination.Limit, pagination.Offset)
}

// HandleCreateTask handles POST /tasks
func (h *TaskHandler) HandleCreateTask(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.errorHandler)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[CreateTaskRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.CreateTaskParams{
		Actor:       identity,
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.TaskPriority(req.Priority),
	}
	if params.DueDate, err = parseOptionalDate("dueDate", req.DueDate); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if params.AssignedTo, err = parseOptionalUUID("assignedTo", req.AssignedTo); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if params.CustomerID, err = parseOptionalUUID("customerId", req.CustomerID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if params.Watchers, err = parseUUIDs("watchers", req.Watchers); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "task created", "task_id", task.ID)
	WriteCreated(w, domain.NewTaskSnapshot(task))
}

// HandleGetTask handles GET /tasks/{taskID}
func (h *TaskHandler) HandleGetTask(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.errorHandler)
	if !ok {
		return
	}

	taskID, err := pathUUID(r, "taskID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	task, err := h.taskService.GetTask(r.Context(), identity, taskID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, domain.NewTaskSnapshot(task))
}

// HandleUpdateTask handles PATCH /tasks/{taskID}
func (h *TaskHandler) HandleUpdateTask(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.errorHandler)
	if !ok {
		return
	}

	taskID, err := pathUUID(r, "taskID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdateTaskRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.UpdateTaskParams{
		Actor:       identity,
		TaskID:      taskID,
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		s := domain.TaskStatus(*req.Status)
		params.Status = &s
	}
	if req.Priority != nil {
		p := domain.TaskPriority(*req.Priority)
		params.Priority = &p
	}
	if params.DueDate, err = parseOptionalDate("dueDate", req.DueDate); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if req.AssignedTo != nil {
		if *req.AssignedTo == "" {
			params.ClearAssignee = true
		} else if params.AssignedTo, err = parseOptionalUUID("assignedTo", req.AssignedTo); err != nil {
			h.errorHandler.Handle(w, r, err)
			return
		}
	}
	if req.Watchers != nil {
		if params.Watchers, err = parseUUIDs("watchers", *req.Watchers); err != nil {
			h.errorHandler.Handle(w, r, err)
			return
		}
		params.SetWatchers = true
	}

	task, err := h.taskService.UpdateTask(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "task updated", "task_id", task.ID)
	WriteJSON(w, http.StatusOK, domain.NewTaskSnapshot(task))
}
