package ports

import (
	"context"
	"time"

	"github.com/guildworks/provision-client/internal/core/domain"
)

// TaskFilter carries the query parameters for listing tasks.
type TaskFilter struct {
	AssignedTo   string
	SettlementID string
	Category     domain.Category
	Status       domain.TaskStatus
	Page         int // 1-based
	Limit        int
}

// Pagination mirrors the backend's page envelope.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// TaskPage is one page of a filtered task listing.
type TaskPage struct {
	Data       []domain.Task `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

// CreateTaskInput carries the fields for creating a task. Status and
// quantity_completed are owned by the backend at creation (pending, 0).
type CreateTaskInput struct {
	SettlementID      string     `json:"settlement_id" validate:"required"`
	ResourceID        string     `json:"resource_id" validate:"required"`
	AssignedTo        string     `json:"assigned_to" validate:"required"`
	QuantityRequested int        `json:"quantity_requested" validate:"gt=0"`
	Deadline          *time.Time `json:"deadline,omitempty"`
	Notes             string     `json:"notes,omitempty"`
}

// UpdateTaskInput is a partial update of one task.
type UpdateTaskInput struct {
	AssignedTo        *string            `json:"assigned_to,omitempty"`
	QuantityRequested *int               `json:"quantity_requested,omitempty" validate:"omitempty,gt=0"`
	QuantityCompleted *int               `json:"quantity_completed,omitempty" validate:"omitempty,gte=0"`
	Status            *domain.TaskStatus `json:"status,omitempty"`
	Deadline          *time.Time         `json:"deadline,omitempty"`
	Notes             *string            `json:"notes,omitempty"`
}

// TaskGateway is the task slice of the REST boundary.
type TaskGateway interface {
	ListTasks(ctx context.Context, filter TaskFilter) (*TaskPage, error)
	// ListMyTasks returns the tasks assigned to the authenticated account.
	ListMyTasks(ctx context.Context) ([]domain.Task, error)
	CreateTask(ctx context.Context, in CreateTaskInput) (*domain.Task, error)
	UpdateTask(ctx context.Context, id string, in UpdateTaskInput) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
}
