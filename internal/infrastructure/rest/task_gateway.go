package rest

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/guildworks/provision-client/internal/core/domain"
	"github.com/guildworks/provision-client/internal/core/ports"
)

// TaskGateway implements ports.TaskGateway over HTTP.
type TaskGateway struct {
	client *Client
}

func NewTaskGateway(client *Client) *TaskGateway {
	return &TaskGateway{client: client}
}

func (g *TaskGateway) ListTasks(ctx context.Context, filter ports.TaskFilter) (*ports.TaskPage, error) {
	query := url.Values{}
	if filter.AssignedTo != "" {
		query.Set("assigned_to", filter.AssignedTo)
	}
	if filter.SettlementID != "" {
		query.Set("settlement_id", filter.SettlementID)
	}
	if filter.Category != "" {
		query.Set("category", string(filter.Category))
	}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}

	var page ports.TaskPage
	if err := g.client.do(ctx, http.MethodGet, "tasks", "/tasks", query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (g *TaskGateway) ListMyTasks(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := g.client.do(ctx, http.MethodGet, "tasks", "/tasks/my", nil, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (g *TaskGateway) CreateTask(ctx context.Context, in ports.CreateTaskInput) (*domain.Task, error) {
	var task domain.Task
	if err := g.client.do(ctx, http.MethodPost, "tasks", "/tasks", nil, in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (g *TaskGateway) UpdateTask(ctx context.Context, id string, in ports.UpdateTaskInput) (*domain.Task, error) {
	var task domain.Task
	if err := g.client.do(ctx, http.MethodPut, "tasks", "/tasks/"+id, nil, in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (g *TaskGateway) DeleteTask(ctx context.Context, id string) error {
	return g.client.do(ctx, http.MethodDelete, "tasks", "/tasks/"+id, nil, nil, nil)
}
