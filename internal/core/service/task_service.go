package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/guildworks/provision-client/internal/cache"
	"github.com/guildworks/provision-client/internal/core/domain"
	"github.com/guildworks/provision-client/internal/core/ports"
)

const kindTask = "task"

// TaskService manages procurement tasks: coordinator-side assignment and
// cancellation, contributor-side progress reports, and the status
// derivation that ties them together.
type TaskService struct {
	gateway    ports.TaskGateway
	sessions   *SessionService
	gate       *AccessGate
	serializer *MutationSerializer
	store      *cache.Store
	log        zerolog.Logger
}

func NewTaskService(gateway ports.TaskGateway, sessions *SessionService, gate *AccessGate, serializer *MutationSerializer, store *cache.Store, log zerolog.Logger) *TaskService {
	return &TaskService{
		gateway:    gateway,
		sessions:   sessions,
		gate:       gate,
		serializer: serializer,
		store:      store,
		log:        log.With().Str("component", "tasks").Logger(),
	}
}

func taskListKey(f ports.TaskFilter) cache.Key {
	return cache.NewKey(cache.KindTasks,
		f.AssignedTo, f.SettlementID, string(f.Category), string(f.Status),
		strconv.Itoa(f.Page), strconv.Itoa(f.Limit))
}

func myTasksKey(accountID string) cache.Key {
	return cache.NewKey(cache.KindMyTasks, accountID)
}

// taskInvalidation marks stale every task list that could include the
// mutated task. Filtered pages cannot be scoped more narrowly from the
// client side, so all task list keys go stale together.
func taskInvalidation() Invalidation {
	return Invalidation{
		Where: func(k cache.Key) bool {
			return k.Kind == cache.KindTasks || k.Kind == cache.KindMyTasks
		},
	}
}

// List returns one filtered page of tasks through the read-model cache.
func (t *TaskService) List(ctx context.Context, filter ports.TaskFilter) (*ports.TaskPage, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrValidationRejected, filter.Category)
	}
	return cache.GetAs(ctx, t.store, taskListKey(filter), func(ctx context.Context) (*ports.TaskPage, error) {
		return t.gateway.ListTasks(ctx, filter)
	})
}

// Mine returns the tasks assigned to the authenticated account.
func (t *TaskService) Mine(ctx context.Context) ([]domain.Task, error) {
	sess := t.sessions.Current()
	if sess == nil {
		return nil, domain.ErrNoSession
	}
	return cache.GetAs(ctx, t.store, myTasksKey(sess.Account.ID), func(ctx context.Context) ([]domain.Task, error) {
		return t.gateway.ListMyTasks(ctx)
	})
}

// Create assigns new work. Coordinator only; the backend sets the initial
// status (pending) and quantity_completed (0).
func (t *TaskService) Create(ctx context.Context, in ports.CreateTaskInput) (*domain.Task, error) {
	if err := t.gate.Require(t.sessions.Current(), domain.CapAssignTasks); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var created *domain.Task
	err := t.serializer.Submit(ctx, kindTask, "new:"+in.SettlementID+":"+in.ResourceID+":"+in.AssignedTo, func(ctx context.Context) error {
		task, err := t.gateway.CreateTask(ctx, in)
		if err != nil {
			return err
		}
		created = task
		return nil
	}, taskInvalidation())
	if err != nil {
		return nil, err
	}

	t.log.Info().
		Str("task_id", created.ID).
		Str("assigned_to", created.AssignedTo).
		Int("quantity_requested", created.QuantityRequested).
		Msg("task created")
	return created, nil
}

// ReportProgress records a contributor's progress against a task and
// applies the status derivation: reaching the requested quantity completes
// the task, a first nonzero report moves a pending task to in_progress, and
// a report that does both resolves to completed. Terminal tasks reject
// quantity edits outright.
func (t *TaskService) ReportProgress(ctx context.Context, task domain.Task, quantityCompleted int) (*domain.Task, error) {
	sess := t.sessions.Current()
	if err := t.gate.Require(sess, domain.CapReportProgress); err != nil {
		return nil, err
	}
	// Contributors only report on their own assignments.
	if sess.Account.Role == domain.RoleContributor && task.AssignedTo != sess.Account.ID {
		return nil, domain.ErrAccessDenied
	}
	if task.Status.Terminal() {
		return nil, fmt.Errorf("task %s: %w", task.ID, domain.ErrTaskTerminal)
	}
	if quantityCompleted < 0 {
		return nil, fmt.Errorf("%w: quantity_completed must be non-negative", domain.ErrValidationRejected)
	}

	in := ports.UpdateTaskInput{QuantityCompleted: &quantityCompleted}
	if derived := domain.DeriveStatus(task.Status, task.QuantityRequested, quantityCompleted); derived != task.Status {
		in.Status = &derived
	}
	return t.update(ctx, task.ID, in, "progress reported")
}

// Update applies a coordinator edit (reassignment, quantity, deadline,
// notes). Status is owned by the deriver and the explicit Cancel action,
// never set directly here.
func (t *TaskService) Update(ctx context.Context, id string, in ports.UpdateTaskInput) (*domain.Task, error) {
	if err := t.gate.Require(t.sessions.Current(), domain.CapAssignTasks); err != nil {
		return nil, err
	}
	if in.Status != nil {
		return nil, fmt.Errorf("%w: status cannot be set directly", domain.ErrValidationRejected)
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	return t.update(ctx, id, in, "task updated")
}

// Cancel transitions a pre-terminal task to cancelled. Explicit,
// coordinator-only, and sticky: no later quantity report re-derives a
// status for a cancelled task.
func (t *TaskService) Cancel(ctx context.Context, task domain.Task) (*domain.Task, error) {
	if err := t.gate.Require(t.sessions.Current(), domain.CapCancelTasks); err != nil {
		return nil, err
	}
	if !task.Status.CanCancel() {
		return nil, fmt.Errorf("task %s: %w", task.ID, domain.ErrTaskTerminal)
	}
	cancelled := domain.StatusCancelled
	return t.update(ctx, task.ID, ports.UpdateTaskInput{Status: &cancelled}, "task cancelled")
}

// Delete removes a task. Coordinator only.
func (t *TaskService) Delete(ctx context.Context, id string) error {
	if err := t.gate.Require(t.sessions.Current(), domain.CapDeleteTasks); err != nil {
		return err
	}
	err := t.serializer.Submit(ctx, kindTask, id, func(ctx context.Context) error {
		return t.gateway.DeleteTask(ctx, id)
	}, taskInvalidation())
	if err != nil {
		return err
	}
	t.log.Info().Str("task_id", id).Msg("task deleted")
	return nil
}

func (t *TaskService) update(ctx context.Context, id string, in ports.UpdateTaskInput, logMsg string) (*domain.Task, error) {
	var updated *domain.Task
	err := t.serializer.Submit(ctx, kindTask, id, func(ctx context.Context) error {
		task, err := t.gateway.UpdateTask(ctx, id, in)
		if err != nil {
			return err
		}
		updated = task
		return nil
	}, taskInvalidation())
	if err != nil {
		return nil, err
	}
	t.log.Info().Str("task_id", id).Str("status", string(updated.Status)).Msg(logMsg)
	return updated, nil
}
