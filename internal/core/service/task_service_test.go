package service

import (
	"context"
	"errors"
	"testing"

	"github.com/guildworks/provision-client/internal/cache"
	"github.com/guildworks/provision-client/internal/core/domain"
	"github.com/guildworks/provision-client/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub gateway
// ---------------------------------------------------------------------------

type stubTaskGateway struct {
	tasks map[string]domain.Task

	listCalls   int
	myCalls     int
	updateErr   error
	lastUpdate  *ports.UpdateTaskInput
	lastCreated *ports.CreateTaskInput
	deleted     []string
}

func newStubTaskGateway() *stubTaskGateway {
	return &stubTaskGateway{tasks: make(map[string]domain.Task)}
}

func (g *stubTaskGateway) ListTasks(_ context.Context, _ ports.TaskFilter) (*ports.TaskPage, error) {
	g.listCalls++
	page := &ports.TaskPage{Pagination: ports.Pagination{Page: 1, Limit: 20}}
	for _, task := range g.tasks {
		page.Data = append(page.Data, task)
	}
	page.Pagination.Total = len(page.Data)
	page.Pagination.TotalPages = 1
	return page, nil
}

func (g *stubTaskGateway) ListMyTasks(context.Context) ([]domain.Task, error) {
	g.myCalls++
	var tasks []domain.Task
	for _, task := range g.tasks {
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (g *stubTaskGateway) CreateTask(_ context.Context, in ports.CreateTaskInput) (*domain.Task, error) {
	g.lastCreated = &in
	task := domain.Task{
		ID:                "task_new",
		SettlementID:      in.SettlementID,
		ResourceID:        in.ResourceID,
		AssignedTo:        in.AssignedTo,
		QuantityRequested: in.QuantityRequested,
		Status:            domain.StatusPending,
	}
	g.tasks[task.ID] = task
	return &task, nil
}

func (g *stubTaskGateway) UpdateTask(_ context.Context, id string, in ports.UpdateTaskInput) (*domain.Task, error) {
	g.lastUpdate = &in
	if g.updateErr != nil {
		return nil, g.updateErr
	}
	task, ok := g.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if in.AssignedTo != nil {
		task.AssignedTo = *in.AssignedTo
	}
	if in.QuantityRequested != nil {
		task.QuantityRequested = *in.QuantityRequested
	}
	if in.QuantityCompleted != nil {
		task.QuantityCompleted = *in.QuantityCompleted
	}
	if in.Status != nil {
		task.Status = *in.Status
	}
	if in.Notes != nil {
		task.Notes = *in.Notes
	}
	g.tasks[id] = task
	clone := task
	return &clone, nil
}

func (g *stubTaskGateway) DeleteTask(_ context.Context, id string) error {
	g.deleted = append(g.deleted, id)
	delete(g.tasks, id)
	return nil
}

func newTaskFixture(sess *Session) (*TaskService, *stubTaskGateway, *cache.Store) {
	gw := newStubTaskGateway()
	store := cache.New(discardLogger)
	sessions := newTestSessions(store, sess)
	gate := NewAccessGate(discardLogger)
	serializer := NewMutationSerializer(store, discardLogger)
	svc := NewTaskService(gw, sessions, gate, serializer, store, discardLogger)
	return svc, gw, store
}

// ---------------------------------------------------------------------------
// Creation
// ---------------------------------------------------------------------------

func TestTasks_CreateRequiresCoordinator(t *testing.T) {
	svc, gw, _ := newTaskFixture(contributorSession("acc_contributor"))

	_, err := svc.Create(context.Background(), sampleCreateTaskInput())
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("want ErrAccessDenied, got %v", err)
	}
	if gw.lastCreated != nil {
		t.Error("denied create must not reach the gateway")
	}
}

func TestTasks_CreateValidatesInput(t *testing.T) {
	svc, gw, _ := newTaskFixture(coordinatorSession())

	in := sampleCreateTaskInput()
	in.QuantityRequested = 0
	_, err := svc.Create(context.Background(), in)
	if !errors.Is(err, domain.ErrValidationRejected) {
		t.Fatalf("want ErrValidationRejected, got %v", err)
	}
	if gw.lastCreated != nil {
		t.Error("invalid create must not reach the gateway")
	}
}

func TestTasks_CreateStartsPending(t *testing.T) {
	svc, _, _ := newTaskFixture(coordinatorSession())

	task, err := svc.Create(context.Background(), sampleCreateTaskInput())
	if err != nil {
		t.Fatal(err)
	}
	if task.Status != domain.StatusPending {
		t.Errorf("new task status: want pending, got %s", task.Status)
	}
	if task.QuantityCompleted != 0 {
		t.Errorf("new task quantity_completed: want 0, got %d", task.QuantityCompleted)
	}
}

// ---------------------------------------------------------------------------
// Progress reports and derivation
// ---------------------------------------------------------------------------

func TestTasks_ReportProgressDerivesInProgressThenCompleted(t *testing.T) {
	svc, gw, _ := newTaskFixture(contributorSession("acc_contributor"))
	gw.tasks["task_1"] = sampleTask(domain.StatusPending, 100, 0)

	first, err := svc.ReportProgress(context.Background(), gw.tasks["task_1"], 40)
	if err != nil {
		t.Fatalf("first report: %v", err)
	}
	if first.Status != domain.StatusInProgress {
		t.Fatalf("after 40/100: want in_progress, got %s", first.Status)
	}

	second, err := svc.ReportProgress(context.Background(), *first, 100)
	if err != nil {
		t.Fatalf("second report: %v", err)
	}
	if second.Status != domain.StatusCompleted {
		t.Fatalf("after 100/100: want completed, got %s", second.Status)
	}
}

func TestTasks_ReportProgressFirstReportReachingTargetCompletes(t *testing.T) {
	svc, gw, _ := newTaskFixture(contributorSession("acc_contributor"))
	gw.tasks["task_1"] = sampleTask(domain.StatusPending, 500, 0)

	updated, err := svc.ReportProgress(context.Background(), gw.tasks["task_1"], 500)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != domain.StatusCompleted {
		t.Errorf("completion wins over in-progress: want completed, got %s", updated.Status)
	}
}

func TestTasks_ReportProgressOverDeliveryCompletes(t *testing.T) {
	svc, gw, _ := newTaskFixture(contributorSession("acc_contributor"))
	gw.tasks["task_1"] = sampleTask(domain.StatusInProgress, 100, 60)

	updated, err := svc.ReportProgress(context.Background(), gw.tasks["task_1"], 130)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != domain.StatusCompleted {
		t.Errorf("over-delivery: want completed, got %s", updated.Status)
	}
	if updated.QuantityCompleted != 130 {
		t.Errorf("over-delivery is not capped, got %d", updated.QuantityCompleted)
	}
}

func TestTasks_ReportProgressOnTerminalTaskRejected(t *testing.T) {
	svc, gw, _ := newTaskFixture(contributorSession("acc_contributor"))

	for _, status := range []domain.TaskStatus{domain.StatusCompleted, domain.StatusCancelled} {
		gw.lastUpdate = nil
		task := sampleTask(status, 100, 100)
		_, err := svc.ReportProgress(context.Background(), task, 120)
		if !errors.Is(err, domain.ErrTaskTerminal) {
			t.Errorf("status %s: want ErrTaskTerminal, got %v", status, err)
		}
		if gw.lastUpdate != nil {
			t.Errorf("status %s: terminal task edit must not reach the gateway", status)
		}
	}
}

func TestTasks_ContributorCannotReportOnForeignTask(t *testing.T) {
	svc, gw, _ := newTaskFixture(contributorSession("acc_other"))
	task := sampleTask(domain.StatusPending, 100, 0) // assigned to acc_contributor

	_, err := svc.ReportProgress(context.Background(), task, 10)
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("want ErrAccessDenied, got %v", err)
	}
	if gw.lastUpdate != nil {
		t.Error("foreign report must not reach the gateway")
	}
}

func TestTasks_ReportProgressNegativeRejected(t *testing.T) {
	svc, _, _ := newTaskFixture(contributorSession("acc_contributor"))
	task := sampleTask(domain.StatusPending, 100, 0)

	_, err := svc.ReportProgress(context.Background(), task, -1)
	if !errors.Is(err, domain.ErrValidationRejected) {
		t.Errorf("want ErrValidationRejected, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Cancellation
// ---------------------------------------------------------------------------

func TestTasks_CancelFromPreTerminalStates(t *testing.T) {
	for _, status := range []domain.TaskStatus{domain.StatusPending, domain.StatusInProgress} {
		svc, gw, _ := newTaskFixture(coordinatorSession())
		gw.tasks["task_1"] = sampleTask(status, 100, 10)

		updated, err := svc.Cancel(context.Background(), gw.tasks["task_1"])
		if err != nil {
			t.Fatalf("cancel from %s: %v", status, err)
		}
		if updated.Status != domain.StatusCancelled {
			t.Errorf("cancel from %s: got %s", status, updated.Status)
		}
	}
}

func TestTasks_CancelTerminalRejected(t *testing.T) {
	svc, _, _ := newTaskFixture(coordinatorSession())

	for _, status := range []domain.TaskStatus{domain.StatusCompleted, domain.StatusCancelled} {
		task := sampleTask(status, 100, 100)
		if _, err := svc.Cancel(context.Background(), task); !errors.Is(err, domain.ErrTaskTerminal) {
			t.Errorf("cancel from %s: want ErrTaskTerminal, got %v", status, err)
		}
	}
}

func TestTasks_CancelRequiresCoordinator(t *testing.T) {
	svc, _, _ := newTaskFixture(contributorSession("acc_contributor"))
	task := sampleTask(domain.StatusPending, 100, 0)

	if _, err := svc.Cancel(context.Background(), task); !errors.Is(err, domain.ErrAccessDenied) {
		t.Errorf("want ErrAccessDenied, got %v", err)
	}
}

func TestTasks_CancelledTaskIgnoresLaterReports(t *testing.T) {
	svc, gw, _ := newTaskFixture(coordinatorSession())
	gw.tasks["task_1"] = sampleTask(domain.StatusInProgress, 100, 40)

	cancelled, err := svc.Cancel(context.Background(), gw.tasks["task_1"])
	if err != nil {
		t.Fatal(err)
	}

	// Even a coordinator cannot push quantity edits through the deriver
	// once the task is cancelled.
	_, err = svc.ReportProgress(context.Background(), *cancelled, 100)
	if !errors.Is(err, domain.ErrTaskTerminal) {
		t.Errorf("report on cancelled task: want ErrTaskTerminal, got %v", err)
	}
	if gw.tasks["task_1"].Status != domain.StatusCancelled {
		t.Errorf("cancelled is sticky, got %s", gw.tasks["task_1"].Status)
	}
}

// ---------------------------------------------------------------------------
// Coordinator updates and deletion
// ---------------------------------------------------------------------------

func TestTasks_UpdateCannotSetStatusDirectly(t *testing.T) {
	svc, gw, _ := newTaskFixture(coordinatorSession())
	gw.tasks["task_1"] = sampleTask(domain.StatusPending, 100, 0)

	completed := domain.StatusCompleted
	_, err := svc.Update(context.Background(), "task_1", ports.UpdateTaskInput{Status: &completed})
	if !errors.Is(err, domain.ErrValidationRejected) {
		t.Errorf("direct status write: want ErrValidationRejected, got %v", err)
	}
}

func TestTasks_UpdateReassigns(t *testing.T) {
	svc, gw, _ := newTaskFixture(coordinatorSession())
	gw.tasks["task_1"] = sampleTask(domain.StatusPending, 100, 0)

	assignee := "acc_other"
	updated, err := svc.Update(context.Background(), "task_1", ports.UpdateTaskInput{AssignedTo: &assignee})
	if err != nil {
		t.Fatal(err)
	}
	if updated.AssignedTo != "acc_other" {
		t.Errorf("reassignment: got %s", updated.AssignedTo)
	}
}

func TestTasks_DeleteRequiresCoordinator(t *testing.T) {
	svc, gw, _ := newTaskFixture(contributorSession("acc_contributor"))

	if err := svc.Delete(context.Background(), "task_1"); !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("want ErrAccessDenied, got %v", err)
	}
	if len(gw.deleted) != 0 {
		t.Error("denied delete must not reach the gateway")
	}
}

// ---------------------------------------------------------------------------
// Reads and invalidation
// ---------------------------------------------------------------------------

func TestTasks_ListIsCachedAndInvalidatedByMutation(t *testing.T) {
	svc, gw, _ := newTaskFixture(coordinatorSession())
	gw.tasks["task_1"] = sampleTask(domain.StatusPending, 100, 0)

	filter := ports.TaskFilter{SettlementID: "settlement_a", Page: 1, Limit: 20}
	if _, err := svc.List(context.Background(), filter); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.List(context.Background(), filter); err != nil {
		t.Fatal(err)
	}
	if gw.listCalls != 1 {
		t.Fatalf("list must be cached, calls=%d", gw.listCalls)
	}

	if _, err := svc.ReportProgress(context.Background(), gw.tasks["task_1"], 40); err != nil {
		t.Fatal(err)
	}

	page, err := svc.List(context.Background(), filter)
	if err != nil {
		t.Fatal(err)
	}
	if gw.listCalls != 2 {
		t.Fatalf("mutation must invalidate task lists, calls=%d", gw.listCalls)
	}
	if page.Data[0].Status != domain.StatusInProgress {
		t.Errorf("refetched page must reflect the mutation, got %s", page.Data[0].Status)
	}
}

func TestTasks_MineRequiresSession(t *testing.T) {
	svc, _, _ := newTaskFixture(nil)
	if _, err := svc.Mine(context.Background()); !errors.Is(err, domain.ErrNoSession) {
		t.Errorf("want ErrNoSession, got %v", err)
	}
}

func TestTasks_MineIsCachedPerAccount(t *testing.T) {
	svc, gw, _ := newTaskFixture(contributorSession("acc_contributor"))
	gw.tasks["task_1"] = sampleTask(domain.StatusPending, 100, 0)

	if _, err := svc.Mine(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Mine(context.Background()); err != nil {
		t.Fatal(err)
	}
	if gw.myCalls != 1 {
		t.Errorf("my-tasks must be cached, calls=%d", gw.myCalls)
	}
}
