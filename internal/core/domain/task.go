package domain

import "time"

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusCancelled  TaskStatus = "cancelled"
)

// Terminal reports whether no further automatic derivation applies.
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// DeriveStatus computes the status that results from a progress report.
// Terminal states are sticky: a cancelled or completed task never moves
// again through derivation. The completion check takes precedence over the
// first-nonzero-report check, so a report that does both resolves to
// completed.
func DeriveStatus(current TaskStatus, requested, completed int) TaskStatus {
	if current.Terminal() {
		return current
	}
	if completed >= requested {
		return StatusCompleted
	}
	if completed > 0 && current == StatusPending {
		return StatusInProgress
	}
	return current
}

// CanCancel reports whether an explicit cancellation is allowed from s.
// Only pre-terminal states may be cancelled.
func (s TaskStatus) CanCancel() bool {
	return s == StatusPending || s == StatusInProgress
}

// Task is a unit of procurement work assigned to one contributor.
type Task struct {
	ID             string   `json:"id"`
	SettlementID   string   `json:"settlement_id"`
	SettlementName string   `json:"settlement_name,omitempty"`
	ResourceID     string   `json:"resource_id"`
	ResourceName   string   `json:"resource_name,omitempty"`
	Category       Category `json:"category,omitempty"`

	AssignedTo string `json:"assigned_to"`
	CreatedBy  string `json:"created_by"`

	QuantityRequested int        `json:"quantity_requested"`
	QuantityCompleted int        `json:"quantity_completed"`
	Status            TaskStatus `json:"status"`

	Deadline  *time.Time `json:"deadline,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Overdue reports whether the task has passed its deadline without reaching
// a terminal state. Pure predicate; never persisted.
func (t Task) Overdue(now time.Time) bool {
	return t.Deadline != nil && t.Deadline.Before(now) && !t.Status.Terminal()
}

// ProgressPercent derives the completion percentage for display, clamped
// to [0, 100].
func (t Task) ProgressPercent() float64 {
	return progressPercent(t.QuantityCompleted, t.QuantityRequested)
}
