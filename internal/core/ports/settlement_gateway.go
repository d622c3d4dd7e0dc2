package ports

import (
	"context"

	"github.com/guildworks/provision-client/internal/core/domain"
)

// CreateSettlementInput carries the fields for creating a settlement.
type CreateSettlementInput struct {
	Name string `json:"name" validate:"required"`
	Tier int    `json:"tier" validate:"gt=0"`
}

// UpdateSettlementInput is a partial update: nil fields are left untouched
// by the backend.
type UpdateSettlementInput struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Tier *int    `json:"tier,omitempty" validate:"omitempty,gt=0"`
}

// UpdateInventoryInput is a partial update of one ledger entry. Only the
// fields present in the payload change; omitted fields keep their server
// values.
type UpdateInventoryInput struct {
	Needed    *int `json:"quantity_needed,omitempty" validate:"omitempty,gte=0"`
	Assigned  *int `json:"quantity_assigned,omitempty" validate:"omitempty,gte=0"`
	Completed *int `json:"quantity_completed,omitempty" validate:"omitempty,gte=0"`
}

// Empty reports whether the partial carries no fields at all.
func (in UpdateInventoryInput) Empty() bool {
	return in.Needed == nil && in.Assigned == nil && in.Completed == nil
}

// SettlementGateway is the settlement and inventory slice of the REST
// boundary.
type SettlementGateway interface {
	ListSettlements(ctx context.Context) ([]domain.Settlement, error)
	GetSettlement(ctx context.Context, id string) (*domain.Settlement, error)
	CreateSettlement(ctx context.Context, in CreateSettlementInput) (*domain.Settlement, error)
	UpdateSettlement(ctx context.Context, id string, in UpdateSettlementInput) (*domain.Settlement, error)
	DeleteSettlement(ctx context.Context, id string) error

	// ListInventory returns the entries for one settlement, optionally
	// filtered to a single category (empty category means all).
	ListInventory(ctx context.Context, settlementID string, category domain.Category) ([]domain.InventoryEntry, error)
	UpdateInventory(ctx context.Context, settlementID, entryID string, in UpdateInventoryInput) (*domain.InventoryEntry, error)
}
