package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/guildworks/provision-client/internal/core/domain"
	"github.com/guildworks/provision-client/internal/core/ports"
)

// SettlementGateway implements ports.SettlementGateway over HTTP.
type SettlementGateway struct {
	client *Client
}

func NewSettlementGateway(client *Client) *SettlementGateway {
	return &SettlementGateway{client: client}
}

func (g *SettlementGateway) ListSettlements(ctx context.Context) ([]domain.Settlement, error) {
	var settlements []domain.Settlement
	if err := g.client.do(ctx, http.MethodGet, "settlements", "/settlements", nil, nil, &settlements); err != nil {
		return nil, err
	}
	return settlements, nil
}

func (g *SettlementGateway) GetSettlement(ctx context.Context, id string) (*domain.Settlement, error) {
	var settlement domain.Settlement
	if err := g.client.do(ctx, http.MethodGet, "settlements", "/settlements/"+id, nil, nil, &settlement); err != nil {
		return nil, err
	}
	return &settlement, nil
}

func (g *SettlementGateway) CreateSettlement(ctx context.Context, in ports.CreateSettlementInput) (*domain.Settlement, error) {
	var settlement domain.Settlement
	if err := g.client.do(ctx, http.MethodPost, "settlements", "/settlements", nil, in, &settlement); err != nil {
		return nil, err
	}
	return &settlement, nil
}

func (g *SettlementGateway) UpdateSettlement(ctx context.Context, id string, in ports.UpdateSettlementInput) (*domain.Settlement, error) {
	var settlement domain.Settlement
	if err := g.client.do(ctx, http.MethodPut, "settlements", "/settlements/"+id, nil, in, &settlement); err != nil {
		return nil, err
	}
	return &settlement, nil
}

func (g *SettlementGateway) DeleteSettlement(ctx context.Context, id string) error {
	return g.client.do(ctx, http.MethodDelete, "settlements", "/settlements/"+id, nil, nil, nil)
}

func (g *SettlementGateway) ListInventory(ctx context.Context, settlementID string, category domain.Category) ([]domain.InventoryEntry, error) {
	var query url.Values
	if category != "" {
		query = url.Values{"category": []string{string(category)}}
	}
	var entries []domain.InventoryEntry
	if err := g.client.do(ctx, http.MethodGet, "inventory", "/settlements/"+settlementID+"/resources", query, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (g *SettlementGateway) UpdateInventory(ctx context.Context, settlementID, entryID string, in ports.UpdateInventoryInput) (*domain.InventoryEntry, error) {
	var entry domain.InventoryEntry
	path := "/settlements/" + settlementID + "/resources/" + entryID
	if err := g.client.do(ctx, http.MethodPut, "inventory", path, nil, in, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
