package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/guildworks/provision-client/internal/cache"
	"github.com/guildworks/provision-client/internal/core/domain"
	"github.com/guildworks/provision-client/internal/core/ports"
)

const kindInventory = "inventory"

// EditState is the three-slot model for one editable ledger entry:
// canonical is the last server value, draft the unsubmitted local edit, and
// pending the in-flight submitted value. A draft never silently diverges
// from canonical after a failed mutation; the failed edit is discarded.
type EditState struct {
	Canonical domain.InventoryEntry
	Draft     *ports.UpdateInventoryInput
	Pending   *ports.UpdateInventoryInput
}

// LedgerService holds per-settlement, per-resource quantity triples and the
// rules for editing them. Reads go through the read-model cache; writes go
// through the mutation serializer.
type LedgerService struct {
	gateway    ports.SettlementGateway
	sessions   *SessionService
	gate       *AccessGate
	serializer *MutationSerializer
	store      *cache.Store
	log        zerolog.Logger

	mu    sync.Mutex
	edits map[string]*EditState
}

func NewLedgerService(gateway ports.SettlementGateway, sessions *SessionService, gate *AccessGate, serializer *MutationSerializer, store *cache.Store, log zerolog.Logger) *LedgerService {
	return &LedgerService{
		gateway:    gateway,
		sessions:   sessions,
		gate:       gate,
		serializer: serializer,
		store:      store,
		edits:      make(map[string]*EditState),
		log:        log.With().Str("component", "ledger").Logger(),
	}
}

// inventoryKey builds the cache key for one settlement/category selection.
func inventoryKey(settlementID string, category domain.Category) cache.Key {
	return cache.NewKey(cache.KindInventory, settlementID, string(category))
}

// ListEntries returns the ledger rows for a settlement and category. One
// request per selection change; repeated reads serve the cached snapshot
// until a mutation invalidates it.
func (l *LedgerService) ListEntries(ctx context.Context, settlementID string, category domain.Category) ([]domain.InventoryEntry, error) {
	if settlementID == "" {
		return nil, fmt.Errorf("%w: settlement id is required", domain.ErrValidationRejected)
	}
	if category != "" && !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrValidationRejected, category)
	}
	return cache.GetAs(ctx, l.store, inventoryKey(settlementID, category), func(ctx context.Context) ([]domain.InventoryEntry, error) {
		return l.gateway.ListInventory(ctx, settlementID, category)
	})
}

// UpdateEntry submits a partial update for one ledger entry. Only fields
// present in the payload change. On success the settlement's cached
// inventory keys are invalidated; on failure the cache is left untouched.
func (l *LedgerService) UpdateEntry(ctx context.Context, settlementID, entryID string, in ports.UpdateInventoryInput) (*domain.InventoryEntry, error) {
	if err := l.gate.Require(l.sessions.Current(), domain.CapEditDemand); err != nil {
		return nil, err
	}
	if in.Empty() {
		return nil, fmt.Errorf("%w: update carries no fields", domain.ErrValidationRejected)
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var updated *domain.InventoryEntry
	err := l.serializer.Submit(ctx, kindInventory, entryID, func(ctx context.Context) error {
		entry, err := l.gateway.UpdateInventory(ctx, settlementID, entryID, in)
		if err != nil {
			return err
		}
		updated = entry
		return nil
	}, Invalidation{
		Where: func(k cache.Key) bool {
			return k.Kind == cache.KindInventory && k.FilterHasPrefix(settlementID)
		},
	})
	if err != nil {
		return nil, err
	}

	l.log.Info().
		Str("settlement_id", settlementID).
		Str("entry_id", entryID).
		Msg("ledger entry updated")
	return updated, nil
}

// ---------------------------------------------------------------------------
// Edit lifecycle (canonical / draft / pending)
// ---------------------------------------------------------------------------

// BeginEdit opens an edit against the given canonical entry. Re-entering an
// existing edit resets it to the fresh canonical value.
func (l *LedgerService) BeginEdit(entry domain.InventoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.edits[entry.ID] = &EditState{Canonical: entry}
}

// Edit returns a copy of the edit state for an entry, if one is open.
func (l *LedgerService) Edit(entryID string) (EditState, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.edits[entryID]
	if !ok {
		return EditState{}, false
	}
	return *e, true
}

// SetDraft records a local edit of one quantity field. Raw input is coerced
// to a non-negative integer for display; no mutation is issued here.
func (l *LedgerService) SetDraft(entryID, field, raw string) error {
	value := domain.CoerceQuantity(raw)

	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.edits[entryID]
	if !ok {
		return fmt.Errorf("ledger: no open edit for entry %s", entryID)
	}
	if e.Draft == nil {
		e.Draft = &ports.UpdateInventoryInput{}
	}
	switch field {
	case "needed":
		e.Draft.Needed = &value
	case "assigned":
		e.Draft.Assigned = &value
	case "completed":
		e.Draft.Completed = &value
	default:
		return fmt.Errorf("ledger: unknown quantity field %q", field)
	}
	return nil
}

// DiscardEdit abandons an open edit without submitting anything.
func (l *LedgerService) DiscardEdit(entryID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.edits, entryID)
}

// CommitEdit submits the draft as a mutation. The draft moves to the
// pending slot for the duration of the round-trip. On success the edit is
// closed and the canonical entry returned; on any failure the edit state is
// discarded entirely, so the UI re-enters edit mode against the last known
// canonical value rather than the rejected draft.
func (l *LedgerService) CommitEdit(ctx context.Context, entryID string) (*domain.InventoryEntry, error) {
	l.mu.Lock()
	e, ok := l.edits[entryID]
	if !ok || e.Draft == nil {
		l.mu.Unlock()
		return nil, fmt.Errorf("%w: nothing to commit for entry %s", domain.ErrValidationRejected, entryID)
	}
	submitted := *e.Draft
	e.Pending = &submitted
	e.Draft = nil
	settlementID := e.Canonical.SettlementID
	l.mu.Unlock()

	updated, err := l.UpdateEntry(ctx, settlementID, entryID, submitted)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		if errors.Is(err, domain.ErrMutationInFlight) {
			// The previous submission has not resolved; keep the draft so
			// the user can retry once it settles.
			e.Draft = &submitted
			e.Pending = nil
			return nil, err
		}
		delete(l.edits, entryID)
		return nil, err
	}
	delete(l.edits, entryID)
	return updated, nil
}
