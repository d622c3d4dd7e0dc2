package service

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/guildworks/provision-client/internal/cache"
	"github.com/guildworks/provision-client/internal/core/domain"
	"github.com/guildworks/provision-client/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Shared fixtures
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func coordinatorSession() *Session {
	return &Session{
		Token: "token-coordinator",
		Account: domain.Account{
			ID:       "acc_coordinator",
			Username: "quartermaster",
			Role:     domain.RoleCoordinator,
		},
		IssuedAt: time.Now().UTC(),
	}
}

func contributorSession(accountID string) *Session {
	return &Session{
		Token: "token-contributor",
		Account: domain.Account{
			ID:       accountID,
			Username: "gatherer",
			Role:     domain.RoleContributor,
		},
		IssuedAt: time.Now().UTC(),
	}
}

// newTestSessions builds a SessionService with an installed session and no
// auth gateway. Only Current/Token/HandleUnauthorized are usable.
func newTestSessions(store *cache.Store, sess *Session) *SessionService {
	s := NewSessionService(nil, store, discardLogger)
	s.current = sess
	return s
}

func intPtr(n int) *int { return &n }

// sampleEntry is a canonical ledger row used across ledger tests.
func sampleEntry() domain.InventoryEntry {
	return domain.InventoryEntry{
		ID:           "entry_1",
		SettlementID: "settlement_a",
		ResourceID:   "res_iron",
		ResourceName: "Iron Ore",
		Category:     domain.CategoryMining,
		Needed:       500,
		Assigned:     300,
		Completed:    0,
	}
}

func sampleTask(status domain.TaskStatus, requested, completed int) domain.Task {
	return domain.Task{
		ID:                "task_1",
		SettlementID:      "settlement_a",
		ResourceID:        "res_iron",
		AssignedTo:        "acc_contributor",
		CreatedBy:         "acc_coordinator",
		QuantityRequested: requested,
		QuantityCompleted: completed,
		Status:            status,
	}
}

func sampleCreateTaskInput() ports.CreateTaskInput {
	return ports.CreateTaskInput{
		SettlementID:      "settlement_a",
		ResourceID:        "res_iron",
		AssignedTo:        "acc_contributor",
		QuantityRequested: 100,
	}
}
