package domain

import "time"

// Settlement is a sub-organization with its own resource demand ledger.
// Owned by the backend of record; the client holds a snapshot.
type Settlement struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Tier      int       `json:"tier"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
