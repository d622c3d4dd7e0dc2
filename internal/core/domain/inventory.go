package domain

import (
	"strconv"
	"strings"
	"time"
)

// InventoryEntry is a settlement's demand ledger row for one resource:
// how much is needed, how much has been handed out as work, and how much
// has come back. All three quantities are non-negative integers.
type InventoryEntry struct {
	ID           string   `json:"id"`
	SettlementID string   `json:"settlement_id"`
	ResourceID   string   `json:"resource_id"`
	ResourceName string   `json:"resource_name"`
	Category     Category `json:"category"`

	Needed    int `json:"quantity_needed"`
	Assigned  int `json:"quantity_assigned"`
	Completed int `json:"quantity_completed"`

	UpdatedAt time.Time `json:"updated_at"`
}

// ProgressPercent derives the completion percentage for display, clamped to
// [0, 100]. Never persisted; re-derived on every read.
func (e InventoryEntry) ProgressPercent() float64 {
	return progressPercent(e.Completed, e.Needed)
}

func progressPercent(completed, needed int) float64 {
	if needed <= 0 {
		return 0
	}
	pct := float64(completed) / float64(needed) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// ProgressBand is the display colour band for a progress percentage,
// mirroring the banding used by the dashboard.
type ProgressBand string

const (
	BandComplete ProgressBand = "green"
	BandHigh     ProgressBand = "blue"
	BandMedium   ProgressBand = "yellow"
	BandLow      ProgressBand = "orange"
	BandCritical ProgressBand = "red"
)

// BandFor maps a clamped percentage to its colour band.
func BandFor(pct float64) ProgressBand {
	switch {
	case pct >= 100:
		return BandComplete
	case pct >= 75:
		return BandHigh
	case pct >= 50:
		return BandMedium
	case pct >= 25:
		return BandLow
	default:
		return BandCritical
	}
}

// CoerceQuantity normalizes raw user input to a non-negative integer.
// Non-numeric or negative input coerces to 0. This is a display-side
// normalization only; it never issues a mutation by itself.
func CoerceQuantity(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
