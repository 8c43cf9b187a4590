package moderation

import (
	"context"
	"time"
)

// OffenseState tracks one user's moderation standing. Count only moves
// forward; the only reverse transition is an explicit reset.
type OffenseState struct {
	Count       int64      `json:"count"`
	LastOffense *time.Time `json:"lastOffense,omitempty"`
	IsBanned    bool       `json:"isBanned"`
}

// OffenseStore persists offense state server-side, keyed by authenticated
// user ID. Client-submitted state is never trusted.
type OffenseStore interface {
	Get(ctx context.Context, userID string) (*OffenseState, error)
	Set(ctx context.Context, userID string, state *OffenseState) error
}
