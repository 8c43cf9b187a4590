package karma

import (
	"context"

	"github.com/rounds-social/rounds/models"
)

// LeaderboardEntry is one user's signed ledger sum.
type LeaderboardEntry struct {
	UserID string
	Total  int64
}

// ActivityStore persists the append-only karma ledger. Implementations must
// never mutate or drop rows once appended.
type ActivityStore interface {
	Append(ctx context.Context, act *models.KarmaActivity) error
	ListForUser(ctx context.Context, userID string) ([]models.KarmaActivity, error)
	TotalForUser(ctx context.Context, userID string) (int64, error)
	// Leaderboard returns up to limit users ordered by descending ledger
	// sum. Users with no recorded activity do not appear.
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}
