package karma

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rounds-social/rounds/models"
)

// MemActivityStore keeps the ledger in process memory. Useful for tests and
// for running the daemon without a database.
type MemActivityStore struct {
	mu     sync.Mutex
	nextID uint
	rows   map[string][]models.KarmaActivity
}

func NewMemActivityStore() *MemActivityStore {
	return &MemActivityStore{
		nextID: 1,
		rows:   make(map[string][]models.KarmaActivity),
	}
}

func (s *MemActivityStore) Append(ctx context.Context, act *models.KarmaActivity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	act.ID = s.nextID
	s.nextID++
	if act.CreatedAt.IsZero() {
		act.CreatedAt = time.Now().UTC()
	}
	s.rows[act.UserID] = append(s.rows[act.UserID], *act)
	return nil
}

func (s *MemActivityStore) ListForUser(ctx context.Context, userID string) ([]models.KarmaActivity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.KarmaActivity, len(s.rows[userID]))
	copy(out, s.rows[userID])
	return out, nil
}

func (s *MemActivityStore) TotalForUser(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, act := range s.rows[userID] {
		total += act.Points
	}
	return total, nil
}

func (s *MemActivityStore) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]LeaderboardEntry, 0, len(s.rows))
	for userID, acts := range s.rows {
		var total int64
		for _, act := range acts {
			total += act.Points
		}
		entries = append(entries, LeaderboardEntry{UserID: userID, Total: total})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Total != entries[j].Total {
			return entries[i].Total > entries[j].Total
		}
		return entries[i].UserID < entries[j].UserID
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
