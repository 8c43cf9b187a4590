// Package karma implements the reputation ledger: an append-only log of
// scored user activities, running totals, a per-category breakdown, and the
// rank classifier over totals.
package karma

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rounds-social/rounds/models"
	"github.com/rounds-social/rounds/notify"
)

var (
	ErrUnauthenticated = errors.New("no authenticated user for karma activity")
	ErrUnknownActivity = errors.New("unknown karma activity type")
)

type Ledger struct {
	Store    ActivityStore
	Notifier notify.Notifier
	Logger   *slog.Logger
}

func NewLedger(store ActivityStore, notifier notify.Notifier, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		Store:    store,
		Notifier: notifier,
		Logger:   logger.With("system", "karma"),
	}
}

// RecordActivity appends one ledger entry for the given activity type,
// looking up its fixed point value. Each call is a distinct event; recording
// the same logical action twice yields two entries. When notifyUser is set
// and the award is positive, the user gets a notice; penalty issuers pass
// false to keep ban/warning messaging as the only feedback.
func (l *Ledger) RecordActivity(ctx context.Context, userID string, at ActivityType, description string, notifyUser bool) (*models.KarmaActivity, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	points, ok := Points(at)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownActivity, at)
	}

	act := &models.KarmaActivity{
		UserID:       userID,
		ActivityType: string(at),
		Points:       points,
		Description:  description,
	}
	if err := l.Store.Append(ctx, act); err != nil {
		// a failed append must not be counted anywhere downstream
		return nil, err
	}
	activitiesRecorded.WithLabelValues(string(at)).Inc()

	if notifyUser && points > 0 && l.Notifier != nil {
		l.Notifier.Notify(ctx, userID,
			fmt.Sprintf("+%d Karma!", points),
			fmt.Sprintf("Earned for %s", humanizeActivity(at)))
	}
	l.Logger.Debug("recorded karma activity", "userID", userID, "type", at, "points", points)
	return act, nil
}

// Total is the signed sum of every recorded point value for the user. Zero
// activities sum to zero; negative totals are not floored.
func (l *Ledger) Total(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, ErrUnauthenticated
	}
	return l.Store.TotalForUser(ctx, userID)
}

type Breakdown struct {
	PostPoints    int64 `json:"postPoints"`
	CommentPoints int64 `json:"commentPoints"`
	VotePoints    int64 `json:"votePoints"`
}

// BreakdownFor sums the user's ledger filtered by activity category.
func (l *Ledger) BreakdownFor(ctx context.Context, userID string) (*Breakdown, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	rows, err := l.Store.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var bd Breakdown
	for _, act := range rows {
		switch {
		case isPostActivity(act.ActivityType):
			bd.PostPoints += act.Points
		case isCommentActivity(act.ActivityType):
			bd.CommentPoints += act.Points
		case isVoteActivity(act.ActivityType):
			bd.VotePoints += act.Points
		}
	}
	return &bd, nil
}

// Activities returns the user's full ledger, most recent first for the DB
// store.
func (l *Ledger) Activities(ctx context.Context, userID string) ([]models.KarmaActivity, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return l.Store.ListForUser(ctx, userID)
}

const defaultLeaderboardSize = 10

type LeaderboardRow struct {
	UserID     string `json:"userId"`
	TotalKarma int64  `json:"totalKarma"`
	Rank       string `json:"rank"`
	RankColor  string `json:"rankColor"`
}

// Leaderboard returns the top users by karma total, each classified into a
// rank. A non-positive limit falls back to the default page of 10.
func (l *Ledger) Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 {
		limit = defaultLeaderboardSize
	}
	entries, err := l.Store.Leaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}
	rows := make([]LeaderboardRow, 0, len(entries))
	for _, e := range entries {
		rank := RankFor(e.Total)
		rows = append(rows, LeaderboardRow{
			UserID:     e.UserID,
			TotalKarma: e.Total,
			Rank:       rank.Label,
			RankColor:  rank.Color,
		})
	}
	return rows, nil
}

// RankForUser recomputes the user's rank label from their current total.
func (l *Ledger) RankForUser(ctx context.Context, userID string) (Rank, error) {
	total, err := l.Total(ctx, userID)
	if err != nil {
		return Rank{}, err
	}
	return RankFor(total), nil
}

func humanizeActivity(at ActivityType) string {
	switch at {
	case ActivityCreatePost:
		return "creating a post"
	case ActivityCreateComment:
		return "commenting"
	case ActivityReceiveComment:
		return "receiving a comment"
	case ActivityGiveUpvote:
		return "upvoting"
	case ActivityReceiveUpvote:
		return "receiving an upvote"
	case ActivityJoinCommunity:
		return "joining a community"
	case ActivityCreateCommunity:
		return "creating a community"
	default:
		return "activity"
	}
}
