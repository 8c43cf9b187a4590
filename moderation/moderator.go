// Package moderation gates user-generated content: a profanity filter over
// normalized text, plus an escalation state machine (warned -> banned) with
// karma penalties, backed by a server-side offense store.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rounds-social/rounds/karma"
	"github.com/rounds-social/rounds/notify"
)

var (
	// ErrBanned marks an action refused because the account is banned, as
	// opposed to a fresh denylist violation.
	ErrBanned = errors.New("account banned")

	// ErrRejected marks content refused by the profanity gate.
	ErrRejected = errors.New("content rejected by moderation")
)

// Decision is the outcome of a moderation scan.
type Decision int

const (
	DecisionAllow Decision = iota
	DecisionReject
	DecisionBan
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionReject:
		return "reject"
	case DecisionBan:
		return "ban"
	default:
		return "<unknown>"
	}
}

const (
	// MaxOffenses is the number of warnings before a ban: the offense that
	// pushes the count past this value bans the account.
	MaxOffenses = 3

	// Each violation costs a fixed net -20 karma, recorded as ten discrete
	// -2 ledger entries so the audit trail shows individual penalty events.
	penaltyEvents = 10
)

type Moderator struct {
	Ledger   *karma.Ledger
	Offenses OffenseStore
	Notifier notify.Notifier
	Logger   *slog.Logger
}

func NewModerator(ledger *karma.Ledger, offenses OffenseStore, notifier notify.Notifier, logger *slog.Logger) *Moderator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Moderator{
		Ledger:   ledger,
		Offenses: offenses,
		Notifier: notifier,
		Logger:   logger.With("system", "moderation"),
	}
}

// ModerateContent scans one piece of content and decides whether it may be
// published. A banned user gets DecisionBan before any scan, with no further
// penalty or count change. A denylist hit advances the offense count,
// records the karma penalty, bans once the count exceeds MaxOffenses, and
// yields DecisionReject. Clean content passes with no state change.
func (m *Moderator) ModerateContent(ctx context.Context, userID, content string) (Decision, error) {
	if userID == "" {
		return DecisionReject, karma.ErrUnauthenticated
	}
	state, err := m.Offenses.Get(ctx, userID)
	if err != nil {
		return DecisionReject, fmt.Errorf("loading offense state: %w", err)
	}

	if state.IsBanned {
		contentScans.WithLabelValues("banned").Inc()
		m.notify(ctx, userID, "Account Banned",
			"You cannot post content as your account has been banned.")
		return DecisionBan, nil
	}

	if !ContainsProfanity(content) {
		contentScans.WithLabelValues("clean").Inc()
		return DecisionAllow, nil
	}

	contentScans.WithLabelValues("violation").Inc()
	if err := m.handleOffense(ctx, userID, state); err != nil {
		return DecisionReject, err
	}
	return DecisionReject, nil
}

// Gate folds a moderation scan into a sentinel error: nil when the content
// may be published, ErrBanned when the account is banned, ErrRejected on a
// denylist violation.
func (m *Moderator) Gate(ctx context.Context, userID, content string) error {
	decision, err := m.ModerateContent(ctx, userID, content)
	if err != nil {
		return err
	}
	switch decision {
	case DecisionBan:
		return ErrBanned
	case DecisionReject:
		return ErrRejected
	default:
		return nil
	}
}

func (m *Moderator) handleOffense(ctx context.Context, userID string, state *OffenseState) error {
	now := time.Now().UTC()
	state.Count++
	state.LastOffense = &now
	state.IsBanned = state.Count > MaxOffenses
	if err := m.Offenses.Set(ctx, userID, state); err != nil {
		return fmt.Errorf("saving offense state: %w", err)
	}

	// Penalty entries carry no individual notifications; the warning below
	// is the only user-facing message for the violation.
	for i := 0; i < penaltyEvents; i++ {
		if _, err := m.Ledger.RecordActivity(ctx, userID, karma.ActivityModerationPenalty,
			"Community guidelines violation", false); err != nil {
			return fmt.Errorf("recording moderation penalty: %w", err)
		}
	}

	if state.IsBanned {
		bansIssued.Inc()
		m.Logger.Warn("user banned for repeated violations", "userID", userID, "offenses", state.Count)
		m.notify(ctx, userID, "Account Banned",
			"Your account has been banned for repeated violations of community guidelines.")
	} else {
		m.Logger.Info("moderation warning issued", "userID", userID, "offenses", state.Count)
		m.notify(ctx, userID,
			fmt.Sprintf("Warning %d/%d", state.Count, MaxOffenses),
			fmt.Sprintf("Inappropriate language detected. -%d Karma penalty. %d warnings remaining.",
				penaltyEvents*2, MaxOffenses-state.Count))
	}
	return nil
}

// ResetOffenses returns the user to a clear standing: zero count, no ban.
// Exposed only through admin-gated surfaces.
func (m *Moderator) ResetOffenses(ctx context.Context, userID string) error {
	if userID == "" {
		return karma.ErrUnauthenticated
	}
	if err := m.Offenses.Set(ctx, userID, &OffenseState{}); err != nil {
		return fmt.Errorf("resetting offense state: %w", err)
	}
	offenseResets.Inc()
	m.Logger.Info("offense state reset", "userID", userID)
	m.notify(ctx, userID, "Offenses reset", "Your warning count has been cleared.")
	return nil
}

// IsBanned reports the user's current ban flag.
func (m *Moderator) IsBanned(ctx context.Context, userID string) (bool, error) {
	state, err := m.Offenses.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return state.IsBanned, nil
}

// OffenseStateFor returns the user's current offense standing.
func (m *Moderator) OffenseStateFor(ctx context.Context, userID string) (*OffenseState, error) {
	return m.Offenses.Get(ctx, userID)
}

func (m *Moderator) notify(ctx context.Context, userID, title, body string) {
	if m.Notifier != nil {
		m.Notifier.Notify(ctx, userID, title, body)
	}
}
