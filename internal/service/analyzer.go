package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"wordladder/internal/models"
	"wordladder/internal/repository"
	"wordladder/internal/validation"
)

// focusSize is the number of sound groups recommended after a session.
const focusSize = 3

// MissedItemAnalyzer derives review candidates and sound-group weaknesses
// from recorded attempts.
type MissedItemAnalyzer struct {
	sessions *repository.SessionRepository
	now      func() time.Time
}

// NewMissedItemAnalyzer creates a new analyzer
func NewMissedItemAnalyzer(sessions *repository.SessionRepository) *MissedItemAnalyzer {
	return &MissedItemAnalyzer{
		sessions: sessions,
		now:      time.Now,
	}
}

// RecentMissed returns the learner's most missed words within the trailing
// window, most misses first, ties broken by word id.
func (a *MissedItemAnalyzer) RecentMissed(ctx context.Context, learnerID int64, windowDays, limit int) ([]models.MissedWord, error) {
	if err := validation.ValidateWindowDays(windowDays); err != nil {
		return nil, err
	}
	if err := validation.ValidateLimit(limit); err != nil {
		return nil, err
	}
	return a.rankedMissed(ctx, repository.LearnerScope(learnerID), windowDays, limit)
}

// AggregateMissed returns every word missed within the window for the scope
func (a *MissedItemAnalyzer) AggregateMissed(ctx context.Context, scope repository.Scope, windowDays int) ([]models.MissedWord, error) {
	if err := validation.ValidateWindowDays(windowDays); err != nil {
		return nil, err
	}
	return a.rankedMissed(ctx, scope, windowDays, 0)
}

func (a *MissedItemAnalyzer) rankedMissed(ctx context.Context, scope repository.Scope, windowDays, limit int) ([]models.MissedWord, error) {
	since := a.now().UTC().AddDate(0, 0, -windowDays)
	missed, err := a.sessions.MissedWordCounts(ctx, scope, since, limit)
	if err != nil {
		return nil, fmt.Errorf("missed words for %s: %w", scope, err)
	}
	return missed, nil
}

// SessionSummary breaks down the misses of a submitted session owned by callerID
func (a *MissedItemAnalyzer) SessionSummary(ctx context.Context, sessionID, callerID int64) (*models.SessionSummary, error) {
	session, err := a.sessions.GetSessionByID(ctx, sessionID, false)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session %d: %w", sessionID, ErrNotFound)
	}
	if session.LearnerID != callerID {
		return nil, fmt.Errorf("session %d: %w", sessionID, ErrForbidden)
	}
	if !session.IsSubmitted() {
		return nil, fmt.Errorf("session %d: %w", sessionID, ErrNotSubmitted)
	}

	attempts, err := a.sessions.ListAttempts(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	missed, err := a.sessions.ListMissedItems(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	groups := SoundGroupBreakdown(missed)

	return &models.SessionSummary{
		Session:          *session,
		Correct:          len(attempts) - len(missed),
		Total:            len(attempts),
		Missed:           missed,
		SoundGroups:      groups,
		RecommendedFocus: topGroups(groups, focusSize),
	}, nil
}

// SoundGroupBreakdown counts missed items per sound group. Groups without
// misses are omitted; the rest are ordered by count descending, ties by
// enumeration order.
func SoundGroupBreakdown(missed []models.MissedItem) []models.SoundGroupCount {
	counts := make(map[models.SoundGroup]int)
	for _, item := range missed {
		group := item.Word.SoundGroup
		if !group.Valid() {
			group = models.SoundGroupOther
		}
		counts[group]++
	}

	breakdown := make([]models.SoundGroupCount, 0, len(counts))
	for group, count := range counts {
		breakdown = append(breakdown, models.SoundGroupCount{SoundGroup: group, Count: count})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Count != breakdown[j].Count {
			return breakdown[i].Count > breakdown[j].Count
		}
		return breakdown[i].SoundGroup.Rank() < breakdown[j].SoundGroup.Rank()
	})
	return breakdown
}

// RecommendFocus returns the top three sound groups among the missed items
func RecommendFocus(missed []models.MissedItem) []models.SoundGroupCount {
	return topGroups(SoundGroupBreakdown(missed), focusSize)
}

func topGroups(groups []models.SoundGroupCount, n int) []models.SoundGroupCount {
	if len(groups) > n {
		groups = groups[:n]
	}
	return groups
}
