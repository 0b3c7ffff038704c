package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"wordladder/internal/database"
	"wordladder/internal/models"
	"wordladder/internal/repository"
	"wordladder/internal/validation"
)

// SessionService runs the session lifecycle: creation, detail reads and
// exactly-once submission.
type SessionService struct {
	db           *database.DB
	sessions     *repository.SessionRepository
	words        *repository.WordRepository
	screening    *repository.ScreeningRepository
	analyzer     *MissedItemAnalyzer
	logger       *slog.Logger
	maxItemCount int
	now          func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(
	db *database.DB,
	sessions *repository.SessionRepository,
	words *repository.WordRepository,
	screening *repository.ScreeningRepository,
	analyzer *MissedItemAnalyzer,
	logger *slog.Logger,
	maxItemCount int,
) *SessionService {
	return &SessionService{
		db:           db,
		sessions:     sessions,
		words:        words,
		screening:    screening,
		analyzer:     analyzer,
		logger:       logger,
		maxItemCount: maxItemCount,
		now:          time.Now,
	}
}

// CreateDailySession assigns up to count active words in curriculum order
func (s *SessionService) CreateDailySession(ctx context.Context, learner models.Learner, count int, displayName string) (*models.Session, error) {
	if err := validation.ValidateCount(count, s.maxItemCount); err != nil {
		return nil, err
	}
	displayName, err := validation.ValidateDisplayName(displayName)
	if err != nil {
		return nil, err
	}

	var session *models.Session
	err = s.db.WithTx(ctx, func(tx *database.Tx) error {
		words, err := s.words.WithTx(tx).ListActiveWords(ctx, count)
		if err != nil {
			return err
		}
		if len(words) == 0 {
			return fmt.Errorf("no active words: %w", ErrNoContent)
		}

		session, err = s.createOwnedSession(ctx, tx, learner, models.SessionKindDaily, displayName, wordIDs(words))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logCreated(session)
	return session, nil
}

// CreateReviewSession assigns the learner's most missed selectable words
// within the trailing window, most misses first.
func (s *SessionService) CreateReviewSession(ctx context.Context, learner models.Learner, windowDays, count int, displayName string) (*models.Session, error) {
	if err := validation.ValidateWindowDays(windowDays); err != nil {
		return nil, err
	}
	if err := validation.ValidateCount(count, s.maxItemCount); err != nil {
		return nil, err
	}
	displayName, err := validation.ValidateDisplayName(displayName)
	if err != nil {
		return nil, err
	}

	missed, err := s.analyzer.rankedMissed(ctx, repository.LearnerScope(learner.ID), windowDays, 0)
	if err != nil {
		return nil, err
	}

	candidates := make([]int64, 0, count)
	for _, item := range missed {
		if !Selectable(item.Word) {
			continue
		}
		candidates = append(candidates, item.Word.ID)
		if len(candidates) == count {
			break
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no missed words in the last %d days: %w", windowDays, ErrNoContent)
	}

	var session *models.Session
	err = s.db.WithTx(ctx, func(tx *database.Tx) error {
		session, err = s.createOwnedSession(ctx, tx, learner, models.SessionKindReview, displayName, candidates)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logCreated(session)
	return session, nil
}

// CreateScreeningSession starts a session over the active screening set
// of the age band, preferring the learner's centre set over the default.
func (s *SessionService) CreateScreeningSession(ctx context.Context, learner models.Learner, ageBandID int64) (*models.Session, error) {
	var session *models.Session
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		screening := s.screening.WithTx(tx)

		band, err := screening.GetAgeBandByID(ctx, ageBandID)
		if err != nil {
			return err
		}
		if band == nil || !band.Active {
			return fmt.Errorf("age band %d: %w", ageBandID, ErrNotFound)
		}

		set, err := screening.FindActiveSet(ctx, band.ID, learner.CentreID)
		if err != nil {
			return err
		}
		if set == nil {
			return fmt.Errorf("no screening set for age band %d: %w", band.ID, ErrNoContent)
		}

		itemCount, err := screening.CountSetItems(ctx, set.ID)
		if err != nil {
			return err
		}
		if itemCount == 0 {
			return fmt.Errorf("screening set %d is empty: %w", set.ID, ErrNoContent)
		}

		session = &models.Session{
			LearnerID:        learner.ID,
			CentreID:         learner.CentreID,
			Kind:             models.SessionKindScreening,
			PlannedItemCount: itemCount,
			AgeBandID:        &band.ID,
			ScreeningSetID:   &set.ID,
			StartedAt:        s.now().UTC(),
		}
		session.ID, err = s.sessions.WithTx(tx).CreateSession(ctx, session)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logCreated(session)
	return session, nil
}

func (s *SessionService) createOwnedSession(ctx context.Context, tx *database.Tx, learner models.Learner, kind models.SessionKind, displayName string, wordIDs []int64) (*models.Session, error) {
	sessions := s.sessions.WithTx(tx)

	session := &models.Session{
		LearnerID:        learner.ID,
		CentreID:         learner.CentreID,
		Kind:             kind,
		DisplayName:      displayName,
		PlannedItemCount: len(wordIDs),
		StartedAt:        s.now().UTC(),
	}

	id, err := sessions.CreateSession(ctx, session)
	if err != nil {
		return nil, err
	}
	session.ID = id

	if err := sessions.InsertItems(ctx, id, wordIDs); err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession returns a session owned by callerID with its ordered items and attempts
func (s *SessionService) GetSession(ctx context.Context, sessionID, callerID int64) (*models.SessionDetail, error) {
	session, err := s.ownedSession(ctx, s.sessions, sessionID, callerID, false)
	if err != nil {
		return nil, err
	}

	items, err := s.sessions.ListItems(ctx, session)
	if err != nil {
		return nil, err
	}
	attempts, err := s.sessions.ListAttempts(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &models.SessionDetail{
		Session:  *session,
		Items:    items,
		Attempts: attempts,
	}, nil
}

// Submit records one answer per item and closes the session. The
// submission timestamp and the attempts are written in one transaction,
// and only the first of several concurrent submissions succeeds.
func (s *SessionService) Submit(ctx context.Context, sessionID, callerID int64, answers []models.Answer) (*models.SubmitResult, error) {
	var result *models.SubmitResult
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		sessions := s.sessions.WithTx(tx)

		session, err := s.ownedSession(ctx, sessions, sessionID, callerID, true)
		if err != nil {
			return err
		}
		if session.IsSubmitted() {
			return fmt.Errorf("session %d: %w", sessionID, ErrAlreadySubmitted)
		}

		items, err := sessions.ListItems(ctx, session)
		if err != nil {
			return err
		}
		expected := make([]int, len(items))
		for i, item := range items {
			expected[i] = item.Position
		}

		results, err := validation.ValidateAnswers(expected, answers)
		if err != nil {
			return err
		}

		submittedAt := s.now().UTC()
		ok, err := sessions.MarkSubmitted(ctx, sessionID, submittedAt)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("session %d: %w", sessionID, ErrAlreadySubmitted)
		}

		attempts := make([]models.SessionAttempt, len(items))
		result = &models.SubmitResult{SessionID: sessionID, Total: len(items), Missed: make([]models.MissedItem, 0)}
		for i, item := range items {
			correct := results[item.Position]
			attempts[i] = models.SessionAttempt{
				SessionID:   sessionID,
				Position:    item.Position,
				WordID:      item.Word.ID,
				IsCorrect:   correct,
				AttemptedAt: submittedAt,
			}
			if correct {
				result.Correct++
			} else {
				result.Missed = append(result.Missed, models.MissedItem{Position: item.Position, Word: item.Word})
			}
		}

		return sessions.InsertAttempts(ctx, attempts)
	})
	if err != nil {
		return nil, s.submitConflict(ctx, s.db.GetDialect(), sessionID, err)
	}

	result.RecommendedFocus = RecommendFocus(result.Missed)

	s.logger.Info("session submitted",
		"session_id", sessionID,
		"learner_id", callerID,
		"correct", result.Correct,
		"total", result.Total)
	return result, nil
}

// submitConflict turns a serialization failure into ErrAlreadySubmitted
// when a concurrent submission closed the session first. Any other error,
// or a failure on a session that is still open, is returned unchanged.
func (s *SessionService) submitConflict(ctx context.Context, dialect database.Dialect, sessionID int64, err error) error {
	if !dialect.IsSerializationFailure(err) {
		return err
	}
	session, readErr := s.sessions.GetSessionByID(ctx, sessionID, false)
	if readErr != nil || session == nil || !session.IsSubmitted() {
		return err
	}
	s.logger.Debug("concurrent submit lost", "session_id", sessionID, "error", err)
	return fmt.Errorf("session %d: %w", sessionID, ErrAlreadySubmitted)
}

// History returns the learner's sessions, newest first
func (s *SessionService) History(ctx context.Context, learnerID int64, limit int) ([]models.SessionOverview, error) {
	if err := validation.ValidateLimit(limit); err != nil {
		return nil, err
	}
	return s.sessions.ListSessions(ctx, repository.SessionFilter{LearnerID: learnerID, Limit: limit})
}

// CentreHistory returns sessions started at a centre within the trailing
// window, newest first
func (s *SessionService) CentreHistory(ctx context.Context, centreID int64, windowDays, limit int) ([]models.SessionOverview, error) {
	if centreID <= 0 {
		return nil, &validation.Error{Field: "centre_id", Message: "centre_id must be positive"}
	}
	if err := validation.ValidateWindowDays(windowDays); err != nil {
		return nil, err
	}
	if err := validation.ValidateLimit(limit); err != nil {
		return nil, err
	}
	since := s.now().UTC().Add(-time.Duration(windowDays) * 24 * time.Hour)
	return s.sessions.ListSessions(ctx, repository.SessionFilter{CentreID: centreID, Since: since, Limit: limit})
}

// ownedSession loads a session and checks that callerID owns it
func (s *SessionService) ownedSession(ctx context.Context, sessions *repository.SessionRepository, sessionID, callerID int64, forUpdate bool) (*models.Session, error) {
	session, err := sessions.GetSessionByID(ctx, sessionID, forUpdate)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session %d: %w", sessionID, ErrNotFound)
	}
	if session.LearnerID != callerID {
		return nil, fmt.Errorf("session %d: %w", sessionID, ErrForbidden)
	}
	return session, nil
}

func (s *SessionService) logCreated(session *models.Session) {
	s.logger.Info("session created",
		"session_id", session.ID,
		"learner_id", session.LearnerID,
		"kind", session.Kind,
		"items", session.PlannedItemCount)
}

func wordIDs(words []models.Word) []int64 {
	ids := make([]int64, len(words))
	for i, word := range words {
		ids[i] = word.ID
	}
	return ids
}

// ListAgeBands returns the active age bands screening sessions can be started for
func (s *SessionService) ListAgeBands(ctx context.Context) ([]models.AgeBand, error) {
	return s.screening.ListActiveAgeBands(ctx)
}
