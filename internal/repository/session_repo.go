package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"wordladder/internal/database"
	"wordladder/internal/models"
)

// SessionRepository handles persistence of sessions, their items and attempts
type SessionRepository struct {
	db database.DBTX
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db database.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *SessionRepository) WithTx(tx *database.Tx) *SessionRepository {
	return &SessionRepository{db: tx}
}

// Scope restricts aggregate queries to one learner or one centre
type Scope struct {
	column string
	id     int64
}

// LearnerScope matches sessions owned by the learner
func LearnerScope(learnerID int64) Scope {
	return Scope{column: "s.learner_id", id: learnerID}
}

// CentreScope matches sessions tagged with the centre
func CentreScope(centreID int64) Scope {
	return Scope{column: "s.centre_id", id: centreID}
}

func (s Scope) String() string {
	switch s.column {
	case "s.learner_id":
		return fmt.Sprintf("learner:%d", s.id)
	case "s.centre_id":
		return fmt.Sprintf("centre:%d", s.id)
	default:
		return "unscoped"
	}
}

func (s Scope) valid() bool {
	return s.column != ""
}

// SessionFilter selects sessions for history listings. Zero fields are ignored.
type SessionFilter struct {
	LearnerID int64
	CentreID  int64
	Since     time.Time
	Limit     int
}

const sessionColumns = `s.id, s.learner_id, s.centre_id, s.kind, s.display_name, s.planned_item_count,
		s.age_band_id, s.screening_set_id, s.started_at, s.submitted_at`

func scanSession(row rowScanner, extra ...any) (models.Session, error) {
	var session models.Session
	var kind string
	var centreID, ageBandID, setID sql.NullInt64
	var submittedAt sql.NullTime

	dest := []any{
		&session.ID,
		&session.LearnerID,
		&centreID,
		&kind,
		&session.DisplayName,
		&session.PlannedItemCount,
		&ageBandID,
		&setID,
		&session.StartedAt,
		&submittedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return models.Session{}, err
	}

	session.Kind = models.SessionKind(kind)
	session.CentreID = int64Ptr(centreID)
	session.AgeBandID = int64Ptr(ageBandID)
	session.ScreeningSetID = int64Ptr(setID)
	session.StartedAt = session.StartedAt.UTC()
	session.SubmittedAt = timePtr(submittedAt)
	return session, nil
}

// CreateSession inserts the session row and returns its ID
func (r *SessionRepository) CreateSession(ctx context.Context, session *models.Session) (int64, error) {
	query := `
		INSERT INTO sessions (learner_id, centre_id, kind, display_name, planned_item_count,
		                      age_band_id, screening_set_id, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query,
		session.LearnerID,
		nullInt64(session.CentreID),
		string(session.Kind),
		session.DisplayName,
		session.PlannedItemCount,
		nullInt64(session.AgeBandID),
		nullInt64(session.ScreeningSetID),
		session.StartedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create session: %w", err)
	}
	return id, nil
}

// InsertItems assigns the words to positions 1..n in one statement
func (r *SessionRepository) InsertItems(ctx context.Context, sessionID int64, wordIDs []int64) error {
	if len(wordIDs) == 0 {
		return nil
	}

	placeholders := make([]string, len(wordIDs))
	args := make([]any, 0, len(wordIDs)*3)
	for i, wordID := range wordIDs {
		placeholders[i] = "(?, ?, ?)"
		args = append(args, sessionID, i+1, wordID)
	}

	query := `INSERT INTO session_items (session_id, position, word_id) VALUES ` + strings.Join(placeholders, ", ")
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert session items: %w", err)
	}
	return nil
}

// GetSessionByID retrieves a session. With forUpdate the row is locked for
// the rest of the enclosing transaction where the dialect supports it.
// It returns nil, nil when the session does not exist.
func (r *SessionRepository) GetSessionByID(ctx context.Context, sessionID int64, forUpdate bool) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions s WHERE s.id = ?`
	if forUpdate {
		query += r.db.GetDialect().LockClause()
	}

	session, err := scanSession(r.db.QueryRowContext(ctx, query, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// ListItems returns the ordered items of a session, reading from the
// session's own items or from its screening set depending on its kind.
func (r *SessionRepository) ListItems(ctx context.Context, session *models.Session) ([]models.SessionItem, error) {
	var query string
	var arg int64

	switch session.Kind.ItemSource() {
	case models.ItemSourceScreeningSet:
		if session.ScreeningSetID == nil {
			return nil, fmt.Errorf("screening session %d has no screening set", session.ID)
		}
		query = `
			SELECT ` + wordColumns + `, si.position
			FROM screening_items si
			JOIN words w ON w.id = si.word_id
			WHERE si.screening_set_id = ?
			ORDER BY si.position ASC
		`
		arg = *session.ScreeningSetID
	default:
		query = `
			SELECT ` + wordColumns + `, it.position
			FROM session_items it
			JOIN words w ON w.id = it.word_id
			WHERE it.session_id = ?
			ORDER BY it.position ASC
		`
		arg = session.ID
	}

	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query session items: %w", err)
	}
	defer rows.Close()

	var items []models.SessionItem
	for rows.Next() {
		var position int
		word, err := scanWord(rows, &position)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session item: %w", err)
		}
		items = append(items, models.SessionItem{SessionID: session.ID, Position: position, Word: word})
	}
	return items, rows.Err()
}

// MarkSubmitted sets the submission timestamp if it is still unset. It
// reports false when another submission got there first.
func (r *SessionRepository) MarkSubmitted(ctx context.Context, sessionID int64, at time.Time) (bool, error) {
	query := `UPDATE sessions SET submitted_at = ? WHERE id = ? AND submitted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, at.UTC(), sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to mark session submitted: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected == 1, nil
}

// InsertAttempts writes every attempt of a submission in one statement
func (r *SessionRepository) InsertAttempts(ctx context.Context, attempts []models.SessionAttempt) error {
	if len(attempts) == 0 {
		return nil
	}

	placeholders := make([]string, len(attempts))
	args := make([]any, 0, len(attempts)*5)
	for i, attempt := range attempts {
		placeholders[i] = "(?, ?, ?, ?, ?)"
		args = append(args, attempt.SessionID, attempt.Position, attempt.WordID, attempt.IsCorrect, attempt.AttemptedAt.UTC())
	}

	query := `INSERT INTO session_attempts (session_id, position, word_id, is_correct, attempted_at) VALUES ` +
		strings.Join(placeholders, ", ")
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert attempts: %w", err)
	}
	return nil
}

// ListAttempts returns a session's attempts ordered by position
func (r *SessionRepository) ListAttempts(ctx context.Context, sessionID int64) ([]models.SessionAttempt, error) {
	query := `
		SELECT session_id, position, word_id, is_correct, attempted_at
		FROM session_attempts
		WHERE session_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []models.SessionAttempt
	for rows.Next() {
		var attempt models.SessionAttempt
		if err := rows.Scan(
			&attempt.SessionID,
			&attempt.Position,
			&attempt.WordID,
			&attempt.IsCorrect,
			&attempt.AttemptedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempt.AttemptedAt = attempt.AttemptedAt.UTC()
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}

// ListSessions returns sessions matching the filter, newest first, with
// their correct and answered counts.
func (r *SessionRepository) ListSessions(ctx context.Context, filter SessionFilter) ([]models.SessionOverview, error) {
	var where []string
	var args []any
	if filter.LearnerID != 0 {
		where = append(where, "s.learner_id = ?")
		args = append(args, filter.LearnerID)
	}
	if filter.CentreID != 0 {
		where = append(where, "s.centre_id = ?")
		args = append(args, filter.CentreID)
	}
	if !filter.Since.IsZero() {
		where = append(where, "s.started_at >= ?")
		args = append(args, filter.Since.UTC())
	}

	query := `
		SELECT ` + sessionColumns + `,
		       COALESCE(SUM(CASE WHEN a.is_correct = ? THEN 1 ELSE 0 END), 0),
		       COUNT(a.id)
		FROM sessions s
		LEFT JOIN session_attempts a ON a.session_id = s.id`
	args = append([]any{true}, args...)
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` GROUP BY s.id ORDER BY s.started_at DESC, s.id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.SessionOverview
	for rows.Next() {
		var overview models.SessionOverview
		session, err := scanSession(rows, &overview.Correct, &overview.Answered)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		overview.Session = session
		sessions = append(sessions, overview)
	}
	return sessions, rows.Err()
}

// MissedWordCounts groups incorrect attempts made at or after since by
// word, ordered by miss count descending then word id ascending. A limit
// of zero returns every missed word.
func (r *SessionRepository) MissedWordCounts(ctx context.Context, scope Scope, since time.Time, limit int) ([]models.MissedWord, error) {
	if !scope.valid() {
		return nil, errors.New("missed word counts require a scope")
	}

	query := `
		SELECT ` + wordColumns + `, COUNT(*) AS missed
		FROM session_attempts a
		JOIN sessions s ON s.id = a.session_id
		JOIN words w ON w.id = a.word_id
		WHERE ` + scope.column + ` = ? AND a.is_correct = ? AND a.attempted_at >= ?
		GROUP BY w.id
		ORDER BY missed DESC, w.id ASC`
	args := []any{scope.id, false, since.UTC()}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query missed words: %w", err)
	}
	defer rows.Close()

	var missed []models.MissedWord
	for rows.Next() {
		var count int
		word, err := scanWord(rows, &count)
		if err != nil {
			return nil, fmt.Errorf("failed to scan missed word: %w", err)
		}
		missed = append(missed, models.MissedWord{Word: word, MissedCount: count})
	}
	return missed, rows.Err()
}

// ListMissedItems returns the incorrect attempts of a session with the
// attempted word, in position order
func (r *SessionRepository) ListMissedItems(ctx context.Context, sessionID int64) ([]models.MissedItem, error) {
	query := `
		SELECT ` + wordColumns + `, a.position
		FROM session_attempts a
		JOIN words w ON w.id = a.word_id
		WHERE a.session_id = ? AND a.is_correct = ?
		ORDER BY a.position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to query missed items: %w", err)
	}
	defer rows.Close()

	missed := make([]models.MissedItem, 0)
	for rows.Next() {
		var position int
		word, err := scanWord(rows, &position)
		if err != nil {
			return nil, fmt.Errorf("failed to scan missed item: %w", err)
		}
		missed = append(missed, models.MissedItem{Position: position, Word: word})
	}
	return missed, rows.Err()
}
