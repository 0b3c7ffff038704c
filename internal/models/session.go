package models

import "time"

// SessionKind identifies the assessment type of a session
type SessionKind string

const (
	SessionKindDaily     SessionKind = "DAILY"
	SessionKindReview    SessionKind = "REVIEW"
	SessionKindScreening SessionKind = "SCREENING"
)

// ItemSource says where a session's ordered items are read from.
type ItemSource int

const (
	// ItemSourceOwned sessions own their items in session_items.
	ItemSourceOwned ItemSource = iota
	// ItemSourceScreeningSet sessions read items live from the referenced screening set.
	ItemSourceScreeningSet
)

// ItemSource returns the item source strategy for the kind.
func (k SessionKind) ItemSource() ItemSource {
	if k == SessionKindScreening {
		return ItemSourceScreeningSet
	}
	return ItemSourceOwned
}

// Valid reports whether k is a known session kind.
func (k SessionKind) Valid() bool {
	switch k {
	case SessionKindDaily, SessionKindReview, SessionKindScreening:
		return true
	}
	return false
}

// SessionStatus is the lifecycle state of a session
type SessionStatus string

const (
	SessionStatusOpen   SessionStatus = "OPEN"
	SessionStatusClosed SessionStatus = "CLOSED"
)

// Session is one assessment instance owned by a single learner
type Session struct {
	ID               int64
	LearnerID        int64
	CentreID         *int64
	Kind             SessionKind
	DisplayName      string
	PlannedItemCount int
	AgeBandID        *int64
	ScreeningSetID   *int64
	StartedAt        time.Time
	SubmittedAt      *time.Time
}

// IsSubmitted reports whether the session has reached its terminal state
func (s *Session) IsSubmitted() bool {
	return s.SubmittedAt != nil
}

// Status derives the lifecycle state from the submission timestamp
func (s *Session) Status() SessionStatus {
	if s.IsSubmitted() {
		return SessionStatusClosed
	}
	return SessionStatusOpen
}

// SessionItem is a fixed question slot of a session
type SessionItem struct {
	SessionID int64
	Position  int
	Word      Word
}

// SessionAttempt records the learner's result for one item position
type SessionAttempt struct {
	SessionID   int64
	Position    int
	WordID      int64
	IsCorrect   bool
	AttemptedAt time.Time
}

// Answer is one caller-supplied result. IsCorrect is a pointer so that an
// omitted flag can be told apart from false.
type Answer struct {
	Position  int   `json:"position"`
	IsCorrect *bool `json:"is_correct"`
}

// SessionDetail is a session with its ordered items and attempts
type SessionDetail struct {
	Session  Session
	Items    []SessionItem
	Attempts []SessionAttempt
}

// MissedItem is an item the learner answered incorrectly
type MissedItem struct {
	Position int
	Word     Word
}

// SubmitResult is returned by a successful submission
type SubmitResult struct {
	SessionID        int64
	Correct          int
	Total            int
	Missed           []MissedItem
	RecommendedFocus []SoundGroupCount
}

// Score returns correct/total, or 0 for an empty session
func (r *SubmitResult) Score() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total)
}

// Learner identifies the caller a session is created for
type Learner struct {
	ID       int64
	CentreID *int64
}

// SessionOverview is a session row with its recorded results, used by history listings
type SessionOverview struct {
	Session  Session
	Correct  int
	Answered int
}
