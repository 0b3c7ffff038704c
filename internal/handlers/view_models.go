package handlers

import (
	"time"

	"wordladder/internal/models"
)

type wordView struct {
	ID            int64  `json:"id"`
	Text          string `json:"text"`
	Transcription string `json:"transcription,omitempty"`
	Meaning       string `json:"meaning,omitempty"`
	SoundGroup    string `json:"sound_group"`
	Stage         int    `json:"stage"`
	Active        bool   `json:"active"`
}

func newWordView(w models.Word) wordView {
	return wordView{
		ID:            w.ID,
		Text:          w.Text,
		Transcription: w.Transcription,
		Meaning:       w.Meaning,
		SoundGroup:    string(w.SoundGroup),
		Stage:         w.Stage,
		Active:        w.Active,
	}
}

type sessionView struct {
	ID               int64      `json:"id"`
	Kind             string     `json:"kind"`
	Status           string     `json:"status"`
	DisplayName      string     `json:"display_name,omitempty"`
	PlannedItemCount int        `json:"planned_item_count"`
	CentreID         *int64     `json:"centre_id,omitempty"`
	AgeBandID        *int64     `json:"age_band_id,omitempty"`
	ScreeningSetID   *int64     `json:"screening_set_id,omitempty"`
	StartedAt        time.Time  `json:"started_at"`
	SubmittedAt      *time.Time `json:"submitted_at,omitempty"`
}

func newSessionView(s models.Session) sessionView {
	return sessionView{
		ID:               s.ID,
		Kind:             string(s.Kind),
		Status:           string(s.Status()),
		DisplayName:      s.DisplayName,
		PlannedItemCount: s.PlannedItemCount,
		CentreID:         s.CentreID,
		AgeBandID:        s.AgeBandID,
		ScreeningSetID:   s.ScreeningSetID,
		StartedAt:        s.StartedAt,
		SubmittedAt:      s.SubmittedAt,
	}
}

type itemView struct {
	Position int      `json:"position"`
	Word     wordView `json:"word"`
}

type attemptView struct {
	Position    int       `json:"position"`
	WordID      int64     `json:"word_id"`
	IsCorrect   bool      `json:"is_correct"`
	AttemptedAt time.Time `json:"attempted_at"`
}

type sessionDetailView struct {
	Session  sessionView   `json:"session"`
	Items    []itemView    `json:"items"`
	Attempts []attemptView `json:"attempts"`
}

func newSessionDetailView(d *models.SessionDetail) sessionDetailView {
	view := sessionDetailView{
		Session:  newSessionView(d.Session),
		Items:    make([]itemView, len(d.Items)),
		Attempts: make([]attemptView, len(d.Attempts)),
	}
	for i, item := range d.Items {
		view.Items[i] = itemView{Position: item.Position, Word: newWordView(item.Word)}
	}
	for i, a := range d.Attempts {
		view.Attempts[i] = attemptView{
			Position:    a.Position,
			WordID:      a.WordID,
			IsCorrect:   a.IsCorrect,
			AttemptedAt: a.AttemptedAt,
		}
	}
	return view
}

type sessionOverviewView struct {
	sessionView
	Correct  int `json:"correct"`
	Answered int `json:"answered"`
}

func newSessionOverviewViews(overviews []models.SessionOverview) []sessionOverviewView {
	views := make([]sessionOverviewView, len(overviews))
	for i, o := range overviews {
		views[i] = sessionOverviewView{sessionView: newSessionView(o.Session), Correct: o.Correct, Answered: o.Answered}
	}
	return views
}

type soundGroupCountView struct {
	SoundGroup string `json:"sound_group"`
	Count      int    `json:"count"`
}

func newSoundGroupCountViews(counts []models.SoundGroupCount) []soundGroupCountView {
	views := make([]soundGroupCountView, len(counts))
	for i, c := range counts {
		views[i] = soundGroupCountView{SoundGroup: string(c.SoundGroup), Count: c.Count}
	}
	return views
}

func newMissedItemViews(missed []models.MissedItem) []itemView {
	views := make([]itemView, len(missed))
	for i, m := range missed {
		views[i] = itemView{Position: m.Position, Word: newWordView(m.Word)}
	}
	return views
}

type submitResultView struct {
	SessionID        int64                 `json:"session_id"`
	Correct          int                   `json:"correct"`
	Total            int                   `json:"total"`
	Score            float64               `json:"score"`
	Missed           []itemView            `json:"missed"`
	RecommendedFocus []soundGroupCountView `json:"recommended_focus"`
}

type summaryView struct {
	Session          sessionView           `json:"session"`
	Correct          int                   `json:"correct"`
	Total            int                   `json:"total"`
	Missed           []itemView            `json:"missed"`
	SoundGroups      []soundGroupCountView `json:"sound_groups"`
	RecommendedFocus []soundGroupCountView `json:"recommended_focus"`
}

type missedWordView struct {
	Word        wordView `json:"word"`
	MissedCount int      `json:"missed_count"`
}

func newMissedWordViews(missed []models.MissedWord) []missedWordView {
	views := make([]missedWordView, len(missed))
	for i, m := range missed {
		views[i] = missedWordView{Word: newWordView(m.Word), MissedCount: m.MissedCount}
	}
	return views
}

type componentView struct {
	Position int      `json:"position"`
	Word     wordView `json:"word"`
}

type ageBandView struct {
	ID        int64  `json:"id"`
	Label     string `json:"label"`
	MinMonths int    `json:"min_months"`
	MaxMonths int    `json:"max_months"`
}
