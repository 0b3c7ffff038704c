package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"wordladder/internal/models"
	"wordladder/internal/repository"
)

func TestSoundGroupBreakdown(t *testing.T) {
	item := func(group models.SoundGroup) models.MissedItem {
		return models.MissedItem{Word: models.Word{SoundGroup: group}}
	}

	tests := []struct {
		name   string
		missed []models.MissedItem
		focus  []models.SoundGroupCount
	}{
		{
			name: "two initial one vowel",
			missed: []models.MissedItem{
				item(models.SoundGroupVowel),
				item(models.SoundGroupInitial),
				item(models.SoundGroupInitial),
			},
			focus: []models.SoundGroupCount{
				{SoundGroup: models.SoundGroupInitial, Count: 2},
				{SoundGroup: models.SoundGroupVowel, Count: 1},
			},
		},
		{
			name: "ties follow enumeration order and keep three",
			missed: []models.MissedItem{
				item(models.SoundGroupOther),
				item(models.SoundGroupDiphthong),
				item(models.SoundGroupVowel),
				item(models.SoundGroupFinal),
			},
			focus: []models.SoundGroupCount{
				{SoundGroup: models.SoundGroupFinal, Count: 1},
				{SoundGroup: models.SoundGroupVowel, Count: 1},
				{SoundGroup: models.SoundGroupDiphthong, Count: 1},
			},
		},
		{
			name:   "nothing missed",
			missed: nil,
			focus:  []models.SoundGroupCount{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecommendFocus(tt.missed)
			if !reflect.DeepEqual(got, tt.focus) {
				t.Errorf("RecommendFocus() = %+v, want %+v", got, tt.focus)
			}
		})
	}
}

// recordSession creates a daily session over words and submits it with the
// listed positions marked wrong.
func recordSession(t *testing.T, env *testEnv, learner models.Learner, count int, wrong ...int) *models.Session {
	t.Helper()
	ctx := context.Background()

	session, err := env.engine.CreateDailySession(ctx, learner, count, "")
	if err != nil {
		t.Fatalf("CreateDailySession() error = %v", err)
	}
	detail, err := env.engine.GetSession(ctx, session.ID, learner.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if _, err := env.engine.Submit(ctx, session.ID, learner.ID, answersFor(detail, wrong...)); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	return session
}

func TestRecentMissed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	learner := models.Learner{ID: 1}

	a := env.word(t, "a", 1, models.SoundGroupOther)
	b := env.word(t, "b", 1, models.SoundGroupOther)
	env.word(t, "c", 1, models.SoundGroupOther)

	recordSession(t, env, learner, 3, 1, 2)
	env.clock.Advance(time.Hour)
	recordSession(t, env, learner, 3, 1)
	recordSession(t, env, models.Learner{ID: 2}, 3, 2, 3)

	missed, err := env.analyzer.RecentMissed(ctx, learner.ID, 30, 5)
	if err != nil {
		t.Fatalf("RecentMissed() error = %v", err)
	}
	if len(missed) != 2 {
		t.Fatalf("RecentMissed() returned %d words, want 2", len(missed))
	}
	if missed[0].Word.ID != a.ID || missed[0].MissedCount != 2 {
		t.Errorf("missed[0] = %+v, want a x2", missed[0])
	}
	if missed[1].Word.ID != b.ID || missed[1].MissedCount != 1 {
		t.Errorf("missed[1] = %+v, want b x1", missed[1])
	}

	if _, err := env.analyzer.RecentMissed(ctx, learner.ID, 0, 5); !errors.Is(err, ErrValidation) {
		t.Errorf("zero window: error = %v, want ErrValidation", err)
	}
	if _, err := env.analyzer.RecentMissed(ctx, learner.ID, 30, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("zero limit: error = %v, want ErrValidation", err)
	}
}

func TestRecentMissed_TiesBrokenByWordID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	learner := models.Learner{ID: 1}

	a := env.word(t, "a", 1, models.SoundGroupOther)
	b := env.word(t, "b", 1, models.SoundGroupOther)

	recordSession(t, env, learner, 2, 2, 1)

	missed, err := env.analyzer.RecentMissed(ctx, learner.ID, 7, 10)
	if err != nil {
		t.Fatalf("RecentMissed() error = %v", err)
	}
	if len(missed) != 2 || missed[0].Word.ID != a.ID || missed[1].Word.ID != b.ID {
		t.Errorf("RecentMissed() = %+v, want [a b]", missed)
	}
}

func TestAggregateMissed_CentreScope(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	centre := int64(3)
	a := env.word(t, "a", 1, models.SoundGroupOther)
	b := env.word(t, "b", 1, models.SoundGroupOther)

	recordSession(t, env, models.Learner{ID: 1, CentreID: &centre}, 2, 1)
	recordSession(t, env, models.Learner{ID: 2, CentreID: &centre}, 2, 1, 2)
	recordSession(t, env, models.Learner{ID: 3}, 2, 2)

	missed, err := env.analyzer.AggregateMissed(ctx, repository.CentreScope(centre), 30)
	if err != nil {
		t.Fatalf("AggregateMissed() error = %v", err)
	}
	want := []models.MissedWord{
		{Word: *a, MissedCount: 2},
		{Word: *b, MissedCount: 1},
	}
	if len(missed) != len(want) {
		t.Fatalf("AggregateMissed() returned %d words, want %d", len(missed), len(want))
	}
	for i := range want {
		if missed[i].Word.ID != want[i].Word.ID || missed[i].MissedCount != want[i].MissedCount {
			t.Errorf("missed[%d] = %+v, want %+v", i, missed[i], want[i])
		}
	}
}

func TestSessionSummary_ScreeningFocus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	learner := models.Learner{ID: 1}

	bandID, err := env.screening.CreateAgeBand(ctx, models.AgeBand{Label: "3-4", Active: true})
	if err != nil {
		t.Fatalf("CreateAgeBand() error = %v", err)
	}
	setID, err := env.screening.CreateScreeningSet(ctx, models.ScreeningSet{Name: "default", AgeBandID: bandID, Active: true})
	if err != nil {
		t.Fatalf("CreateScreeningSet() error = %v", err)
	}

	groups := []models.SoundGroup{
		models.SoundGroupInitial,
		models.SoundGroupVowel,
		models.SoundGroupInitial,
		models.SoundGroupFinal,
	}
	for i, group := range groups {
		word := env.word(t, string(rune('p'+i)), 1, group)
		if err := env.screening.AddScreeningItem(ctx, models.ScreeningItem{ScreeningSetID: setID, WordID: word.ID, Position: i + 1}); err != nil {
			t.Fatalf("AddScreeningItem() error = %v", err)
		}
	}

	session, err := env.engine.CreateScreeningSession(ctx, learner, bandID)
	if err != nil {
		t.Fatalf("CreateScreeningSession() error = %v", err)
	}

	if _, err := env.analyzer.SessionSummary(ctx, session.ID, learner.ID); !errors.Is(err, ErrNotSubmitted) {
		t.Errorf("open session: error = %v, want ErrNotSubmitted", err)
	}

	detail, err := env.engine.GetSession(ctx, session.ID, learner.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if _, err := env.engine.Submit(ctx, session.ID, learner.ID, answersFor(detail, 1, 2, 3)); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	summary, err := env.analyzer.SessionSummary(ctx, session.ID, learner.ID)
	if err != nil {
		t.Fatalf("SessionSummary() error = %v", err)
	}
	wantFocus := []models.SoundGroupCount{
		{SoundGroup: models.SoundGroupInitial, Count: 2},
		{SoundGroup: models.SoundGroupVowel, Count: 1},
	}
	if !reflect.DeepEqual(summary.RecommendedFocus, wantFocus) {
		t.Errorf("RecommendedFocus = %+v, want %+v", summary.RecommendedFocus, wantFocus)
	}
	if summary.Correct != 1 || summary.Total != 4 || len(summary.Missed) != 3 {
		t.Errorf("summary = %d/%d with %d missed", summary.Correct, summary.Total, len(summary.Missed))
	}
	for i, item := range summary.Missed {
		if item.Position != i+1 {
			t.Errorf("Missed[%d].Position = %d, want %d", i, item.Position, i+1)
		}
	}

	if _, err := env.analyzer.SessionSummary(ctx, session.ID, 2); !errors.Is(err, ErrForbidden) {
		t.Errorf("other learner: error = %v, want ErrForbidden", err)
	}
	if _, err := env.analyzer.SessionSummary(ctx, session.ID+50, learner.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing session: error = %v, want ErrNotFound", err)
	}
}
