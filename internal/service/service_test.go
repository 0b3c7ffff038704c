package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"wordladder/internal/database"
	"wordladder/internal/logging"
	"wordladder/internal/models"
	"wordladder/internal/repository"
)

type testEnv struct {
	db        *database.DB
	words     *repository.WordRepository
	sessions  *repository.SessionRepository
	screening *repository.ScreeningRepository
	graph     *WordGraphService
	analyzer  *MissedItemAnalyzer
	engine    *SessionService
	clock     *testClock
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "ladder.db"))
	if err != nil {
		t.Fatalf("initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations(context.Background()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	clock := &testClock{now: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)}
	logger := logging.Discard()

	words := repository.NewWordRepository(db)
	sessions := repository.NewSessionRepository(db)
	screening := repository.NewScreeningRepository(db)

	analyzer := NewMissedItemAnalyzer(sessions)
	analyzer.now = clock.Now
	engine := NewSessionService(db, sessions, words, screening, analyzer, logger, 50)
	engine.now = clock.Now

	return &testEnv{
		db:        db,
		words:     words,
		sessions:  sessions,
		screening: screening,
		graph:     NewWordGraphService(db, words, logger),
		analyzer:  analyzer,
		engine:    engine,
		clock:     clock,
	}
}

func (e *testEnv) word(t *testing.T, text string, stage int, group models.SoundGroup) *models.Word {
	t.Helper()
	return e.wordWithActive(t, text, stage, group, true)
}

func (e *testEnv) wordWithActive(t *testing.T, text string, stage int, group models.SoundGroup, active bool) *models.Word {
	t.Helper()

	word, err := e.words.CreateWord(context.Background(), models.Word{
		Text:       text,
		SoundGroup: group,
		Stage:      stage,
		Active:     active,
	})
	if err != nil {
		t.Fatalf("CreateWord(%q) error = %v", text, err)
	}
	return word
}

// answersFor builds a complete answer set; positions listed in wrong are marked incorrect.
func answersFor(detail *models.SessionDetail, wrong ...int) []models.Answer {
	miss := make(map[int]bool, len(wrong))
	for _, position := range wrong {
		miss[position] = true
	}

	answers := make([]models.Answer, len(detail.Items))
	for i, item := range detail.Items {
		correct := !miss[item.Position]
		answers[i] = models.Answer{Position: item.Position, IsCorrect: &correct}
	}
	return answers
}
