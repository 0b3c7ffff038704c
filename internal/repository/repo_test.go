package repository

import (
	"context"
	"path/filepath"
	"testing"

	"wordladder/internal/database"
	"wordladder/internal/models"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "ladder.db"))
	if err != nil {
		t.Fatalf("initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(context.Background()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return db
}

func mustCreateWord(t *testing.T, repo *WordRepository, text string, stage int, group models.SoundGroup, active bool) *models.Word {
	t.Helper()

	word, err := repo.CreateWord(context.Background(), models.Word{
		Text:       text,
		Meaning:    text + " meaning",
		SoundGroup: group,
		Stage:      stage,
		Active:     active,
	})
	if err != nil {
		t.Fatalf("CreateWord(%q) error = %v", text, err)
	}
	return word
}
