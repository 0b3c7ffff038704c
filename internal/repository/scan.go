package repository

import (
	"database/sql"
	"time"

	"wordladder/internal/models"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

const wordColumns = `w.id, w.display_text, w.transcription, w.meaning, w.sound_group, w.stage, w.is_active, w.created_at`

func scanWord(row rowScanner, extra ...any) (models.Word, error) {
	var word models.Word
	var soundGroup string
	dest := []any{
		&word.ID,
		&word.Text,
		&word.Transcription,
		&word.Meaning,
		&soundGroup,
		&word.Stage,
		&word.Active,
		&word.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return models.Word{}, err
	}
	word.SoundGroup = models.SoundGroup(soundGroup)
	return word, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time.UTC()
	return &t
}
