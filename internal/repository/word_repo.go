package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wordladder/internal/database"
	"wordladder/internal/models"
)

// WordRepository handles database operations for words and their components
type WordRepository struct {
	db database.DBTX
}

// NewWordRepository creates a new word repository
func NewWordRepository(db database.DBTX) *WordRepository {
	return &WordRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *WordRepository) WithTx(tx *database.Tx) *WordRepository {
	return &WordRepository{db: tx}
}

// CreateWord inserts a new word and returns it with its ID set
func (r *WordRepository) CreateWord(ctx context.Context, word models.Word) (*models.Word, error) {
	if word.SoundGroup == "" {
		word.SoundGroup = models.SoundGroupOther
	}
	if word.Stage < 1 {
		word.Stage = 1
	}

	query := `
		INSERT INTO words (display_text, transcription, meaning, sound_group, stage, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query,
		word.Text, word.Transcription, word.Meaning, string(word.SoundGroup), word.Stage, word.Active)
	if err != nil {
		return nil, fmt.Errorf("failed to create word: %w", err)
	}

	return r.GetWordByID(ctx, id)
}

// GetWordByID retrieves a word by ID. It returns nil, nil when the word does not exist.
func (r *WordRepository) GetWordByID(ctx context.Context, wordID int64) (*models.Word, error) {
	query := `SELECT ` + wordColumns + ` FROM words w WHERE w.id = ?`

	word, err := scanWord(r.db.QueryRowContext(ctx, query, wordID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word: %w", err)
	}
	return &word, nil
}

// ListActiveWords returns up to limit active words in curriculum order
// (stage ascending, then id ascending). A limit of zero returns every active word.
func (r *WordRepository) ListActiveWords(ctx context.Context, limit int) ([]models.Word, error) {
	query := `SELECT ` + wordColumns + ` FROM words w WHERE w.is_active = ? ORDER BY w.stage ASC, w.id ASC`
	args := []any{true}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query words: %w", err)
	}
	defer rows.Close()

	var words []models.Word
	for rows.Next() {
		word, err := scanWord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}
		words = append(words, word)
	}
	return words, rows.Err()
}

// CountWords returns the total number of words, active or not
func (r *WordRepository) CountWords(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM words`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count words: %w", err)
	}
	return count, nil
}

// ComponentPositionTaken reports whether parent already has a component at position
func (r *WordRepository) ComponentPositionTaken(ctx context.Context, parentID int64, position int) (bool, error) {
	query := `SELECT COUNT(*) FROM word_components WHERE parent_word_id = ? AND position = ?`

	var count int
	if err := r.db.QueryRowContext(ctx, query, parentID, position).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check component position: %w", err)
	}
	return count > 0, nil
}

// ComponentIDs returns the ids of the direct components of a word
func (r *WordRepository) ComponentIDs(ctx context.Context, parentID int64) ([]int64, error) {
	query := `SELECT component_word_id FROM word_components WHERE parent_word_id = ? ORDER BY position ASC`

	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query component ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan component id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// InsertComponent stores a composition edge. Driver errors stay reachable
// through errors.As so callers can detect unique violations.
func (r *WordRepository) InsertComponent(ctx context.Context, parentID, componentID int64, position int) error {
	query := `
		INSERT INTO word_components (parent_word_id, component_word_id, position)
		VALUES (?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query, parentID, componentID, position); err != nil {
		return fmt.Errorf("failed to insert component: %w", err)
	}
	return nil
}

// ListComponents returns the direct components of a word ordered by position
func (r *WordRepository) ListComponents(ctx context.Context, parentID int64) ([]models.WordComponent, error) {
	query := `
		SELECT ` + wordColumns + `, wc.position
		FROM word_components wc
		JOIN words w ON w.id = wc.component_word_id
		WHERE wc.parent_word_id = ?
		ORDER BY wc.position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query components: %w", err)
	}
	defer rows.Close()

	var components []models.WordComponent
	for rows.Next() {
		var position int
		word, err := scanWord(rows, &position)
		if err != nil {
			return nil, fmt.Errorf("failed to scan component: %w", err)
		}
		components = append(components, models.WordComponent{
			ParentWordID:    parentID,
			ComponentWordID: word.ID,
			Position:        position,
			Component:       word,
		})
	}
	return components, rows.Err()
}

// ListAllWords returns every word, active or not, ordered by id
func (r *WordRepository) ListAllWords(ctx context.Context) ([]models.Word, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+wordColumns+` FROM words w ORDER BY w.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query words: %w", err)
	}
	defer rows.Close()

	var words []models.Word
	for rows.Next() {
		word, err := scanWord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}
		words = append(words, word)
	}
	return words, rows.Err()
}

// ListAllComponents returns every composition edge ordered by parent and
// position. Component words are not loaded.
func (r *WordRepository) ListAllComponents(ctx context.Context) ([]models.WordComponent, error) {
	query := `
		SELECT parent_word_id, component_word_id, position
		FROM word_components
		ORDER BY parent_word_id ASC, position ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query components: %w", err)
	}
	defer rows.Close()

	var edges []models.WordComponent
	for rows.Next() {
		var edge models.WordComponent
		if err := rows.Scan(&edge.ParentWordID, &edge.ComponentWordID, &edge.Position); err != nil {
			return nil, fmt.Errorf("failed to scan component: %w", err)
		}
		edges = append(edges, edge)
	}
	return edges, rows.Err()
}
