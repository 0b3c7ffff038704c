package service

import (
	"context"
	"fmt"
	"log/slog"

	"wordladder/internal/database"
	"wordladder/internal/models"
	"wordladder/internal/repository"
	"wordladder/internal/validation"
)

// WordGraphService maintains the word composition graph
type WordGraphService struct {
	db     *database.DB
	words  *repository.WordRepository
	logger *slog.Logger
}

// NewWordGraphService creates a new word graph service
func NewWordGraphService(db *database.DB, words *repository.WordRepository, logger *slog.Logger) *WordGraphService {
	return &WordGraphService{
		db:     db,
		words:  words,
		logger: logger,
	}
}

// InsertComponent links component into parent at position. The edge is
// rejected when it would close a cycle, including a self-loop. The
// reachability scan and the insert share one transaction.
func (s *WordGraphService) InsertComponent(ctx context.Context, parentID, componentID int64, position int) (*models.WordComponent, error) {
	if err := validation.ValidatePosition(position); err != nil {
		return nil, err
	}
	if parentID == componentID {
		return nil, fmt.Errorf("word %d cannot be its own component: %w", parentID, ErrCycle)
	}

	var created *models.WordComponent
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		words := s.words.WithTx(tx)

		parent, err := words.GetWordByID(ctx, parentID)
		if err != nil {
			return err
		}
		if parent == nil {
			return fmt.Errorf("word %d: %w", parentID, ErrNotFound)
		}
		component, err := words.GetWordByID(ctx, componentID)
		if err != nil {
			return err
		}
		if component == nil {
			return fmt.Errorf("word %d: %w", componentID, ErrNotFound)
		}

		total, err := words.CountWords(ctx)
		if err != nil {
			return err
		}
		closesCycle, err := reachable(ctx, componentID, parentID, total, words.ComponentIDs)
		if err != nil {
			return err
		}
		if closesCycle {
			return fmt.Errorf("word %d already reaches word %d: %w", componentID, parentID, ErrCycle)
		}

		taken, err := words.ComponentPositionTaken(ctx, parentID, position)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("word %d position %d: %w", parentID, position, ErrPositionConflict)
		}

		if err := words.InsertComponent(ctx, parentID, componentID, position); err != nil {
			if tx.GetDialect().IsUniqueViolation(err) {
				return fmt.Errorf("word %d position %d: %w", parentID, position, ErrPositionConflict)
			}
			return err
		}

		created = &models.WordComponent{
			ParentWordID:    parentID,
			ComponentWordID: componentID,
			Position:        position,
			Component:       *component,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("component linked",
		"parent_word_id", parentID,
		"component_word_id", componentID,
		"position", position)
	return created, nil
}

// ResolveComposition returns the direct components of a word ordered by
// position. Nested components are not expanded.
func (s *WordGraphService) ResolveComposition(ctx context.Context, wordID int64) ([]models.WordComponent, error) {
	word, err := s.words.GetWordByID(ctx, wordID)
	if err != nil {
		return nil, err
	}
	if word == nil {
		return nil, fmt.Errorf("word %d: %w", wordID, ErrNotFound)
	}
	return s.words.ListComponents(ctx, wordID)
}

// IsSelectable reports whether a word may be assigned to a session
func (s *WordGraphService) IsSelectable(ctx context.Context, wordID int64) (bool, error) {
	word, err := s.words.GetWordByID(ctx, wordID)
	if err != nil {
		return false, err
	}
	if word == nil {
		return false, fmt.Errorf("word %d: %w", wordID, ErrNotFound)
	}
	return Selectable(*word), nil
}

// ListActiveWords returns active words in curriculum order
func (s *WordGraphService) ListActiveWords(ctx context.Context, limit int) ([]models.Word, error) {
	return s.words.ListActiveWords(ctx, limit)
}

// Selectable reports whether a word may be assigned to a session. Graph
// membership plays no part.
func Selectable(word models.Word) bool {
	return word.Active
}

// reachable reports whether to can be reached from from by following
// component edges. The search is an iterative depth-first traversal that
// expands at most limit distinct words.
func reachable(ctx context.Context, from, to int64, limit int, next func(context.Context, int64) ([]int64, error)) (bool, error) {
	stack := []int64{from}
	visited := make(map[int64]bool)
	expanded := 0

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if node == to {
			return true, nil
		}
		if visited[node] {
			continue
		}
		visited[node] = true

		expanded++
		if expanded > limit {
			return false, fmt.Errorf("reachability search exceeded %d words", limit)
		}

		children, err := next(ctx, node)
		if err != nil {
			return false, err
		}
		for _, child := range children {
			if !visited[child] {
				stack = append(stack, child)
			}
		}
	}
	return false, nil
}
