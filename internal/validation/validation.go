package validation

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"wordladder/internal/models"
)

// MaxDisplayNameLength is the longest display name accepted, in characters.
const MaxDisplayNameLength = 100

// ErrInvalid is matched by every validation failure.
var ErrInvalid = errors.New("invalid input")

// Error represents a validation error. Positions names the offending item
// positions when the failure concerns an answer set.
type Error struct {
	Field     string
	Positions []int
	Message   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *Error) Unwrap() error {
	return ErrInvalid
}

// ValidateCount checks a requested item count against the configured maximum
func ValidateCount(count, maxCount int) error {
	if count < 1 {
		return &Error{Field: "count", Message: "count must be at least 1"}
	}
	if count > maxCount {
		return &Error{Field: "count", Message: fmt.Sprintf("count must be at most %d", maxCount)}
	}
	return nil
}

// ValidateWindowDays checks a trailing look-back window
func ValidateWindowDays(days int) error {
	if days < 1 {
		return &Error{Field: "window_days", Message: "window must be at least 1 day"}
	}
	return nil
}

// ValidateLimit checks a result limit
func ValidateLimit(limit int) error {
	if limit < 1 {
		return &Error{Field: "limit", Message: "limit must be at least 1"}
	}
	return nil
}

// ValidateDisplayName trims the name and checks its length
func ValidateDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > MaxDisplayNameLength {
		return "", &Error{
			Field:   "display_name",
			Message: fmt.Sprintf("display name must be at most %d characters", MaxDisplayNameLength),
		}
	}
	return name, nil
}

// ValidatePosition checks a 1-based ordering position
func ValidatePosition(position int) error {
	if position < 1 {
		return &Error{Field: "position", Message: "position must be at least 1"}
	}
	return nil
}

// ValidateAnswers checks that answers cover exactly the expected positions,
// each once and each with an explicit correctness flag. Duplicates are
// reported first, then unexpected or missing positions, then missing flags.
// On success it returns the correctness flag keyed by position.
func ValidateAnswers(expected []int, answers []models.Answer) (map[int]bool, error) {
	seen := make(map[int]int, len(answers))
	var duplicates []int
	for _, answer := range answers {
		seen[answer.Position]++
		if seen[answer.Position] == 2 {
			duplicates = append(duplicates, answer.Position)
		}
	}
	if len(duplicates) > 0 {
		return nil, positionsError("answers", "duplicate positions", duplicates)
	}

	want := make(map[int]bool, len(expected))
	for _, position := range expected {
		want[position] = true
	}

	var unexpected []int
	for position := range seen {
		if !want[position] {
			unexpected = append(unexpected, position)
		}
	}
	if len(unexpected) > 0 {
		return nil, positionsError("answers", "unexpected positions", unexpected)
	}

	var missing []int
	for _, position := range expected {
		if seen[position] == 0 {
			missing = append(missing, position)
		}
	}
	if len(missing) > 0 {
		return nil, positionsError("answers", "missing positions", missing)
	}

	results := make(map[int]bool, len(answers))
	var unflagged []int
	for _, answer := range answers {
		if answer.IsCorrect == nil {
			unflagged = append(unflagged, answer.Position)
			continue
		}
		results[answer.Position] = *answer.IsCorrect
	}
	if len(unflagged) > 0 {
		return nil, positionsError("is_correct", "missing is_correct for positions", unflagged)
	}

	return results, nil
}

func positionsError(field, message string, positions []int) *Error {
	slices.Sort(positions)
	parts := make([]string, len(positions))
	for i, position := range positions {
		parts[i] = strconv.Itoa(position)
	}
	return &Error{
		Field:     field,
		Positions: positions,
		Message:   message + " " + strings.Join(parts, ", "),
	}
}
