package validation

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"wordladder/internal/models"
)

func flag(v bool) *bool { return &v }

func TestValidateCount(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		wantErr bool
	}{
		{name: "minimum", count: 1, wantErr: false},
		{name: "maximum", count: 50, wantErr: false},
		{name: "zero", count: 0, wantErr: true},
		{name: "negative", count: -3, wantErr: true},
		{name: "above maximum", count: 51, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCount(tt.count, 50)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCount(%d) error = %v, wantErr %v", tt.count, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("ValidateCount(%d) error does not match ErrInvalid", tt.count)
			}
		})
	}
}

func TestValidateWindowDays(t *testing.T) {
	if err := ValidateWindowDays(30); err != nil {
		t.Errorf("ValidateWindowDays(30) error = %v", err)
	}
	if err := ValidateWindowDays(0); err == nil {
		t.Error("ValidateWindowDays(0) expected error")
	}
}

func TestValidateDisplayName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "trimmed", input: "  Mei  ", want: "Mei", wantErr: false},
		{name: "empty allowed", input: "", want: "", wantErr: false},
		{name: "multibyte at limit", input: strings.Repeat("明", 100), want: strings.Repeat("明", 100), wantErr: false},
		{name: "too long", input: strings.Repeat("a", 101), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateDisplayName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateDisplayName() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateDisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateAnswers(t *testing.T) {
	expected := []int{1, 2, 3}

	tests := []struct {
		name          string
		answers       []models.Answer
		wantField     string
		wantPositions []int
	}{
		{
			name: "complete",
			answers: []models.Answer{
				{Position: 3, IsCorrect: flag(true)},
				{Position: 1, IsCorrect: flag(false)},
				{Position: 2, IsCorrect: flag(true)},
			},
		},
		{
			name: "missing position",
			answers: []models.Answer{
				{Position: 1, IsCorrect: flag(true)},
				{Position: 2, IsCorrect: flag(true)},
			},
			wantField:     "answers",
			wantPositions: []int{3},
		},
		{
			name: "extra position",
			answers: []models.Answer{
				{Position: 1, IsCorrect: flag(true)},
				{Position: 2, IsCorrect: flag(true)},
				{Position: 3, IsCorrect: flag(true)},
				{Position: 4, IsCorrect: flag(true)},
			},
			wantField:     "answers",
			wantPositions: []int{4},
		},
		{
			name: "duplicate position reported before missing",
			answers: []models.Answer{
				{Position: 1, IsCorrect: flag(true)},
				{Position: 1, IsCorrect: flag(false)},
				{Position: 2, IsCorrect: flag(true)},
			},
			wantField:     "answers",
			wantPositions: []int{1},
		},
		{
			name: "missing flag",
			answers: []models.Answer{
				{Position: 1, IsCorrect: flag(true)},
				{Position: 2},
				{Position: 3, IsCorrect: flag(false)},
			},
			wantField:     "is_correct",
			wantPositions: []int{2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := ValidateAnswers(expected, tt.answers)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateAnswers() error = %v", err)
				}
				if len(results) != 3 || results[1] || !results[2] || !results[3] {
					t.Errorf("ValidateAnswers() = %v", results)
				}
				return
			}

			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("ValidateAnswers() error = %v, want *Error", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
			}
			if !slices.Equal(verr.Positions, tt.wantPositions) {
				t.Errorf("Positions = %v, want %v", verr.Positions, tt.wantPositions)
			}
		})
	}
}
