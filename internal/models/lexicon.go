package models

import (
	"fmt"
	"strings"
	"time"
)

// SoundGroup is the phonetic category tag carried by a word.
type SoundGroup string

const (
	SoundGroupInitial   SoundGroup = "INITIAL"
	SoundGroupFinal     SoundGroup = "FINAL"
	SoundGroupVowel     SoundGroup = "VOWEL"
	SoundGroupDiphthong SoundGroup = "DIPHTHONG"
	SoundGroupOther     SoundGroup = "OTHER"
)

// SoundGroups lists every sound group in enumeration order. Ties in focus
// rankings are broken by this order.
var SoundGroups = []SoundGroup{
	SoundGroupInitial,
	SoundGroupFinal,
	SoundGroupVowel,
	SoundGroupDiphthong,
	SoundGroupOther,
}

// Rank returns the enumeration index of the group, or len(SoundGroups) for
// unknown values.
func (g SoundGroup) Rank() int {
	for i, group := range SoundGroups {
		if group == g {
			return i
		}
	}
	return len(SoundGroups)
}

// Valid reports whether g is one of the known sound groups.
func (g SoundGroup) Valid() bool {
	return g.Rank() < len(SoundGroups)
}

// ParseSoundGroup converts user input to a SoundGroup. Empty input maps to OTHER.
func ParseSoundGroup(value string) (SoundGroup, error) {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "" {
		return SoundGroupOther, nil
	}
	group := SoundGroup(value)
	if !group.Valid() {
		return "", fmt.Errorf("unknown sound group %q", value)
	}
	return group, nil
}

// Word represents a vocabulary item in the lexicon
type Word struct {
	ID            int64
	Text          string
	Transcription string
	Meaning       string
	SoundGroup    SoundGroup
	Stage         int
	Active        bool
	CreatedAt     time.Time
}

// WordComponent is a directed composition edge from a parent word to one of
// its component words.
type WordComponent struct {
	ParentWordID    int64
	ComponentWordID int64
	Position        int
	Component       Word
}
