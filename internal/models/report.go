package models

// MissedWord is a word with the number of times it was answered incorrectly
type MissedWord struct {
	Word        Word
	MissedCount int
}

// SoundGroupCount is the number of misses falling in one sound group
type SoundGroupCount struct {
	SoundGroup SoundGroup
	Count      int
}

// SessionSummary breaks down the misses of one submitted session
type SessionSummary struct {
	Session          Session
	Correct          int
	Total            int
	Missed           []MissedItem
	SoundGroups      []SoundGroupCount
	RecommendedFocus []SoundGroupCount
}
