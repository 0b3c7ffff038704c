package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"wordladder/internal/models"
	"wordladder/internal/repository"
)

// LexiconBackup is the TOML layout used to seed and back up the lexicon.
// Words and age bands carry a key that the rest of the file refers to.
type LexiconBackup struct {
	ExportedAt    *time.Time           `toml:"exported_at,omitempty"`
	Words         []WordBackup         `toml:"words"`
	Components    []ComponentBackup    `toml:"components"`
	AgeBands      []AgeBandBackup      `toml:"age_bands"`
	ScreeningSets []ScreeningSetBackup `toml:"screening_sets"`
}

// WordBackup represents a word; Key defaults to Text
type WordBackup struct {
	Key           string `toml:"key"`
	Text          string `toml:"text"`
	Transcription string `toml:"transcription,omitempty"`
	Meaning       string `toml:"meaning,omitempty"`
	SoundGroup    string `toml:"sound_group,omitempty"`
	Stage         int    `toml:"stage"`
	Active        *bool  `toml:"active,omitempty"`
}

// ComponentBackup represents one composition edge by word key
type ComponentBackup struct {
	Parent    string `toml:"parent"`
	Component string `toml:"component"`
	Position  int    `toml:"position"`
}

// AgeBandBackup represents an age band; Key defaults to Label
type AgeBandBackup struct {
	Key       string `toml:"key"`
	Label     string `toml:"label"`
	MinMonths int    `toml:"min_months"`
	MaxMonths int    `toml:"max_months"`
	Active    *bool  `toml:"active,omitempty"`
}

// ScreeningSetBackup represents a screening set with its words in order
type ScreeningSetBackup struct {
	Name     string   `toml:"name"`
	AgeBand  string   `toml:"age_band"`
	CentreID *int64   `toml:"centre_id,omitempty"`
	Active   *bool    `toml:"active,omitempty"`
	Words    []string `toml:"words"`
}

// ImportCounts reports what an import created
type ImportCounts struct {
	Words, Components, AgeBands, ScreeningSets, ScreeningItems int
}

// BackupService exports the lexicon and screening content to TOML and
// imports it back. Sessions are not part of a backup.
type BackupService struct {
	words     *repository.WordRepository
	screening *repository.ScreeningRepository
	graph     *WordGraphService
	logger    *slog.Logger
	now       func() time.Time
}

// NewBackupService creates a new backup service
func NewBackupService(words *repository.WordRepository, screening *repository.ScreeningRepository, graph *WordGraphService, logger *slog.Logger) *BackupService {
	return &BackupService{
		words:     words,
		screening: screening,
		graph:     graph,
		logger:    logger,
		now:       time.Now,
	}
}

// Export writes the lexicon, compositions, age bands and screening sets to w
func (s *BackupService) Export(ctx context.Context, w io.Writer) (*LexiconBackup, error) {
	exportedAt := s.now().UTC().Truncate(time.Second)
	backup := &LexiconBackup{ExportedAt: &exportedAt}

	words, err := s.words.ListAllWords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export words: %w", err)
	}
	for _, word := range words {
		backup.Words = append(backup.Words, WordBackup{
			Key:           wordKey(word.ID),
			Text:          word.Text,
			Transcription: word.Transcription,
			Meaning:       word.Meaning,
			SoundGroup:    string(word.SoundGroup),
			Stage:         word.Stage,
			Active:        boolRef(word.Active),
		})
	}

	edges, err := s.words.ListAllComponents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export components: %w", err)
	}
	for _, edge := range edges {
		backup.Components = append(backup.Components, ComponentBackup{
			Parent:    wordKey(edge.ParentWordID),
			Component: wordKey(edge.ComponentWordID),
			Position:  edge.Position,
		})
	}

	bands, err := s.screening.ListAgeBands(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export age bands: %w", err)
	}
	for _, band := range bands {
		backup.AgeBands = append(backup.AgeBands, AgeBandBackup{
			Key:       bandKey(band.ID),
			Label:     band.Label,
			MinMonths: band.MinMonths,
			MaxMonths: band.MaxMonths,
			Active:    boolRef(band.Active),
		})
	}

	sets, err := s.screening.ListScreeningSets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export screening sets: %w", err)
	}
	for _, set := range sets {
		items, err := s.screening.ListSetItems(ctx, set.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to export screening set %d: %w", set.ID, err)
		}
		keys := make([]string, len(items))
		for i, item := range items {
			keys[i] = wordKey(item.WordID)
		}
		backup.ScreeningSets = append(backup.ScreeningSets, ScreeningSetBackup{
			Name:     set.Name,
			AgeBand:  bandKey(set.AgeBandID),
			CentreID: set.CentreID,
			Active:   boolRef(set.Active),
			Words:    keys,
		})
	}

	if err := toml.NewEncoder(w).Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	s.logger.Info("lexicon exported",
		"words", len(backup.Words),
		"components", len(backup.Components),
		"age_bands", len(backup.AgeBands),
		"screening_sets", len(backup.ScreeningSets))
	return backup, nil
}

// ReadBackup decodes a TOML backup or seed file
func ReadBackup(r io.Reader) (*LexiconBackup, error) {
	var backup LexiconBackup
	if err := toml.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("failed to parse backup: %w", err)
	}
	return &backup, nil
}

// Import inserts the backup contents in dependency order. Compositions go
// through the word graph so cycles and position clashes are rejected like
// any other edit. Import stops at the first error; rows created before it
// remain.
func (s *BackupService) Import(ctx context.Context, backup *LexiconBackup) (ImportCounts, error) {
	var counts ImportCounts

	wordIDs := make(map[string]int64, len(backup.Words))
	for _, w := range backup.Words {
		key := w.Key
		if key == "" {
			key = w.Text
		}
		if _, dup := wordIDs[key]; dup {
			return counts, fmt.Errorf("word %q: duplicate key", key)
		}
		group, err := models.ParseSoundGroup(w.SoundGroup)
		if err != nil {
			return counts, fmt.Errorf("word %q: %w", key, err)
		}

		created, err := s.words.CreateWord(ctx, models.Word{
			Text:          strings.TrimSpace(w.Text),
			Transcription: w.Transcription,
			Meaning:       w.Meaning,
			SoundGroup:    group,
			Stage:         w.Stage,
			Active:        boolOr(w.Active, true),
		})
		if err != nil {
			return counts, fmt.Errorf("word %q: %w", key, err)
		}
		wordIDs[key] = created.ID
		counts.Words++
	}

	lookupWord := func(key string) (int64, error) {
		id, ok := wordIDs[key]
		if !ok {
			return 0, fmt.Errorf("unknown word key %q", key)
		}
		return id, nil
	}

	for _, c := range backup.Components {
		parentID, err := lookupWord(c.Parent)
		if err != nil {
			return counts, err
		}
		componentID, err := lookupWord(c.Component)
		if err != nil {
			return counts, err
		}
		if _, err := s.graph.InsertComponent(ctx, parentID, componentID, c.Position); err != nil {
			return counts, fmt.Errorf("component %s -> %s: %w", c.Parent, c.Component, err)
		}
		counts.Components++
	}

	bandIDs := make(map[string]int64, len(backup.AgeBands))
	for _, b := range backup.AgeBands {
		key := b.Key
		if key == "" {
			key = b.Label
		}
		id, err := s.screening.CreateAgeBand(ctx, models.AgeBand{
			Label:     b.Label,
			MinMonths: b.MinMonths,
			MaxMonths: b.MaxMonths,
			Active:    boolOr(b.Active, true),
		})
		if err != nil {
			return counts, fmt.Errorf("age band %q: %w", key, err)
		}
		bandIDs[key] = id
		counts.AgeBands++
	}

	for _, set := range backup.ScreeningSets {
		bandID, ok := bandIDs[set.AgeBand]
		if !ok {
			return counts, fmt.Errorf("screening set %q: unknown age band %q", set.Name, set.AgeBand)
		}
		setID, err := s.screening.CreateScreeningSet(ctx, models.ScreeningSet{
			Name:      set.Name,
			AgeBandID: bandID,
			CentreID:  set.CentreID,
			Active:    boolOr(set.Active, true),
		})
		if err != nil {
			return counts, fmt.Errorf("screening set %q: %w", set.Name, err)
		}
		for i, key := range set.Words {
			wordID, err := lookupWord(key)
			if err != nil {
				return counts, fmt.Errorf("screening set %q: %w", set.Name, err)
			}
			if err := s.screening.AddScreeningItem(ctx, models.ScreeningItem{
				ScreeningSetID: setID,
				WordID:         wordID,
				Position:       i + 1,
			}); err != nil {
				return counts, fmt.Errorf("screening set %q: %w", set.Name, err)
			}
			counts.ScreeningItems++
		}
		counts.ScreeningSets++
	}

	s.logger.Info("lexicon imported",
		"words", counts.Words,
		"components", counts.Components,
		"age_bands", counts.AgeBands,
		"screening_sets", counts.ScreeningSets)
	return counts, nil
}

func wordKey(id int64) string { return "w" + strconv.FormatInt(id, 10) }

func bandKey(id int64) string { return "b" + strconv.FormatInt(id, 10) }

func boolRef(b bool) *bool { return &b }

func boolOr(b *bool, fallback bool) bool {
	if b == nil {
		return fallback
	}
	return *b
}
