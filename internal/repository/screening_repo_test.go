package repository

import (
	"context"
	"testing"

	"wordladder/internal/models"
)

func TestScreeningRepository_FindActiveSet(t *testing.T) {
	db := newTestDB(t)
	repo := NewScreeningRepository(db)
	ctx := context.Background()

	bandID, err := repo.CreateAgeBand(ctx, models.AgeBand{Label: "3-4", MinMonths: 36, MaxMonths: 48, Active: true})
	if err != nil {
		t.Fatalf("CreateAgeBand() error = %v", err)
	}

	centre := int64(3)
	otherCentre := int64(8)

	defaultID, err := repo.CreateScreeningSet(ctx, models.ScreeningSet{Name: "default", AgeBandID: bandID, Active: true})
	if err != nil {
		t.Fatalf("CreateScreeningSet() error = %v", err)
	}
	if _, err := repo.CreateScreeningSet(ctx, models.ScreeningSet{Name: "retired", AgeBandID: bandID, CentreID: &centre, Active: false}); err != nil {
		t.Fatalf("CreateScreeningSet() error = %v", err)
	}
	centreID, err := repo.CreateScreeningSet(ctx, models.ScreeningSet{Name: "centre", AgeBandID: bandID, CentreID: &centre, Active: true})
	if err != nil {
		t.Fatalf("CreateScreeningSet() error = %v", err)
	}

	tests := []struct {
		name   string
		centre *int64
		want   int64
	}{
		{name: "centre set preferred", centre: &centre, want: centreID},
		{name: "other centre falls back to default", centre: &otherCentre, want: defaultID},
		{name: "no centre uses default", centre: nil, want: defaultID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := repo.FindActiveSet(ctx, bandID, tt.centre)
			if err != nil {
				t.Fatalf("FindActiveSet() error = %v", err)
			}
			if set == nil || set.ID != tt.want {
				t.Errorf("FindActiveSet() = %+v, want set %d", set, tt.want)
			}
		})
	}

	set, err := repo.FindActiveSet(ctx, bandID+1, nil)
	if err != nil || set != nil {
		t.Errorf("FindActiveSet(unknown band) = %+v, %v", set, err)
	}
}

func TestScreeningRepository_ItemsAndBands(t *testing.T) {
	db := newTestDB(t)
	repo := NewScreeningRepository(db)
	words := NewWordRepository(db)
	ctx := context.Background()

	bandID, err := repo.CreateAgeBand(ctx, models.AgeBand{Label: "4-5", MinMonths: 48, MaxMonths: 60, Active: true})
	if err != nil {
		t.Fatalf("CreateAgeBand() error = %v", err)
	}
	if _, err := repo.CreateAgeBand(ctx, models.AgeBand{Label: "old", Active: false}); err != nil {
		t.Fatalf("CreateAgeBand() error = %v", err)
	}

	setID, err := repo.CreateScreeningSet(ctx, models.ScreeningSet{Name: "s", AgeBandID: bandID, Active: true})
	if err != nil {
		t.Fatalf("CreateScreeningSet() error = %v", err)
	}
	word := mustCreateWord(t, words, "山", 1, models.SoundGroupInitial, true)
	for position := 1; position <= 2; position++ {
		if err := repo.AddScreeningItem(ctx, models.ScreeningItem{ScreeningSetID: setID, WordID: word.ID, Position: position}); err != nil {
			t.Fatalf("AddScreeningItem() error = %v", err)
		}
	}

	count, err := repo.CountSetItems(ctx, setID)
	if err != nil || count != 2 {
		t.Errorf("CountSetItems() = %d, %v", count, err)
	}

	bands, err := repo.ListActiveAgeBands(ctx)
	if err != nil {
		t.Fatalf("ListActiveAgeBands() error = %v", err)
	}
	if len(bands) != 1 || bands[0].Label != "4-5" {
		t.Errorf("ListActiveAgeBands() = %+v", bands)
	}

	band, err := repo.GetAgeBandByID(ctx, bandID)
	if err != nil || band == nil || band.MaxMonths != 60 {
		t.Errorf("GetAgeBandByID() = %+v, %v", band, err)
	}
}
