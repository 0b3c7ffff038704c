package models

// AgeBand groups screening sets by learner age
type AgeBand struct {
	ID        int64
	Label     string
	MinMonths int
	MaxMonths int
	Active    bool
}

// ScreeningSet is a pre-authored ordered question list for an age band.
// A nil CentreID marks the default set used when a centre has none of its own.
type ScreeningSet struct {
	ID        int64
	Name      string
	AgeBandID int64
	CentreID  *int64
	Active    bool
}

// ScreeningItem is one ordered entry of a screening set
type ScreeningItem struct {
	ScreeningSetID int64
	WordID         int64
	Position       int
}
