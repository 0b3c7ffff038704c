package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wordladder/internal/database"
	"wordladder/internal/models"
)

// ScreeningRepository handles age bands, screening sets and their items
type ScreeningRepository struct {
	db database.DBTX
}

// NewScreeningRepository creates a new screening repository
func NewScreeningRepository(db database.DBTX) *ScreeningRepository {
	return &ScreeningRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *ScreeningRepository) WithTx(tx *database.Tx) *ScreeningRepository {
	return &ScreeningRepository{db: tx}
}

// CreateAgeBand inserts an age band and returns its ID
func (r *ScreeningRepository) CreateAgeBand(ctx context.Context, band models.AgeBand) (int64, error) {
	query := `INSERT INTO age_bands (label, min_months, max_months, is_active) VALUES (?, ?, ?, ?)`

	id, err := r.db.ExecReturningID(ctx, query, band.Label, band.MinMonths, band.MaxMonths, band.Active)
	if err != nil {
		return 0, fmt.Errorf("failed to create age band: %w", err)
	}
	return id, nil
}

// GetAgeBandByID retrieves an age band. It returns nil, nil when absent.
func (r *ScreeningRepository) GetAgeBandByID(ctx context.Context, id int64) (*models.AgeBand, error) {
	query := `SELECT id, label, min_months, max_months, is_active FROM age_bands WHERE id = ?`

	band := &models.AgeBand{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&band.ID,
		&band.Label,
		&band.MinMonths,
		&band.MaxMonths,
		&band.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get age band: %w", err)
	}
	return band, nil
}

// ListActiveAgeBands returns active age bands ordered by their month range
func (r *ScreeningRepository) ListActiveAgeBands(ctx context.Context) ([]models.AgeBand, error) {
	return r.listAgeBands(ctx, `WHERE is_active = ?`, true)
}

// ListAgeBands returns every age band ordered by id
func (r *ScreeningRepository) ListAgeBands(ctx context.Context) ([]models.AgeBand, error) {
	return r.listAgeBands(ctx, ``)
}

func (r *ScreeningRepository) listAgeBands(ctx context.Context, where string, args ...any) ([]models.AgeBand, error) {
	order := `ORDER BY id ASC`
	if where != "" {
		order = `ORDER BY min_months ASC, id ASC`
	}
	query := `SELECT id, label, min_months, max_months, is_active FROM age_bands ` + where + ` ` + order

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query age bands: %w", err)
	}
	defer rows.Close()

	var bands []models.AgeBand
	for rows.Next() {
		var band models.AgeBand
		if err := rows.Scan(&band.ID, &band.Label, &band.MinMonths, &band.MaxMonths, &band.Active); err != nil {
			return nil, fmt.Errorf("failed to scan age band: %w", err)
		}
		bands = append(bands, band)
	}
	return bands, rows.Err()
}

// CreateScreeningSet inserts a screening set and returns its ID
func (r *ScreeningRepository) CreateScreeningSet(ctx context.Context, set models.ScreeningSet) (int64, error) {
	query := `INSERT INTO screening_sets (name, age_band_id, centre_id, is_active) VALUES (?, ?, ?, ?)`

	id, err := r.db.ExecReturningID(ctx, query, set.Name, set.AgeBandID, nullInt64(set.CentreID), set.Active)
	if err != nil {
		return 0, fmt.Errorf("failed to create screening set: %w", err)
	}
	return id, nil
}

// AddScreeningItem appends a word to a screening set at position
func (r *ScreeningRepository) AddScreeningItem(ctx context.Context, item models.ScreeningItem) error {
	query := `INSERT INTO screening_items (screening_set_id, word_id, position) VALUES (?, ?, ?)`

	if _, err := r.db.ExecContext(ctx, query, item.ScreeningSetID, item.WordID, item.Position); err != nil {
		return fmt.Errorf("failed to add screening item: %w", err)
	}
	return nil
}

// FindActiveSet picks the active set for an age band. A set scoped to
// centreID wins over a centre-less default; within each tier the lowest
// id wins. It returns nil, nil when neither tier has a set.
func (r *ScreeningRepository) FindActiveSet(ctx context.Context, ageBandID int64, centreID *int64) (*models.ScreeningSet, error) {
	if centreID != nil {
		query := `
			SELECT id, name, age_band_id, centre_id, is_active
			FROM screening_sets
			WHERE age_band_id = ? AND centre_id = ? AND is_active = ?
			ORDER BY id ASC
			LIMIT 1
		`
		set, err := r.scanSet(r.db.QueryRowContext(ctx, query, ageBandID, *centreID, true))
		if err != nil || set != nil {
			return set, err
		}
	}

	query := `
		SELECT id, name, age_band_id, centre_id, is_active
		FROM screening_sets
		WHERE age_band_id = ? AND centre_id IS NULL AND is_active = ?
		ORDER BY id ASC
		LIMIT 1
	`
	return r.scanSet(r.db.QueryRowContext(ctx, query, ageBandID, true))
}

func (r *ScreeningRepository) scanSet(row *sql.Row) (*models.ScreeningSet, error) {
	set := &models.ScreeningSet{}
	var centreID sql.NullInt64
	err := row.Scan(&set.ID, &set.Name, &set.AgeBandID, &centreID, &set.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get screening set: %w", err)
	}
	set.CentreID = int64Ptr(centreID)
	return set, nil
}

// CountSetItems returns the number of items in a screening set
func (r *ScreeningRepository) CountSetItems(ctx context.Context, setID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM screening_items WHERE screening_set_id = ?`, setID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count screening items: %w", err)
	}
	return count, nil
}

// ListScreeningSets returns every screening set ordered by id
func (r *ScreeningRepository) ListScreeningSets(ctx context.Context) ([]models.ScreeningSet, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, age_band_id, centre_id, is_active FROM screening_sets ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query screening sets: %w", err)
	}
	defer rows.Close()

	var sets []models.ScreeningSet
	for rows.Next() {
		var set models.ScreeningSet
		var centreID sql.NullInt64
		if err := rows.Scan(&set.ID, &set.Name, &set.AgeBandID, &centreID, &set.Active); err != nil {
			return nil, fmt.Errorf("failed to scan screening set: %w", err)
		}
		set.CentreID = int64Ptr(centreID)
		sets = append(sets, set)
	}
	return sets, rows.Err()
}

// ListSetItems returns the items of a screening set ordered by position
func (r *ScreeningRepository) ListSetItems(ctx context.Context, setID int64) ([]models.ScreeningItem, error) {
	query := `
		SELECT screening_set_id, word_id, position
		FROM screening_items
		WHERE screening_set_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, setID)
	if err != nil {
		return nil, fmt.Errorf("failed to query screening items: %w", err)
	}
	defer rows.Close()

	var items []models.ScreeningItem
	for rows.Next() {
		var item models.ScreeningItem
		if err := rows.Scan(&item.ScreeningSetID, &item.WordID, &item.Position); err != nil {
			return nil, fmt.Errorf("failed to scan screening item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
