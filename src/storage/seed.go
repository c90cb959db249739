package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
)

// SeedFood is one entry of a food catalog file.
type SeedFood struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	MinMonth    int    `json:"min_month"`
	AllergyRisk int    `json:"allergy_risk"`
	SortOrder   int    `json:"sort_order"`
}

// SeedFoods loads a JSON food catalog and inserts the entries that are
// not already present, keyed by name. It returns how many rows were
// added. Reads go through afero so tests can seed from memory.
func SeedFoods(ctx context.Context, db Execer, fsys afero.Fs, path string) (int, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return 0, fmt.Errorf("failed to read food catalog: %w", err)
	}

	var foods []SeedFood
	if err := json.Unmarshal(data, &foods); err != nil {
		return 0, fmt.Errorf("failed to parse food catalog: %w", err)
	}

	inserted := 0
	for _, f := range foods {
		if f.Name == "" || f.Category == "" {
			return inserted, fmt.Errorf("food catalog entry missing name or category: %+v", f)
		}
		query := `INSERT OR IGNORE INTO foods (name, category, min_month, allergy_risk, is_active, sort_order) VALUES (?, ?, ?, ?, 1, ?)`
		res, err := db.ExecContext(ctx, query, f.Name, f.Category, f.MinMonth, f.AllergyRisk, f.SortOrder)
		if err != nil {
			return inserted, fmt.Errorf("failed to seed food %q: %w", f.Name, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			inserted++
		}
	}
	return inserted, nil
}
