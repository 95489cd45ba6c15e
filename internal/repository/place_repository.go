package repository

import (
	"context"
	"fmt"

	"github.com/mapda-dev/mapda-api/pkg/database"
)

// placeRepository implements PlaceRepository interface
type placeRepository struct {
	db *database.Postgres
}

// NewPlaceRepository creates a new place repository
func NewPlaceRepository(db *database.Postgres) PlaceRepository {
	return &placeRepository{db: db}
}

// SearchNames returns distinct active place names on the given campus whose
// name contains the keyword, case-insensitively.
func (r *placeRepository) SearchNames(ctx context.Context, university, keyword string, limit int) ([]string, error) {
	query := `
		SELECT DISTINCT place_name
		FROM places_data
		WHERE university = $1
		  AND status = 'Active'
		  AND place_name ILIKE '%' || $2 || '%'
		ORDER BY place_name
		LIMIT $3
	`

	rows, err := r.db.DB.QueryContext(ctx, query, university, keyword, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search places: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan place name: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate place names: %w", err)
	}
	return names, nil
}
