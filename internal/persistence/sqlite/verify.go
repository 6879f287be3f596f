package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// QuickCheck runs PRAGMA quick_check on an open database. It returns the
// diagnostic rows when the database is damaged, or nil when healthy.
func QuickCheck(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA quick_check;")
	if err != nil {
		return nil, fmt.Errorf("integrity pragma failed: %w", err)
	}
	defer rows.Close()

	var results []string
	for rows.Next() {
		var res string
		if err := rows.Scan(&res); err != nil {
			return nil, fmt.Errorf("scan integrity row: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Healthy is exactly one "ok" row.
	if len(results) == 1 && strings.EqualFold(results[0], "ok") {
		return nil, nil
	}
	if len(results) == 0 {
		return []string{"no results returned from integrity check"}, nil
	}
	return results, nil
}
