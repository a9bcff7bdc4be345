package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/fitplan/internal/types"
)

// likeEscaper escapes LIKE wildcards so user text matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchExercises runs a case-insensitive substring search over name, body part,
// equipment, target and secondary muscles. Results are ranked exact name match
// first, then name prefix, then name substring, then matches on other fields.
// An empty query lists the catalog by name.
func (db *DB) SearchExercises(ctx context.Context, query string, page, limit int) (*types.CatalogPage, error) {
	page, limit = types.NormalizePage(page, limit)
	query = strings.TrimSpace(query)
	pattern := "%" + likeEscaper.Replace(query) + "%"
	prefix := likeEscaper.Replace(query) + "%"

	rows, err := db.pool.Query(ctx,
		`SELECT db_id::text, exercise_id, name, body_part, equipment, target, gif_url,
		        secondary_muscles, instructions, COUNT(*) OVER() AS total
		 FROM exercises
		 WHERE $1 = ''
		    OR name ILIKE $2
		    OR body_part ILIKE $2
		    OR equipment ILIKE $2
		    OR target ILIKE $2
		    OR EXISTS (SELECT 1 FROM unnest(secondary_muscles) AS m WHERE m ILIKE $2)
		 ORDER BY
		    CASE
		        WHEN LOWER(name) = LOWER($1) THEN 0
		        WHEN name ILIKE $3 THEN 1
		        WHEN name ILIKE $2 THEN 2
		        ELSE 3
		    END,
		    LENGTH(name), name
		 LIMIT $4 OFFSET $5`,
		query, pattern, prefix, limit, (page-1)*limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search exercises: %w", err)
	}
	defer rows.Close()

	result := &types.CatalogPage{Items: []types.CatalogExercise{}, Page: page, Limit: limit}
	for rows.Next() {
		var ex types.CatalogExercise
		if err := rows.Scan(&ex.DBID, &ex.ID, &ex.Name, &ex.BodyPart, &ex.Equipment,
			&ex.Target, &ex.GifURL, &ex.SecondaryMuscles, &ex.Instructions, &result.Total); err != nil {
			return nil, fmt.Errorf("failed to scan exercise: %w", err)
		}
		result.Items = append(result.Items, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exercises: %w", err)
	}

	if len(result.Items) == 0 && page > 1 {
		// OFFSET past the end returns no rows and therefore no window total.
		if err := db.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM exercises
			 WHERE $1 = '' OR name ILIKE $2 OR body_part ILIKE $2 OR equipment ILIKE $2 OR target ILIKE $2
			    OR EXISTS (SELECT 1 FROM unnest(secondary_muscles) AS m WHERE m ILIKE $2)`,
			query, pattern,
		).Scan(&result.Total); err != nil {
			return nil, fmt.Errorf("failed to count exercises: %w", err)
		}
	}
	return result, nil
}

// GetExerciseByID returns a catalog exercise by its ExerciseDB id, or nil.
func (db *DB) GetExerciseByID(ctx context.Context, exerciseID string) (*types.CatalogExercise, error) {
	var ex types.CatalogExercise
	err := db.pool.QueryRow(ctx,
		`SELECT db_id::text, exercise_id, name, body_part, equipment, target, gif_url,
		        secondary_muscles, instructions
		 FROM exercises WHERE exercise_id = $1`,
		exerciseID,
	).Scan(&ex.DBID, &ex.ID, &ex.Name, &ex.BodyPart, &ex.Equipment,
		&ex.Target, &ex.GifURL, &ex.SecondaryMuscles, &ex.Instructions)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get exercise %s: %w", exerciseID, err)
	}
	return &ex, nil
}

// UpsertExercises inserts or updates catalog exercises keyed by ExerciseDB id.
// It returns the number of rows written.
func (db *DB) UpsertExercises(ctx context.Context, exercises []types.CatalogExercise) (int, error) {
	if len(exercises) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, ex := range exercises {
		batch.Queue(
			`INSERT INTO exercises (exercise_id, name, body_part, equipment, target, gif_url, secondary_muscles, instructions)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (exercise_id) DO UPDATE SET
			     name = EXCLUDED.name,
			     body_part = EXCLUDED.body_part,
			     equipment = EXCLUDED.equipment,
			     target = EXCLUDED.target,
			     gif_url = EXCLUDED.gif_url,
			     secondary_muscles = EXCLUDED.secondary_muscles,
			     instructions = EXCLUDED.instructions,
			     updated_at = NOW()`,
			ex.ID, ex.Name, ex.BodyPart, ex.Equipment, ex.Target, ex.GifURL,
			nonNil(ex.SecondaryMuscles), nonNil(ex.Instructions),
		)
	}

	results := db.pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	for _, ex := range exercises {
		if _, err := results.Exec(); err != nil {
			return 0, fmt.Errorf("failed to upsert exercise %s: %w", ex.ID, err)
		}
	}
	return len(exercises), nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
