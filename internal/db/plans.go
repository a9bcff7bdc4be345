package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/fitplan/internal/types"
)

// SavePlan inserts a new plan record. Each call creates a new row.
func (db *DB) SavePlan(ctx context.Context, userID string, profile *types.UserFitnessProfile, plan *types.TrainingPlan) (*types.StoredPlanRecord, error) {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile: %w", err)
	}
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plan: %w", err)
	}

	record := &types.StoredPlanRecord{
		ID:      uuid.New(),
		UserID:  userID,
		Profile: *profile,
		Plan:    *plan,
	}
	err = db.pool.QueryRow(ctx,
		`INSERT INTO training_plans (id, user_id, profile, plan)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		record.ID, userID, profileJSON, planJSON,
	).Scan(&record.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}
	return record, nil
}

// ListPlansByUser returns a user's plans, newest first.
func (db *DB) ListPlansByUser(ctx context.Context, userID string) ([]types.StoredPlanRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, profile, plan, created_at
		 FROM training_plans
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	records := []types.StoredPlanRecord{}
	for rows.Next() {
		record, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plans: %w", err)
	}
	return records, nil
}

// GetPlan returns a plan record by ID, or nil if none exists.
func (db *DB) GetPlan(ctx context.Context, id uuid.UUID) (*types.StoredPlanRecord, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, user_id, profile, plan, created_at
		 FROM training_plans WHERE id = $1`,
		id,
	)
	record, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func scanPlan(row pgx.Row) (*types.StoredPlanRecord, error) {
	var (
		record      types.StoredPlanRecord
		profileJSON []byte
		planJSON    []byte
		createdAt   time.Time
	)
	if err := row.Scan(&record.ID, &record.UserID, &profileJSON, &planJSON, &createdAt); err != nil {
		return nil, fmt.Errorf("failed to scan plan: %w", err)
	}
	if err := json.Unmarshal(profileJSON, &record.Profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile for plan %s: %w", record.ID, err)
	}
	if err := json.Unmarshal(planJSON, &record.Plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan %s: %w", record.ID, err)
	}
	record.CreatedAt = createdAt
	return &record, nil
}
