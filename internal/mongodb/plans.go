package mongodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jonathan/fitplan/internal/types"
)

// planDocument is the stored shape of a plan record. Profile and plan are kept
// as documents built from their JSON encoding so field names match the API.
type planDocument struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"userId"`
	Profile   bson.Raw  `bson:"profile"`
	Plan      bson.Raw  `bson:"plan"`
	CreatedAt time.Time `bson:"createdAt"`
}

// SavePlan inserts a new plan record. Each call creates a new document.
func (s *Store) SavePlan(ctx context.Context, userID string, profile *types.UserFitnessProfile, plan *types.TrainingPlan) (*types.StoredPlanRecord, error) {
	profileDoc, err := toDocument(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	planDoc, err := toDocument(plan)
	if err != nil {
		return nil, fmt.Errorf("failed to encode plan: %w", err)
	}

	record := &types.StoredPlanRecord{
		ID:        uuid.New(),
		UserID:    userID,
		Profile:   *profile,
		Plan:      *plan,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	doc := planDocument{
		ID:        record.ID.String(),
		UserID:    userID,
		Profile:   profileDoc,
		Plan:      planDoc,
		CreatedAt: record.CreatedAt,
	}
	if _, err := s.plans.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}
	return record, nil
}

// ListPlansByUser returns a user's plans, newest first.
func (s *Store) ListPlansByUser(ctx context.Context, userID string) ([]types.StoredPlanRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := s.plans.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var docs []planDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode plans: %w", err)
	}

	records := make([]types.StoredPlanRecord, 0, len(docs))
	for i := range docs {
		record, err := docs[i].record()
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}

// GetPlan returns a plan record by ID, or nil if none exists.
func (s *Store) GetPlan(ctx context.Context, id uuid.UUID) (*types.StoredPlanRecord, error) {
	var doc planDocument
	err := s.plans.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get plan %s: %w", id, err)
	}
	return doc.record()
}

func (d *planDocument) record() (*types.StoredPlanRecord, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid plan id %q: %w", d.ID, err)
	}
	record := &types.StoredPlanRecord{ID: id, UserID: d.UserID, CreatedAt: d.CreatedAt.UTC()}
	if err := fromDocument(d.Profile, &record.Profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile for plan %s: %w", d.ID, err)
	}
	if err := fromDocument(d.Plan, &record.Plan); err != nil {
		return nil, fmt.Errorf("failed to decode plan %s: %w", d.ID, err)
	}
	return record, nil
}

// toDocument converts a value to BSON through its JSON encoding.
func toDocument(v any) (bson.Raw, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.Raw
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// fromDocument is the inverse of toDocument.
func fromDocument(doc bson.Raw, v any) error {
	data, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
