package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jonathan/fitplan/internal/types"
)

type exerciseDocument struct {
	DBID             string   `bson:"_id"`
	ID               string   `bson:"id"`
	Name             string   `bson:"name"`
	BodyPart         string   `bson:"bodyPart"`
	Equipment        string   `bson:"equipment"`
	Target           string   `bson:"target"`
	GifURL           string   `bson:"gifUrl"`
	SecondaryMuscles []string `bson:"secondaryMuscles"`
	Instructions     []string `bson:"instructions"`
}

func (d *exerciseDocument) exercise() types.CatalogExercise {
	return types.CatalogExercise{
		DBID:             d.DBID,
		ID:               d.ID,
		Name:             d.Name,
		BodyPart:         d.BodyPart,
		Equipment:        d.Equipment,
		Target:           d.Target,
		GifURL:           d.GifURL,
		SecondaryMuscles: d.SecondaryMuscles,
		Instructions:     d.Instructions,
	}
}

// SearchExercises runs a case-insensitive substring search over name, body part,
// equipment, target and secondary muscles. Matching, ranking and paging all run
// server-side in one aggregation, ranked the same way as the PostgreSQL catalog.
func (s *Store) SearchExercises(ctx context.Context, query string, page, limit int) (*types.CatalogPage, error) {
	page, limit = types.NormalizePage(page, limit)

	cursor, err := s.exercises.Aggregate(ctx, searchPipeline(query, page, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to search exercises: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var facets []searchFacets
	if err := cursor.All(ctx, &facets); err != nil {
		return nil, fmt.Errorf("failed to decode exercises: %w", err)
	}

	result := &types.CatalogPage{Items: []types.CatalogExercise{}, Page: page, Limit: limit}
	if len(facets) == 0 {
		return result, nil
	}
	for i := range facets[0].Items {
		result.Items = append(result.Items, facets[0].Items[i].exercise())
	}
	if len(facets[0].Total) > 0 {
		result.Total = facets[0].Total[0].Count
	}
	return result, nil
}

// searchFacets is the single document produced by searchPipeline.
type searchFacets struct {
	Items []exerciseDocument `bson:"items"`
	Total []struct {
		Count int64 `bson:"count"`
	} `bson:"total"`
}

// searchPipeline orders exact name matches first, then name prefixes, then name
// substrings, then matches on other fields; ties by shorter name, then name.
func searchPipeline(query string, page, limit int) mongo.Pipeline {
	q := strings.ToLower(strings.TrimSpace(query))

	match := bson.M{}
	var rank any = 0
	if q != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
		match = bson.M{"$or": bson.A{
			bson.M{"name": pattern},
			bson.M{"bodyPart": pattern},
			bson.M{"equipment": pattern},
			bson.M{"target": pattern},
			bson.M{"secondaryMuscles": pattern},
		}}
		position := bson.M{"$indexOfCP": bson.A{bson.M{"$toLower": "$name"}, q}}
		rank = bson.M{"$switch": bson.M{
			"branches": bson.A{
				bson.M{"case": bson.M{"$eq": bson.A{bson.M{"$toLower": "$name"}, q}}, "then": 0},
				bson.M{"case": bson.M{"$eq": bson.A{position, 0}}, "then": 1},
				bson.M{"case": bson.M{"$gt": bson.A{position, 0}}, "then": 2},
			},
			"default": 3,
		}}
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$addFields", Value: bson.M{
			"rank":       rank,
			"nameLength": bson.M{"$strLenCP": "$name"},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "rank", Value: 1},
			{Key: "nameLength", Value: 1},
			{Key: "name", Value: 1},
		}}},
		{{Key: "$facet", Value: bson.M{
			"items": bson.A{
				bson.M{"$skip": int64((page - 1) * limit)},
				bson.M{"$limit": int64(limit)},
			},
			"total": bson.A{bson.M{"$count": "count"}},
		}}},
	}
}

// GetExerciseByID returns a catalog exercise by its ExerciseDB id, or nil.
func (s *Store) GetExerciseByID(ctx context.Context, exerciseID string) (*types.CatalogExercise, error) {
	var doc exerciseDocument
	err := s.exercises.FindOne(ctx, bson.M{"id": exerciseID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get exercise %s: %w", exerciseID, err)
	}
	ex := doc.exercise()
	return &ex, nil
}

// UpsertExercises inserts or updates catalog exercises keyed by ExerciseDB id.
// It returns the number of documents written.
func (s *Store) UpsertExercises(ctx context.Context, exercises []types.CatalogExercise) (int, error) {
	if len(exercises) == 0 {
		return 0, nil
	}

	models := make([]mongo.WriteModel, 0, len(exercises))
	for _, ex := range exercises {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"id": ex.ID}).
			SetUpdate(bson.M{
				"$set": bson.M{
					"name":             ex.Name,
					"bodyPart":         ex.BodyPart,
					"equipment":        ex.Equipment,
					"target":           ex.Target,
					"gifUrl":           ex.GifURL,
					"secondaryMuscles": nonNil(ex.SecondaryMuscles),
					"instructions":     nonNil(ex.Instructions),
				},
				"$setOnInsert": bson.M{"_id": uuid.NewString()},
			}).
			SetUpsert(true))
	}

	res, err := s.exercises.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, fmt.Errorf("failed to upsert exercises: %w", err)
	}
	return int(res.UpsertedCount + res.MatchedCount), nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
