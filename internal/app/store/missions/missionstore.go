// internal/app/store/missions/missionstore.go
package missionstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/missionhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateCode = errors.New("a mission with this code already exists")
	ErrBadWeights    = errors.New("course weights must sum to 100")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("missions")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Mission, error) {
	var m models.Mission
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return models.Mission{}, err
	}
	return m, nil
}

func (s *Store) Create(ctx context.Context, m models.Mission) (models.Mission, error) {
	if err := checkWeights(m.Courses); err != nil {
		return models.Mission{}, err
	}
	now := time.Now().UTC()
	m.ID = primitive.NewObjectID()
	m.TitleCI = text.Fold(m.Title)
	if m.Status == "" {
		m.Status = models.MissionDraft
	}
	m.CreatedAt = now
	m.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, m)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Mission{}, ErrDuplicateCode
		}
		return models.Mission{}, err
	}
	return m, nil
}

// SetStatus assigns the mission status. Transitions are free-form; any
// status can move to any other.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UpdateInfo updates title/description/courses. Courses, when provided,
// must still carry weights summing to 100.
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, title, desc string, courses []models.MissionCourse) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if title != "" {
		set["title"] = title
		set["title_ci"] = text.Fold(title)
	}
	set["description"] = desc
	if courses != nil {
		if err := checkWeights(courses); err != nil {
			return err
		}
		set["courses"] = courses
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// List returns missions, optionally filtered by batch and/or status.
func (s *Store) List(ctx context.Context, batchID *primitive.ObjectID, status string) ([]models.Mission, error) {
	filter := bson.M{}
	if batchID != nil {
		filter["batch_id"] = *batchID
	}
	if status != "" {
		filter["status"] = status
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "title_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var missions []models.Mission
	if err := cur.All(ctx, &missions); err != nil {
		return nil, err
	}
	return missions, nil
}

// Delete removes a mission by ID. Returns the number of documents deleted (0 or 1).
// Enrollment and group cleanup is the caller's job (see the missions feature).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func checkWeights(courses []models.MissionCourse) error {
	if len(courses) == 0 {
		return nil
	}
	sum := 0
	for _, c := range courses {
		sum += c.Weight
	}
	if sum != 100 {
		return ErrBadWeights
	}
	return nil
}
