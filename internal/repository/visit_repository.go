package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Aldiyar2201/Visitor_Manager/internal/models"
	"github.com/Aldiyar2201/Visitor_Manager/pkg/httputil"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type VisitRepository struct {
	collection *mongo.Collection
}

func NewVisitRepository(db *mongo.Database) *VisitRepository {
	return &VisitRepository{
		collection: db.Collection("visits"),
	}
}

// CreateVisit inserts a new visit.
func (r *VisitRepository) CreateVisit(ctx context.Context, visit *models.Visit) (*models.Visit, error) {
	visit.CreatedAt = time.Now()
	visit.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, visit)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert visit")
		return nil, fmt.Errorf("failed to create visit: %v", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		visit.ID = id
	}
	return visit, nil
}

// GetVisitByID fetches one visit.
func (r *VisitRepository) GetVisitByID(ctx context.Context, id primitive.ObjectID) (*models.Visit, error) {
	var visit models.Visit
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&visit)
	if err != nil {
		return nil, fmt.Errorf("failed to find visit: %v", err)
	}
	return &visit, nil
}

// GetVisits returns a page of visits, optionally restricted to one host.
func (r *VisitRepository) GetVisits(ctx context.Context, hostID *primitive.ObjectID, params httputil.PageParams) ([]models.Visit, int64, error) {
	filter := bson.M{}
	if hostID != nil {
		filter["host_id"] = *hostID
	}
	if params.SearchTerm != "" {
		filter["$or"] = []bson.M{
			{"visitor_name": bson.M{"$regex": params.SearchTerm, "$options": "i"}},
			{"company": bson.M{"$regex": params.SearchTerm, "$options": "i"}},
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count visits: %v", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "scheduled_at", Value: -1}}).
		SetSkip(int64(params.PageIndex * params.PageSize)).
		SetLimit(int64(params.PageSize))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch visits: %v", err)
	}
	defer cursor.Close(ctx)

	var visits []models.Visit
	if err := cursor.All(ctx, &visits); err != nil {
		return nil, 0, fmt.Errorf("failed to decode visits: %v", err)
	}
	return visits, total, nil
}

// UpdateStatus moves a visit to a new status, stamping the transition time.
func (r *VisitRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Visit, error) {
	now := time.Now()
	set := bson.M{"status": status, "updated_at": now}
	switch status {
	case models.VisitStatusCheckedIn:
		set["checked_in_at"] = now
	case models.VisitStatusCheckedOut:
		set["checked_out_at"] = now
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("failed to update visit status: %v", err)
	}
	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("visit not found")
	}
	return r.GetVisitByID(ctx, id)
}
