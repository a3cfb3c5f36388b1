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

type RuleRepository struct {
	collection *mongo.Collection
}

func NewRuleRepository(db *mongo.Database) *RuleRepository {
	return &RuleRepository{
		collection: db.Collection("escalation_rules"),
	}
}

// CreateRule inserts a new escalation rule.
func (r *RuleRepository) CreateRule(ctx context.Context, rule *models.EscalationRule) (*models.EscalationRule, error) {
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, rule)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert escalation rule")
		return nil, fmt.Errorf("failed to create rule: %v", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		rule.ID = id
	}
	return rule, nil
}

// GetRuleByID fetches one rule.
func (r *RuleRepository) GetRuleByID(ctx context.Context, id primitive.ObjectID) (*models.EscalationRule, error) {
	var rule models.EscalationRule
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rule)
	if err != nil {
		return nil, fmt.Errorf("failed to find rule: %v", err)
	}
	return &rule, nil
}

// GetRuleByName is used for the name-uniqueness check on create.
func (r *RuleRepository) GetRuleByName(ctx context.Context, name string) (*models.EscalationRule, error) {
	var rule models.EscalationRule
	err := r.collection.FindOne(ctx, bson.M{"rule_name": name}).Decode(&rule)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// GetRules returns a page of rules plus the total count.
func (r *RuleRepository) GetRules(ctx context.Context, params httputil.PageParams) ([]models.EscalationRule, int64, error) {
	filter := bson.M{}
	if params.SearchTerm != "" {
		filter["rule_name"] = bson.M{"$regex": params.SearchTerm, "$options": "i"}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count rules: %v", err)
	}

	sortField := "rule_priority"
	if params.SortBy != "" {
		sortField = params.SortBy
	}
	direction := -1
	if params.SortDirection == "asc" {
		direction = 1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: direction}}).
		SetSkip(int64(params.PageIndex * params.PageSize)).
		SetLimit(int64(params.PageSize))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch rules: %v", err)
	}
	defer cursor.Close(ctx)

	var rules []models.EscalationRule
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, 0, fmt.Errorf("failed to decode rules: %v", err)
	}
	return rules, total, nil
}

// GetEnabledRules returns every enabled rule ordered by rule priority. The
// escalation evaluator consumes these.
func (r *RuleRepository) GetEnabledRules(ctx context.Context) ([]models.EscalationRule, error) {
	opts := options.Find().SetSort(bson.D{{Key: "rule_priority", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"is_enabled": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch enabled rules: %v", err)
	}
	defer cursor.Close(ctx)

	var rules []models.EscalationRule
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, fmt.Errorf("failed to decode rules: %v", err)
	}
	return rules, nil
}

// UpdateRule replaces a rule's mutable fields.
func (r *RuleRepository) UpdateRule(ctx context.Context, id primitive.ObjectID, rule *models.EscalationRule) (*models.EscalationRule, error) {
	rule.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"rule_name":                rule.RuleName,
		"alert_type":               rule.AlertType,
		"alert_priority":           rule.AlertPriority,
		"action":                   rule.Action,
		"escalation_user_id":       rule.EscalationUserID,
		"escalation_role":          rule.EscalationRole,
		"escalation_emails":        rule.EscalationEmails,
		"escalation_phones":        rule.EscalationPhones,
		"escalation_delay_minutes": rule.EscalationDelayMinutes,
		"max_attempts":             rule.MaxAttempts,
		"rule_priority":            rule.RulePriority,
		"is_enabled":               rule.IsEnabled,
		"updated_at":               rule.UpdatedAt,
	}}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		logrus.WithError(err).Error("Failed to update escalation rule")
		return nil, fmt.Errorf("failed to update rule: %v", err)
	}
	rule.ID = id
	return rule, nil
}

// SetEnabled toggles a single rule.
func (r *RuleRepository) SetEnabled(ctx context.Context, id primitive.ObjectID, enabled bool) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_enabled": enabled, "updated_at": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to toggle rule: %v", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("rule not found")
	}
	return nil
}

// DeleteRule removes a rule.
func (r *RuleRepository) DeleteRule(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete rule: %v", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("rule not found")
	}
	return nil
}
