package services

import (
	"context"
	"fmt"

	"github.com/Aldiyar2201/Visitor_Manager/internal/models"
	"github.com/Aldiyar2201/Visitor_Manager/pkg/httputil"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RuleValidationError carries the per-field validation messages to the
// handler, which surfaces them inline.
type RuleValidationError struct {
	Validation models.RuleValidation
}

func (e *RuleValidationError) Error() string {
	return fmt.Sprintf("rule validation failed: %d field error(s)", len(e.Validation.Errors))
}

type ruleStore interface {
	CreateRule(ctx context.Context, rule *models.EscalationRule) (*models.EscalationRule, error)
	GetRuleByID(ctx context.Context, id primitive.ObjectID) (*models.EscalationRule, error)
	GetRuleByName(ctx context.Context, name string) (*models.EscalationRule, error)
	GetRules(ctx context.Context, params httputil.PageParams) ([]models.EscalationRule, int64, error)
	UpdateRule(ctx context.Context, id primitive.ObjectID, rule *models.EscalationRule) (*models.EscalationRule, error)
	SetEnabled(ctx context.Context, id primitive.ObjectID, enabled bool) error
	DeleteRule(ctx context.Context, id primitive.ObjectID) error
}

// RuleService owns the escalation-rule lifecycle. Every write is validated
// first; nothing reaches the repository on a validation failure.
type RuleService struct {
	repo ruleStore
}

func NewRuleService(repo ruleStore) *RuleService {
	return &RuleService{repo: repo}
}

// CreateRule validates and stores a new rule. Rule names are unique.
func (s *RuleService) CreateRule(ctx context.Context, rule *models.EscalationRule) (*models.EscalationRule, error) {
	if v := models.ValidateEscalationRule(rule); !v.IsValid {
		return nil, &RuleValidationError{Validation: v}
	}

	if existing, _ := s.repo.GetRuleByName(ctx, rule.RuleName); existing != nil {
		return nil, &RuleValidationError{Validation: models.RuleValidation{
			IsValid: false,
			Errors:  map[string]string{"ruleName": "a rule with this name already exists"},
		}}
	}

	created, err := s.repo.CreateRule(ctx, rule)
	if err != nil {
		return nil, err
	}
	logrus.WithField("ruleID", created.ID.Hex()).Info("Escalation rule created")
	return created, nil
}

// GetRule fetches one rule.
func (s *RuleService) GetRule(ctx context.Context, id string) (*models.EscalationRule, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid rule ID: %v", err)
	}
	return s.repo.GetRuleByID(ctx, objID)
}

// GetRules lists rules with paging.
func (s *RuleService) GetRules(ctx context.Context, params httputil.PageParams) ([]models.EscalationRule, int64, error) {
	return s.repo.GetRules(ctx, params)
}

// UpdateRule validates and applies an update to an existing rule.
func (s *RuleService) UpdateRule(ctx context.Context, id string, rule *models.EscalationRule) (*models.EscalationRule, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid rule ID: %v", err)
	}
	if v := models.ValidateEscalationRule(rule); !v.IsValid {
		return nil, &RuleValidationError{Validation: v}
	}

	// Renaming onto another rule's name is still a uniqueness violation.
	if existing, _ := s.repo.GetRuleByName(ctx, rule.RuleName); existing != nil && existing.ID != objID {
		return nil, &RuleValidationError{Validation: models.RuleValidation{
			IsValid: false,
			Errors:  map[string]string{"ruleName": "a rule with this name already exists"},
		}}
	}

	return s.repo.UpdateRule(ctx, objID, rule)
}

// DeleteRule removes one rule.
func (s *RuleService) DeleteRule(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid rule ID: %v", err)
	}
	return s.repo.DeleteRule(ctx, objID)
}

// BulkToggle enables or disables a set of rules. Every id is attempted;
// individual failures are collected, never fatal.
func (s *RuleService) BulkToggle(ctx context.Context, ids []string, enabled bool) models.BulkResult {
	result := models.BulkResult{Total: len(ids)}
	for _, raw := range ids {
		objID, err := primitive.ObjectIDFromHex(raw)
		if err == nil {
			err = s.repo.SetEnabled(ctx, objID, enabled)
		}
		if err != nil {
			logrus.WithError(err).WithField("ruleID", raw).Warn("Bulk toggle failed for rule")
			result.Failed++
			result.FailedIDs = append(result.FailedIDs, raw)
			continue
		}
		result.Successful++
	}
	return result
}

// BulkDelete removes a set of rules with the same settle-all semantics.
func (s *RuleService) BulkDelete(ctx context.Context, ids []string) models.BulkResult {
	result := models.BulkResult{Total: len(ids)}
	for _, raw := range ids {
		objID, err := primitive.ObjectIDFromHex(raw)
		if err == nil {
			err = s.repo.DeleteRule(ctx, objID)
		}
		if err != nil {
			logrus.WithError(err).WithField("ruleID", raw).Warn("Bulk delete failed for rule")
			result.Failed++
			result.FailedIDs = append(result.FailedIDs, raw)
			continue
		}
		result.Successful++
	}
	return result
}
