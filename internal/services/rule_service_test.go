package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/Aldiyar2201/Visitor_Manager/internal/models"
	"github.com/Aldiyar2201/Visitor_Manager/pkg/httputil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeRuleStore struct {
	rules   map[primitive.ObjectID]*models.EscalationRule
	failing map[primitive.ObjectID]bool // ids whose writes fail
	creates int
}

func newFakeRuleStore() *fakeRuleStore {
	return &fakeRuleStore{
		rules:   make(map[primitive.ObjectID]*models.EscalationRule),
		failing: make(map[primitive.ObjectID]bool),
	}
}

func (f *fakeRuleStore) CreateRule(ctx context.Context, rule *models.EscalationRule) (*models.EscalationRule, error) {
	f.creates++
	rule.ID = primitive.NewObjectID()
	f.rules[rule.ID] = rule
	return rule, nil
}

func (f *fakeRuleStore) GetRuleByID(ctx context.Context, id primitive.ObjectID) (*models.EscalationRule, error) {
	rule, ok := f.rules[id]
	if !ok {
		return nil, fmt.Errorf("rule not found")
	}
	copied := *rule
	return &copied, nil
}

func (f *fakeRuleStore) GetRuleByName(ctx context.Context, name string) (*models.EscalationRule, error) {
	for _, rule := range f.rules {
		if rule.RuleName == name {
			return rule, nil
		}
	}
	return nil, fmt.Errorf("rule not found")
}

func (f *fakeRuleStore) GetRules(ctx context.Context, params httputil.PageParams) ([]models.EscalationRule, int64, error) {
	var out []models.EscalationRule
	for _, rule := range f.rules {
		out = append(out, *rule)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRuleStore) UpdateRule(ctx context.Context, id primitive.ObjectID, rule *models.EscalationRule) (*models.EscalationRule, error) {
	if f.failing[id] {
		return nil, fmt.Errorf("write failed")
	}
	rule.ID = id
	f.rules[id] = rule
	return rule, nil
}

func (f *fakeRuleStore) SetEnabled(ctx context.Context, id primitive.ObjectID, enabled bool) error {
	if f.failing[id] {
		return fmt.Errorf("write failed")
	}
	rule, ok := f.rules[id]
	if !ok {
		return fmt.Errorf("rule not found")
	}
	rule.IsEnabled = enabled
	return nil
}

func (f *fakeRuleStore) DeleteRule(ctx context.Context, id primitive.ObjectID) error {
	if f.failing[id] {
		return fmt.Errorf("write failed")
	}
	if _, ok := f.rules[id]; !ok {
		return fmt.Errorf("rule not found")
	}
	delete(f.rules, id)
	return nil
}

func smsRule(name string) *models.EscalationRule {
	return &models.EscalationRule{
		RuleName:         name,
		AlertType:        models.NotificationTypeAlert,
		AlertPriority:    models.PriorityHigh,
		Action:           models.ActionSendSMS,
		EscalationPhones: []string{"+77011234567"},
		MaxAttempts:      2,
		RulePriority:     1,
	}
}

func TestCreateRejectsInvalidRuleBeforeStorage(t *testing.T) {
	store := newFakeRuleStore()
	svc := NewRuleService(store)

	bad := smsRule("no-target")
	bad.EscalationPhones = nil

	_, err := svc.CreateRule(context.Background(), bad)
	require.Error(t, err)

	var verr *RuleValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Validation.Errors, "escalationPhones")
	assert.Zero(t, store.creates, "invalid rules must never reach the repository")
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	store := newFakeRuleStore()
	svc := NewRuleService(store)

	_, err := svc.CreateRule(context.Background(), smsRule("dup"))
	require.NoError(t, err)

	_, err = svc.CreateRule(context.Background(), smsRule("dup"))
	var verr *RuleValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Validation.Errors, "ruleName")
}

func TestCreateRoundTrip(t *testing.T) {
	store := newFakeRuleStore()
	svc := NewRuleService(store)

	in := smsRule("round-trip")
	in.EscalationDelayMinutes = 10
	created, err := svc.CreateRule(context.Background(), in)
	require.NoError(t, err)

	got, err := svc.GetRule(context.Background(), created.ID.Hex())
	require.NoError(t, err)

	assert.Equal(t, in.RuleName, got.RuleName)
	assert.Equal(t, in.AlertType, got.AlertType)
	assert.Equal(t, in.AlertPriority, got.AlertPriority)
	assert.Equal(t, in.Action, got.Action)
	assert.Equal(t, in.EscalationPhones, got.EscalationPhones)
	assert.Equal(t, in.EscalationDelayMinutes, got.EscalationDelayMinutes)
	assert.Equal(t, in.MaxAttempts, got.MaxAttempts)
	assert.Equal(t, in.RulePriority, got.RulePriority)
}

func TestBulkToggleSettlesAll(t *testing.T) {
	store := newFakeRuleStore()
	svc := NewRuleService(store)

	var ids []string
	for i := 0; i < 4; i++ {
		created, err := svc.CreateRule(context.Background(), smsRule(fmt.Sprintf("rule-%d", i)))
		require.NoError(t, err)
		ids = append(ids, created.ID.Hex())
	}

	// Second rule's writes fail; the rest must still be attempted.
	for id, rule := range store.rules {
		if rule.RuleName == "rule-1" {
			store.failing[id] = true
		}
	}

	result := svc.BulkToggle(context.Background(), ids, true)
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 3, result.Successful)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.FailedIDs, 1)
}

func TestBulkDeleteReportsPartialFailure(t *testing.T) {
	store := newFakeRuleStore()
	svc := NewRuleService(store)

	created, err := svc.CreateRule(context.Background(), smsRule("real"))
	require.NoError(t, err)

	result := svc.BulkDelete(context.Background(), []string{created.ID.Hex(), "not-a-hex-id", primitive.NewObjectID().Hex()})
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 2, result.Failed)
	assert.Empty(t, store.rules)
}

func TestUpdateValidatesBeforeWrite(t *testing.T) {
	store := newFakeRuleStore()
	svc := NewRuleService(store)

	created, err := svc.CreateRule(context.Background(), smsRule("to-update"))
	require.NoError(t, err)

	bad := smsRule("to-update")
	bad.MaxAttempts = 0
	_, err = svc.UpdateRule(context.Background(), created.ID.Hex(), bad)

	var verr *RuleValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Validation.Errors, "maxAttempts")

	// The stored rule is untouched.
	got, err := svc.GetRule(context.Background(), created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 2, got.MaxAttempts)
}
