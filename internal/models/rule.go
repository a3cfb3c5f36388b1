package models

import (
	"time"

	emailaddress "github.com/mcnijman/go-emailaddress"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Escalation actions.
const (
	ActionEscalateToUser = "EscalateToUser"
	ActionEscalateToRole = "EscalateToRole"
	ActionSendEmail      = "SendEmail"
	ActionSendSMS        = "SendSMS"
)

// EscalationRule maps an alert type/priority to an escalation action. Rules
// are configured here and evaluated by the scheduler.
type EscalationRule struct {
	ID                     primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	RuleName               string              `bson:"rule_name" json:"ruleName"`
	AlertType              string              `bson:"alert_type" json:"alertType"`
	AlertPriority          string              `bson:"alert_priority" json:"alertPriority"`
	Action                 string              `bson:"action" json:"action"`
	EscalationUserID       *primitive.ObjectID `bson:"escalation_user_id,omitempty" json:"escalationUserId,omitempty"`
	EscalationRole         string              `bson:"escalation_role,omitempty" json:"escalationRole,omitempty"`
	EscalationEmails       []string            `bson:"escalation_emails,omitempty" json:"escalationEmails,omitempty"`
	EscalationPhones       []string            `bson:"escalation_phones,omitempty" json:"escalationPhones,omitempty"`
	EscalationDelayMinutes int                 `bson:"escalation_delay_minutes" json:"escalationDelayMinutes"`
	MaxAttempts            int                 `bson:"max_attempts" json:"maxAttempts"`
	RulePriority           int                 `bson:"rule_priority" json:"rulePriority"`
	IsEnabled              bool                `bson:"is_enabled" json:"isEnabled"`
	CreatedAt              time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt              time.Time           `bson:"updated_at" json:"updatedAt"`
}

// RuleValidation is the outcome of validating a rule. Errors is keyed by
// field name so each failure surfaces next to its input.
type RuleValidation struct {
	IsValid bool              `json:"isValid"`
	Errors  map[string]string `json:"errors"`
}

// ValidateEscalationRule checks every invariant a rule must satisfy before
// it is written. All checks run; a missing target never masks an earlier
// failure and vice versa.
func ValidateEscalationRule(r *EscalationRule) RuleValidation {
	errs := make(map[string]string)

	if r.RuleName == "" {
		errs["ruleName"] = "rule name is required"
	}
	if r.AlertType == "" {
		errs["alertType"] = "alert type is required"
	}
	if r.AlertPriority == "" {
		errs["alertPriority"] = "alert priority is required"
	} else if !ValidPriority(r.AlertPriority) {
		errs["alertPriority"] = "unknown alert priority"
	}
	if r.Action == "" {
		errs["action"] = "action is required"
	}
	if r.EscalationDelayMinutes < 0 {
		errs["escalationDelayMinutes"] = "delay must be zero or greater"
	}
	if r.MaxAttempts < 1 {
		errs["maxAttempts"] = "max attempts must be at least 1"
	}
	if r.RulePriority < 1 {
		errs["rulePriority"] = "rule priority must be at least 1"
	}

	// Target requirement depends on the chosen action.
	switch r.Action {
	case ActionEscalateToUser:
		if r.EscalationUserID == nil || r.EscalationUserID.IsZero() {
			errs["escalationUserId"] = "an escalation target user is required"
		}
	case ActionEscalateToRole:
		if r.EscalationRole == "" {
			errs["escalationRole"] = "an escalation target role is required"
		}
	case ActionSendEmail:
		if len(r.EscalationEmails) == 0 {
			errs["escalationEmails"] = "at least one email address is required"
		} else {
			for _, addr := range r.EscalationEmails {
				if _, err := emailaddress.Parse(addr); err != nil {
					errs["escalationEmails"] = "invalid email address: " + addr
					break
				}
			}
		}
	case ActionSendSMS:
		if len(r.EscalationPhones) == 0 {
			errs["escalationPhones"] = "at least one phone number is required"
		}
	}

	return RuleValidation{IsValid: len(errs) == 0, Errors: errs}
}

// BulkResult aggregates per-id outcomes of a bulk operation. Every id is
// attempted; failures are counted, never short-circuited.
type BulkResult struct {
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Total      int      `json:"total"`
	FailedIDs  []string `json:"failedIds,omitempty"`
}
