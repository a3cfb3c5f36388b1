package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/Aldiyar2201/Visitor_Manager/internal/models"
	"github.com/Aldiyar2201/Visitor_Manager/pkg/email"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type alertStore interface {
	GetUnacknowledgedAlerts(ctx context.Context, cutoff time.Time) ([]models.Notification, error)
	RecordEscalationAttempt(ctx context.Context, id primitive.ObjectID) error
}

type ruleSource interface {
	GetEnabledRules(ctx context.Context) ([]models.EscalationRule, error)
}

type userSource interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUsersByRole(ctx context.Context, role string) ([]*models.User, error)
}

type notificationCreator interface {
	CreateNotification(ctx context.Context, notif *models.Notification) error
}

// SMSSender delivers an escalation SMS. The default implementation only
// logs; a real gateway is plugged in at wiring time.
type SMSSender interface {
	SendSMS(phone, message string) error
}

type LogSMSSender struct{}

func (LogSMSSender) SendSMS(phone, message string) error {
	logrus.WithField("phone", phone).Info("SMS (log only): ", message)
	return nil
}

// EscalationWorker scans unacknowledged alerts and applies the enabled
// escalation rules to them. Rules are evaluated in rule-priority order and
// the first match wins; an alert escalates again only after the rule's
// delay has elapsed since the previous attempt, up to the rule's attempt
// cap.
type EscalationWorker struct {
	Alerts        alertStore
	Rules         ruleSource
	Users         userSource
	Notifications notificationCreator
	SMS           SMSSender

	now func() time.Time
}

func NewEscalationWorker(alerts alertStore, rules ruleSource, users userSource, notifications notificationCreator, sms SMSSender) *EscalationWorker {
	if sms == nil {
		sms = LogSMSSender{}
	}
	return &EscalationWorker{
		Alerts:        alerts,
		Rules:         rules,
		Users:         users,
		Notifications: notifications,
		SMS:           sms,
		now:           time.Now,
	}
}

// Run performs one escalation sweep.
func (w *EscalationWorker) Run(ctx context.Context) error {
	rules, err := w.Rules.GetEnabledRules(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch escalation rules: %v", err)
	}
	if len(rules) == 0 {
		return nil
	}

	alerts, err := w.Alerts.GetUnacknowledgedAlerts(ctx, w.now())
	if err != nil {
		return fmt.Errorf("failed to fetch unacknowledged alerts: %v", err)
	}

	escalated := 0
	for i := range alerts {
		alert := &alerts[i]
		rule := matchRule(rules, alert)
		if rule == nil {
			continue
		}
		if !w.due(alert, rule) {
			continue
		}

		if err := w.execute(ctx, alert, rule); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"alertID": alert.ID.Hex(),
				"rule":    rule.RuleName,
			}).Error("Escalation action failed")
			continue
		}
		if err := w.Alerts.RecordEscalationAttempt(ctx, alert.ID); err != nil {
			logrus.WithError(err).WithField("alertID", alert.ID.Hex()).Error("Failed to record escalation attempt")
		}
		escalated++
	}

	if escalated > 0 {
		logrus.WithField("count", escalated).Info("Escalation sweep completed")
	}
	return nil
}

// matchRule returns the highest-priority enabled rule matching the alert's
// type and priority. Rules arrive sorted by rule priority.
func matchRule(rules []models.EscalationRule, alert *models.Notification) *models.EscalationRule {
	for i := range rules {
		if rules[i].AlertType == alert.Type && rules[i].AlertPriority == alert.Priority {
			return &rules[i]
		}
	}
	return nil
}

// due reports whether the alert has waited out the rule's delay and still
// has attempts left.
func (w *EscalationWorker) due(alert *models.Notification, rule *models.EscalationRule) bool {
	if alert.EscalationAttempts >= rule.MaxAttempts {
		return false
	}
	delay := time.Duration(rule.EscalationDelayMinutes) * time.Minute
	since := alert.CreatedAt
	if alert.LastEscalatedAt != nil {
		since = *alert.LastEscalatedAt
	}
	return w.now().Sub(since) >= delay
}

func (w *EscalationWorker) execute(ctx context.Context, alert *models.Notification, rule *models.EscalationRule) error {
	switch rule.Action {
	case models.ActionEscalateToUser:
		if rule.EscalationUserID == nil {
			return fmt.Errorf("rule %q has no escalation user", rule.RuleName)
		}
		target, err := w.Users.GetUserByID(ctx, *rule.EscalationUserID)
		if err != nil {
			return fmt.Errorf("failed to resolve escalation user: %v", err)
		}
		return w.notifyTarget(ctx, alert, rule, target.ID)

	case models.ActionEscalateToRole:
		targets, err := w.Users.GetUsersByRole(ctx, rule.EscalationRole)
		if err != nil {
			return fmt.Errorf("failed to resolve escalation role %q: %v", rule.EscalationRole, err)
		}
		if len(targets) == 0 {
			return fmt.Errorf("no active users hold role %q", rule.EscalationRole)
		}
		for _, target := range targets {
			if err := w.notifyTarget(ctx, alert, rule, target.ID); err != nil {
				return err
			}
		}
		return nil

	case models.ActionSendEmail:
		subject := fmt.Sprintf("[Escalated] %s", alert.Title)
		body := fmt.Sprintf("Unacknowledged %s alert: %s\n\n%s", alert.Priority, alert.Title, alert.Message)
		return email.SendEmail(rule.EscalationEmails, subject, body)

	case models.ActionSendSMS:
		message := fmt.Sprintf("Escalated alert: %s (%s)", alert.Title, alert.Priority)
		for _, phone := range rule.EscalationPhones {
			if err := w.SMS.SendSMS(phone, message); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown escalation action %q", rule.Action)
}

// notifyTarget creates the escalation notification. It goes out as an
// alert itself so an unanswered escalation can escalate further.
func (w *EscalationWorker) notifyTarget(ctx context.Context, alert *models.Notification, rule *models.EscalationRule, targetID primitive.ObjectID) error {
	return w.Notifications.CreateNotification(ctx, &models.Notification{
		UserID:     targetID,
		Type:       models.NotificationTypeAlert,
		Title:      fmt.Sprintf("Escalated: %s", alert.Title),
		Message:    fmt.Sprintf("Alert unacknowledged for %d attempt(s): %s", alert.EscalationAttempts+1, alert.Message),
		Priority:   alert.Priority,
		Persistent: true,
		Data: map[string]interface{}{
			"escalated_from": alert.ID.Hex(),
			"rule":           rule.RuleName,
		},
	})
}
