package services

import (
	"context"
	"fmt"

	"github.com/Aldiyar2201/Visitor_Manager/internal/models"
	"github.com/Aldiyar2201/Visitor_Manager/internal/repository"
	"github.com/Aldiyar2201/Visitor_Manager/pkg/httputil"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VisitService drives the visitor lifecycle. Status transitions produce
// notifications for the host through the normal notification pipeline.
type VisitService struct {
	repo          *repository.VisitRepository
	notifications *NotificationService
}

func NewVisitService(repo *repository.VisitRepository, notifications *NotificationService) *VisitService {
	return &VisitService{repo: repo, notifications: notifications}
}

// CreateInvitation registers an upcoming visit and notifies the host.
func (s *VisitService) CreateInvitation(ctx context.Context, visit *models.Visit) (*models.Visit, error) {
	if visit.VisitorName == "" {
		return nil, fmt.Errorf("visitor name is required")
	}
	if visit.HostID.IsZero() {
		return nil, fmt.Errorf("host is required")
	}
	visit.Status = models.VisitStatusInvited

	created, err := s.repo.CreateVisit(ctx, visit)
	if err != nil {
		return nil, err
	}

	s.notifyHost(ctx, created, models.NotificationTypeInvitation, models.PriorityMedium,
		"Visitor invited",
		fmt.Sprintf("%s is scheduled to visit on %s.", created.VisitorName, created.ScheduledAt.Format("Jan 2 15:04")))
	return created, nil
}

// CheckIn moves a visit to checked-in and notifies the host that their
// visitor has arrived.
func (s *VisitService) CheckIn(ctx context.Context, id string) (*models.Visit, error) {
	visit, err := s.getTransitionable(ctx, id, models.VisitStatusInvited)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(ctx, visit.ID, models.VisitStatusCheckedIn)
	if err != nil {
		return nil, err
	}

	s.notifyHost(ctx, updated, models.NotificationTypeCheckin, models.PriorityHigh,
		"Visitor arrived",
		fmt.Sprintf("%s has checked in at reception.", updated.VisitorName))
	return updated, nil
}

// CheckOut completes a visit.
func (s *VisitService) CheckOut(ctx context.Context, id string) (*models.Visit, error) {
	visit, err := s.getTransitionable(ctx, id, models.VisitStatusCheckedIn)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateStatus(ctx, visit.ID, models.VisitStatusCheckedOut)
}

// Cancel voids an invitation before arrival.
func (s *VisitService) Cancel(ctx context.Context, id string) (*models.Visit, error) {
	visit, err := s.getTransitionable(ctx, id, models.VisitStatusInvited)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateStatus(ctx, visit.ID, models.VisitStatusCancelled)
}

// GetVisit fetches one visit.
func (s *VisitService) GetVisit(ctx context.Context, id string) (*models.Visit, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid visit ID: %v", err)
	}
	return s.repo.GetVisitByID(ctx, objID)
}

// GetVisits lists visits, optionally restricted to one host.
func (s *VisitService) GetVisits(ctx context.Context, hostID string, params httputil.PageParams) ([]models.Visit, int64, error) {
	var host *primitive.ObjectID
	if hostID != "" {
		objID, err := primitive.ObjectIDFromHex(hostID)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid host ID: %v", err)
		}
		host = &objID
	}
	return s.repo.GetVisits(ctx, host, params)
}

func (s *VisitService) getTransitionable(ctx context.Context, id, wantStatus string) (*models.Visit, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid visit ID: %v", err)
	}
	visit, err := s.repo.GetVisitByID(ctx, objID)
	if err != nil {
		return nil, err
	}
	if visit.Status != wantStatus {
		return nil, fmt.Errorf("visit is %s, expected %s", visit.Status, wantStatus)
	}
	return visit, nil
}

func (s *VisitService) notifyHost(ctx context.Context, visit *models.Visit, notifType, priority, title, message string) {
	notif := &models.Notification{
		UserID:   visit.HostID,
		Type:     notifType,
		Title:    title,
		Message:  message,
		Priority: priority,
		Data: map[string]interface{}{
			"url":      "/visits/" + visit.ID.Hex(),
			"visit_id": visit.ID.Hex(),
		},
	}
	if err := s.notifications.CreateNotification(ctx, notif); err != nil {
		// The visit transition itself succeeded; the host just misses the
		// ping.
		logrus.WithError(err).Warn("Failed to notify host about visit")
	}
}
