//go:generate go run go.uber.org/mock/mockgen -source=contact.go -destination=mocks/mock_contact.go -package=mocks

package service

import (
	"context"

	"chat_backend/internal/domain"
	"chat_backend/internal/repository"
	apperrors "chat_backend/pkg/errors"
	"chat_backend/pkg/logger"
)

type ContactService interface {
	Add(ctx context.Context, userID, contactID int64) (*domain.Contact, error)
	List(ctx context.Context, userID int64) ([]*domain.Contact, error)
	Remove(ctx context.Context, userID, contactID int64) error
}

type contactService struct {
	contactRepo repository.ContactRepository
	userRepo    repository.UserRepository
	audit       AuditService
	log         logger.Logger
}

func NewContactService(contactRepo repository.ContactRepository, userRepo repository.UserRepository, audit AuditService, log logger.Logger) ContactService {
	return &contactService{
		contactRepo: contactRepo,
		userRepo:    userRepo,
		audit:       audit,
		log:         log,
	}
}

func (s *contactService) Add(ctx context.Context, userID, contactID int64) (*domain.Contact, error) {
	if userID == contactID {
		return nil, apperrors.ErrSelfContact
	}

	exists, err := s.userRepo.Exists(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.ErrUserNotFound
	}

	return s.contactRepo.Add(ctx, userID, contactID)
}

func (s *contactService) List(ctx context.Context, userID int64) ([]*domain.Contact, error) {
	return s.contactRepo.ListByUser(ctx, userID)
}

func (s *contactService) Remove(ctx context.Context, userID, contactID int64) error {
	if err := s.contactRepo.Remove(ctx, userID, contactID); err != nil {
		return err
	}

	logAudit(ctx, s.audit, s.log, userID, nil, domain.EventTypeContactRemoved,
		map[string]interface{}{"contact_id": contactID})
	return nil
}
