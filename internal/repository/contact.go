//go:generate go run go.uber.org/mock/mockgen -source=contact.go -destination=mocks/mock_contact.go -package=mocks

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"chat_backend/internal/domain"
	apperrors "chat_backend/pkg/errors"
	"chat_backend/pkg/logger"
)

type ContactRepository interface {
	Add(ctx context.Context, userID, contactID int64) (*domain.Contact, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Contact, error)
	Remove(ctx context.Context, userID, contactID int64) error
}

type contactRepository struct {
	db  DB
	log logger.Logger
}

func NewContactRepository(db DB, log logger.Logger) ContactRepository {
	return &contactRepository{db: db, log: log}
}

// Add идемпотентен: повторная вставка восстанавливает удаленное ребро и не считается ошибкой
func (r *contactRepository) Add(ctx context.Context, userID, contactID int64) (*domain.Contact, error) {
	query := `
		WITH upserted AS (
			INSERT INTO contacts (user_id, contact_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, contact_id) DO UPDATE SET deleted_at = NULL
			RETURNING id, user_id, contact_id, created_at
		)
		SELECT c.id, c.user_id, c.contact_id, u.username, u.email, c.created_at
		FROM upserted c
		JOIN users u ON u.id = c.contact_id
	`

	contact := &domain.Contact{State: domain.LifecycleActive}
	err := r.db.QueryRow(ctx, query, userID, contactID).Scan(
		&contact.ID, &contact.UserID, &contact.ContactID, &contact.Username, &contact.Email, &contact.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to add contact", "error", err, "user_id", userID, "contact_id", contactID)
		return nil, fmt.Errorf("add contact: %w", translateConstraint(err))
	}
	return contact, nil
}

func (r *contactRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Contact, error) {
	query := `
		SELECT c.id, c.user_id, c.contact_id, u.username, u.email, c.created_at
		FROM contacts c
		JOIN users u ON u.id = c.contact_id AND u.deleted_at IS NULL
		WHERE c.user_id = $1 AND c.deleted_at IS NULL
		ORDER BY u.username ASC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to list contacts", "error", err, "user_id", userID)
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]*domain.Contact, 0)
	for rows.Next() {
		c := &domain.Contact{State: domain.LifecycleActive}
		if err := rows.Scan(&c.ID, &c.UserID, &c.ContactID, &c.Username, &c.Email, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}

	return contacts, rows.Err()
}

func (r *contactRepository) Remove(ctx context.Context, userID, contactID int64) error {
	var id int64
	err := r.db.QueryRow(ctx, `
		UPDATE contacts SET deleted_at = now()
		WHERE user_id = $1 AND contact_id = $2 AND deleted_at IS NULL
		RETURNING id
	`, userID, contactID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrContactNotFound
		}
		r.log.Error("Failed to remove contact", "error", err, "user_id", userID, "contact_id", contactID)
		return fmt.Errorf("remove contact: %w", err)
	}
	return nil
}
