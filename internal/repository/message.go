//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=mocks/mock_message.go -package=mocks

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

type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	GetByID(ctx context.Context, id int64) (*domain.Message, error)
	ListByConversation(ctx context.Context, conversationID int64) ([]*domain.Message, error)
	SoftDelete(ctx context.Context, id int64) (bool, error)
	SoftDeleteAll(ctx context.Context, conversationID int64) (int64, error)
}

type messageRepository struct {
	db  DB
	log logger.Logger
}

func NewMessageRepository(db DB, log logger.Logger) MessageRepository {
	return &messageRepository{db: db, log: log}
}

// Create вставляет сообщение только в активный диалог. Время ставит база (clock_timestamp),
// поэтому порядок created_at совпадает с порядком коммитов внутри диалога.
// Новое сообщение возвращает диалог в списки обоих участников, даже если кто-то его скрыл.
func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	query := `
		WITH revived AS (
			UPDATE conversations
			SET participant_one_deleted_at = NULL,
			    participant_two_deleted_at = NULL,
			    updated_at = now()
			WHERE id = $1 AND deleted_at IS NULL
			RETURNING id
		)
		INSERT INTO messages (conversation_id, sender_id, content)
		SELECT revived.id, $2::bigint, $3::text
		FROM revived
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		message.ConversationID, message.SenderID, message.Content,
	).Scan(&message.ID, &message.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: conversation %d does not exist", apperrors.ErrValidation, message.ConversationID)
		}
		r.log.Error("Failed to create message", "error", err,
			"conversation_id", message.ConversationID, "sender_id", message.SenderID)
		return fmt.Errorf("create message: %w", translateConstraint(err))
	}

	message.State = domain.LifecycleActive
	message.DeletedAt = nil
	return nil
}

// GetByID возвращает сообщение и после логического удаления
func (r *messageRepository) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, content, created_at, deleted_at
		FROM messages
		WHERE id = $1
	`

	msg := &domain.Message{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content, &msg.CreatedAt, &msg.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMessageNotFound
		}
		r.log.Error("Failed to get message", "error", err, "message_id", id)
		return nil, fmt.Errorf("get message: %w", err)
	}

	msg.State = domain.LifecycleOf(msg.DeletedAt)
	return msg, nil
}

func (r *messageRepository) ListByConversation(ctx context.Context, conversationID int64) ([]*domain.Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, content, created_at
		FROM messages
		WHERE conversation_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, conversationID)
	if err != nil {
		r.log.Error("Failed to list messages", "error", err, "conversation_id", conversationID)
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*domain.Message, 0)
	for rows.Next() {
		msg := &domain.Message{State: domain.LifecycleActive}
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content, &msg.CreatedAt); err != nil {
			r.log.Error("Failed to scan message", "error", err)
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

// SoftDelete идемпотентен: повторный вызов ничего не меняет и возвращает false
func (r *messageRepository) SoftDelete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE messages SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		r.log.Error("Failed to delete message", "error", err, "message_id", id)
		return false, fmt.Errorf("delete message: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *messageRepository) SoftDeleteAll(ctx context.Context, conversationID int64) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE messages SET deleted_at = now() WHERE conversation_id = $1 AND deleted_at IS NULL`,
		conversationID)
	if err != nil {
		r.log.Error("Failed to delete messages", "error", err, "conversation_id", conversationID)
		return 0, fmt.Errorf("delete messages: %w", err)
	}
	return tag.RowsAffected(), nil
}
