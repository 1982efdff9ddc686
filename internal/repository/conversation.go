//go:generate go run go.uber.org/mock/mockgen -source=conversation.go -destination=mocks/mock_conversation.go -package=mocks

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

type ConversationRepository interface {
	// WithTx выполняет fn с репозиторием, привязанным к одной транзакции
	WithTx(ctx context.Context, fn func(repo ConversationRepository) error) error
	FindActiveByPair(ctx context.Context, userA, userB int64, forUpdate bool) (*domain.Conversation, error)
	Create(ctx context.Context, participantOne, participantTwo int64) (*domain.Conversation, error)
	GetByID(ctx context.Context, id int64) (*domain.Conversation, error)
	IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error)
	ListForUser(ctx context.Context, userID int64) ([]*domain.ConversationSummary, error)
	HideForParticipant(ctx context.Context, conversationID, userID int64) (*domain.Conversation, error)
	RestoreForParticipant(ctx context.Context, conversationID, userID int64) error
}

type conversationRepository struct {
	db  DB
	log logger.Logger
}

func NewConversationRepository(db DB, log logger.Logger) ConversationRepository {
	return &conversationRepository{db: db, log: log}
}

const conversationColumns = `
	id, participant_one, participant_two, created_at, updated_at,
	participant_one_deleted_at, participant_two_deleted_at, deleted_at
`

func scanConversation(row pgx.Row) (*domain.Conversation, error) {
	conv := &domain.Conversation{}
	err := row.Scan(
		&conv.ID, &conv.ParticipantOne, &conv.ParticipantTwo, &conv.CreatedAt, &conv.UpdatedAt,
		&conv.ParticipantOneDeletedAt, &conv.ParticipantTwoDeletedAt, &conv.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	conv.State = domain.LifecycleOf(conv.DeletedAt)
	return conv, nil
}

func (r *conversationRepository) WithTx(ctx context.Context, fn func(repo ConversationRepository) error) error {
	return WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&conversationRepository{db: tx, log: r.log})
	})
}

func (r *conversationRepository) FindActiveByPair(ctx context.Context, userA, userB int64, forUpdate bool) (*domain.Conversation, error) {
	query := `SELECT ` + conversationColumns + `
		FROM conversations
		WHERE LEAST(participant_one, participant_two) = LEAST($1::bigint, $2::bigint)
		  AND GREATEST(participant_one, participant_two) = GREATEST($1::bigint, $2::bigint)
		  AND deleted_at IS NULL`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	conv, err := scanConversation(r.db.QueryRow(ctx, query, userA, userB))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConversationNotFound
		}
		r.log.Error("Failed to find conversation by pair", "error", err, "user_a", userA, "user_b", userB)
		return nil, fmt.Errorf("find conversation by pair: %w", err)
	}
	return conv, nil
}

func (r *conversationRepository) Create(ctx context.Context, participantOne, participantTwo int64) (*domain.Conversation, error) {
	query := `
		INSERT INTO conversations (participant_one, participant_two)
		VALUES ($1, $2)
		RETURNING ` + conversationColumns

	conv, err := scanConversation(r.db.QueryRow(ctx, query, participantOne, participantTwo))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrDuplicate
		}
		r.log.Error("Failed to create conversation", "error", err,
			"participant_one", participantOne, "participant_two", participantTwo)
		return nil, fmt.Errorf("create conversation: %w", translateConstraint(err))
	}
	return conv, nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id int64) (*domain.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1 AND deleted_at IS NULL`

	conv, err := scanConversation(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConversationNotFound
		}
		r.log.Error("Failed to get conversation", "error", err, "conversation_id", id)
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return conv, nil
}

func (r *conversationRepository) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM conversations
			WHERE id = $1 AND deleted_at IS NULL
			  AND (participant_one = $2 OR participant_two = $2)
		)
	`

	var ok bool
	if err := r.db.QueryRow(ctx, query, conversationID, userID).Scan(&ok); err != nil {
		r.log.Error("Failed to check participant", "error", err,
			"conversation_id", conversationID, "user_id", userID)
		return false, fmt.Errorf("check participant: %w", err)
	}
	return ok, nil
}

func (r *conversationRepository) ListForUser(ctx context.Context, userID int64) ([]*domain.ConversationSummary, error) {
	query := `
		SELECT c.id, u.id, u.username, lm.content, lm.created_at, c.created_at
		FROM conversations c
		JOIN users u
		  ON u.id = CASE WHEN c.participant_one = $1 THEN c.participant_two ELSE c.participant_one END
		LEFT JOIN LATERAL (
			SELECT m.content, m.created_at
			FROM messages m
			WHERE m.conversation_id = c.id AND m.deleted_at IS NULL
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT 1
		) lm ON true
		WHERE c.deleted_at IS NULL
		  AND ((c.participant_one = $1 AND c.participant_one_deleted_at IS NULL)
		    OR (c.participant_two = $1 AND c.participant_two_deleted_at IS NULL))
		ORDER BY COALESCE(lm.created_at, c.created_at) DESC, c.id DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to list conversations", "error", err, "user_id", userID)
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	summaries := make([]*domain.ConversationSummary, 0)
	for rows.Next() {
		s := &domain.ConversationSummary{}
		if err := rows.Scan(
			&s.ConversationID, &s.OtherParticipant.ID, &s.OtherParticipant.Username,
			&s.LastMessage, &s.LastMessageTime, &s.CreatedAt,
		); err != nil {
			r.log.Error("Failed to scan conversation summary", "error", err)
			return nil, fmt.Errorf("scan conversation summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// HideForParticipant скрывает диалог у userID. Когда диалог скрыт у обоих участников,
// он удаляется глобально и пара освобождается для нового диалога.
func (r *conversationRepository) HideForParticipant(ctx context.Context, conversationID, userID int64) (*domain.Conversation, error) {
	query := `
		UPDATE conversations SET
			participant_one_deleted_at = CASE WHEN participant_one = $2
				THEN COALESCE(participant_one_deleted_at, now()) ELSE participant_one_deleted_at END,
			participant_two_deleted_at = CASE WHEN participant_two = $2
				THEN COALESCE(participant_two_deleted_at, now()) ELSE participant_two_deleted_at END,
			deleted_at = CASE
				WHEN (participant_one = $2 OR participant_one_deleted_at IS NOT NULL)
				 AND (participant_two = $2 OR participant_two_deleted_at IS NOT NULL)
				THEN now() ELSE NULL END,
			updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		  AND (participant_one = $2 OR participant_two = $2)
		RETURNING ` + conversationColumns

	conv, err := scanConversation(r.db.QueryRow(ctx, query, conversationID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConversationNotFound
		}
		r.log.Error("Failed to hide conversation", "error", err,
			"conversation_id", conversationID, "user_id", userID)
		return nil, fmt.Errorf("hide conversation: %w", err)
	}
	return conv, nil
}

func (r *conversationRepository) RestoreForParticipant(ctx context.Context, conversationID, userID int64) error {
	query := `
		UPDATE conversations SET
			participant_one_deleted_at = CASE WHEN participant_one = $2 THEN NULL ELSE participant_one_deleted_at END,
			participant_two_deleted_at = CASE WHEN participant_two = $2 THEN NULL ELSE participant_two_deleted_at END,
			updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`

	if _, err := r.db.Exec(ctx, query, conversationID, userID); err != nil {
		r.log.Error("Failed to restore conversation", "error", err,
			"conversation_id", conversationID, "user_id", userID)
		return fmt.Errorf("restore conversation: %w", err)
	}
	return nil
}
