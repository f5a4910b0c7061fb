package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/solace-app/solace/backend/internal/models"
)

// Append writes a group message to the transcript, assigning the server-side
// ID and timestamp. The caller must not broadcast the message until Append
// has returned nil: every message a client sees has to be recoverable from
// history.
func (s *Store) Append(ctx context.Context, msg *models.Message) error {
	if msg.Kind != models.KindGroup {
		return fmt.Errorf("refusing to persist %s message", msg.Kind)
	}

	msg.ID = uuid.New().String()
	msg.CreatedAt = time.Now().UTC()

	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// History returns up to limit messages for a room, oldest first. When the
// transcript holds more than limit messages only the newest limit are
// returned, still in oldest-first order.
func (s *Store) History(ctx context.Context, roomID string, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at DESC, rowid DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query history for room %s: %w", roomID, err)
	}

	// Reverse the newest-first query result into oldest-first order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}
