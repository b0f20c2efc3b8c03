package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"gorm.io/gorm"

	apperrors "github.com/CUknot/messenger_backend/errors"
	"github.com/CUknot/messenger_backend/models"
)

// GormStore keeps messages in the relational database next to users and rooms.
type GormStore struct {
	db    *gorm.DB
	clock *Clock
}

func NewGormStore(db *gorm.DB, clock *Clock) *GormStore {
	return &GormStore{db: db, clock: clock}
}

func (s *GormStore) AppendRoomMessage(ctx context.Context, roomID, userID uint, content string) (models.Message, error) {
	content, err := normalizeContent(content)
	if err != nil {
		return models.Message{}, err
	}

	var rooms int64
	if err := s.db.WithContext(ctx).Model(&models.Room{}).Where("id = ?", roomID).Count(&rooms).Error; err != nil {
		return models.Message{}, unavailable("append room message", err)
	}
	if rooms == 0 {
		return models.Message{}, fmt.Errorf("room %d: %w", roomID, apperrors.ErrNotFound)
	}

	message := models.Message{
		RoomID:    roomID,
		UserID:    userID,
		Content:   content,
		CreatedAt: s.clock.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		return models.Message{}, unavailable("append room message", err)
	}
	return message, nil
}

func (s *GormStore) AppendDirectMessage(ctx context.Context, senderID, receiverID uint, content string) (models.DirectMessage, error) {
	if err := checkPair(senderID, receiverID); err != nil {
		return models.DirectMessage{}, err
	}
	content, err := normalizeContent(content)
	if err != nil {
		return models.DirectMessage{}, err
	}

	message := models.DirectMessage{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		return models.DirectMessage{}, unavailable("append direct message", err)
	}
	return message, nil
}

func (s *GormStore) ListRoomHistory(ctx context.Context, roomID uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at DESC").Order("id DESC").
		Limit(limitOrDefault(limit, DefaultRoomHistoryLimit)).
		Find(&messages).Error
	if err != nil {
		return nil, unavailable("list room history", err)
	}
	return oldestFirst(messages), nil
}

func (s *GormStore) ListDMHistory(ctx context.Context, a, b uint, limit int) ([]models.DirectMessage, error) {
	var messages []models.DirectMessage
	err := s.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("created_at DESC").Order("id DESC").
		Limit(limitOrDefault(limit, DefaultDMHistoryLimit)).
		Find(&messages).Error
	if err != nil {
		return nil, unavailable("list dm history", err)
	}
	return oldestFirst(messages), nil
}

func (s *GormStore) MarkDMRead(ctx context.Context, readerID, peerID uint) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&models.DirectMessage{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", peerID, readerID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, unavailable("mark dm read", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *GormStore) ListDMPartners(ctx context.Context, userID uint) ([]uint, error) {
	var sentTo, receivedFrom []uint
	if err := s.db.WithContext(ctx).Model(&models.DirectMessage{}).
		Where("sender_id = ?", userID).Distinct().Pluck("receiver_id", &sentTo).Error; err != nil {
		return nil, unavailable("list dm partners", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.DirectMessage{}).
		Where("receiver_id = ?", userID).Distinct().Pluck("sender_id", &receivedFrom).Error; err != nil {
		return nil, unavailable("list dm partners", err)
	}

	partners := lo.Uniq(append(sentTo, receivedFrom...))
	slices.Sort(partners)
	return partners, nil
}

func (s *GormStore) ListConversations(ctx context.Context, userID uint) ([]Conversation, error) {
	var messages []models.DirectMessage
	err := s.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").Order("id DESC").
		Find(&messages).Error
	if err != nil {
		return nil, unavailable("list conversations", err)
	}
	return summarize(userID, messages), nil
}

// Close is a no-op: the *gorm.DB is shared with the directory and closed by its owner.
func (s *GormStore) Close() error {
	return nil
}
