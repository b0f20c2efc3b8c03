// Package store is the durable log of room messages and direct messages.
// Two backends implement MessageStore: GormStore on PostgreSQL and BadgerStore on an embedded badger database.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo/mutable"

	apperrors "github.com/CUknot/messenger_backend/errors"
	"github.com/CUknot/messenger_backend/models"
)

const (
	DefaultRoomHistoryLimit = 200
	DefaultDMHistoryLimit   = 300
)

type MessageStore interface {
	AppendRoomMessage(ctx context.Context, roomID, userID uint, content string) (models.Message, error)
	AppendDirectMessage(ctx context.Context, senderID, receiverID uint, content string) (models.DirectMessage, error)
	// ListRoomHistory returns the latest limit messages of the room, oldest first.
	ListRoomHistory(ctx context.Context, roomID uint, limit int) ([]models.Message, error)
	// ListDMHistory returns the latest limit messages exchanged between a and b in either direction, oldest first.
	ListDMHistory(ctx context.Context, a, b uint, limit int) ([]models.DirectMessage, error)
	// MarkDMRead flags every unread message sent by peerID to readerID and returns how many changed.
	MarkDMRead(ctx context.Context, readerID, peerID uint) (int64, error)
	// ListDMPartners returns the distinct users userID exchanged direct messages with.
	ListDMPartners(ctx context.Context, userID uint) ([]uint, error)
	// ListConversations returns one entry per DM partner of userID, most recently active first.
	ListConversations(ctx context.Context, userID uint) ([]Conversation, error)
	Close() error
}

// Conversation summarizes the direct messages userID exchanged with one peer.
type Conversation struct {
	PeerID uint
	Last   models.DirectMessage
	// Unread counts the peer's messages userID has not read.
	Unread int64
}

// summarize groups newest-first messages of userID by peer. Conversations keep the order of their latest message.
func summarize(userID uint, newestFirst []models.DirectMessage) []Conversation {
	var conversations []Conversation
	index := make(map[uint]int)
	for _, m := range newestFirst {
		peer := m.Peer(userID)
		i, ok := index[peer]
		if !ok {
			i = len(conversations)
			index[peer] = i
			conversations = append(conversations, Conversation{PeerID: peer, Last: m})
		}
		if m.ReceiverID == userID && !m.IsRead {
			conversations[i].Unread++
		}
	}
	return conversations
}

// RoomFinder is the part of the room directory the stores need to reject unknown rooms.
type RoomFinder interface {
	FindRoomByID(ctx context.Context, id uint) (models.Room, error)
}

func normalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: empty content", apperrors.ErrValidation)
	}
	return content, nil
}

func checkPair(a, b uint) error {
	if a == 0 || b == 0 || a == b {
		return fmt.Errorf("%w: %d and %d", apperrors.ErrInvalidPair, a, b)
	}
	return nil
}

func limitOrDefault(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, apperrors.ErrStoreUnavailable, err)
}

// oldestFirst turns a newest-first page into presentation order.
func oldestFirst[T any](newestFirst []T) []T {
	mutable.Reverse(newestFirst)
	return newestFirst
}
