package store

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	apperrors "github.com/CUknot/messenger_backend/errors"
	"github.com/CUknot/messenger_backend/models"
)

const (
	roomPrefix    = "room:"
	dmPrefix      = "dm:"
	partnerPrefix = "partner:"

	sequenceBandwidth = 100
)

// OpenBadger opens (or creates) the badger database at path, logging through log.
func OpenBadger(path string, log *logrus.Entry) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(log).WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return db, nil
}

// BadgerStore is an append-only message log in an embedded badger database.
//
// Keys are laid out so that a prefix scan walks one channel in creation order:
//
//	room:{room_id}:{unix_nano}:{id}
//	dm:{low_user_id}:{high_user_id}:{unix_nano}:{id}
//	partner:{user_id}:{peer_id}
//
// Numbers are zero padded, so lexicographical order is numeric order.
type BadgerStore struct {
	db      *badger.DB
	rooms   RoomFinder
	clock   *Clock
	log     *logrus.Entry
	roomSeq *badger.Sequence
	dmSeq   *badger.Sequence
}

func NewBadgerStore(db *badger.DB, rooms RoomFinder, clock *Clock, log *logrus.Entry) (*BadgerStore, error) {
	roomSeq, err := db.GetSequence([]byte("seq:room_message"), sequenceBandwidth)
	if err != nil {
		return nil, fmt.Errorf("room message sequence: %w", err)
	}
	dmSeq, err := db.GetSequence([]byte("seq:direct_message"), sequenceBandwidth)
	if err != nil {
		_ = roomSeq.Release()
		return nil, fmt.Errorf("direct message sequence: %w", err)
	}
	return &BadgerStore{
		db:      db,
		rooms:   rooms,
		clock:   clock,
		log:     log,
		roomSeq: roomSeq,
		dmSeq:   dmSeq,
	}, nil
}

func roomKeyPrefix(roomID uint) string {
	return fmt.Sprintf("%s%010d:", roomPrefix, roomID)
}

func dmKeyPrefix(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%s%010d:%010d:", dmPrefix, a, b)
}

func partnerKeyPrefix(userID uint) string {
	return fmt.Sprintf("%s%010d:", partnerPrefix, userID)
}

func partnerKey(userID, peerID uint) []byte {
	return []byte(fmt.Sprintf("%s%010d", partnerKeyPrefix(userID), peerID))
}

func (s *BadgerStore) AppendRoomMessage(ctx context.Context, roomID, userID uint, content string) (models.Message, error) {
	content, err := normalizeContent(content)
	if err != nil {
		return models.Message{}, err
	}
	if _, err := s.rooms.FindRoomByID(ctx, roomID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return models.Message{}, err
		}
		return models.Message{}, unavailable("append room message", err)
	}

	id, err := s.roomSeq.Next()
	if err != nil {
		return models.Message{}, unavailable("append room message", err)
	}
	message := models.Message{
		ID:        uint(id + 1),
		RoomID:    roomID,
		UserID:    userID,
		Content:   content,
		CreatedAt: s.clock.Now(),
	}
	value, err := json.Marshal(message)
	if err != nil {
		return models.Message{}, err
	}

	key := fmt.Sprintf("%s%019d:%020d", roomKeyPrefix(roomID), message.CreatedAt.UnixNano(), message.ID)
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return models.Message{}, unavailable("append room message", err)
	}
	return message, nil
}

func (s *BadgerStore) AppendDirectMessage(ctx context.Context, senderID, receiverID uint, content string) (models.DirectMessage, error) {
	if err := checkPair(senderID, receiverID); err != nil {
		return models.DirectMessage{}, err
	}
	content, err := normalizeContent(content)
	if err != nil {
		return models.DirectMessage{}, err
	}

	id, err := s.dmSeq.Next()
	if err != nil {
		return models.DirectMessage{}, unavailable("append direct message", err)
	}
	message := models.DirectMessage{
		ID:         uint(id + 1),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  s.clock.Now(),
	}
	value, err := json.Marshal(message)
	if err != nil {
		return models.DirectMessage{}, err
	}

	key := fmt.Sprintf("%s%019d:%020d", dmKeyPrefix(senderID, receiverID), message.CreatedAt.UnixNano(), message.ID)
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(key), value); err != nil {
			return err
		}
		if err := txn.Set(partnerKey(senderID, receiverID), nil); err != nil {
			return err
		}
		return txn.Set(partnerKey(receiverID, senderID), nil)
	})
	if err != nil {
		return models.DirectMessage{}, unavailable("append direct message", err)
	}
	return message, nil
}

func (s *BadgerStore) ListRoomHistory(_ context.Context, roomID uint, limit int) ([]models.Message, error) {
	messages, err := latest[models.Message](s.db, roomKeyPrefix(roomID), limitOrDefault(limit, DefaultRoomHistoryLimit))
	if err != nil {
		return nil, unavailable("list room history", err)
	}
	return oldestFirst(messages), nil
}

func (s *BadgerStore) ListDMHistory(_ context.Context, a, b uint, limit int) ([]models.DirectMessage, error) {
	messages, err := latest[models.DirectMessage](s.db, dmKeyPrefix(a, b), limitOrDefault(limit, DefaultDMHistoryLimit))
	if err != nil {
		return nil, unavailable("list dm history", err)
	}
	return oldestFirst(messages), nil
}

// latest walks prefix backwards from its newest key and decodes at most limit values, newest first.
func latest[T any](db *badger.DB, prefix string, limit int) ([]T, error) {
	records := make([]T, 0, min(limit, DefaultDMHistoryLimit))
	err := db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		options.Prefix = []byte(prefix)
		it := txn.NewIterator(options)
		defer it.Close()

		// '~' sorts after every digit, so the seek lands past the newest key of the prefix
		for it.Seek([]byte(prefix + "~")); it.ValidForPrefix(options.Prefix); it.Next() {
			if len(records) == limit {
				break
			}
			var record T
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &record)
			})
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	return records, err
}

func (s *BadgerStore) MarkDMRead(_ context.Context, readerID, peerID uint) (int64, error) {
	var marked int64
	err := s.db.Update(func(txn *badger.Txn) error {
		type pending struct {
			key   []byte
			value []byte
		}
		var updates []pending

		options := badger.DefaultIteratorOptions
		options.Prefix = []byte(dmKeyPrefix(readerID, peerID))
		it := txn.NewIterator(options)
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var message models.DirectMessage
			if err := item.Value(func(value []byte) error {
				return json.Unmarshal(value, &message)
			}); err != nil {
				it.Close()
				return err
			}
			if message.IsRead || message.SenderID != peerID || message.ReceiverID != readerID {
				continue
			}
			message.IsRead = true
			value, err := json.Marshal(message)
			if err != nil {
				it.Close()
				return err
			}
			updates = append(updates, pending{key: item.KeyCopy(nil), value: value})
		}
		it.Close()

		for _, u := range updates {
			if err := txn.Set(u.key, u.value); err != nil {
				return err
			}
		}
		marked = int64(len(updates))
		return nil
	})
	if err != nil {
		return 0, unavailable("mark dm read", err)
	}
	return marked, nil
}

func (s *BadgerStore) ListDMPartners(_ context.Context, userID uint) ([]uint, error) {
	prefix := partnerKeyPrefix(userID)
	var partners []uint
	err := s.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		options.Prefix = []byte(prefix)
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			peer, err := strconv.ParseUint(strings.TrimPrefix(string(it.Item().Key()), prefix), 10, 64)
			if err != nil {
				return fmt.Errorf("malformed partner key %q: %w", it.Item().Key(), err)
			}
			partners = append(partners, uint(peer))
		}
		return nil
	})
	if err != nil {
		return nil, unavailable("list dm partners", err)
	}
	return partners, nil
}

// ListConversations reads the partner index, then each pair's messages newest first.
func (s *BadgerStore) ListConversations(ctx context.Context, userID uint) ([]Conversation, error) {
	partners, err := s.ListDMPartners(ctx, userID)
	if err != nil {
		return nil, err
	}

	var messages []models.DirectMessage
	for _, peer := range partners {
		pair, err := latest[models.DirectMessage](s.db, dmKeyPrefix(userID, peer), math.MaxInt)
		if err != nil {
			return nil, unavailable("list conversations", err)
		}
		messages = append(messages, pair...)
	}
	slices.SortStableFunc(messages, func(a, b models.DirectMessage) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return summarize(userID, messages), nil
}

// Close releases the id sequences and closes the underlying database.
func (s *BadgerStore) Close() error {
	if err := s.roomSeq.Release(); err != nil {
		s.log.WithError(err).Warn("Release room message sequence")
	}
	if err := s.dmSeq.Release(); err != nil {
		s.log.WithError(err).Warn("Release direct message sequence")
	}
	return s.db.Close()
}

// LogRecord is either kind of stored message, for tools that walk the raw log.
type LogRecord struct {
	ID         uint      `json:"id"`
	RoomID     uint      `json:"room_id,omitempty"`
	UserID     uint      `json:"user_id,omitempty"`
	SenderID   uint      `json:"sender_id,omitempty"`
	ReceiverID uint      `json:"receiver_id,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	IsRead     bool      `json:"is_read"`
}

// ScanLog calls fn for every message whose key starts with prefix, in key order.
// Partner index and sequence keys are skipped.
func ScanLog(db *badger.DB, prefix string, fn func(key string, rec LogRecord) error) error {
	return db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = []byte(prefix)
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			if !strings.HasPrefix(key, roomPrefix) && !strings.HasPrefix(key, dmPrefix) {
				continue
			}
			var rec LogRecord
			if err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &rec)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", key, err)
			}
			if err := fn(key, rec); err != nil {
				return err
			}
		}
		return nil
	})
}
