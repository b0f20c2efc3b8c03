package store

import (
	"context"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/CUknot/messenger_backend/database"
	apperrors "github.com/CUknot/messenger_backend/errors"
	"github.com/CUknot/messenger_backend/models"
)

// openTestDB connects to the PostgreSQL database named by MESSENGER_TEST_DSN and empties it.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("MESSENGER_TEST_DSN")
	if dsn == "" {
		t.Skip("MESSENGER_TEST_DSN not set")
	}
	logger, _ := test.NewNullLogger()
	log := logrus.NewEntry(logger)

	db, err := database.Connect(dsn, log)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, log))
	require.NoError(t, db.Exec("TRUNCATE users, rooms, messages, direct_messages RESTART IDENTITY").Error)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestGormStore_RoomHistory(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := openTestDB(t)
	room := models.Room{Slug: "general", Title: "General"}
	req.NoError(db.Create(&room).Error)
	s := NewGormStore(db, tickingClock())

	for _, content := range []string{"a", "b", "c"} {
		_, err := s.AppendRoomMessage(ctx, room.ID, 1, content)
		req.NoError(err)
	}

	history, err := s.ListRoomHistory(ctx, room.ID, 2)
	req.NoError(err)
	req.Len(history, 2)
	req.Equal("b", history[0].Content)
	req.Equal("c", history[1].Content)

	_, err = s.AppendRoomMessage(ctx, room.ID+100, 1, "nowhere")
	req.ErrorIs(err, apperrors.ErrNotFound)
	_, err = s.AppendRoomMessage(ctx, room.ID, 1, "   ")
	req.ErrorIs(err, apperrors.ErrValidation)
}

func TestGormStore_DirectMessages(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := NewGormStore(openTestDB(t), tickingClock())

	_, err := s.AppendDirectMessage(ctx, 3, 11, "hi")
	req.NoError(err)
	_, err = s.AppendDirectMessage(ctx, 11, 3, "hey")
	req.NoError(err)
	_, err = s.AppendDirectMessage(ctx, 4, 3, "other")
	req.NoError(err)
	_, err = s.AppendDirectMessage(ctx, 3, 3, "me")
	req.ErrorIs(err, apperrors.ErrInvalidPair)

	history, err := s.ListDMHistory(ctx, 11, 3, 0)
	req.NoError(err)
	req.Len(history, 2)
	req.Equal("hi", history[0].Content)

	marked, err := s.MarkDMRead(ctx, 11, 3)
	req.NoError(err)
	req.Equal(int64(1), marked)

	partners, err := s.ListDMPartners(ctx, 3)
	req.NoError(err)
	req.Equal([]uint{4, 11}, partners)

	conversations, err := s.ListConversations(ctx, 3)
	req.NoError(err)
	req.Len(conversations, 2)
	req.Equal(uint(4), conversations[0].PeerID)
	req.Equal("other", conversations[0].Last.Content)
	req.Equal(int64(1), conversations[0].Unread)
	req.Equal(uint(11), conversations[1].PeerID)
	req.Equal("hey", conversations[1].Last.Content)
	req.Equal(int64(1), conversations[1].Unread)
}

func TestGormDirectory_CreateUserAndLookup(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dir := NewGormDirectory(openTestDB(t))

	user := models.User{Username: "alice", Email: "alice@example.com", Password: "secret"}
	req.NoError(dir.CreateUser(ctx, &user))
	req.Len(user.Code, models.CodeLength)

	byCode, err := dir.FindUserByCode(ctx, user.Code)
	req.NoError(err)
	req.Equal(user.ID, byCode.ID)

	byName, err := dir.FindUserByLogin(ctx, "alice")
	req.NoError(err)
	req.Equal(user.ID, byName.ID)
	req.NoError(byName.ValidatePassword("secret"))

	dup := models.User{Username: "alice", Email: "other@example.com", Password: "x"}
	req.ErrorIs(dir.CreateUser(ctx, &dup), apperrors.ErrUserAlreadyExists)

	_, err = dir.FindUserByCode(ctx, "0000000")
	req.ErrorIs(err, apperrors.ErrNotFound)
}

func TestSeed_IsIdempotent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := openTestDB(t)
	dir := NewGormDirectory(db)
	logger, _ := test.NewNullLogger()
	log := logrus.NewEntry(logger)

	req.NoError(database.Seed(ctx, db, dir, "admin123", log))
	req.NoError(database.Seed(ctx, db, dir, "admin123", log))

	rooms, err := dir.ListRooms(ctx)
	req.NoError(err)
	req.Len(rooms, len(database.DefaultRooms))
	req.Equal("general", rooms[0].Slug)

	admin, err := dir.FindUserByLogin(ctx, "admin")
	req.NoError(err)
	req.True(admin.IsAdmin)
	req.NoError(admin.ValidatePassword("admin123"))
}
