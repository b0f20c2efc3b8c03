package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/CUknot/messenger_backend/middleware"
	"github.com/CUknot/messenger_backend/models"
	"github.com/CUknot/messenger_backend/store"
)

type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) CreateUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockDirectory) FindUserByLogin(ctx context.Context, login string) (models.User, error) {
	args := m.Called(ctx, login)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *mockDirectory) FindUserByCode(ctx context.Context, code string) (models.User, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *mockDirectory) FindUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *mockDirectory) ListRooms(ctx context.Context) ([]models.Room, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Room), args.Error(1)
}

func (m *mockDirectory) FindRoomBySlug(ctx context.Context, slug string) (models.Room, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).(models.Room), args.Error(1)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) ListRoomHistory(ctx context.Context, roomID uint, limit int) ([]models.Message, error) {
	args := m.Called(ctx, roomID, limit)
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *mockStore) ListDMHistory(ctx context.Context, a, b uint, limit int) ([]models.DirectMessage, error) {
	args := m.Called(ctx, a, b, limit)
	return args.Get(0).([]models.DirectMessage), args.Error(1)
}

func (m *mockStore) MarkDMRead(ctx context.Context, readerID, peerID uint) (int64, error) {
	args := m.Called(ctx, readerID, peerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) ListConversations(ctx context.Context, userID uint) ([]store.Conversation, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]store.Conversation), args.Error(1)
}

var (
	alice = models.User{ID: 1, Username: "alice", Email: "alice@example.com", Code: "1234567", IsActive: true}
	bob   = models.User{ID: 2, Username: "bob", Email: "bob@example.com", Code: "7654321", IsActive: true}
)

// newRouter returns a test router whose requests are authenticated as user, or anonymous when user is nil.
func newRouter(user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if user != nil {
		router.Use(func(c *gin.Context) {
			middleware.SetCurrentUser(c, user)
			c.Next()
		})
	}
	return router
}

func serve(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, r)
	return w
}
