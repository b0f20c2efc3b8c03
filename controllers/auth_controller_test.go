package controllers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/CUknot/messenger_backend/errors"
	"github.com/CUknot/messenger_backend/models"
	"github.com/CUknot/messenger_backend/utils"
)

const secret = "test-secret"

func hashed(t *testing.T, user models.User, password string) models.User {
	t.Helper()
	user.Password = password
	require.NoError(t, user.BeforeCreate(nil))
	return user
}

func TestAuthController_Register(t *testing.T) {
	req := require.New(t)
	dir := new(mockDirectory)
	dir.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Username == "alice" && u.Email == "alice@example.com" && u.IsActive
	})).Run(func(args mock.Arguments) {
		u := args.Get(1).(*models.User)
		u.ID = 1
		u.Code = "1234567"
	}).Return(nil)

	router := newRouter(nil)
	router.POST("/api/register", NewAuthController(dir, secret, time.Hour).Register)
	w := serve(router, http.MethodPost, "/api/register", `{"username":"alice","email":"alice@example.com","password":"secret123"}`)

	req.Equal(http.StatusCreated, w.Code)
	var resp AuthResponse
	req.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	req.Equal("1234567", resp.User.Code)
	req.Equal("alice@example.com", resp.User.Email)
	userID, err := utils.ParseToken(resp.Token, secret)
	req.NoError(err)
	req.Equal(uint(1), userID)
	dir.AssertExpectations(t)
}

func TestAuthController_Register_Rejected(t *testing.T) {
	dir := new(mockDirectory)
	dir.On("CreateUser", mock.Anything, mock.Anything).Return(apperrors.ErrUserAlreadyExists)
	router := newRouter(nil)
	router.POST("/api/register", NewAuthController(dir, secret, time.Hour).Register)

	w := serve(router, http.MethodPost, "/api/register", `{"username":"alice","email":"alice@example.com","password":"secret123"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = serve(router, http.MethodPost, "/api/register", `{"username":"alice","email":"not-an-email","password":"secret123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(router, http.MethodPost, "/api/register", `{"username":"alice","email":"alice@example.com","password":"123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthController_Login(t *testing.T) {
	inactive := hashed(t, models.User{ID: 3, Username: "carol", Code: "5555555"}, "secret123")
	dir := new(mockDirectory)
	dir.On("FindUserByLogin", mock.Anything, "1234567").Return(hashed(t, alice, "secret123"), nil)
	dir.On("FindUserByLogin", mock.Anything, "carol").Return(inactive, nil)
	dir.On("FindUserByLogin", mock.Anything, "nobody").Return(models.User{}, apperrors.ErrNotFound)
	router := newRouter(nil)
	router.POST("/api/login", NewAuthController(dir, secret, time.Hour).Login)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"by code", `{"login":"1234567","password":"secret123"}`, http.StatusOK},
		{"wrong password", `{"login":"1234567","password":"nope"}`, http.StatusUnauthorized},
		{"unknown login", `{"login":"nobody","password":"secret123"}`, http.StatusUnauthorized},
		{"inactive", `{"login":"carol","password":"secret123"}`, http.StatusForbidden},
		{"missing password", `{"login":"1234567"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, http.MethodPost, "/api/login", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestAuthController_Me(t *testing.T) {
	router := newRouter(&alice)
	router.GET("/api/me", NewAuthController(new(mockDirectory), secret, time.Hour).Me)

	w := serve(router, http.MethodGet, "/api/me", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":1,"username":"alice","code":"1234567","email":"alice@example.com","is_admin":false}`, w.Body.String())

	anonymous := newRouter(nil)
	anonymous.GET("/api/me", NewAuthController(new(mockDirectory), secret, time.Hour).Me)
	assert.Equal(t, http.StatusUnauthorized, serve(anonymous, http.MethodGet, "/api/me", "").Code)
}
