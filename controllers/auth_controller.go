package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/CUknot/messenger_backend/errors"
	"github.com/CUknot/messenger_backend/models"
	"github.com/CUknot/messenger_backend/utils"
)

type RegisterInput struct {
	Username string `json:"username" binding:"required,min=3,max=80" example:"alice"`
	Email    string `json:"email" binding:"required,email,max=120" example:"alice@example.com"`
	Password string `json:"password" binding:"required,min=6" example:"secret123"`
}

type LoginInput struct {
	// Login is either the 7-digit user code or the username
	Login    string `json:"login" binding:"required" example:"1234567"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// AccountResponse is the authenticated user's own view, with email and role.
type AccountResponse struct {
	UserResponse
	Email   string `json:"email" example:"alice@example.com"`
	IsAdmin bool   `json:"is_admin"`
}

type AuthResponse struct {
	Message string          `json:"message" example:"Login successful"`
	User    AccountResponse `json:"user"`
	Token   string          `json:"token"`
}

type UserAccounts interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByLogin(ctx context.Context, login string) (models.User, error)
}

type AuthController struct {
	users  UserAccounts
	secret string
	ttl    time.Duration
}

func NewAuthController(users UserAccounts, secret string, ttl time.Duration) *AuthController {
	return &AuthController{users: users, secret: secret, ttl: ttl}
}

func toAccountResponse(u models.User) AccountResponse {
	return AccountResponse{UserResponse: toUserResponse(u), Email: u.Email, IsAdmin: u.IsAdmin}
}

// Register godoc
// @Summary Register a new user
// @Description Creates an account with a generated 7-digit code and returns a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterInput true "Registration"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "User already exists"
// @Failure 503 {object} map[string]string "Storage unavailable"
// @Router /api/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Create new user
	user := models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		IsActive: true,
	}
	if err := ac.users.CreateUser(c.Request.Context(), &user); err != nil {
		respondError(c, err)
		return
	}

	token, err := utils.GenerateToken(user.ID, ac.secret, ac.ttl)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Message: "User registered successfully",
		User:    toAccountResponse(user),
		Token:   token,
	})
}

// Login godoc
// @Summary Log in
// @Description Authenticates by user code or username and returns a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginInput true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Invalid login or password"
// @Failure 403 {object} map[string]string "Account disabled"
// @Router /api/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ac.users.FindUserByLogin(c.Request.Context(), input.Login)
	if errors.Is(err, apperrors.ErrNotFound) {
		err = apperrors.ErrInvalidCredentials
	}
	if err != nil {
		respondError(c, err)
		return
	}

	// Validate password
	if err := user.ValidatePassword(input.Password); err != nil {
		respondError(c, apperrors.ErrInvalidCredentials)
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account disabled"})
		return
	}

	token, err := utils.GenerateToken(user.ID, ac.secret, ac.ttl)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Message: "Login successful",
		User:    toAccountResponse(user),
		Token:   token,
	})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /api/me [get]
func (ac *AuthController) Me(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toAccountResponse(*user))
}
