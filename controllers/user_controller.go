package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CUknot/messenger_backend/models"
)

type UserLookup interface {
	FindUserByCode(ctx context.Context, code string) (models.User, error)
}

type UserController struct {
	users UserLookup
}

func NewUserController(users UserLookup) *UserController {
	return &UserController{users: users}
}

// GetUserByCode godoc
// @Summary Find a user by code
// @Description Looks up another user by their 7-digit code, to start a conversation
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param code path string true "User code"
// @Success 200 {object} UserResponse
// @Failure 400 {object} map[string]string "Own code"
// @Failure 404 {object} map[string]string "User not found"
// @Router /api/users/{code} [get]
func (uc *UserController) GetUserByCode(c *gin.Context) {
	me, ok := mustUser(c)
	if !ok {
		return
	}
	code := c.Param("code")
	if code == me.Code {
		c.JSON(http.StatusBadRequest, gin.H{"error": "That is your own code"})
		return
	}

	user, err := uc.users.FindUserByCode(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}
