package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/CUknot/messenger_backend/models"
)

type RoomDirectory interface {
	ListRooms(ctx context.Context) ([]models.Room, error)
	FindRoomBySlug(ctx context.Context, slug string) (models.Room, error)
	FindUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error)
}

type RoomHistory interface {
	ListRoomHistory(ctx context.Context, roomID uint, limit int) ([]models.Message, error)
}

// RoomMessageResponse mirrors the live "message" event, plus id and full timestamp.
type RoomMessageResponse struct {
	ID        uint      `json:"id" example:"42"`
	User      string    `json:"user" example:"bob"`
	UserID    uint      `json:"user_id" example:"2"`
	Msg       string    `json:"msg" example:"hello"`
	TS        string    `json:"ts" example:"21:04"`
	CreatedAt time.Time `json:"created_at"`
}

type RoomController struct {
	rooms    RoomDirectory
	messages RoomHistory
	limit    int
	loc      *time.Location
}

func NewRoomController(rooms RoomDirectory, messages RoomHistory, limit int, loc *time.Location) *RoomController {
	return &RoomController{rooms: rooms, messages: messages, limit: limit, loc: loc}
}

// GetRooms godoc
// @Summary List rooms
// @Description Returns every public room
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]models.Room "List of rooms"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 503 {object} map[string]string "Storage unavailable"
// @Router /api/rooms [get]
func (rc *RoomController) GetRooms(c *gin.Context) {
	rooms, err := rc.rooms.ListRooms(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// GetRoomMessages godoc
// @Summary Room history
// @Description Returns the latest messages of a room, oldest first
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Room slug"
// @Param limit query int false "Maximum number of messages (default 200)"
// @Success 200 {object} map[string]interface{} "Room and its messages"
// @Failure 400 {object} map[string]string "Invalid limit"
// @Failure 404 {object} map[string]string "Room not found"
// @Failure 503 {object} map[string]string "Storage unavailable"
// @Router /api/rooms/{slug}/messages [get]
func (rc *RoomController) GetRoomMessages(c *gin.Context) {
	limit, ok := historyLimit(c)
	if !ok {
		return
	}
	if limit == 0 {
		limit = rc.limit
	}
	ctx := c.Request.Context()

	room, err := rc.rooms.FindRoomBySlug(ctx, c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	messages, err := rc.messages.ListRoomHistory(ctx, room.ID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	authors, err := rc.rooms.FindUsersByIDs(ctx, lo.Uniq(lo.Map(messages, func(m models.Message, _ int) uint {
		return m.UserID
	})))
	if err != nil {
		respondError(c, err)
		return
	}
	names := lo.SliceToMap(authors, func(u models.User) (uint, string) {
		return u.ID, u.Username
	})

	response := lo.Map(messages, func(m models.Message, _ int) RoomMessageResponse {
		return RoomMessageResponse{
			ID:        m.ID,
			User:      names[m.UserID],
			UserID:    m.UserID,
			Msg:       m.Content,
			TS:        m.CreatedAt.In(rc.loc).Format(timeLayout),
			CreatedAt: m.CreatedAt,
		}
	})
	c.JSON(http.StatusOK, gin.H{"room": room, "messages": response})
}
