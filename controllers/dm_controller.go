package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/CUknot/messenger_backend/models"
	"github.com/CUknot/messenger_backend/store"
)

type DMDirectory interface {
	FindUserByCode(ctx context.Context, code string) (models.User, error)
	FindUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error)
}

type DMStore interface {
	ListDMHistory(ctx context.Context, a, b uint, limit int) ([]models.DirectMessage, error)
	MarkDMRead(ctx context.Context, readerID, peerID uint) (int64, error)
	ListConversations(ctx context.Context, userID uint) ([]store.Conversation, error)
}

// DMResponse mirrors the live "dm" event, plus id, read flag and full timestamp.
type DMResponse struct {
	ID        uint      `json:"id" example:"7"`
	FromCode  string    `json:"from_code" example:"7654321"`
	FromName  string    `json:"from_name" example:"bob"`
	Msg       string    `json:"msg" example:"hi"`
	TS        string    `json:"ts" example:"21:04"`
	Date      string    `json:"date" example:"2026/10/16"`
	IsRead    bool      `json:"is_read"`
	Mine      bool      `json:"mine"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationResponse is one entry of the caller's conversation list.
type ConversationResponse struct {
	Peer        UserResponse `json:"peer"`
	LastMessage DMResponse   `json:"last_message"`
	Unread      int64        `json:"unread" example:"2"`
}

type DMController struct {
	users    DMDirectory
	messages DMStore
	limit    int
	loc      *time.Location
}

func NewDMController(users DMDirectory, messages DMStore, limit int, loc *time.Location) *DMController {
	return &DMController{users: users, messages: messages, limit: limit, loc: loc}
}

// peer resolves the :code path parameter, refusing the caller's own code.
func (dc *DMController) peer(c *gin.Context, me *models.User) (models.User, bool) {
	code := c.Param("code")
	if code == me.Code {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot message yourself"})
		return models.User{}, false
	}
	peer, err := dc.users.FindUserByCode(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return models.User{}, false
	}
	return peer, true
}

// dmResponse renders m, exchanged between me and peer, as the caller sees it.
func (dc *DMController) dmResponse(m models.DirectMessage, me, peer *models.User) DMResponse {
	from := peer
	if m.SenderID == me.ID {
		from = me
	}
	createdAt := m.CreatedAt.In(dc.loc)
	return DMResponse{
		ID:        m.ID,
		FromCode:  from.Code,
		FromName:  from.Username,
		Msg:       m.Content,
		TS:        createdAt.Format(timeLayout),
		Date:      createdAt.Format(dateLayout),
		IsRead:    m.IsRead,
		Mine:      m.SenderID == me.ID,
		CreatedAt: m.CreatedAt,
	}
}

// GetDMMessages godoc
// @Summary Conversation history
// @Description Returns the latest direct messages between the caller and a peer, oldest first
// @Tags dms
// @Produce json
// @Security BearerAuth
// @Param code path string true "Peer code"
// @Param limit query int false "Maximum number of messages (default 300)"
// @Success 200 {object} map[string]interface{} "Peer and messages"
// @Failure 400 {object} map[string]string "Own code or invalid limit"
// @Failure 404 {object} map[string]string "User not found"
// @Failure 503 {object} map[string]string "Storage unavailable"
// @Router /api/dms/{code}/messages [get]
func (dc *DMController) GetDMMessages(c *gin.Context) {
	me, ok := mustUser(c)
	if !ok {
		return
	}
	limit, ok := historyLimit(c)
	if !ok {
		return
	}
	if limit == 0 {
		limit = dc.limit
	}
	peer, ok := dc.peer(c, me)
	if !ok {
		return
	}

	messages, err := dc.messages.ListDMHistory(c.Request.Context(), me.ID, peer.ID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response := lo.Map(messages, func(m models.DirectMessage, _ int) DMResponse {
		return dc.dmResponse(m, me, &peer)
	})
	c.JSON(http.StatusOK, gin.H{"peer": toUserResponse(peer), "messages": response})
}

// MarkDMRead godoc
// @Summary Mark a conversation read
// @Description Flags every unread message the peer sent to the caller as read
// @Tags dms
// @Produce json
// @Security BearerAuth
// @Param code path string true "Peer code"
// @Success 200 {object} map[string]int64 "Number of messages marked"
// @Failure 400 {object} map[string]string "Own code"
// @Failure 404 {object} map[string]string "User not found"
// @Failure 503 {object} map[string]string "Storage unavailable"
// @Router /api/dms/{code}/read [post]
func (dc *DMController) MarkDMRead(c *gin.Context) {
	me, ok := mustUser(c)
	if !ok {
		return
	}
	peer, ok := dc.peer(c, me)
	if !ok {
		return
	}

	marked, err := dc.messages.MarkDMRead(c.Request.Context(), me.ID, peer.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": marked})
}

// GetConversations godoc
// @Summary Conversations
// @Description Returns one entry per DM partner with the last message and the unread count, most recent first
// @Tags dms
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]ConversationResponse "Conversations"
// @Failure 503 {object} map[string]string "Storage unavailable"
// @Router /api/conversations [get]
func (dc *DMController) GetConversations(c *gin.Context) {
	me, ok := mustUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	conversations, err := dc.messages.ListConversations(ctx, me.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	peers, err := dc.users.FindUsersByIDs(ctx, lo.Map(conversations, func(cv store.Conversation, _ int) uint {
		return cv.PeerID
	}))
	if err != nil {
		respondError(c, err)
		return
	}
	byID := lo.KeyBy(peers, func(u models.User) uint { return u.ID })

	response := make([]ConversationResponse, 0, len(conversations))
	for _, cv := range conversations {
		peer, ok := byID[cv.PeerID]
		if !ok {
			continue
		}
		response = append(response, ConversationResponse{
			Peer:        toUserResponse(peer),
			LastMessage: dc.dmResponse(cv.Last, me, &peer),
			Unread:      cv.Unread,
		})
	}
	c.JSON(http.StatusOK, gin.H{"conversations": response})
}
