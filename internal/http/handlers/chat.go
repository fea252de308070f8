package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avelldro/converse-backend/internal/http/response"
	"github.com/avelldro/converse-backend/internal/pkg/dbctx"
	"github.com/avelldro/converse-backend/internal/services"
)

type ChatHandler struct {
	chat services.ChatService
}

func NewChatHandler(chat services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type createConversationReq struct {
	Title string `json:"title"`
}

// POST /api/chat/conversations
func (h *ChatHandler) CreateConversation(c *gin.Context) {
	var req createConversationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	conv, err := h.chat.CreateConversation(dbc, req.Title)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"conversation": conv})
}

// GET /api/chat/conversations?limit=50
func (h *ChatHandler) ListConversations(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	conversations, err := h.chat.ListConversations(dbc, queryLimit(c, 50))
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"conversations": conversations})
}

// GET /api/chat/conversations/:id
func (h *ChatHandler) GetConversation(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_conversation_id", err)
		return
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	conv, err := h.chat.GetConversation(dbc, conversationID)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"conversation": conv})
}

// GET /api/chat/conversations/:id/messages?limit=500
func (h *ChatHandler) ListMessages(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_conversation_id", err)
		return
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	conv, turns, err := h.chat.ListTurns(dbc, conversationID, queryLimit(c, 500))
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"conversation": conv, "messages": turns})
}

// DELETE /api/chat/conversations/:id
func (h *ChatHandler) DeleteConversation(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_conversation_id", err)
		return
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	if err := h.chat.DeleteConversation(dbc, conversationID); err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

type sendMessageReq struct {
	ConversationID *uuid.UUID `json:"conversation_id"`
	Content        string     `json:"content"`
}

// POST /api/chat/messages
//
// Returns 202 with the stored turn; the assistant reply lands
// asynchronously and is picked up via the messages listing.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	res, err := h.chat.SubmitTurn(dbc, req.ConversationID, req.Content)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondAccepted(c, gin.H{
		"conversation_id": res.Conversation.ID,
		"turn_id":         res.Turn.ID,
	})
}

func queryLimit(c *gin.Context, def int) int {
	limit := def
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	return limit
}
