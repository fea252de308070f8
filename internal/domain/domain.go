package domain

import (
	"github.com/avelldro/converse-backend/internal/domain/chat"
)

const (
	RoleUser      = chat.RoleUser
	RoleAssistant = chat.RoleAssistant
)

type Conversation = chat.Conversation
type Turn = chat.Turn
