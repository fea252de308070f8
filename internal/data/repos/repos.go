package repos

import (
	chatrepo "github.com/avelldro/converse-backend/internal/data/repos/chat"
)

type ConversationRepo = chatrepo.ConversationRepo
type TurnRepo = chatrepo.TurnRepo

var (
	NewConversationRepo = chatrepo.NewConversationRepo
	NewTurnRepo         = chatrepo.NewTurnRepo
)
