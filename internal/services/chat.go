package services

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/avelldro/converse-backend/internal/data/repos"
	types "github.com/avelldro/converse-backend/internal/domain"
	"github.com/avelldro/converse-backend/internal/pkg/dbctx"
	"github.com/avelldro/converse-backend/internal/platform/fault"
	"github.com/avelldro/converse-backend/internal/platform/logger"
	"github.com/avelldro/converse-backend/internal/requestdata"
)

const defaultMaxContentChars = 20000

// SubmitResult carries the identifiers a client needs to poll for the
// assistant reply. The reply itself lands asynchronously.
type SubmitResult struct {
	Conversation *types.Conversation `json:"conversation"`
	Turn         *types.Turn         `json:"turn"`
}

type ChatService interface {
	CreateConversation(dbc dbctx.Context, title string) (*types.Conversation, error)
	ListConversations(dbc dbctx.Context, limit int) ([]*types.Conversation, error)
	GetConversation(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error)
	// ListTurns returns the conversation alongside its turns in ascending
	// seq order.
	ListTurns(dbc dbctx.Context, conversationID uuid.UUID, limit int) (*types.Conversation, []*types.Turn, error)
	DeleteConversation(dbc dbctx.Context, id uuid.UUID) error
	// SubmitTurn stores the user turn, enqueues exactly one respond job,
	// and returns immediately. A nil conversationID starts a new
	// conversation owned by the caller.
	SubmitTurn(dbc dbctx.Context, conversationID *uuid.UUID, content string) (*SubmitResult, error)
}

type chatService struct {
	log             *logger.Logger
	conversations   repos.ConversationRepo
	turns           repos.TurnRepo
	store           TurnStore
	dispatcher      TurnDispatcher
	activity        ActivityRecorder
	maxContentChars int
}

func NewChatService(
	log *logger.Logger,
	conversations repos.ConversationRepo,
	turns repos.TurnRepo,
	store TurnStore,
	dispatcher TurnDispatcher,
	activity ActivityRecorder,
	maxContentChars int,
) ChatService {
	if maxContentChars <= 0 {
		maxContentChars = defaultMaxContentChars
	}
	return &chatService{
		log:             log.With("service", "ChatService"),
		conversations:   conversations,
		turns:           turns,
		store:           store,
		dispatcher:      dispatcher,
		activity:        activity,
		maxContentChars: maxContentChars,
	}
}

func (s *chatService) CreateConversation(dbc dbctx.Context, title string) (*types.Conversation, error) {
	rd := requestdata.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fault.New(fault.KindValidation, "not authenticated")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "New Conversation"
	}
	if utf8.RuneCountInString(title) > 200 {
		return nil, fault.New(fault.KindValidation, "title too long")
	}

	rows, err := s.conversations.Create(dbc, []*types.Conversation{{
		UserID: rd.UserID,
		Title:  title,
	}})
	if err != nil {
		return nil, fault.Wrap(fault.KindStorage, err)
	}
	conv := rows[0]
	s.activity.Record(dbc.Ctx, rd.UserID, "conversation_created", map[string]any{
		"conversation_id": conv.ID.String(),
	})
	return conv, nil
}

func (s *chatService) ListConversations(dbc dbctx.Context, limit int) ([]*types.Conversation, error) {
	rd := requestdata.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fault.New(fault.KindValidation, "not authenticated")
	}
	rows, err := s.conversations.ListByUser(dbc, rd.UserID, limit)
	if err != nil {
		return nil, fault.Wrap(fault.KindStorage, err)
	}
	return rows, nil
}

func (s *chatService) GetConversation(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error) {
	rd := requestdata.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fault.New(fault.KindValidation, "not authenticated")
	}
	if id == uuid.Nil {
		return nil, fault.New(fault.KindValidation, "missing conversation id")
	}
	conv, err := s.conversations.GetByID(dbc, id)
	if err != nil {
		return nil, fault.Wrap(fault.KindStorage, err)
	}
	if conv == nil || conv.UserID != rd.UserID {
		return nil, fault.New(fault.KindNotFound, "conversation not found")
	}
	return conv, nil
}

func (s *chatService) ListTurns(dbc dbctx.Context, conversationID uuid.UUID, limit int) (*types.Conversation, []*types.Turn, error) {
	conv, err := s.GetConversation(dbc, conversationID)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.turns.ListByConversation(dbc, conversationID, limit)
	if err != nil {
		return nil, nil, fault.Wrap(fault.KindStorage, err)
	}
	return conv, rows, nil
}

func (s *chatService) DeleteConversation(dbc dbctx.Context, id uuid.UUID) error {
	conv, err := s.GetConversation(dbc, id)
	if err != nil {
		return err
	}
	removed, err := s.turns.CountByConversation(dbc, conv.ID)
	if err != nil {
		return fault.Wrap(fault.KindStorage, err)
	}
	// Turns first so a partial failure cannot orphan live turns under a
	// deleted conversation.
	if err := s.turns.DeleteByConversation(dbc, conv.ID); err != nil {
		return fault.Wrap(fault.KindStorage, err)
	}
	if err := s.conversations.Delete(dbc, conv.ID); err != nil {
		return fault.Wrap(fault.KindStorage, err)
	}
	rd := requestdata.GetRequestData(dbc.Ctx)
	s.activity.Record(dbc.Ctx, rd.UserID, "conversation_deleted", map[string]any{
		"conversation_id": conv.ID.String(),
		"turns_removed":   removed,
	})
	return nil
}

func (s *chatService) SubmitTurn(dbc dbctx.Context, conversationID *uuid.UUID, content string) (*SubmitResult, error) {
	rd := requestdata.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fault.New(fault.KindValidation, "not authenticated")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fault.New(fault.KindValidation, "missing content")
	}
	if utf8.RuneCountInString(content) > s.maxContentChars {
		return nil, fault.New(fault.KindValidation, "content too large")
	}

	var conv *types.Conversation
	if conversationID != nil && *conversationID != uuid.Nil {
		existing, err := s.conversations.GetByID(dbc, *conversationID)
		if err != nil {
			return nil, fault.Wrap(fault.KindStorage, err)
		}
		if existing == nil || existing.UserID != rd.UserID {
			return nil, fault.New(fault.KindNotFound, "conversation not found")
		}
		conv = existing
	} else {
		rows, err := s.conversations.Create(dbc, []*types.Conversation{{
			UserID: rd.UserID,
			Title:  deriveTitle(content),
		}})
		if err != nil {
			return nil, fault.Wrap(fault.KindStorage, err)
		}
		conv = rows[0]
	}

	turn, err := s.store.Append(dbc, &types.Turn{
		ConversationID: conv.ID,
		UserID:         rd.UserID,
		Role:           types.RoleUser,
		Content:        content,
	})
	if err != nil {
		return nil, err
	}

	if err := s.dispatcher.DispatchTurn(dbc.Ctx, conv.ID, turn.ID); err != nil {
		return nil, err
	}

	s.activity.Record(dbc.Ctx, rd.UserID, "turn_submitted", map[string]any{
		"conversation_id": conv.ID.String(),
		"turn_id":         turn.ID.String(),
	})
	return &SubmitResult{Conversation: conv, Turn: turn}, nil
}

func deriveTitle(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	if content == "" {
		return "New Conversation"
	}
	runes := []rune(content)
	if len(runes) <= 60 {
		return content
	}
	return string(runes[:60])
}
