package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/avelldro/converse-backend/internal/domain"
	"github.com/avelldro/converse-backend/internal/pkg/dbctx"
	"github.com/avelldro/converse-backend/internal/platform/fault"
)

type memState struct {
	mu            sync.Mutex
	conversations map[uuid.UUID]*types.Conversation
	turns         []*types.Turn
}

func newMemState() *memState {
	return &memState{conversations: map[uuid.UUID]*types.Conversation{}}
}

type fakeConversationRepo struct {
	st        *memState
	createErr error
	getErr    error
}

func (r *fakeConversationRepo) Create(dbc dbctx.Context, rows []*types.Conversation) ([]*types.Conversation, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, row := range rows {
		row.ID = uuid.New()
		row.LastMessageAt = time.Now().UTC()
		r.st.conversations[row.ID] = row
	}
	return rows, nil
}

func (r *fakeConversationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	conv, ok := r.st.conversations[id]
	if !ok {
		return nil, nil
	}
	cp := *conv
	return &cp, nil
}

func (r *fakeConversationRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Conversation, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []*types.Conversation
	for _, conv := range r.st.conversations {
		if conv.UserID == userID {
			cp := *conv
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessageAt.After(out[j].LastMessageAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeConversationRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	conv, ok := r.st.conversations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *conv
	return &cp, nil
}

func (r *fakeConversationRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	conv, ok := r.st.conversations[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["next_seq"]; ok {
		conv.NextSeq = v.(int64)
	}
	if v, ok := updates["last_message_at"]; ok {
		conv.LastMessageAt = v.(time.Time)
	}
	return nil
}

func (r *fakeConversationRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	delete(r.st.conversations, id)
	return nil
}

type fakeTurnRepo struct {
	st      *memState
	listErr error
}

func (r *fakeTurnRepo) Create(dbc dbctx.Context, rows []*types.Turn) ([]*types.Turn, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, row := range rows {
		row.ID = uuid.New()
		row.CreatedAt = time.Now().UTC()
		r.st.turns = append(r.st.turns, row)
	}
	return rows, nil
}

func (r *fakeTurnRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Turn, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, row := range r.st.turns {
		if row.ID == id {
			cp := *row
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeTurnRepo) sorted(conversationID uuid.UUID) []*types.Turn {
	var out []*types.Turn
	for _, row := range r.st.turns {
		if row.ConversationID == conversationID {
			cp := *row
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

func (r *fakeTurnRepo) ListRecent(dbc dbctx.Context, conversationID uuid.UUID, limit int) ([]*types.Turn, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	out := r.sorted(conversationID)
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *fakeTurnRepo) ListByConversation(dbc dbctx.Context, conversationID uuid.UUID, limit int) ([]*types.Turn, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	out := r.sorted(conversationID)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeTurnRepo) FirstAssistantAfterSeq(dbc dbctx.Context, conversationID uuid.UUID, afterSeq int64) (*types.Turn, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, row := range r.sorted(conversationID) {
		if row.Seq > afterSeq && row.Role == types.RoleAssistant {
			return row, nil
		}
	}
	return nil, nil
}

func (r *fakeTurnRepo) CountByConversation(dbc dbctx.Context, conversationID uuid.UUID) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return int64(len(r.sorted(conversationID))), nil
}

func (r *fakeTurnRepo) DeleteByConversation(dbc dbctx.Context, conversationID uuid.UUID) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	kept := r.st.turns[:0]
	for _, row := range r.st.turns {
		if row.ConversationID != conversationID {
			kept = append(kept, row)
		}
	}
	r.st.turns = kept
	return nil
}

type fakeTurnStore struct {
	st  *memState
	err error
}

func (s *fakeTurnStore) Append(dbc dbctx.Context, row *types.Turn) (*types.Turn, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	conv, ok := s.st.conversations[row.ConversationID]
	if !ok || conv.UserID != row.UserID {
		return nil, fault.New(fault.KindNotFound, "conversation not found")
	}
	conv.NextSeq++
	conv.LastMessageAt = time.Now().UTC()
	turn := *row
	turn.ID = uuid.New()
	turn.Seq = conv.NextSeq
	turn.CreatedAt = time.Now().UTC()
	s.st.turns = append(s.st.turns, &turn)
	cp := turn
	return &cp, nil
}

type dispatchCall struct {
	ConversationID uuid.UUID
	TurnID         uuid.UUID
}

type fakeDispatcher struct {
	calls []dispatchCall
	err   error
}

func (d *fakeDispatcher) DispatchTurn(ctx context.Context, conversationID, turnID uuid.UUID) error {
	if d.err != nil {
		return d.err
	}
	d.calls = append(d.calls, dispatchCall{ConversationID: conversationID, TurnID: turnID})
	return nil
}

type fakeActivity struct {
	actions []string
	fields  []map[string]any
}

func (a *fakeActivity) Record(ctx context.Context, userID uuid.UUID, action string, fields map[string]any) {
	a.actions = append(a.actions, action)
	a.fields = append(a.fields, fields)
}
