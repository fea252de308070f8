package chat

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/avelldro/converse-backend/internal/domain"
	"github.com/avelldro/converse-backend/internal/pkg/dbctx"
	"github.com/avelldro/converse-backend/internal/platform/logger"
)

type TurnRepo interface {
	Create(dbc dbctx.Context, rows []*types.Turn) ([]*types.Turn, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Turn, error)
	// ListRecent returns the newest limit turns in ascending seq order.
	ListRecent(dbc dbctx.Context, conversationID uuid.UUID, limit int) ([]*types.Turn, error)
	ListByConversation(dbc dbctx.Context, conversationID uuid.UUID, limit int) ([]*types.Turn, error)
	FirstAssistantAfterSeq(dbc dbctx.Context, conversationID uuid.UUID, afterSeq int64) (*types.Turn, error)
	CountByConversation(dbc dbctx.Context, conversationID uuid.UUID) (int64, error)
	DeleteByConversation(dbc dbctx.Context, conversationID uuid.UUID) error
}

type turnRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTurnRepo(db *gorm.DB, log *logger.Logger) TurnRepo {
	return &turnRepo{db: db, log: log.With("repo", "TurnRepo")}
}

func (r *turnRepo) Create(dbc dbctx.Context, rows []*types.Turn) ([]*types.Turn, error) {
	if len(rows) == 0 {
		return []*types.Turn{}, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if err := txx.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByID returns (nil, nil) when no live row matches.
func (r *turnRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Turn, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.Turn
	err := txx.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Take(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *turnRepo) ListRecent(dbc dbctx.Context, conversationID uuid.UUID, limit int) ([]*types.Turn, error) {
	if conversationID == uuid.Nil {
		return nil, fmt.Errorf("missing conversation_id")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Turn
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.Turn{}).
		Where("conversation_id = ?", conversationID).
		Order("seq DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	// Reverse into ascending seq order for prompt assembly.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *turnRepo) ListByConversation(dbc dbctx.Context, conversationID uuid.UUID, limit int) ([]*types.Turn, error) {
	if conversationID == uuid.Nil {
		return nil, fmt.Errorf("missing conversation_id")
	}
	if limit <= 0 || limit > 1000 {
		limit = 500
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Turn
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.Turn{}).
		Where("conversation_id = ?", conversationID).
		Order("seq ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FirstAssistantAfterSeq returns (nil, nil) when no assistant turn follows afterSeq.
func (r *turnRepo) FirstAssistantAfterSeq(dbc dbctx.Context, conversationID uuid.UUID, afterSeq int64) (*types.Turn, error) {
	if conversationID == uuid.Nil {
		return nil, fmt.Errorf("missing conversation_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.Turn
	err := txx.WithContext(dbc.Ctx).
		Where("conversation_id = ? AND seq > ? AND role = ?", conversationID, afterSeq, types.RoleAssistant).
		Order("seq ASC").
		Take(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *turnRepo) CountByConversation(dbc dbctx.Context, conversationID uuid.UUID) (int64, error) {
	if conversationID == uuid.Nil {
		return 0, fmt.Errorf("missing conversation_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var n int64
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.Turn{}).
		Where("conversation_id = ?", conversationID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *turnRepo) DeleteByConversation(dbc dbctx.Context, conversationID uuid.UUID) error {
	if conversationID == uuid.Nil {
		return fmt.Errorf("missing conversation_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Where("conversation_id = ?", conversationID).
		Delete(&types.Turn{}).Error
}
