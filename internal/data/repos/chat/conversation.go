package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/avelldro/converse-backend/internal/domain"
	"github.com/avelldro/converse-backend/internal/pkg/dbctx"
	"github.com/avelldro/converse-backend/internal/platform/logger"
)

type ConversationRepo interface {
	Create(dbc dbctx.Context, rows []*types.Conversation) ([]*types.Conversation, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Conversation, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type conversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationRepo(db *gorm.DB, log *logger.Logger) ConversationRepo {
	return &conversationRepo{db: db, log: log.With("repo", "ConversationRepo")}
}

func (r *conversationRepo) Create(dbc dbctx.Context, rows []*types.Conversation) ([]*types.Conversation, error) {
	if len(rows) == 0 {
		return []*types.Conversation{}, nil
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
func (r *conversationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.Conversation
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

func (r *conversationRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Conversation, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Conversation
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.Conversation{}).
		Where("user_id = ?", userID).
		Order("last_message_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conversationRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	if dbc.Tx == nil {
		return nil, fmt.Errorf("LockByID requires dbc.Tx")
	}
	var out types.Conversation
	if err := dbc.Tx.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *conversationRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["updated_at"] = time.Now().UTC()
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.Conversation{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *conversationRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.Conversation{}).Error
}
