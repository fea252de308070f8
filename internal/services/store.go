package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/avelldro/converse-backend/internal/data/repos"
	types "github.com/avelldro/converse-backend/internal/domain"
	"github.com/avelldro/converse-backend/internal/pkg/dbctx"
	"github.com/avelldro/converse-backend/internal/platform/fault"
	"github.com/avelldro/converse-backend/internal/platform/logger"
)

// TurnStore appends turns with conversation-scoped sequencing.
type TurnStore interface {
	// Append assigns the next seq under a row lock, inserts the turn, and
	// bumps the conversation's next_seq and last_message_at in one
	// transaction.
	Append(dbc dbctx.Context, row *types.Turn) (*types.Turn, error)
}

type turnStore struct {
	db            *gorm.DB
	conversations repos.ConversationRepo
	turns         repos.TurnRepo
	log           *logger.Logger
}

func NewTurnStore(db *gorm.DB, conversations repos.ConversationRepo, turns repos.TurnRepo, log *logger.Logger) TurnStore {
	return &turnStore{
		db:            db,
		conversations: conversations,
		turns:         turns,
		log:           log.With("service", "TurnStore"),
	}
}

func (s *turnStore) Append(dbc dbctx.Context, row *types.Turn) (*types.Turn, error) {
	if row == nil {
		return nil, fault.New(fault.KindValidation, "missing turn")
	}
	if row.ConversationID == uuid.Nil || row.UserID == uuid.Nil {
		return nil, fault.New(fault.KindValidation, "missing conversation or user id")
	}
	if row.Role != types.RoleUser && row.Role != types.RoleAssistant {
		return nil, fault.New(fault.KindValidation, "unknown role %q", row.Role)
	}

	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	if transaction == nil {
		return nil, fault.New(fault.KindConfiguration, "turn store has no database handle")
	}

	var out *types.Turn
	err := transaction.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: txx}

		conv, err := s.conversations.LockByID(inner, row.ConversationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault.New(fault.KindNotFound, "conversation not found")
			}
			return err
		}
		if conv.UserID != row.UserID {
			return fault.New(fault.KindNotFound, "conversation not found")
		}

		seq := conv.NextSeq + 1
		turn := *row
		turn.Seq = seq

		created, err := s.turns.Create(inner, []*types.Turn{&turn})
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return fmt.Errorf("seq %d already taken for conversation %s: %w", seq, conv.ID, err)
			}
			return err
		}

		if err := s.conversations.UpdateFields(inner, conv.ID, map[string]interface{}{
			"next_seq":        seq,
			"last_message_at": time.Now().UTC(),
		}); err != nil {
			return err
		}

		out = created[0]
		return nil
	})
	if err != nil {
		return nil, fault.Wrap(fault.KindStorage, err)
	}
	return out, nil
}
