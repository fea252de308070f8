package chat_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/avelldro/converse-backend/internal/data/repos/chat"
	"github.com/avelldro/converse-backend/internal/data/repos/testutil"
	types "github.com/avelldro/converse-backend/internal/domain"
	"github.com/avelldro/converse-backend/internal/pkg/dbctx"
)

func seedTurns(t *testing.T, dbc dbctx.Context, repo chat.TurnRepo, conv *types.Conversation, n int) []*types.Turn {
	t.Helper()
	rows := make([]*types.Turn, 0, n)
	for i := 1; i <= n; i++ {
		role := types.RoleUser
		if i%2 == 0 {
			role = types.RoleAssistant
		}
		rows = append(rows, &types.Turn{
			ConversationID: conv.ID,
			UserID:         conv.UserID,
			Seq:            int64(i),
			Role:           role,
			Content:        fmt.Sprintf("turn %d", i),
		})
	}
	created, err := repo.Create(dbc, rows)
	if err != nil {
		t.Fatalf("seed turns: %v", err)
	}
	return created
}

func TestTurnRepoGetByIDMissing(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := chat.NewTurnRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	turn, err := repo.GetByID(dbc, uuid.New())
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if turn != nil {
		t.Fatalf("got %+v, want nil for missing row", turn)
	}
}

func TestTurnRepoListRecentReturnsAscendingTail(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	convRepo := chat.NewConversationRepo(db, testutil.Logger(t))
	repo := chat.NewTurnRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	conv := testutil.SeedConversation(t, dbc, convRepo, uuid.New())
	seedTurns(t, dbc, repo, conv, 15)

	rows, err := repo.ListRecent(dbc, conv.ID, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(rows) != 10 {
		t.Fatalf("rows=%d, want 10", len(rows))
	}
	if rows[0].Seq != 6 || rows[9].Seq != 15 {
		t.Fatalf("seq range [%d..%d], want [6..15]", rows[0].Seq, rows[9].Seq)
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].Seq <= rows[i-1].Seq {
			t.Fatalf("rows not ascending at %d", i)
		}
	}
}

func TestTurnRepoListByConversation(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	convRepo := chat.NewConversationRepo(db, testutil.Logger(t))
	repo := chat.NewTurnRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	conv := testutil.SeedConversation(t, dbc, convRepo, uuid.New())
	other := testutil.SeedConversation(t, dbc, convRepo, uuid.New())
	seedTurns(t, dbc, repo, conv, 4)
	seedTurns(t, dbc, repo, other, 2)

	rows, err := repo.ListByConversation(dbc, conv.ID, 0)
	if err != nil {
		t.Fatalf("ListByConversation: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows=%d, want 4", len(rows))
	}
	for i, row := range rows {
		if row.Seq != int64(i+1) {
			t.Fatalf("seq at %d=%d", i, row.Seq)
		}
	}
}

func TestTurnRepoDuplicateSeqRejected(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	convRepo := chat.NewConversationRepo(db, testutil.Logger(t))
	repo := chat.NewTurnRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	conv := testutil.SeedConversation(t, dbc, convRepo, uuid.New())
	seedTurns(t, dbc, repo, conv, 1)

	_, err := repo.Create(dbc, []*types.Turn{{
		ConversationID: conv.ID,
		UserID:         conv.UserID,
		Seq:            1,
		Role:           types.RoleUser,
		Content:        "duplicate",
	}})
	if err == nil {
		t.Fatal("expected unique violation on (conversation_id, seq)")
	}
}

func TestTurnRepoFirstAssistantAfterSeq(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	convRepo := chat.NewConversationRepo(db, testutil.Logger(t))
	repo := chat.NewTurnRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	conv := testutil.SeedConversation(t, dbc, convRepo, uuid.New())
	seedTurns(t, dbc, repo, conv, 4)

	got, err := repo.FirstAssistantAfterSeq(dbc, conv.ID, 2)
	if err != nil {
		t.Fatalf("FirstAssistantAfterSeq: %v", err)
	}
	if got == nil || got.Seq != 4 || got.Role != types.RoleAssistant {
		t.Fatalf("got %+v, want assistant at seq 4", got)
	}

	none, err := repo.FirstAssistantAfterSeq(dbc, conv.ID, 4)
	if err != nil {
		t.Fatalf("FirstAssistantAfterSeq past end: %v", err)
	}
	if none != nil {
		t.Fatalf("got %+v, want nil", none)
	}
}

func TestTurnRepoCountAndDeleteByConversation(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	convRepo := chat.NewConversationRepo(db, testutil.Logger(t))
	repo := chat.NewTurnRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	conv := testutil.SeedConversation(t, dbc, convRepo, uuid.New())
	keep := testutil.SeedConversation(t, dbc, convRepo, uuid.New())
	seedTurns(t, dbc, repo, conv, 3)
	seedTurns(t, dbc, repo, keep, 2)

	n, err := repo.CountByConversation(dbc, conv.ID)
	if err != nil || n != 3 {
		t.Fatalf("count=%d err=%v, want 3", n, err)
	}

	if err := repo.DeleteByConversation(dbc, conv.ID); err != nil {
		t.Fatalf("DeleteByConversation: %v", err)
	}
	n, err = repo.CountByConversation(dbc, conv.ID)
	if err != nil || n != 0 {
		t.Fatalf("count after delete=%d err=%v", n, err)
	}
	n, err = repo.CountByConversation(dbc, keep.ID)
	if err != nil || n != 2 {
		t.Fatalf("other conversation count=%d err=%v, want untouched", n, err)
	}
}
