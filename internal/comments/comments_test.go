package comments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civitas/internal/datasource/memory"
	"civitas/internal/domain"
	"civitas/internal/store"
)

func setupTree(t *testing.T) (*memory.DataSource, *Tree, uuid.UUID) {
	t.Helper()

	billID := uuid.New()
	ds := memory.New()
	ds.SeedBills(domain.Bill{ID: billID, Title: "Clean Water Act"})

	st := store.New(ds)
	report := st.Load(context.Background())
	require.NoError(t, report.Err())

	tree := New(st)
	tick := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	tree.now = func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}
	return ds, tree, billID
}

func TestAddComment_TopLevel(t *testing.T) {
	ds, tree, billID := setupTree(t)
	ctx := context.Background()

	c, err := tree.AddComment(ctx, billID, nil, "dana", "First!")
	require.NoError(t, err)
	assert.Equal(t, "First!", c.Text)
	assert.Nil(t, c.ParentID)

	forest, err := tree.Forest(ctx, billID)
	require.NoError(t, err)
	require.Len(t, forest, 1)
	assert.Equal(t, c.ID, forest[0].ID)

	// Persisted before committed.
	flat, err := ds.FetchComments(ctx, billID)
	require.NoError(t, err)
	assert.Len(t, flat, 1)
}

func TestAddComment_NestedReplies(t *testing.T) {
	_, tree, billID := setupTree(t)
	ctx := context.Background()

	root, err := tree.AddComment(ctx, billID, nil, "dana", "root")
	require.NoError(t, err)
	reply, err := tree.AddComment(ctx, billID, &root.ID, "marcus", "reply")
	require.NoError(t, err)
	_, err = tree.AddComment(ctx, billID, &reply.ID, "priya", "reply to reply")
	require.NoError(t, err)

	forest, err := tree.Forest(ctx, billID)
	require.NoError(t, err)
	require.Len(t, forest, 1)

	assert.Equal(t, 2, TotalReplyCount(forest[0]))
	require.Len(t, forest[0].Replies, 1)
	require.Len(t, forest[0].Replies[0].Replies, 1)
	assert.Equal(t, "reply to reply", forest[0].Replies[0].Replies[0].Text)

	total, err := tree.TotalCommentCount(ctx, billID)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestAddComment_SiblingSubtreesUntouched(t *testing.T) {
	_, tree, billID := setupTree(t)
	ctx := context.Background()

	a, err := tree.AddComment(ctx, billID, nil, "dana", "thread a")
	require.NoError(t, err)
	b, err := tree.AddComment(ctx, billID, nil, "marcus", "thread b")
	require.NoError(t, err)

	_, err = tree.AddComment(ctx, billID, &a.ID, "priya", "reply in a")
	require.NoError(t, err)

	forest, err := tree.Forest(ctx, billID)
	require.NoError(t, err)
	require.Len(t, forest, 2)

	// Forest order is by timestamp, so thread a precedes thread b.
	assert.Equal(t, a.ID, forest[0].ID)
	assert.Equal(t, 1, TotalReplyCount(forest[0]))
	assert.Equal(t, b.ID, forest[1].ID)
	assert.Equal(t, 0, TotalReplyCount(forest[1]))
}

func TestAddComment_EmptyTextRejected(t *testing.T) {
	_, tree, billID := setupTree(t)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := tree.AddComment(context.Background(), billID, nil, "dana", text)
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	}
}

func TestAddComment_TextIsTrimmed(t *testing.T) {
	_, tree, billID := setupTree(t)

	c, err := tree.AddComment(context.Background(), billID, nil, "dana", "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", c.Text)
}

func TestAddComment_MissingParentLeavesForestUnchanged(t *testing.T) {
	_, tree, billID := setupTree(t)
	ctx := context.Background()

	_, err := tree.AddComment(ctx, billID, nil, "dana", "root")
	require.NoError(t, err)

	ghost := uuid.New()
	_, err = tree.AddComment(ctx, billID, &ghost, "marcus", "orphan")
	assert.ErrorIs(t, err, domain.ErrParentNotFound)

	total, err := tree.TotalCommentCount(ctx, billID)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestAddComment_PersistFailureLeavesForestUnchanged(t *testing.T) {
	ds, tree, billID := setupTree(t)
	ctx := context.Background()

	_, err := tree.AddComment(ctx, billID, nil, "dana", "root")
	require.NoError(t, err)

	ds.FailWith("AddComment", errors.New("connection reset"))
	_, err = tree.AddComment(ctx, billID, nil, "marcus", "lost")
	require.Error(t, err)
	assert.True(t, domain.IsUpdateFailed(err))

	total, err := tree.TotalCommentCount(ctx, billID)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestToggleUpvote(t *testing.T) {
	_, tree, billID := setupTree(t)
	ctx := context.Background()

	c, err := tree.AddComment(ctx, billID, nil, "dana", "root")
	require.NoError(t, err)

	up, err := tree.ToggleUpvote(ctx, billID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(1), up.Upvotes)
	assert.True(t, up.UserHasUpvoted)

	down, err := tree.ToggleUpvote(ctx, billID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(0), down.Upvotes)
	assert.False(t, down.UserHasUpvoted)
}

func TestToggleUpvote_UnknownComment(t *testing.T) {
	_, tree, billID := setupTree(t)

	_, err := tree.ToggleUpvote(context.Background(), billID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrCommentNotFound)
}

func TestToggleUpvote_PersistFailureLeavesCountUnchanged(t *testing.T) {
	ds, tree, billID := setupTree(t)
	ctx := context.Background()

	c, err := tree.AddComment(ctx, billID, nil, "dana", "root")
	require.NoError(t, err)

	ds.FailWith("UpdateComment", errors.New("connection reset"))
	_, err = tree.ToggleUpvote(ctx, billID, c.ID)
	require.Error(t, err)

	ds.FailWith("UpdateComment", nil)
	forest, err := tree.Forest(ctx, billID)
	require.NoError(t, err)
	require.Len(t, forest, 1)
	assert.Equal(t, uint(0), forest[0].Upvotes)
	assert.False(t, forest[0].UserHasUpvoted)
}

func TestLoad_RebuildsNestingFromFlatRecords(t *testing.T) {
	ds, tree, billID := setupTree(t)
	ctx := context.Background()

	rootID, replyID := uuid.New(), uuid.New()
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	ds.SeedComments(billID,
		domain.Comment{ID: replyID, BillID: billID, Author: "marcus", Text: "reply", Timestamp: base.Add(time.Hour), ParentID: &rootID},
		domain.Comment{ID: rootID, BillID: billID, Author: "dana", Text: "root", Timestamp: base},
	)

	require.NoError(t, tree.Load(ctx, billID))

	forest, err := tree.Forest(ctx, billID)
	require.NoError(t, err)
	require.Len(t, forest, 1)
	assert.Equal(t, rootID, forest[0].ID)
	require.Len(t, forest[0].Replies, 1)
	assert.Equal(t, replyID, forest[0].Replies[0].ID)
}

func TestLoad_RejectsMissingParent(t *testing.T) {
	ds, tree, billID := setupTree(t)

	ghost := uuid.New()
	ds.SeedComments(billID, domain.Comment{
		ID: uuid.New(), BillID: billID, Author: "dana", Text: "orphan",
		Timestamp: time.Now(), ParentID: &ghost,
	})

	err := tree.Load(context.Background(), billID)
	assert.Error(t, err)
}

func TestLoad_RejectsDuplicateIDs(t *testing.T) {
	ds, tree, billID := setupTree(t)

	id := uuid.New()
	ds.SeedComments(billID,
		domain.Comment{ID: id, BillID: billID, Author: "dana", Text: "one", Timestamp: time.Now()},
		domain.Comment{ID: id, BillID: billID, Author: "marcus", Text: "two", Timestamp: time.Now()},
	)

	err := tree.Load(context.Background(), billID)
	assert.Error(t, err)
}

func TestLoad_RejectsCycle(t *testing.T) {
	ds, tree, billID := setupTree(t)

	a, b := uuid.New(), uuid.New()
	ds.SeedComments(billID,
		domain.Comment{ID: a, BillID: billID, Author: "dana", Text: "a", Timestamp: time.Now(), ParentID: &b},
		domain.Comment{ID: b, BillID: billID, Author: "marcus", Text: "b", Timestamp: time.Now(), ParentID: &a},
	)

	err := tree.Load(context.Background(), billID)
	assert.Error(t, err)
}

func TestForest_IsDeepCopy(t *testing.T) {
	_, tree, billID := setupTree(t)
	ctx := context.Background()

	c, err := tree.AddComment(ctx, billID, nil, "dana", "root")
	require.NoError(t, err)

	forest, err := tree.Forest(ctx, billID)
	require.NoError(t, err)
	forest[0].Text = "mutated"
	forest[0].Upvotes = 99

	again, err := tree.Forest(ctx, billID)
	require.NoError(t, err)
	assert.Equal(t, "root", again[0].Text)
	assert.Equal(t, uint(0), again[0].Upvotes)
	assert.Equal(t, c.ID, again[0].ID)
}
