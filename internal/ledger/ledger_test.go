package ledger

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

func setupLedger(t *testing.T, bills ...domain.Bill) (*memory.DataSource, *store.EntityStore, *VoteLedger) {
	t.Helper()

	ds := memory.New()
	ds.SeedBills(bills...)

	st := store.New(ds)
	report := st.Load(context.Background())
	require.NoError(t, report.Err())

	l := New(st)
	l.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return ds, st, l
}

func testBill(title string) domain.Bill {
	return domain.Bill{
		ID:          uuid.New(),
		Title:       title,
		State:       "CA",
		Body:        "Senate",
		Session:     "2025-2026",
		Tags:        []string{"environment"},
		LastUpdated: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCastVote_FirstVote(t *testing.T) {
	bill := testBill("Clean Water Act")
	ds, _, l := setupLedger(t, bill)
	userID := uuid.New()

	updated, err := l.CastVote(context.Background(), userID, bill.ID, domain.VoteYes)
	require.NoError(t, err)

	assert.Equal(t, uint(1), updated.YesVotes)
	assert.Equal(t, uint(0), updated.NoVotes)
	require.NotNil(t, updated.UserVote)
	assert.Equal(t, domain.VoteYes, *updated.UserVote)

	// The record and tally must be persisted, not just local.
	record, ok := ds.UserVote(userID, bill.ID)
	require.True(t, ok)
	assert.Equal(t, domain.VoteYes, record.Vote)

	persisted, ok := ds.Bill(bill.ID)
	require.True(t, ok)
	assert.Equal(t, uint(1), persisted.YesVotes)
}

func TestCastVote_IdempotentRevote(t *testing.T) {
	bill := testBill("Clean Water Act")
	_, st, l := setupLedger(t, bill)
	userID := uuid.New()

	_, err := l.CastVote(context.Background(), userID, bill.ID, domain.VoteYes)
	require.NoError(t, err)
	versionAfterFirst := st.Version()

	updated, err := l.CastVote(context.Background(), userID, bill.ID, domain.VoteYes)
	require.NoError(t, err)

	assert.Equal(t, uint(1), updated.YesVotes)
	assert.Equal(t, uint(0), updated.NoVotes)
	assert.Equal(t, versionAfterFirst, st.Version(), "re-vote must not touch the store")
}

func TestCastVote_ChangeMovesOneUnit(t *testing.T) {
	bill := testBill("Clean Water Act")
	_, _, l := setupLedger(t, bill)
	userID := uuid.New()

	_, err := l.CastVote(context.Background(), userID, bill.ID, domain.VoteYes)
	require.NoError(t, err)

	updated, err := l.CastVote(context.Background(), userID, bill.ID, domain.VoteNo)
	require.NoError(t, err)

	assert.Equal(t, uint(0), updated.YesVotes)
	assert.Equal(t, uint(1), updated.NoVotes)
}

// Two users and a vote change: totals only ever reflect live votes.
func TestCastVote_Scenario(t *testing.T) {
	bill := testBill("Clean Water Act")
	_, _, l := setupLedger(t, bill)
	u1, u2 := uuid.New(), uuid.New()
	ctx := context.Background()

	b, err := l.CastVote(ctx, u1, bill.ID, domain.VoteYes)
	require.NoError(t, err)
	assert.Equal(t, [2]uint{1, 0}, [2]uint{b.YesVotes, b.NoVotes})

	b, err = l.CastVote(ctx, u1, bill.ID, domain.VoteNo)
	require.NoError(t, err)
	assert.Equal(t, [2]uint{0, 1}, [2]uint{b.YesVotes, b.NoVotes})

	b, err = l.CastVote(ctx, u2, bill.ID, domain.VoteNo)
	require.NoError(t, err)
	assert.Equal(t, [2]uint{0, 2}, [2]uint{b.YesVotes, b.NoVotes})

	b, err = l.CastVote(ctx, u1, bill.ID, domain.VoteNo)
	require.NoError(t, err)
	assert.Equal(t, [2]uint{0, 2}, [2]uint{b.YesVotes, b.NoVotes})

	tally, err := l.Tally(bill.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(2), tally.Total())
}

func TestCastVote_AbstainOccupiesNoBucket(t *testing.T) {
	bill := testBill("Clean Water Act")
	_, _, l := setupLedger(t, bill)
	userID := uuid.New()
	ctx := context.Background()

	b, err := l.CastVote(ctx, userID, bill.ID, domain.VoteYes)
	require.NoError(t, err)
	assert.Equal(t, uint(1), b.YesVotes)

	// Switching to abstain releases the yes bucket without filling another.
	b, err = l.CastVote(ctx, userID, bill.ID, domain.VoteAbstain)
	require.NoError(t, err)
	assert.Equal(t, uint(0), b.YesVotes)
	assert.Equal(t, uint(0), b.NoVotes)
	require.NotNil(t, b.UserVote)
	assert.Equal(t, domain.VoteAbstain, *b.UserVote)
}

func TestCastVote_UnknownBill(t *testing.T) {
	_, _, l := setupLedger(t, testBill("Clean Water Act"))

	_, err := l.CastVote(context.Background(), uuid.New(), uuid.New(), domain.VoteYes)
	assert.ErrorIs(t, err, domain.ErrBillNotFound)
}

func TestCastVote_PersistFailureLeavesTallyUnchanged(t *testing.T) {
	bill := testBill("Clean Water Act")
	ds, st, l := setupLedger(t, bill)
	userID := uuid.New()
	ctx := context.Background()

	ds.FailWith("UpdateBill", errors.New("connection reset"))

	_, err := l.CastVote(ctx, userID, bill.ID, domain.VoteYes)
	require.Error(t, err)
	assert.True(t, domain.IsUpdateFailed(err))

	// Local aggregates must be untouched.
	current, err := st.Bill(bill.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(0), current.YesVotes)
	_, hasVote := st.UserVote(userID, bill.ID)
	assert.False(t, hasVote)

	// The speculatively persisted vote record is rolled back too.
	_, ok := ds.UserVote(userID, bill.ID)
	assert.False(t, ok)

	// Recovery: once persistence heals, the same cast succeeds.
	ds.FailWith("UpdateBill", nil)
	updated, err := l.CastVote(ctx, userID, bill.ID, domain.VoteYes)
	require.NoError(t, err)
	assert.Equal(t, uint(1), updated.YesVotes)
}

func TestRetractVote(t *testing.T) {
	bill := testBill("Clean Water Act")
	ds, st, l := setupLedger(t, bill)
	userID := uuid.New()
	ctx := context.Background()

	_, err := l.CastVote(ctx, userID, bill.ID, domain.VoteNo)
	require.NoError(t, err)

	updated, err := l.RetractVote(ctx, userID, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(0), updated.NoVotes)
	assert.Nil(t, updated.UserVote)

	_, ok := ds.UserVote(userID, bill.ID)
	assert.False(t, ok)
	_, ok = st.UserVote(userID, bill.ID)
	assert.False(t, ok)
}

func TestRetractVote_NoLiveVoteIsNoop(t *testing.T) {
	bill := testBill("Clean Water Act")
	_, st, l := setupLedger(t, bill)

	version := st.Version()
	updated, err := l.RetractVote(context.Background(), uuid.New(), bill.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(0), updated.YesVotes)
	assert.Equal(t, version, st.Version())
}

func TestUserVotingRecord(t *testing.T) {
	b1, b2 := testBill("Clean Water Act"), testBill("Broadband Act")
	_, _, l := setupLedger(t, b1, b2)
	userID := uuid.New()
	ctx := context.Background()

	_, err := l.CastVote(ctx, userID, b1.ID, domain.VoteYes)
	require.NoError(t, err)
	_, err = l.CastVote(ctx, userID, b2.ID, domain.VoteNo)
	require.NoError(t, err)

	record := l.UserVotingRecord(userID)
	assert.Len(t, record, 2)
	assert.Equal(t, domain.VoteYes, record[b1.ID])
	assert.Equal(t, domain.VoteNo, record[b2.ID])
}

func TestCastVote_ConcurrentSameBill(t *testing.T) {
	bill := testBill("Clean Water Act")
	_, _, l := setupLedger(t, bill)
	ctx := context.Background()

	const voters = 20
	done := make(chan error, voters)
	for i := 0; i < voters; i++ {
		go func(i int) {
			vote := domain.VoteYes
			if i%2 == 1 {
				vote = domain.VoteNo
			}
			_, err := l.CastVote(ctx, uuid.New(), bill.ID, vote)
			done <- err
		}(i)
	}
	for i := 0; i < voters; i++ {
		require.NoError(t, <-done)
	}

	tally, err := l.Tally(bill.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(10), tally.YesVotes)
	assert.Equal(t, uint(10), tally.NoVotes)
}
