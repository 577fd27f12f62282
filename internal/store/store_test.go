package store

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
)

func seededSource() (*memory.DataSource, domain.Bill, domain.Legislator) {
	bill := domain.Bill{
		ID:          uuid.New(),
		Title:       "Clean Water Act",
		Tags:        []string{"environment"},
		LastUpdated: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	legislator := domain.Legislator{
		ID:    uuid.New(),
		Name:  "Dana Whitfield",
		Party: "Independent",
		State: "CA",
	}

	ds := memory.New()
	ds.SeedBills(bill)
	ds.SeedLegislators(legislator)
	return ds, bill, legislator
}

func TestLoad_AllCollections(t *testing.T) {
	ds, bill, legislator := seededSource()
	ds.SeedLegislatorVotes(domain.LegislatorVote{
		ID: uuid.New(), BillID: bill.ID, LegislatorID: legislator.ID,
		Vote: domain.VoteYes, Date: time.Now(),
	})

	st := New(ds)
	report := st.Load(context.Background())
	require.NoError(t, report.Err())

	assert.Len(t, st.Bills(), 1)
	assert.Len(t, st.Legislators(), 1)
	assert.Len(t, st.LegislatorVotes(), 1)
	assert.Equal(t, uint64(1), st.Version())
}

func TestLoad_PartialFailureKeepsOtherCollections(t *testing.T) {
	ds, _, _ := seededSource()
	ds.FailWith("FetchLegislators", errors.New("timeout"))

	st := New(ds)
	report := st.Load(context.Background())

	require.Error(t, report.Err())
	assert.Error(t, report.Legislators)
	assert.NoError(t, report.Bills)

	// The failed collection is empty; the loaded one is usable.
	assert.Empty(t, st.Legislators())
	assert.Len(t, st.Bills(), 1)
}

func TestLoad_FailureDoesNotDiscardPreviousState(t *testing.T) {
	ds, bill, _ := seededSource()
	st := New(ds)
	require.NoError(t, st.Load(context.Background()).Err())

	ds.FailWith("FetchBills", errors.New("timeout"))
	report := st.Load(context.Background())
	require.Error(t, report.Err())

	// Bills from the earlier load survive the failed refresh.
	got, err := st.Bill(bill.ID)
	require.NoError(t, err)
	assert.Equal(t, bill.Title, got.Title)
}

func TestBill_UnknownID(t *testing.T) {
	ds, _, _ := seededSource()
	st := New(ds)
	require.NoError(t, st.Load(context.Background()).Err())

	_, err := st.Bill(uuid.New())
	assert.ErrorIs(t, err, domain.ErrBillNotFound)
}

func TestLegislator_UnknownID(t *testing.T) {
	ds, _, _ := seededSource()
	st := New(ds)
	require.NoError(t, st.Load(context.Background()).Err())

	_, err := st.Legislator(uuid.New())
	assert.ErrorIs(t, err, domain.ErrLegislatorNotFound)
}

func TestReads_ReturnIsolatedCopies(t *testing.T) {
	ds, bill, _ := seededSource()
	st := New(ds)
	require.NoError(t, st.Load(context.Background()).Err())

	snapshot := st.Bills()
	require.Len(t, snapshot, 1)
	snapshot[0].Title = "mutated"
	snapshot[0].Tags[0] = "mutated"

	got, err := st.Bill(bill.ID)
	require.NoError(t, err)
	assert.Equal(t, "Clean Water Act", got.Title)
	assert.Equal(t, []string{"environment"}, got.Tags)
}

func TestReplaceBill_BumpsVersionAndNotifies(t *testing.T) {
	ds, bill, _ := seededSource()
	st := New(ds)
	require.NoError(t, st.Load(context.Background()).Err())

	var events []Event
	st.Subscribe(func(e Event) { events = append(events, e) })

	before := st.Version()
	updated := bill.Clone()
	updated.YesVotes = 5
	require.NoError(t, st.ReplaceBill(updated))

	assert.Greater(t, st.Version(), before)
	require.Len(t, events, 1)
	assert.Equal(t, EventBillUpdated, events[0].Type)
	assert.Equal(t, bill.ID, events[0].BillID)

	got, err := st.Bill(bill.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(5), got.YesVotes)
}

func TestSubscribe_AllHooksSeeEveryMutation(t *testing.T) {
	ds, bill, _ := seededSource()
	st := New(ds)
	require.NoError(t, st.Load(context.Background()).Err())

	var first, second []Event
	st.Subscribe(func(e Event) { first = append(first, e) })
	st.Subscribe(func(e Event) { second = append(second, e) })

	userID := uuid.New()
	st.PutUserVote(domain.UserVote{BillID: bill.ID, UserID: userID, Vote: domain.VoteYes, Date: time.Now()})
	st.RemoveUserVote(userID, bill.ID)

	want := []EventType{EventUserVoteRecorded, EventUserVoteRetracted}
	require.Len(t, first, 2)
	require.Len(t, second, 2)
	for i, typ := range want {
		assert.Equal(t, typ, first[i].Type)
		assert.Equal(t, typ, second[i].Type)
	}
}

func TestReplaceBill_UnknownID(t *testing.T) {
	ds, _, _ := seededSource()
	st := New(ds)
	require.NoError(t, st.Load(context.Background()).Err())

	err := st.ReplaceBill(domain.Bill{ID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrBillNotFound)
}

func TestUpdateBill_PersistFailureLeavesLocalStateUnchanged(t *testing.T) {
	ds, bill, _ := seededSource()
	st := New(ds)
	require.NoError(t, st.Load(context.Background()).Err())

	ds.FailWith("UpdateBill", errors.New("connection reset"))

	updated := bill.Clone()
	updated.YesVotes = 5
	err := st.UpdateBill(context.Background(), updated)
	require.Error(t, err)
	assert.True(t, domain.IsUpdateFailed(err))

	got, err := st.Bill(bill.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(0), got.YesVotes)
}

func TestUserVoteLifecycle(t *testing.T) {
	ds, bill, _ := seededSource()
	st := New(ds)
	require.NoError(t, st.Load(context.Background()).Err())

	userID := uuid.New()
	_, ok := st.UserVote(userID, bill.ID)
	require.False(t, ok)

	st.PutUserVote(domain.UserVote{BillID: bill.ID, UserID: userID, Vote: domain.VoteYes, Date: time.Now()})
	v, ok := st.UserVote(userID, bill.ID)
	require.True(t, ok)
	assert.Equal(t, domain.VoteYes, v.Vote)

	assert.Len(t, st.UserVotesBy(userID), 1)
	assert.Len(t, st.UserVotesOn(bill.ID), 1)

	st.RemoveUserVote(userID, bill.ID)
	_, ok = st.UserVote(userID, bill.ID)
	assert.False(t, ok)
}

func TestLegislatorVoteViews(t *testing.T) {
	ds, bill, legislator := seededSource()
	otherBill := domain.Bill{ID: uuid.New(), Title: "Broadband Act"}
	ds.SeedBills(otherBill)
	ds.SeedLegislatorVotes(
		domain.LegislatorVote{ID: uuid.New(), BillID: bill.ID, LegislatorID: legislator.ID, Vote: domain.VoteYes},
		domain.LegislatorVote{ID: uuid.New(), BillID: otherBill.ID, LegislatorID: legislator.ID, Vote: domain.VoteNo},
		domain.LegislatorVote{ID: uuid.New(), BillID: bill.ID, LegislatorID: uuid.New(), Vote: domain.VoteNotPresent},
	)

	st := New(ds)
	require.NoError(t, st.Load(context.Background()).Err())

	assert.Len(t, st.LegislatorVotes(), 3)
	assert.Len(t, st.LegislatorVotesFor(legislator.ID), 2)
	assert.Len(t, st.LegislatorVotesOn(bill.ID), 2)
}
