// Package ledger records one live vote per (user, bill) pair and keeps
// per-bill yes/no tallies consistent under repeated and changing votes.
//
// The ledger uses the delta-tally model: casting a vote moves at most one
// unit between tally buckets, and the updated bill plus the vote record
// are persisted before local state is committed. A persistence failure
// therefore leaves local aggregates untouched (rollback-on-failure
// semantics).
package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"civitas/internal/domain"
	"civitas/internal/store"
)

// VoteLedger serializes tally mutation per bill. Two concurrent casts on
// the same bill never interleave their read-modify-write; casts on
// distinct bills do not contend.
type VoteLedger struct {
	store *store.EntityStore

	mu        sync.Mutex
	billLocks map[uuid.UUID]*sync.Mutex

	now func() time.Time
}

func New(st *store.EntityStore) *VoteLedger {
	return &VoteLedger{
		store:     st,
		billLocks: make(map[uuid.UUID]*sync.Mutex),
		now:       time.Now,
	}
}

// CastVote records the user's current vote on a bill and moves the tally
// accordingly. Re-casting the identical vote is a no-op. The bill must be
// loaded; otherwise ErrBillNotFound is returned and nothing changes.
func (l *VoteLedger) CastVote(ctx context.Context, userID, billID uuid.UUID, vote domain.Vote) (domain.Bill, error) {
	unlock := l.lockBill(billID)
	defer unlock()

	bill, err := l.store.Bill(billID)
	if err != nil {
		return domain.Bill{}, err
	}

	prev, hadPrev := l.store.UserVote(userID, billID)
	if hadPrev && prev.Vote == vote {
		// Idempotent re-vote: no tally change, no persistence.
		return bill, nil
	}

	updated := bill.Clone()
	if hadPrev {
		removeFromTally(&updated, prev.Vote)
	}
	addToTally(&updated, vote)
	updated.UserVote = &vote

	record := domain.UserVote{
		BillID: billID,
		UserID: userID,
		Vote:   vote,
		Date:   l.now(),
	}

	// Persist the record and the tally before committing locally so a
	// failed write leaves aggregates unchanged.
	if err := l.store.PersistUserVote(ctx, record); err != nil {
		return domain.Bill{}, err
	}
	if err := l.store.PersistBill(ctx, updated); err != nil {
		// Restore the previously persisted vote record so remote state
		// does not drift ahead of the tally.
		if hadPrev {
			_ = l.store.PersistUserVote(ctx, prev)
		} else {
			_ = l.store.PersistUserVoteDelete(ctx, userID, billID)
		}
		return domain.Bill{}, err
	}

	if err := l.store.ReplaceBill(updated); err != nil {
		return domain.Bill{}, err
	}
	l.store.PutUserVote(record)

	return updated, nil
}

// RetractVote removes the user's live vote from the bill's tally. Having
// no live vote is a no-op.
func (l *VoteLedger) RetractVote(ctx context.Context, userID, billID uuid.UUID) (domain.Bill, error) {
	unlock := l.lockBill(billID)
	defer unlock()

	bill, err := l.store.Bill(billID)
	if err != nil {
		return domain.Bill{}, err
	}

	prev, hadPrev := l.store.UserVote(userID, billID)
	if !hadPrev {
		return bill, nil
	}

	updated := bill.Clone()
	removeFromTally(&updated, prev.Vote)
	updated.UserVote = nil

	if err := l.store.PersistUserVoteDelete(ctx, userID, billID); err != nil {
		return domain.Bill{}, err
	}
	if err := l.store.PersistBill(ctx, updated); err != nil {
		_ = l.store.PersistUserVote(ctx, prev)
		return domain.Bill{}, err
	}

	if err := l.store.ReplaceBill(updated); err != nil {
		return domain.Bill{}, err
	}
	l.store.RemoveUserVote(userID, billID)

	return updated, nil
}

// Tally returns the current yes/no counts for a bill.
func (l *VoteLedger) Tally(billID uuid.UUID) (domain.Tally, error) {
	bill, err := l.store.Bill(billID)
	if err != nil {
		return domain.Tally{}, err
	}
	return domain.Tally{BillID: billID, YesVotes: bill.YesVotes, NoVotes: bill.NoVotes}, nil
}

// UserVotingRecord returns the user's live votes keyed by bill.
func (l *VoteLedger) UserVotingRecord(userID uuid.UUID) map[uuid.UUID]domain.Vote {
	votes := l.store.UserVotesBy(userID)
	out := make(map[uuid.UUID]domain.Vote, len(votes))
	for _, v := range votes {
		out[v.BillID] = v.Vote
	}
	return out
}

func (l *VoteLedger) lockBill(billID uuid.UUID) func() {
	l.mu.Lock()
	lock, ok := l.billLocks[billID]
	if !ok {
		lock = &sync.Mutex{}
		l.billLocks[billID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func addToTally(b *domain.Bill, v domain.Vote) {
	switch v {
	case domain.VoteYes:
		b.YesVotes++
	case domain.VoteNo:
		b.NoVotes++
	}
}

func removeFromTally(b *domain.Bill, v domain.Vote) {
	switch v {
	case domain.VoteYes:
		if b.YesVotes > 0 {
			b.YesVotes--
		}
	case domain.VoteNo:
		if b.NoVotes > 0 {
			b.NoVotes--
		}
	}
}
