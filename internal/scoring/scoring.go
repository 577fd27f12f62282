// Package scoring computes alignment and attendance percentages from
// already-loaded vote history. Both scores are pure functions of store
// snapshots; the service layer adds memoization keyed on the store
// version when call volume warrants it.
package scoring

import (
	"github.com/google/uuid"

	"civitas/internal/domain"
	"civitas/internal/store"
)

type Engine struct {
	store *store.EntityStore
}

func New(st *store.EntityStore) *Engine {
	return &Engine{store: st}
}

// AlignmentScore is the percentage of bills where the user's vote matches
// the legislator's, over bills both voted on. The second return is false
// when there are no overlapping votes — "no basis for comparison" is
// distinct from 0% alignment and callers must render it differently.
//
// Every overlapping vote counts as a comparison. An abstention takes no
// position, so equal abstains still never count as a match.
func (e *Engine) AlignmentScore(legislatorID, userID uuid.UUID) (float64, bool) {
	record := e.store.LegislatorVotesFor(legislatorID)
	if len(record) == 0 {
		return 0, false
	}

	byBill := make(map[uuid.UUID]domain.Vote, len(record))
	for _, v := range record {
		byBill[v.BillID] = v.Vote
	}

	comparisons := 0
	matches := 0
	for _, uv := range e.store.UserVotesBy(userID) {
		legVote, ok := byBill[uv.BillID]
		if !ok {
			continue
		}
		comparisons++
		if legVote == uv.Vote && uv.Vote.Countable() {
			matches++
		}
	}

	if comparisons == 0 {
		return 0, false
	}
	return float64(matches) / float64(comparisons) * 100, true
}

// AttendanceScore is the percentage of a legislator's recorded votes that
// are not "not present". The second return is false when the legislator
// has no records at all.
func (e *Engine) AttendanceScore(legislatorID uuid.UUID) (float64, bool) {
	record := e.store.LegislatorVotesFor(legislatorID)
	if len(record) == 0 {
		return 0, false
	}

	attended := 0
	for _, v := range record {
		if v.Vote.Attended() {
			attended++
		}
	}

	return float64(attended) / float64(len(record)) * 100, true
}
