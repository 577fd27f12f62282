package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Vote is a position taken on a bill, by either a citizen or a legislator.
type Vote string

const (
	VoteYes        Vote = "yes"
	VoteNo         Vote = "no"
	VoteAbstain    Vote = "abstain"
	VoteNotPresent Vote = "not_present"
)

// ParseVote converts a wire value into a Vote.
func ParseVote(s string) (Vote, error) {
	switch Vote(s) {
	case VoteYes, VoteNo, VoteAbstain, VoteNotPresent:
		return Vote(s), nil
	}
	return "", fmt.Errorf("unknown vote value %q", s)
}

// Countable reports whether the vote occupies a yes/no tally bucket.
// Abstentions and absences are recorded but never counted.
func (v Vote) Countable() bool {
	return v == VoteYes || v == VoteNo
}

// Attended reports whether the vote counts as attendance for scoring.
func (v Vote) Attended() bool {
	return v != VoteNotPresent
}

// LegislatorVote is one recorded position of a legislator on a bill.
// Records are append-only historical facts ordered by date.
type LegislatorVote struct {
	ID           uuid.UUID `json:"id"`
	BillID       uuid.UUID `json:"bill_id"`
	LegislatorID uuid.UUID `json:"legislator_id"`
	Vote         Vote      `json:"vote"`
	Date         time.Time `json:"date"`
}

// UserVote is the current position of a user on a bill. At most one live
// record exists per (user, bill) pair; re-casting overwrites vote and date.
type UserVote struct {
	BillID uuid.UUID `json:"bill_id"`
	UserID uuid.UUID `json:"user_id"`
	Vote   Vote      `json:"vote"`
	Date   time.Time `json:"date"`
}
