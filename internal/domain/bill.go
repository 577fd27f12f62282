package domain

import (
	"time"

	"github.com/google/uuid"
)

// Bill is a piece of legislation with a public yes/no tally and a running
// comment discussion. Identity and descriptive fields are immutable after
// load; only the tally and the session user's vote mutate, and only through
// the vote ledger.
type Bill struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	State       string    `json:"state"`
	Body        string    `json:"body"`
	Session     string    `json:"session"`
	Tags        []string  `json:"tags"`
	Briefing    string    `json:"briefing"`
	YesVotes    uint      `json:"yes_votes"`
	NoVotes     uint      `json:"no_votes"`
	UserVote    *Vote     `json:"user_vote,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}

// Clone returns a deep copy safe to hand out across the store boundary.
func (b Bill) Clone() Bill {
	c := b
	c.Tags = append([]string(nil), b.Tags...)
	if b.UserVote != nil {
		v := *b.UserVote
		c.UserVote = &v
	}
	return c
}

// DisplayName implements Filterable.
func (b Bill) DisplayName() string { return b.Title }

// Matches implements Filterable. Tag filters match on any overlap; session
// and body filters match exactly. Unknown keys do not restrict.
func (b Bill) Matches(key string, values map[string]struct{}) bool {
	switch key {
	case "tags":
		for _, tag := range b.Tags {
			if _, ok := values[tag]; ok {
				return true
			}
		}
		return false
	case "sessions":
		_, ok := values[b.Session]
		return ok
	case "bodies":
		_, ok := values[b.Body]
		return ok
	}
	return true
}

// Tally is the aggregate yes/no vote counts on a bill.
type Tally struct {
	BillID   uuid.UUID `json:"bill_id"`
	YesVotes uint      `json:"yes_votes"`
	NoVotes  uint      `json:"no_votes"`
}

// Total returns the number of currently counted votes.
func (t Tally) Total() uint { return t.YesVotes + t.NoVotes }
