package domain

import (
	"time"

	"github.com/google/uuid"
)

// Comment is one entry in a bill's discussion forest. Top-level comments
// have a nil ParentID; replies nest under any comment at any depth.
// Replies is a derived view populated when a forest is assembled; the
// authoritative representation is flat, keyed by ID with a ParentID
// back-reference.
type Comment struct {
	ID             uuid.UUID  `json:"id"`
	BillID         uuid.UUID  `json:"bill_id"`
	Author         string     `json:"author"`
	Text           string     `json:"text"`
	Timestamp      time.Time  `json:"timestamp"`
	ParentID       *uuid.UUID `json:"parent_id,omitempty"`
	Upvotes        uint       `json:"upvotes"`
	UserHasUpvoted bool       `json:"user_has_upvoted"`
	Replies        []*Comment `json:"replies,omitempty"`
}

// Clone returns a deep copy of the comment and its reply subtree.
func (c *Comment) Clone() *Comment {
	cp := *c
	if c.ParentID != nil {
		id := *c.ParentID
		cp.ParentID = &id
	}
	cp.Replies = make([]*Comment, 0, len(c.Replies))
	for _, r := range c.Replies {
		cp.Replies = append(cp.Replies, r.Clone())
	}
	return &cp
}
