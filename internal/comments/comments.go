// Package comments manages the per-bill discussion forests. Comments are
// held flat in an id-keyed arena with parent back-references; the nested
// display tree is derived on demand. This keeps lookup and insertion O(1)
// after load and avoids recursive in-place mutation of nested slices.
package comments

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"civitas/internal/domain"
	"civitas/internal/store"
)

type forest struct {
	byID     map[uuid.UUID]*domain.Comment
	children map[uuid.UUID][]uuid.UUID
	roots    []uuid.UUID
}

// Tree manages comment forests for all bills. Mutations on one bill are
// serialized; distinct bills proceed concurrently.
type Tree struct {
	store *store.EntityStore

	mu      sync.Mutex
	forests map[uuid.UUID]*forest
	locks   map[uuid.UUID]*sync.Mutex

	now func() time.Time
}

func New(st *store.EntityStore) *Tree {
	return &Tree{
		store:   st,
		forests: make(map[uuid.UUID]*forest),
		locks:   make(map[uuid.UUID]*sync.Mutex),
		now:     time.Now,
	}
}

// Load fetches a bill's comments from the data source and rebuilds the
// arena. A comment whose parent id resolves nowhere, a duplicate id, or a
// cycle all violate the forest invariant and fail the load.
func (t *Tree) Load(ctx context.Context, billID uuid.UUID) error {
	unlock := t.lockBill(billID)
	defer unlock()
	return t.loadLocked(ctx, billID)
}

func (t *Tree) loadLocked(ctx context.Context, billID uuid.UUID) error {
	flat, err := t.store.FetchComments(ctx, billID)
	if err != nil {
		return fmt.Errorf("load comments for bill %s: %w", billID, err)
	}

	f := &forest{
		byID:     make(map[uuid.UUID]*domain.Comment, len(flat)),
		children: make(map[uuid.UUID][]uuid.UUID),
	}
	for i := range flat {
		c := flat[i]
		c.Replies = nil
		if _, dup := f.byID[c.ID]; dup {
			return fmt.Errorf("bill %s: duplicate comment id %s", billID, c.ID)
		}
		f.byID[c.ID] = &c
	}
	for _, c := range f.byID {
		if c.ParentID == nil {
			f.roots = append(f.roots, c.ID)
			continue
		}
		if _, ok := f.byID[*c.ParentID]; !ok {
			return fmt.Errorf("bill %s: comment %s references missing parent %s", billID, c.ID, *c.ParentID)
		}
		f.children[*c.ParentID] = append(f.children[*c.ParentID], c.ID)
	}
	if n := reachable(f); n != len(f.byID) {
		return fmt.Errorf("bill %s: %d of %d comments unreachable from a root", billID, len(f.byID)-n, len(f.byID))
	}
	sortByTimestamp(f, f.roots)
	for parent := range f.children {
		sortByTimestamp(f, f.children[parent])
	}

	t.mu.Lock()
	t.forests[billID] = f
	t.mu.Unlock()
	return nil
}

// AddComment validates and appends a new comment under parentID, or at
// the top level when parentID is nil. The comment is persisted before the
// local forest mutates, so a failed write leaves the forest unchanged.
func (t *Tree) AddComment(ctx context.Context, billID uuid.UUID, parentID *uuid.UUID, author, text string) (*domain.Comment, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, &domain.ValidationError{Field: "text", Reason: "must not be empty"}
	}

	unlock := t.lockBill(billID)
	defer unlock()

	f, err := t.forestLocked(ctx, billID)
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		if _, ok := f.byID[*parentID]; !ok {
			return nil, domain.ErrParentNotFound
		}
	}

	c := domain.Comment{
		ID:        uuid.New(),
		BillID:    billID,
		Author:    author,
		Text:      trimmed,
		Timestamp: t.now(),
		ParentID:  parentID,
	}

	if err := t.store.PersistComment(ctx, billID, c); err != nil {
		return nil, err
	}

	f.byID[c.ID] = &c
	if parentID == nil {
		f.roots = append(f.roots, c.ID)
	} else {
		f.children[*parentID] = append(f.children[*parentID], c.ID)
	}

	return c.Clone(), nil
}

// ToggleUpvote flips the session user's upvote on a comment and adjusts
// the count by one in the matching direction.
func (t *Tree) ToggleUpvote(ctx context.Context, billID, commentID uuid.UUID) (*domain.Comment, error) {
	unlock := t.lockBill(billID)
	defer unlock()

	f, err := t.forestLocked(ctx, billID)
	if err != nil {
		return nil, err
	}

	c, ok := f.byID[commentID]
	if !ok {
		return nil, domain.ErrCommentNotFound
	}

	updated := *c
	if updated.UserHasUpvoted {
		updated.UserHasUpvoted = false
		if updated.Upvotes > 0 {
			updated.Upvotes--
		}
	} else {
		updated.UserHasUpvoted = true
		updated.Upvotes++
	}

	if err := t.store.PersistCommentUpdate(ctx, billID, updated); err != nil {
		return nil, err
	}

	*c = updated
	return c.Clone(), nil
}

// Forest returns the bill's comment trees with Replies populated, ordered
// by timestamp at every level. The result is a deep copy.
func (t *Tree) Forest(ctx context.Context, billID uuid.UUID) ([]*domain.Comment, error) {
	unlock := t.lockBill(billID)
	defer unlock()

	f, err := t.forestLocked(ctx, billID)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Comment, 0, len(f.roots))
	for _, id := range f.roots {
		out = append(out, buildSubtree(f, id))
	}
	return out, nil
}

// TotalReplyCount counts all descendants of a comment. A fresh comment
// has zero.
func TotalReplyCount(c *domain.Comment) int {
	n := 0
	for _, r := range c.Replies {
		n += 1 + TotalReplyCount(r)
	}
	return n
}

// TotalCommentCount counts every comment in the bill's forest, replies
// included.
func (t *Tree) TotalCommentCount(ctx context.Context, billID uuid.UUID) (int, error) {
	unlock := t.lockBill(billID)
	defer unlock()

	f, err := t.forestLocked(ctx, billID)
	if err != nil {
		return 0, err
	}
	return len(f.byID), nil
}

func (t *Tree) forestLocked(ctx context.Context, billID uuid.UUID) (*forest, error) {
	t.mu.Lock()
	f, ok := t.forests[billID]
	t.mu.Unlock()
	if ok {
		return f, nil
	}
	if err := t.loadLocked(ctx, billID); err != nil {
		return nil, err
	}
	t.mu.Lock()
	f = t.forests[billID]
	t.mu.Unlock()
	return f, nil
}

func (t *Tree) lockBill(billID uuid.UUID) func() {
	t.mu.Lock()
	lock, ok := t.locks[billID]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[billID] = lock
	}
	t.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func buildSubtree(f *forest, id uuid.UUID) *domain.Comment {
	c := f.byID[id].Clone()
	for _, childID := range f.children[id] {
		c.Replies = append(c.Replies, buildSubtree(f, childID))
	}
	return c
}

func reachable(f *forest) int {
	n := 0
	stack := append([]uuid.UUID(nil), f.roots...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n++
		stack = append(stack, f.children[id]...)
	}
	return n
}

func sortByTimestamp(f *forest, ids []uuid.UUID) {
	sort.SliceStable(ids, func(i, j int) bool {
		return f.byID[ids[i]].Timestamp.Before(f.byID[ids[j]].Timestamp)
	})
}
