// Package store holds the authoritative in-memory collections behind the
// catalog. All reads hand out copies so callers never observe a writer's
// intermediate state; all writes go through the store so the external data
// source and the local collections stay sequenced.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"civitas/internal/datasource"
	"civitas/internal/domain"
)

// EventType identifies a store mutation for change-notification hooks.
type EventType string

const (
	EventBillUpdated       EventType = "bill_updated"
	EventUserVoteRecorded  EventType = "user_vote_recorded"
	EventUserVoteRetracted EventType = "user_vote_retracted"
	EventCommentAdded      EventType = "comment_added"
	EventCommentUpdated    EventType = "comment_updated"
)

// Event describes a single store mutation. A UI-adapter layer subscribes
// to these instead of observing fields directly.
type Event struct {
	Type   EventType
	BillID uuid.UUID
	UserID uuid.UUID
}

// LoadReport carries the per-collection outcome of a bulk load. Each
// sub-fetch fails independently; collections that loaded stay usable.
type LoadReport struct {
	Bills           error
	Legislators     error
	LegislatorVotes error
	UserVotes       error
}

// Err returns a combined error, or nil when every collection loaded.
func (r LoadReport) Err() error {
	var failed []string
	if r.Bills != nil {
		failed = append(failed, fmt.Sprintf("bills: %v", r.Bills))
	}
	if r.Legislators != nil {
		failed = append(failed, fmt.Sprintf("legislators: %v", r.Legislators))
	}
	if r.LegislatorVotes != nil {
		failed = append(failed, fmt.Sprintf("legislator votes: %v", r.LegislatorVotes))
	}
	if r.UserVotes != nil {
		failed = append(failed, fmt.Sprintf("user votes: %v", r.UserVotes))
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("load failures: %v", failed)
}

type voteKey struct {
	UserID uuid.UUID
	BillID uuid.UUID
}

// EntityStore mediates all reads and writes between the engines and the
// external data source.
type EntityStore struct {
	ds datasource.DataSource

	mu              sync.RWMutex
	bills           map[uuid.UUID]domain.Bill
	billOrder       []uuid.UUID
	legislators     map[uuid.UUID]domain.Legislator
	legislatorOrder []uuid.UUID
	legislatorVotes []domain.LegislatorVote
	userVotes       map[voteKey]domain.UserVote
	version         uint64

	subMu       sync.Mutex
	subscribers []func(Event)
}

func New(ds datasource.DataSource) *EntityStore {
	return &EntityStore{
		ds:          ds,
		bills:       make(map[uuid.UUID]domain.Bill),
		legislators: make(map[uuid.UUID]domain.Legislator),
		userVotes:   make(map[voteKey]domain.UserVote),
	}
}

// Load bulk-fetches every collection from the data source. The four
// fetches run as independent operations; one collection failing does not
// corrupt or discard the others.
func (s *EntityStore) Load(ctx context.Context) LoadReport {
	var (
		wg     sync.WaitGroup
		report LoadReport

		bills       []domain.Bill
		legislators []domain.Legislator
		legVotes    []domain.LegislatorVote
		userVotes   []domain.UserVote
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		bills, report.Bills = s.ds.FetchBills(ctx)
	}()
	go func() {
		defer wg.Done()
		legislators, report.Legislators = s.ds.FetchLegislators(ctx)
	}()
	go func() {
		defer wg.Done()
		legVotes, report.LegislatorVotes = s.ds.FetchLegislatorVotes(ctx)
	}()
	go func() {
		defer wg.Done()
		userVotes, report.UserVotes = s.ds.FetchUserVotes(ctx)
	}()
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if report.Bills == nil {
		s.bills = make(map[uuid.UUID]domain.Bill, len(bills))
		s.billOrder = s.billOrder[:0]
		for _, b := range bills {
			s.bills[b.ID] = b
			s.billOrder = append(s.billOrder, b.ID)
		}
	}
	if report.Legislators == nil {
		s.legislators = make(map[uuid.UUID]domain.Legislator, len(legislators))
		s.legislatorOrder = s.legislatorOrder[:0]
		for _, l := range legislators {
			s.legislators[l.ID] = l
			s.legislatorOrder = append(s.legislatorOrder, l.ID)
		}
	}
	if report.LegislatorVotes == nil {
		s.legislatorVotes = legVotes
	}
	if report.UserVotes == nil {
		s.userVotes = make(map[voteKey]domain.UserVote, len(userVotes))
		for _, v := range userVotes {
			s.userVotes[voteKey{UserID: v.UserID, BillID: v.BillID}] = v
		}
	}
	s.version++

	return report
}

// Version is a monotonically increasing counter bumped on every mutation.
// Derived caches key on it for invalidation.
func (s *EntityStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Bills returns a snapshot of all bills in load order.
func (s *EntityStore) Bills() []domain.Bill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Bill, 0, len(s.billOrder))
	for _, id := range s.billOrder {
		out = append(out, s.bills[id].Clone())
	}
	return out
}

// Bill returns a copy of one bill.
func (s *EntityStore) Bill(id uuid.UUID) (domain.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bills[id]
	if !ok {
		return domain.Bill{}, domain.ErrBillNotFound
	}
	return b.Clone(), nil
}

// Legislators returns a snapshot of all legislators in load order.
func (s *EntityStore) Legislators() []domain.Legislator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Legislator, 0, len(s.legislatorOrder))
	for _, id := range s.legislatorOrder {
		out = append(out, s.legislators[id].Clone())
	}
	return out
}

// Legislator returns a copy of one legislator.
func (s *EntityStore) Legislator(id uuid.UUID) (domain.Legislator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.legislators[id]
	if !ok {
		return domain.Legislator{}, domain.ErrLegislatorNotFound
	}
	return l.Clone(), nil
}

// LegislatorVotes returns a snapshot of the full voting history.
func (s *EntityStore) LegislatorVotes() []domain.LegislatorVote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.LegislatorVote(nil), s.legislatorVotes...)
}

// LegislatorVotesFor returns one legislator's voting record.
func (s *EntityStore) LegislatorVotesFor(legislatorID uuid.UUID) []domain.LegislatorVote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.LegislatorVote
	for _, v := range s.legislatorVotes {
		if v.LegislatorID == legislatorID {
			out = append(out, v)
		}
	}
	return out
}

// LegislatorVotesOn returns every legislator's vote on one bill.
func (s *EntityStore) LegislatorVotesOn(billID uuid.UUID) []domain.LegislatorVote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.LegislatorVote
	for _, v := range s.legislatorVotes {
		if v.BillID == billID {
			out = append(out, v)
		}
	}
	return out
}

// UserVote returns the live vote for a (user, bill) pair, if any.
func (s *EntityStore) UserVote(userID, billID uuid.UUID) (domain.UserVote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.userVotes[voteKey{UserID: userID, BillID: billID}]
	return v, ok
}

// UserVotesBy returns all live votes cast by one user.
func (s *EntityStore) UserVotesBy(userID uuid.UUID) []domain.UserVote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.UserVote
	for k, v := range s.userVotes {
		if k.UserID == userID {
			out = append(out, v)
		}
	}
	return out
}

// UserVotesOn returns all live votes on one bill.
func (s *EntityStore) UserVotesOn(billID uuid.UUID) []domain.UserVote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.UserVote
	for k, v := range s.userVotes {
		if k.BillID == billID {
			out = append(out, v)
		}
	}
	return out
}

// ReplaceBill installs updated bill state locally and notifies
// subscribers. The caller is responsible for having persisted the change
// first; the ledger sequences persist-then-commit.
func (s *EntityStore) ReplaceBill(bill domain.Bill) error {
	s.mu.Lock()
	if _, ok := s.bills[bill.ID]; !ok {
		s.mu.Unlock()
		return domain.ErrBillNotFound
	}
	s.bills[bill.ID] = bill.Clone()
	s.version++
	s.mu.Unlock()

	s.emit(Event{Type: EventBillUpdated, BillID: bill.ID})
	return nil
}

// PutUserVote installs a live vote record locally and notifies subscribers.
func (s *EntityStore) PutUserVote(vote domain.UserVote) {
	s.mu.Lock()
	s.userVotes[voteKey{UserID: vote.UserID, BillID: vote.BillID}] = vote
	s.version++
	s.mu.Unlock()

	s.emit(Event{Type: EventUserVoteRecorded, BillID: vote.BillID, UserID: vote.UserID})
}

// RemoveUserVote drops a live vote record locally and notifies subscribers.
func (s *EntityStore) RemoveUserVote(userID, billID uuid.UUID) {
	s.mu.Lock()
	delete(s.userVotes, voteKey{UserID: userID, BillID: billID})
	s.version++
	s.mu.Unlock()

	s.emit(Event{Type: EventUserVoteRetracted, BillID: billID, UserID: userID})
}

// PersistBill writes bill state through to the data source without
// touching the local collection. The ledger sequences persist-then-commit
// so a failed write leaves local aggregates unchanged.
func (s *EntityStore) PersistBill(ctx context.Context, bill domain.Bill) error {
	if err := s.ds.UpdateBill(ctx, bill); err != nil {
		return &domain.UpdateFailedError{Op: "update bill", Cause: err}
	}
	return nil
}

// UpdateBill persists updated bill state, then installs it locally.
// The local collection is untouched when persistence fails.
func (s *EntityStore) UpdateBill(ctx context.Context, bill domain.Bill) error {
	if _, err := s.Bill(bill.ID); err != nil {
		return err
	}
	if err := s.PersistBill(ctx, bill); err != nil {
		return err
	}
	return s.ReplaceBill(bill)
}

// FetchComments reads a bill's flat comment records from the data source.
func (s *EntityStore) FetchComments(ctx context.Context, billID uuid.UUID) ([]domain.Comment, error) {
	return s.ds.FetchComments(ctx, billID)
}

// PersistComment writes a new comment record and notifies subscribers.
func (s *EntityStore) PersistComment(ctx context.Context, billID uuid.UUID, c domain.Comment) error {
	if err := s.ds.AddComment(ctx, billID, c); err != nil {
		return &domain.UpdateFailedError{Op: "add comment", Cause: err}
	}
	s.bump()
	s.emit(Event{Type: EventCommentAdded, BillID: billID})
	return nil
}

// PersistCommentUpdate writes mutated comment state and notifies
// subscribers.
func (s *EntityStore) PersistCommentUpdate(ctx context.Context, billID uuid.UUID, c domain.Comment) error {
	if err := s.ds.UpdateComment(ctx, billID, c); err != nil {
		return &domain.UpdateFailedError{Op: "update comment", Cause: err}
	}
	s.bump()
	s.emit(Event{Type: EventCommentUpdated, BillID: billID})
	return nil
}

// PersistUserVote writes the live vote record through to the data source.
func (s *EntityStore) PersistUserVote(ctx context.Context, vote domain.UserVote) error {
	if err := s.ds.UpdateUserVote(ctx, vote); err != nil {
		return &domain.UpdateFailedError{Op: "update user vote", Cause: err}
	}
	return nil
}

// PersistUserVoteDelete removes the live vote record from the data source.
func (s *EntityStore) PersistUserVoteDelete(ctx context.Context, userID, billID uuid.UUID) error {
	if err := s.ds.DeleteUserVote(ctx, userID, billID); err != nil {
		return &domain.UpdateFailedError{Op: "delete user vote", Cause: err}
	}
	return nil
}

// Subscribe registers a change-notification hook. Hooks run synchronously
// on the mutating goroutine and must not block.
func (s *EntityStore) Subscribe(fn func(Event)) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *EntityStore) emit(e Event) {
	s.subMu.Lock()
	subs := append([]func(Event){}, s.subscribers...)
	s.subMu.Unlock()
	for _, fn := range subs {
		fn(e)
	}
}

func (s *EntityStore) bump() {
	s.mu.Lock()
	s.version++
	s.mu.Unlock()
}
