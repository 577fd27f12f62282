// Package memory provides an in-memory DataSource for tests and local
// development. It mirrors the persistence semantics of the postgres
// implementation, including upsert-on-vote and delete-on-retract.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"civitas/internal/domain"
)

type voteKey struct {
	billID uuid.UUID
	userID uuid.UUID
}

// DataSource keeps all collections in maps guarded by one mutex. Failures
// can be injected per operation name to exercise error paths.
type DataSource struct {
	mu sync.Mutex

	bills           map[uuid.UUID]domain.Bill
	legislators     map[uuid.UUID]domain.Legislator
	legislatorVotes []domain.LegislatorVote
	userVotes       map[voteKey]domain.UserVote
	comments        map[uuid.UUID][]domain.Comment

	failures map[string]error
}

func New() *DataSource {
	return &DataSource{
		bills:       make(map[uuid.UUID]domain.Bill),
		legislators: make(map[uuid.UUID]domain.Legislator),
		userVotes:   make(map[voteKey]domain.UserVote),
		comments:    make(map[uuid.UUID][]domain.Comment),
		failures:    make(map[string]error),
	}
}

// FailWith makes the named operation return err until cleared with a nil
// err. Operation names match the DataSource method names.
func (d *DataSource) FailWith(op string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.failures, op)
		return
	}
	d.failures[op] = err
}

func (d *DataSource) fail(op string) error {
	return d.failures[op]
}

func (d *DataSource) SeedBills(bills ...domain.Bill) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, b := range bills {
		d.bills[b.ID] = b.Clone()
	}
}

func (d *DataSource) SeedLegislators(legislators ...domain.Legislator) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, l := range legislators {
		d.legislators[l.ID] = l.Clone()
	}
}

func (d *DataSource) SeedLegislatorVotes(votes ...domain.LegislatorVote) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.legislatorVotes = append(d.legislatorVotes, votes...)
}

func (d *DataSource) SeedUserVotes(votes ...domain.UserVote) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, v := range votes {
		d.userVotes[voteKey{v.BillID, v.UserID}] = v
	}
}

func (d *DataSource) SeedComments(billID uuid.UUID, comments ...domain.Comment) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range comments {
		d.comments[billID] = append(d.comments[billID], *c.Clone())
	}
}

func (d *DataSource) FetchBills(ctx context.Context) ([]domain.Bill, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("FetchBills"); err != nil {
		return nil, err
	}
	bills := make([]domain.Bill, 0, len(d.bills))
	for _, b := range d.bills {
		bills = append(bills, b.Clone())
	}
	return bills, nil
}

func (d *DataSource) FetchLegislators(ctx context.Context) ([]domain.Legislator, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("FetchLegislators"); err != nil {
		return nil, err
	}
	legislators := make([]domain.Legislator, 0, len(d.legislators))
	for _, l := range d.legislators {
		legislators = append(legislators, l.Clone())
	}
	return legislators, nil
}

func (d *DataSource) FetchLegislatorVotes(ctx context.Context) ([]domain.LegislatorVote, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("FetchLegislatorVotes"); err != nil {
		return nil, err
	}
	return append([]domain.LegislatorVote(nil), d.legislatorVotes...), nil
}

func (d *DataSource) FetchUserVotes(ctx context.Context) ([]domain.UserVote, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("FetchUserVotes"); err != nil {
		return nil, err
	}
	votes := make([]domain.UserVote, 0, len(d.userVotes))
	for _, v := range d.userVotes {
		votes = append(votes, v)
	}
	return votes, nil
}

func (d *DataSource) UpdateBill(ctx context.Context, bill domain.Bill) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("UpdateBill"); err != nil {
		return err
	}
	if _, ok := d.bills[bill.ID]; !ok {
		return domain.ErrBillNotFound
	}
	d.bills[bill.ID] = bill.Clone()
	return nil
}

func (d *DataSource) UpdateUserVote(ctx context.Context, vote domain.UserVote) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("UpdateUserVote"); err != nil {
		return err
	}
	d.userVotes[voteKey{vote.BillID, vote.UserID}] = vote
	return nil
}

func (d *DataSource) DeleteUserVote(ctx context.Context, userID, billID uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("DeleteUserVote"); err != nil {
		return err
	}
	delete(d.userVotes, voteKey{billID, userID})
	return nil
}

func (d *DataSource) FetchComments(ctx context.Context, billID uuid.UUID) ([]domain.Comment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("FetchComments"); err != nil {
		return nil, err
	}
	stored := d.comments[billID]
	comments := make([]domain.Comment, 0, len(stored))
	for _, c := range stored {
		comments = append(comments, *c.Clone())
	}
	return comments, nil
}

func (d *DataSource) AddComment(ctx context.Context, billID uuid.UUID, comment domain.Comment) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("AddComment"); err != nil {
		return err
	}
	d.comments[billID] = append(d.comments[billID], *comment.Clone())
	return nil
}

func (d *DataSource) UpdateComment(ctx context.Context, billID uuid.UUID, comment domain.Comment) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("UpdateComment"); err != nil {
		return err
	}
	stored := d.comments[billID]
	for i := range stored {
		if stored[i].ID == comment.ID {
			stored[i] = *comment.Clone()
			return nil
		}
	}
	return domain.ErrCommentNotFound
}

// UserVote reports the live vote record for a (user, bill) pair.
func (d *DataSource) UserVote(userID, billID uuid.UUID) (domain.UserVote, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.userVotes[voteKey{billID, userID}]
	return v, ok
}

// Bill reports the persisted state of a bill.
func (d *DataSource) Bill(billID uuid.UUID) (domain.Bill, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.bills[billID]
	return b.Clone(), ok
}
