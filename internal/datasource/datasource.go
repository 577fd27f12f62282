// Package datasource defines the boundary between the in-memory core and
// the external system of record. All calls may be slow and may fail;
// implementations own transport, retries and timeouts.
package datasource

import (
	"context"

	"github.com/google/uuid"

	"civitas/internal/domain"
)

// DataSource is the collaborator interface consumed by the entity store.
type DataSource interface {
	FetchBills(ctx context.Context) ([]domain.Bill, error)
	FetchLegislators(ctx context.Context) ([]domain.Legislator, error)
	FetchLegislatorVotes(ctx context.Context) ([]domain.LegislatorVote, error)
	FetchUserVotes(ctx context.Context) ([]domain.UserVote, error)

	// UpdateBill persists full bill state, including the tally and the
	// session user's vote field.
	UpdateBill(ctx context.Context, bill domain.Bill) error

	// UpdateUserVote upserts the single live (user, bill) vote record.
	UpdateUserVote(ctx context.Context, vote domain.UserVote) error

	// DeleteUserVote removes the live (user, bill) vote record, if any.
	DeleteUserVote(ctx context.Context, userID, billID uuid.UUID) error

	// FetchComments returns a bill's comments as flat records; forest
	// assembly is the comment tree's job.
	FetchComments(ctx context.Context, billID uuid.UUID) ([]domain.Comment, error)
	AddComment(ctx context.Context, billID uuid.UUID, comment domain.Comment) error
	UpdateComment(ctx context.Context, billID uuid.UUID, comment domain.Comment) error
}
