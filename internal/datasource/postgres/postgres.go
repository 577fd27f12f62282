// Package postgres implements the datasource boundary on PostgreSQL.
package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"civitas/internal/domain"
	"civitas/pkg/database"
)

type DataSource struct {
	db *database.PostgresDB
}

func New(db *database.PostgresDB) *DataSource {
	return &DataSource{db: db}
}

// FetchBills loads all bills, including persisted tallies and the session
// user's vote field.
func (d *DataSource) FetchBills(ctx context.Context) ([]domain.Bill, error) {
	query := `
		SELECT id, title, summary, state, body, session, tags, briefing,
		       yes_votes, no_votes, user_vote, last_updated
		FROM bills
		ORDER BY last_updated DESC
	`

	rows, err := d.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bills: %w", err)
	}
	defer rows.Close()

	var bills []domain.Bill
	for rows.Next() {
		var bill domain.Bill
		var userVote *string
		err := rows.Scan(
			&bill.ID,
			&bill.Title,
			&bill.Summary,
			&bill.State,
			&bill.Body,
			&bill.Session,
			&bill.Tags,
			&bill.Briefing,
			&bill.YesVotes,
			&bill.NoVotes,
			&userVote,
			&bill.LastUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		if userVote != nil {
			vote, err := domain.ParseVote(*userVote)
			if err != nil {
				return nil, fmt.Errorf("failed to scan bill %s: %w", bill.ID, err)
			}
			bill.UserVote = &vote
		}
		bills = append(bills, bill)
	}

	return bills, rows.Err()
}

// FetchLegislators loads all legislators together with their funding records.
func (d *DataSource) FetchLegislators(ctx context.Context) ([]domain.Legislator, error) {
	query := `
		SELECT id, name, party, state, district, chamber, image_url, top_issues,
		       contact_email, contact_phone, contact_office,
		       twitter, facebook, instagram
		FROM legislators
		ORDER BY name ASC
	`

	rows, err := d.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch legislators: %w", err)
	}
	defer rows.Close()

	var legislators []domain.Legislator
	byID := make(map[uuid.UUID]int)
	for rows.Next() {
		var leg domain.Legislator
		err := rows.Scan(
			&leg.ID,
			&leg.Name,
			&leg.Party,
			&leg.State,
			&leg.District,
			&leg.Chamber,
			&leg.ImageURL,
			&leg.TopIssues,
			&leg.Contact.Email,
			&leg.Contact.Phone,
			&leg.Contact.Office,
			&leg.SocialMedia.Twitter,
			&leg.SocialMedia.Facebook,
			&leg.SocialMedia.Instagram,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan legislator: %w", err)
		}
		byID[leg.ID] = len(legislators)
		legislators = append(legislators, leg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := d.attachFundingRecords(ctx, legislators, byID); err != nil {
		return nil, err
	}

	return legislators, nil
}

func (d *DataSource) attachFundingRecords(ctx context.Context, legislators []domain.Legislator, byID map[uuid.UUID]int) error {
	query := `
		SELECT legislator_id, source, amount, date
		FROM funding_records
		ORDER BY date DESC
	`

	rows, err := d.db.Pool.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to fetch funding records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var legislatorID uuid.UUID
		var record domain.FundingRecord
		if err := rows.Scan(&legislatorID, &record.Source, &record.Amount, &record.Date); err != nil {
			return fmt.Errorf("failed to scan funding record: %w", err)
		}
		if i, ok := byID[legislatorID]; ok {
			legislators[i].FundingRecords = append(legislators[i].FundingRecords, record)
		}
	}

	return rows.Err()
}

// FetchLegislatorVotes loads the full legislator voting history.
func (d *DataSource) FetchLegislatorVotes(ctx context.Context) ([]domain.LegislatorVote, error) {
	query := `
		SELECT id, bill_id, legislator_id, vote, date
		FROM legislator_votes
		ORDER BY date ASC
	`

	rows, err := d.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch legislator votes: %w", err)
	}
	defer rows.Close()

	var votes []domain.LegislatorVote
	for rows.Next() {
		var lv domain.LegislatorVote
		var vote string
		if err := rows.Scan(&lv.ID, &lv.BillID, &lv.LegislatorID, &vote, &lv.Date); err != nil {
			return nil, fmt.Errorf("failed to scan legislator vote: %w", err)
		}
		parsed, err := domain.ParseVote(vote)
		if err != nil {
			return nil, fmt.Errorf("failed to scan legislator vote %s: %w", lv.ID, err)
		}
		lv.Vote = parsed
		votes = append(votes, lv)
	}

	return votes, rows.Err()
}

// FetchUserVotes loads all live user vote records.
func (d *DataSource) FetchUserVotes(ctx context.Context) ([]domain.UserVote, error) {
	query := `
		SELECT bill_id, user_id, vote, date
		FROM user_votes
		ORDER BY date ASC
	`

	rows, err := d.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user votes: %w", err)
	}
	defer rows.Close()

	var votes []domain.UserVote
	for rows.Next() {
		var uv domain.UserVote
		var vote string
		if err := rows.Scan(&uv.BillID, &uv.UserID, &vote, &uv.Date); err != nil {
			return nil, fmt.Errorf("failed to scan user vote: %w", err)
		}
		parsed, err := domain.ParseVote(vote)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user vote for bill %s: %w", uv.BillID, err)
		}
		uv.Vote = parsed
		votes = append(votes, uv)
	}

	return votes, rows.Err()
}

// UpdateBill persists full bill state.
func (d *DataSource) UpdateBill(ctx context.Context, bill domain.Bill) error {
	query := `
		UPDATE bills
		SET yes_votes = $2, no_votes = $3, user_vote = $4, last_updated = $5
		WHERE id = $1
	`

	var userVote *string
	if bill.UserVote != nil {
		s := string(*bill.UserVote)
		userVote = &s
	}

	tag, err := d.db.Pool.Exec(ctx, query, bill.ID, bill.YesVotes, bill.NoVotes, userVote, bill.LastUpdated)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBillNotFound
	}

	return nil
}

// UpdateUserVote upserts the single live (user, bill) vote record.
func (d *DataSource) UpdateUserVote(ctx context.Context, vote domain.UserVote) error {
	query := `
		INSERT INTO user_votes (bill_id, user_id, vote, date)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (bill_id, user_id)
		DO UPDATE SET vote = EXCLUDED.vote, date = EXCLUDED.date
	`

	if _, err := d.db.Pool.Exec(ctx, query, vote.BillID, vote.UserID, string(vote.Vote), vote.Date); err != nil {
		return fmt.Errorf("failed to upsert user vote: %w", err)
	}

	return nil
}

// DeleteUserVote removes the live (user, bill) vote record, if any.
func (d *DataSource) DeleteUserVote(ctx context.Context, userID, billID uuid.UUID) error {
	query := `DELETE FROM user_votes WHERE bill_id = $1 AND user_id = $2`

	if _, err := d.db.Pool.Exec(ctx, query, billID, userID); err != nil {
		return fmt.Errorf("failed to delete user vote: %w", err)
	}

	return nil
}

// FetchComments returns a bill's comments as flat parent-linked records.
func (d *DataSource) FetchComments(ctx context.Context, billID uuid.UUID) ([]domain.Comment, error) {
	query := `
		SELECT id, bill_id, author, body, created_at, parent_id, upvotes, user_has_upvoted
		FROM comments
		WHERE bill_id = $1
		ORDER BY created_at ASC
	`

	rows, err := d.db.Pool.Query(ctx, query, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments: %w", err)
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		err := rows.Scan(
			&c.ID,
			&c.BillID,
			&c.Author,
			&c.Text,
			&c.Timestamp,
			&c.ParentID,
			&c.Upvotes,
			&c.UserHasUpvoted,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}

// AddComment inserts a single comment record.
func (d *DataSource) AddComment(ctx context.Context, billID uuid.UUID, comment domain.Comment) error {
	query := `
		INSERT INTO comments (id, bill_id, author, body, created_at, parent_id, upvotes, user_has_upvoted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := d.db.Pool.Exec(ctx, query,
		comment.ID,
		billID,
		comment.Author,
		comment.Text,
		comment.Timestamp,
		comment.ParentID,
		comment.Upvotes,
		comment.UserHasUpvoted,
	)
	if err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}

	return nil
}

// UpdateComment persists mutable comment state (upvote count and flag).
func (d *DataSource) UpdateComment(ctx context.Context, billID uuid.UUID, comment domain.Comment) error {
	query := `
		UPDATE comments
		SET upvotes = $3, user_has_upvoted = $4
		WHERE id = $1 AND bill_id = $2
	`

	tag, err := d.db.Pool.Exec(ctx, query, comment.ID, billID, comment.Upvotes, comment.UserHasUpvoted)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCommentNotFound
	}

	return nil
}

// GetBill fetches a single bill by id. Returns nil when absent, matching
// the pgx no-rows convention used across the repository layer.
func (d *DataSource) GetBill(ctx context.Context, billID uuid.UUID) (*domain.Bill, error) {
	query := `
		SELECT id, title, summary, state, body, session, tags, briefing,
		       yes_votes, no_votes, user_vote, last_updated
		FROM bills
		WHERE id = $1
	`

	var bill domain.Bill
	var userVote *string
	err := d.db.Pool.QueryRow(ctx, query, billID).Scan(
		&bill.ID,
		&bill.Title,
		&bill.Summary,
		&bill.State,
		&bill.Body,
		&bill.Session,
		&bill.Tags,
		&bill.Briefing,
		&bill.YesVotes,
		&bill.NoVotes,
		&userVote,
		&bill.LastUpdated,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	if userVote != nil {
		vote, err := domain.ParseVote(*userVote)
		if err != nil {
			return nil, fmt.Errorf("failed to get bill %s: %w", bill.ID, err)
		}
		bill.UserVote = &vote
	}

	return &bill, nil
}
