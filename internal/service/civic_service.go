package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"civitas/internal/comments"
	"civitas/internal/domain"
	"civitas/internal/ledger"
	"civitas/internal/scoring"
	"civitas/internal/store"
	"civitas/pkg/redis"
)

// CivicService composes the catalog engines behind one API and layers
// redis caching on the hot read paths. Caching failures degrade to the
// engines; they never fail an operation.
type CivicService struct {
	store    *store.EntityStore
	ledger   *ledger.VoteLedger
	scoring  *scoring.Engine
	comments *comments.Tree
	redis    *redis.Client
	logger   *zap.Logger
}

func NewCivicService(st *store.EntityStore, lg *ledger.VoteLedger, sc *scoring.Engine, ct *comments.Tree, redisClient *redis.Client, logger *zap.Logger) *CivicService {
	return &CivicService{
		store:    st,
		ledger:   lg,
		scoring:  sc,
		comments: ct,
		redis:    redisClient,
		logger:   logger,
	}
}

// Bills returns a snapshot of the bill collection.
func (s *CivicService) Bills() []domain.Bill {
	return s.store.Bills()
}

// Bill returns one bill by id.
func (s *CivicService) Bill(billID uuid.UUID) (domain.Bill, error) {
	return s.store.Bill(billID)
}

// UserVoteOn reports the requesting user's live vote on a bill. The
// stored Bill.UserVote field is per-writer state and never authoritative
// for a given caller; views derive the field from here instead.
func (s *CivicService) UserVoteOn(userID, billID uuid.UUID) (domain.Vote, bool) {
	v, ok := s.store.UserVote(userID, billID)
	if !ok {
		return "", false
	}
	return v.Vote, true
}

// Legislators returns a snapshot of the legislator collection.
func (s *CivicService) Legislators() []domain.Legislator {
	return s.store.Legislators()
}

// Legislator returns one legislator by id.
func (s *CivicService) Legislator(id uuid.UUID) (domain.Legislator, error) {
	return s.store.Legislator(id)
}

// CastVote records a user's vote and invalidates the bill's tally cache.
func (s *CivicService) CastVote(ctx context.Context, userID, billID uuid.UUID, vote domain.Vote) (domain.Bill, error) {
	bill, err := s.ledger.CastVote(ctx, userID, billID, vote)
	if err != nil {
		return domain.Bill{}, err
	}

	s.invalidateTally(ctx, billID)

	s.logger.Info("Vote cast",
		zap.String("bill_id", billID.String()),
		zap.String("vote", string(vote)))
	return bill, nil
}

// RetractVote removes a user's live vote and invalidates the tally cache.
func (s *CivicService) RetractVote(ctx context.Context, userID, billID uuid.UUID) (domain.Bill, error) {
	bill, err := s.ledger.RetractVote(ctx, userID, billID)
	if err != nil {
		return domain.Bill{}, err
	}

	s.invalidateTally(ctx, billID)

	s.logger.Info("Vote retracted",
		zap.String("bill_id", billID.String()))
	return bill, nil
}

// BillTally returns the bill's yes/no counts with short-TTL caching.
func (s *CivicService) BillTally(ctx context.Context, billID uuid.UUID) (domain.Tally, error) {
	if s.redis != nil {
		cacheKey := s.redis.KeyBuilder.KeyBillTally(billID)
		if cached, err := s.redis.Get(ctx, cacheKey); err == nil && cached != "" {
			var tally domain.Tally
			if err := json.Unmarshal([]byte(cached), &tally); err == nil {
				return tally, nil
			}
		}
	}

	tally, err := s.ledger.Tally(billID)
	if err != nil {
		return domain.Tally{}, err
	}

	if s.redis != nil {
		cacheKey := s.redis.KeyBuilder.KeyBillTally(billID)
		if data, err := json.Marshal(tally); err == nil {
			if err := s.redis.Set(ctx, cacheKey, string(data), redis.TTLTally); err != nil {
				s.logger.Warn("Failed to cache tally",
					zap.String("bill_id", billID.String()),
					zap.Error(err))
			}
		}
	}

	return tally, nil
}

// AlignmentScore computes how often the user's votes match the
// legislator's, memoized per store version.
func (s *CivicService) AlignmentScore(ctx context.Context, legislatorID, userID uuid.UUID) (float64, bool, error) {
	if _, err := s.store.Legislator(legislatorID); err != nil {
		return 0, false, err
	}

	version := s.store.Version()
	if s.redis != nil {
		cacheKey := s.redis.KeyBuilder.KeyAlignmentScore(legislatorID, userID, version)
		if score, present, ok := s.cachedScore(ctx, cacheKey); ok {
			return score, present, nil
		}
	}

	score, present := s.scoring.AlignmentScore(legislatorID, userID)

	if s.redis != nil {
		cacheKey := s.redis.KeyBuilder.KeyAlignmentScore(legislatorID, userID, version)
		s.cacheScore(ctx, cacheKey, score, present)
	}

	return score, present, nil
}

// AttendanceScore computes the legislator's attendance percentage,
// memoized per store version.
func (s *CivicService) AttendanceScore(ctx context.Context, legislatorID uuid.UUID) (float64, bool, error) {
	if _, err := s.store.Legislator(legislatorID); err != nil {
		return 0, false, err
	}

	version := s.store.Version()
	if s.redis != nil {
		cacheKey := s.redis.KeyBuilder.KeyAttendanceScore(legislatorID, version)
		if score, present, ok := s.cachedScore(ctx, cacheKey); ok {
			return score, present, nil
		}
	}

	score, present := s.scoring.AttendanceScore(legislatorID)

	if s.redis != nil {
		cacheKey := s.redis.KeyBuilder.KeyAttendanceScore(legislatorID, version)
		s.cacheScore(ctx, cacheKey, score, present)
	}

	return score, present, nil
}

// BillComments returns the bill's comment forest.
func (s *CivicService) BillComments(ctx context.Context, billID uuid.UUID) ([]*domain.Comment, error) {
	if _, err := s.store.Bill(billID); err != nil {
		return nil, err
	}
	return s.comments.Forest(ctx, billID)
}

// AddComment appends a comment (or reply, when parentID is set) to the
// bill's discussion.
func (s *CivicService) AddComment(ctx context.Context, billID uuid.UUID, parentID *uuid.UUID, author, text string) (*domain.Comment, error) {
	if _, err := s.store.Bill(billID); err != nil {
		return nil, err
	}

	comment, err := s.comments.AddComment(ctx, billID, parentID, author, text)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Comment added",
		zap.String("bill_id", billID.String()),
		zap.Bool("is_reply", parentID != nil))
	return comment, nil
}

// ToggleUpvote flips the session user's upvote on a comment.
func (s *CivicService) ToggleUpvote(ctx context.Context, billID, commentID uuid.UUID) (*domain.Comment, error) {
	if _, err := s.store.Bill(billID); err != nil {
		return nil, err
	}
	return s.comments.ToggleUpvote(ctx, billID, commentID)
}

// HealthCheck verifies the cache connection when one is configured.
func (s *CivicService) HealthCheck(ctx context.Context) error {
	if s.redis == nil {
		return nil
	}
	if err := s.redis.Health(ctx); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}
	return nil
}

type scoreEntry struct {
	Score   float64 `json:"score"`
	Present bool    `json:"present"`
}

func (s *CivicService) cachedScore(ctx context.Context, key string) (float64, bool, bool) {
	cached, err := s.redis.Get(ctx, key)
	if err != nil || cached == "" {
		return 0, false, false
	}
	var entry scoreEntry
	if err := json.Unmarshal([]byte(cached), &entry); err != nil {
		return 0, false, false
	}
	return entry.Score, entry.Present, true
}

func (s *CivicService) cacheScore(ctx context.Context, key string, score float64, present bool) {
	data, err := json.Marshal(scoreEntry{Score: score, Present: present})
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, string(data), redis.TTLScore); err != nil {
		s.logger.Warn("Failed to cache score", zap.Error(err))
	}
}

func (s *CivicService) invalidateTally(ctx context.Context, billID uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Delete(ctx, s.redis.KeyBuilder.KeyBillTally(billID)); err != nil {
		s.logger.Warn("Failed to invalidate tally cache",
			zap.String("bill_id", billID.String()),
			zap.Error(err))
	}
}
