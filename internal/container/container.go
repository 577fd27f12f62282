package container

import (
	"civitas/internal/comments"
	"civitas/internal/config"
	"civitas/internal/ledger"
	"civitas/internal/scoring"
	"civitas/internal/store"
	"civitas/pkg/logger"
	"civitas/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	RedisClient *redis.Client
	Store       *store.EntityStore
	Ledger      *ledger.VoteLedger
	Scoring     *scoring.Engine
	Comments    *comments.Tree
}

// New creates a new dependency injection container. The redis client is
// optional; a nil client disables caching without disabling the catalog.
func New(cfg *config.Config, log *logger.Logger, st *store.EntityStore) (*Container, error) {
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			log.Info("Redis client initialized successfully")
		}
	} else {
		log.Info("Redis URL not configured, proceeding without caching")
	}

	return &Container{
		Config:      cfg,
		Logger:      log,
		RedisClient: redisClient,
		Store:       st,
		Ledger:      ledger.New(st),
		Scoring:     scoring.New(st),
		Comments:    comments.New(st),
	}, nil
}

// HasRedis returns true if a Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}
