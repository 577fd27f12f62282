package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoolConfig_Defaults(t *testing.T) {
	got := PoolConfig{}.withDefaults()

	assert.Equal(t, int32(8), got.MaxConns)
	assert.Equal(t, int32(2), got.MinConns)
	assert.Equal(t, time.Hour, got.MaxConnLifetime)
	assert.Equal(t, 30*time.Minute, got.MaxConnIdleTime)
	assert.Equal(t, 5*time.Second, got.ConnectTimeout)
}

func TestPoolConfig_ExplicitValuesKept(t *testing.T) {
	got := PoolConfig{MaxConns: 50, ConnectTimeout: time.Second}.withDefaults()

	assert.Equal(t, int32(50), got.MaxConns)
	assert.Equal(t, time.Second, got.ConnectTimeout)
	assert.Equal(t, int32(2), got.MinConns)
}

func TestNewPostgresDB_InvalidURL(t *testing.T) {
	db, err := NewPostgresDB(context.Background(), "not a connection string", PoolConfig{})

	assert.Error(t, err)
	assert.Nil(t, db)
}
