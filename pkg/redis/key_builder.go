package redis

import (
	"fmt"

	"github.com/google/uuid"
)

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" || environment == "test" {
		prefix = "staging"
	}
	return &KeyBuilder{prefix: prefix}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

func (kb *KeyBuilder) KeyBillTally(billID uuid.UUID) string {
	return kb.BuildKey(fmt.Sprintf(KeyBillTally, billID))
}

func (kb *KeyBuilder) KeyBillComments(billID uuid.UUID) string {
	return kb.BuildKey(fmt.Sprintf(KeyBillComments, billID))
}

// KeyAlignmentScore keys on the store version: any mutation moves the
// version forward, so stale score entries are simply never read again.
func (kb *KeyBuilder) KeyAlignmentScore(legislatorID, userID uuid.UUID, version uint64) string {
	return kb.BuildKey(fmt.Sprintf(KeyAlignmentScore, legislatorID, userID, version))
}

func (kb *KeyBuilder) KeyAttendanceScore(legislatorID uuid.UUID, version uint64) string {
	return kb.BuildKey(fmt.Sprintf(KeyAttendanceScore, legislatorID, version))
}

// KeyCustom builds a key from an arbitrary pattern
func (kb *KeyBuilder) KeyCustom(pattern string, args ...interface{}) string {
	return kb.BuildKey(fmt.Sprintf(pattern, args...))
}
