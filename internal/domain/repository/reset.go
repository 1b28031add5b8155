package repository

import (
	"context"
	"time"
)

// ResetTokenRepository keeps hashed password reset tokens until they expire.
type ResetTokenRepository interface {
	Save(ctx context.Context, tokenHash string, userID int64, ttl time.Duration) error
	// Lookup returns the owner of an unexpired token without removing it.
	Lookup(ctx context.Context, tokenHash string) (int64, error)
	// Consume returns the owner of an unexpired token and removes it.
	Consume(ctx context.Context, tokenHash string) (int64, error)
}
