package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/healthmart/internal/domain/errors"
)

// Save replaces any pending token of the user.
func (r *resetTokenRepository) Save(ctx context.Context, tokenHash string, userID int64, ttl time.Duration) error {
	const purge = `DELETE FROM password_resets WHERE user_id=$1 OR expires_at < NOW()`
	const insert = `INSERT INTO password_resets (token_hash, user_id, expires_at) VALUES ($1, $2, $3)`

	return r.storage.WithinTransaction(ctx, func(ctx context.Context) error {
		conn := r.storage.conn(ctx)
		if _, err := conn.Exec(ctx, purge, userID); err != nil {
			return err
		}
		_, err := conn.Exec(ctx, insert, tokenHash, userID, time.Now().Add(ttl))
		return err
	})
}

func (r *resetTokenRepository) Lookup(ctx context.Context, tokenHash string) (int64, error) {
	const query = `SELECT user_id FROM password_resets WHERE token_hash=$1 AND expires_at > NOW()`
	var userID int64
	if err := r.storage.conn(ctx).QueryRow(ctx, query, tokenHash).Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domainErrors.ErrInvalidResetToken
		}
		return 0, err
	}
	return userID, nil
}

func (r *resetTokenRepository) Consume(ctx context.Context, tokenHash string) (int64, error) {
	const query = `DELETE FROM password_resets WHERE token_hash=$1 AND expires_at > NOW() RETURNING user_id`
	var userID int64
	if err := r.storage.conn(ctx).QueryRow(ctx, query, tokenHash).Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domainErrors.ErrInvalidResetToken
		}
		return 0, err
	}
	return userID, nil
}
