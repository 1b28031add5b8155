package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/healthmart/internal/domain/errors"
	"github.com/polkiloo/healthmart/internal/domain/model"
)

const userColumns = `id, name, email, password_hash, role, phone, last_login_at, created_at, updated_at`

func scanUser(row scanner) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, user model.User) (*model.User, error) {
	const query = `INSERT INTO users (name, email, password_hash, role, phone)
                   VALUES ($1, $2, $3, $4, $5)
                   RETURNING ` + userColumns
	created, err := scanUser(r.storage.conn(ctx).QueryRow(ctx, query, user.Name, user.Email, user.PasswordHash, user.Role, user.Phone))
	if err != nil {
		if hasCode(err, pgerrcode.UniqueViolation) {
			return nil, fmt.Errorf("%w: email %s", domainErrors.ErrAlreadyExists, user.Email)
		}
		return nil, err
	}
	return created, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return scanUser(r.storage.conn(ctx).QueryRow(ctx, query, email))
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.storage.conn(ctx).QueryRow(ctx, query, id))
}

func (r *userRepository) UpdateProfile(ctx context.Context, id int64, update model.ProfileUpdate) (*model.User, error) {
	const query = `UPDATE users SET
                       name = COALESCE($2, name),
                       email = COALESCE($3, email),
                       phone = COALESCE($4, phone),
                       updated_at = NOW()
                   WHERE id=$1
                   RETURNING ` + userColumns
	updated, err := scanUser(r.storage.conn(ctx).QueryRow(ctx, query, id, update.Name, update.Email, update.Phone))
	if err != nil {
		if hasCode(err, pgerrcode.UniqueViolation) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return updated, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const query = `UPDATE users SET password_hash=$2, updated_at=NOW() WHERE id=$1`
	tag, err := r.storage.conn(ctx).Exec(ctx, query, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *userRepository) TouchLogin(ctx context.Context, id int64) error {
	const query = `UPDATE users SET last_login_at=NOW() WHERE id=$1`
	_, err := r.storage.conn(ctx).Exec(ctx, query, id)
	return err
}
