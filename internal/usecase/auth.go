package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	domainErrors "github.com/polkiloo/healthmart/internal/domain/errors"
	"github.com/polkiloo/healthmart/internal/domain/model"
	"github.com/polkiloo/healthmart/internal/domain/repository"
	pkgAuth "github.com/polkiloo/healthmart/internal/pkg/auth"
	"github.com/polkiloo/healthmart/internal/pkg/mail"
)

// AuthSettings carries account related configuration.
type AuthSettings struct {
	ResetTokenTTL time.Duration
	AdminEmails   []string
	PublicURL     string
}

// AuthUseCase handles user lifecycle and token management.
type AuthUseCase struct {
	users    repository.UserRepository
	resets   repository.ResetTokenRepository
	hasher   pkgAuth.PasswordHasher
	tokens   pkgAuth.Strategy
	mailer   mail.Mailer
	settings AuthSettings
	logger   *slog.Logger
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(
	users repository.UserRepository,
	resets repository.ResetTokenRepository,
	hasher pkgAuth.PasswordHasher,
	strategy pkgAuth.Strategy,
	mailer mail.Mailer,
	settings AuthSettings,
	logger *slog.Logger,
) *AuthUseCase {
	if settings.ResetTokenTTL <= 0 {
		settings.ResetTokenTTL = 10 * time.Minute
	}
	return &AuthUseCase{
		users:    users,
		resets:   resets,
		hasher:   hasher,
		tokens:   strategy,
		mailer:   mailer,
		settings: settings,
		logger:   logger,
	}
}

// Register creates a new customer account and returns auth token.
func (u *AuthUseCase) Register(ctx context.Context, name, email, password string) (*model.User, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", invalid("name is required")
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, "", err
	}
	if err := validatePassword(password); err != nil {
		return nil, "", err
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	role := model.RoleCustomer
	if u.isAdminEmail(email) {
		role = model.RoleAdmin
	}

	usr, err := u.users.Create(ctx, model.User{Name: name, Email: email, PasswordHash: hash, Role: role})
	if err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil, "", domainErrors.ErrAlreadyExists
		}
		return nil, "", err
	}

	token, err := u.tokens.IssueToken(usr.ID)
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

// Authenticate validates credentials and returns auth token.
func (u *AuthUseCase) Authenticate(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	usr, err := u.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	if err := u.users.TouchLogin(ctx, usr.ID); err != nil {
		u.logger.WarnContext(ctx, "record last login", slog.Int64("user_id", usr.ID), slog.String("error", err.Error()))
	}

	token, err := u.tokens.IssueToken(usr.ID)
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

// ParseToken extracts user ID from provided token.
func (u *AuthUseCase) ParseToken(token string) (int64, error) {
	if token == "" {
		return 0, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}

// GetByID fetches user by identifier.
func (u *AuthUseCase) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return u.users.GetByID(ctx, id)
}

// UpdateProfile changes name, email or phone of the user.
func (u *AuthUseCase) UpdateProfile(ctx context.Context, id int64, update model.ProfileUpdate) (*model.User, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, invalid("name cannot be empty")
		}
		update.Name = &name
	}
	if update.Email != nil {
		email, err := normalizeEmail(*update.Email)
		if err != nil {
			return nil, err
		}
		update.Email = &email
	}
	if update.Phone != nil {
		phone := strings.TrimSpace(*update.Phone)
		update.Phone = &phone
	}
	return u.users.UpdateProfile(ctx, id, update)
}

// UpdatePassword replaces the password after checking the current one.
func (u *AuthUseCase) UpdatePassword(ctx context.Context, id int64, current, next string) (string, error) {
	usr, err := u.users.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if err := u.hasher.Compare(usr.PasswordHash, current); err != nil {
		return "", domainErrors.ErrInvalidCredentials
	}
	if err := u.setPassword(ctx, id, next); err != nil {
		return "", err
	}
	return u.tokens.IssueToken(id)
}

// ForgotPassword issues a single-use reset token and mails the reset link.
func (u *AuthUseCase) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return invalid("email is required")
	}

	usr, err := u.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, digest, err := pkgAuth.NewResetToken()
	if err != nil {
		return err
	}
	if err := u.resets.Save(ctx, digest, usr.ID, u.settings.ResetTokenTTL); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/api/auth/reset-password/%s", u.settings.PublicURL, token)
	return u.mailer.Send(ctx, mail.Message{
		To:      usr.Email,
		Subject: "Password reset token",
		Body:    "You requested a password reset. Make a PUT request to: " + link,
	})
}

// ResetPassword sets a new password using a token issued by ForgotPassword.
func (u *AuthUseCase) ResetPassword(ctx context.Context, token, password string) (*model.User, string, error) {
	if token == "" {
		return nil, "", domainErrors.ErrInvalidResetToken
	}
	if err := validatePassword(password); err != nil {
		return nil, "", err
	}

	digest := pkgAuth.HashResetToken(token)
	userID, err := u.resets.Lookup(ctx, digest)
	if err != nil {
		return nil, "", err
	}
	if err := u.setPassword(ctx, userID, password); err != nil {
		return nil, "", err
	}
	// the token is spent only once the new password is stored
	if _, err := u.resets.Consume(ctx, digest); err != nil {
		u.logger.WarnContext(ctx, "consume reset token", slog.Int64("user_id", userID), slog.String("error", err.Error()))
	}

	usr, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	issued, err := u.tokens.IssueToken(userID)
	if err != nil {
		return nil, "", err
	}
	return usr, issued, nil
}

func (u *AuthUseCase) setPassword(ctx context.Context, id int64, password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := u.hasher.Hash(password)
	if err != nil {
		return err
	}
	return u.users.UpdatePassword(ctx, id, hash)
}

func (u *AuthUseCase) isAdminEmail(email string) bool {
	for _, admin := range u.settings.AdminEmails {
		if strings.EqualFold(admin, email) {
			return true
		}
	}
	return false
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < pkgAuth.MinPasswordLength {
		return invalid("password must be at least %d characters", pkgAuth.MinPasswordLength)
	}
	if len(password) > pkgAuth.MaxPasswordBytes {
		return invalid("password must be at most %d bytes", pkgAuth.MaxPasswordBytes)
	}
	return nil
}
