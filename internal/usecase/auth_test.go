package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/healthmart/internal/domain/errors"
	"github.com/polkiloo/healthmart/internal/domain/model"
	pkgAuth "github.com/polkiloo/healthmart/internal/pkg/auth"
	testhelpers "github.com/polkiloo/healthmart/internal/test"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStrategyStub() testhelpers.StrategyStub {
	return testhelpers.StrategyStub{
		IssueFn: func(userID int64) (string, error) {
			return fmt.Sprintf("token-%d", userID), nil
		},
		ParseFn: func(token string) (int64, error) {
			var id int64
			if _, err := fmt.Sscanf(token, "token-%d", &id); err != nil {
				return 0, pkgAuth.ErrInvalidToken
			}
			return id, nil
		},
	}
}

type authFixture struct {
	uc     *AuthUseCase
	users  *testhelpers.UserRepositoryStub
	resets *testhelpers.ResetTokenRepositoryStub
	mailer *testhelpers.MailerStub
}

func newAuthFixture(hasher testhelpers.HasherStub, strategy pkgAuth.Strategy) authFixture {
	f := authFixture{
		users:  testhelpers.NewUserRepositoryStub(),
		resets: testhelpers.NewResetTokenRepositoryStub(),
		mailer: &testhelpers.MailerStub{},
	}
	f.uc = NewAuthUseCase(f.users, f.resets, hasher, strategy, f.mailer, AuthSettings{
		ResetTokenTTL: 10 * time.Minute,
		AdminEmails:   []string{"boss@shop.test"},
		PublicURL:     "https://shop.test",
	}, discardLogger())
	return f
}

func TestAuthUseCaseRegisterSuccess(t *testing.T) {
	f := newAuthFixture(testhelpers.HasherStub{}, newStrategyStub())

	ctx := context.Background()
	user, token, err := f.uc.Register(ctx, " Alice ", "Alice@Example.com", "password")
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected user to have ID assigned")
	}
	if token != "token-1" {
		t.Fatalf("unexpected token %q", token)
	}
	if user.Role != model.RoleCustomer || user.Name != "Alice" {
		t.Fatalf("unexpected user %+v", user)
	}
	stored, err := f.users.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("expected user in repository: %v", err)
	}
	if stored.PasswordHash != "hash:password" {
		t.Fatalf("password hash not stored: %v", stored.PasswordHash)
	}
}

func TestAuthUseCaseRegisterGrantsAdminRole(t *testing.T) {
	f := newAuthFixture(testhelpers.HasherStub{}, newStrategyStub())
	user, _, err := f.uc.Register(context.Background(), "Boss", "BOSS@shop.test", "password")
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if !user.IsAdmin() {
		t.Fatalf("expected admin role, got %s", user.Role)
	}
}

func TestAuthUseCaseRegisterDuplicate(t *testing.T) {
	f := newAuthFixture(testhelpers.HasherStub{}, newStrategyStub())

	ctx := context.Background()
	if _, _, err := f.uc.Register(ctx, "Bob", "bob@shop.test", "secret1"); err != nil {
		t.Fatalf("unexpected error on first register: %v", err)
	}
	if _, _, err := f.uc.Register(ctx, "Bob", "bob@shop.test", "secret1"); err != domainErrors.ErrAlreadyExists {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestAuthUseCaseRegisterValidation(t *testing.T) {
	f := newAuthFixture(testhelpers.HasherStub{}, newStrategyStub())
	cases := []struct{ name, email, password string }{
		{"", "a@b.test", "password"},
		{"Ann", "not-an-email", "password"},
		{"Ann", "a@b.test", "short"},
		{"Ann", "a@b.test", strings.Repeat("x", pkgAuth.MaxPasswordBytes+1)},
	}
	for _, tc := range cases {
		if _, _, err := f.uc.Register(context.Background(), tc.name, tc.email, tc.password); !errors.Is(err, domainErrors.ErrInvalidRequest) {
			t.Fatalf("expected invalid request for %+v, got %v", tc, err)
		}
	}
}

func TestAuthUseCaseRegisterFailures(t *testing.T) {
	hashErr := newAuthFixture(testhelpers.HasherStub{HashFn: func(string) (string, error) {
		return "", fmt.Errorf("hash error")
	}}, newStrategyStub())
	if _, _, err := hashErr.uc.Register(context.Background(), "U", "u@shop.test", "password"); err == nil {
		t.Fatal("expected hashing error")
	}

	repoErr := newAuthFixture(testhelpers.HasherStub{}, newStrategyStub())
	repoErr.users.Err = fmt.Errorf("db down")
	if _, _, err := repoErr.uc.Register(context.Background(), "U", "u@shop.test", "password"); err == nil {
		t.Fatal("expected repository error")
	}

	issueErr := newAuthFixture(testhelpers.HasherStub{}, testhelpers.StrategyStub{IssueFn: func(int64) (string, error) {
		return "", fmt.Errorf("cannot issue token")
	}})
	if _, _, err := issueErr.uc.Register(context.Background(), "U", "u@shop.test", "password"); err == nil {
		t.Fatal("expected token issuing error")
	}
}

func TestAuthUseCaseAuthenticate(t *testing.T) {
	f := newAuthFixture(testhelpers.HasherStub{}, newStrategyStub())

	ctx := context.Background()
	if _, _, err := f.uc.Register(ctx, "Carol", "carol@shop.test", "123456"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, _, err := f.uc.Authenticate(ctx, "carol@shop.test", "bad"); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials error, got %v", err)
	}
	if _, _, err := f.uc.Authenticate(ctx, "absent@shop.test", "123456"); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials for unknown email, got %v", err)
	}
	if _, _, err := f.uc.Authenticate(ctx, "", "123456"); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials for empty email, got %v", err)
	}

	_, token, err := f.uc.Authenticate(ctx, "  CAROL@shop.test ", "123456")
	if err != nil {
		t.Fatalf("authenticate returned error: %v", err)
	}
	if token != "token-1" {
		t.Fatalf("unexpected token %q", token)
	}
	if f.users.LoginCalls != 1 {
		t.Fatalf("expected last login to be recorded once, got %d", f.users.LoginCalls)
	}
}

func TestAuthUseCaseAuthenticateIgnoresTouchFailure(t *testing.T) {
	f := newAuthFixture(testhelpers.HasherStub{}, newStrategyStub())
	if _, _, err := f.uc.Register(context.Background(), "Dan", "dan@shop.test", "123456"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	f.users.TouchErr = fmt.Errorf("write failed")
	if _, _, err := f.uc.Authenticate(context.Background(), "dan@shop.test", "123456"); err != nil {
		t.Fatalf("expected login to succeed, got %v", err)
	}
}

func TestAuthUseCaseAuthenticateRepositoryError(t *testing.T) {
	f := newAuthFixture(testhelpers.HasherStub{}, newStrategyStub())
	f.users.Err = fmt.Errorf("storage unavailable")
	if _, _, err := f.uc.Authenticate(context.Background(), "user@shop.test", "pass"); err == nil || err.Error() != "storage unavailable" {
		t.Fatalf("expected repository error, got %v", err)
	}
}

func TestAuthUseCaseParseToken(t *testing.T) {
	f := newAuthFixture(testhelpers.HasherStub{}, newStrategyStub())

	id, err := f.uc.ParseToken("token-42")
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected id 42, got %d", id)
	}
	if _, err := f.uc.ParseToken("bad-token"); err != pkgAuth.ErrInvalidToken {
		t.Fatalf("expected invalid token error, got %v", err)
	}
	if _, err := f.uc.ParseToken(""); err != pkgAuth.ErrInvalidToken {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestAuthUseCaseUpdateProfile(t *testing.T) {
	f := newAuthFixture(testhelpers.HasherStub{}, newStrategyStub())
	ctx := context.Background()
	user, _, err := f.uc.Register(ctx, "Eve", "eve@shop.test", "password")
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if _, _, err := f.uc.Register(ctx, "Frank", "frank@shop.test", "password"); err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	name, email, phone := " Eve Adams ", "EVE.ADAMS@shop.test", " 555-0100 "
	updated, err := f.uc.UpdateProfile(ctx, user.ID, model.ProfileUpdate{Name: &name, Email: &email, Phone: &phone})
	if err != nil {
		t.Fatalf("update profile returned error: %v", err)
	}
	if updated.Name != "Eve Adams" || updated.Email != "eve.adams@shop.test" || updated.Phone != "555-0100" {
		t.Fatalf("unexpected profile %+v", updated)
	}

	taken := "frank@shop.test"
	if _, err := f.uc.UpdateProfile(ctx, user.ID, model.ProfileUpdate{Email: &taken}); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}
	blank := "  "
	if _, err := f.uc.UpdateProfile(ctx, user.ID, model.ProfileUpdate{Name: &blank}); !errors.Is(err, domainErrors.ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}

func TestAuthUseCaseUpdatePassword(t *testing.T) {
	f := newAuthFixture(testhelpers.HasherStub{}, newStrategyStub())
	ctx := context.Background()
	user, _, err := f.uc.Register(ctx, "Gus", "gus@shop.test", "password")
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	if _, err := f.uc.UpdatePassword(ctx, user.ID, "wrong-one", "newpassword"); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := f.uc.UpdatePassword(ctx, user.ID, "password", "123"); !errors.Is(err, domainErrors.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for short password, got %v", err)
	}

	token, err := f.uc.UpdatePassword(ctx, user.ID, "password", "newpassword")
	if err != nil {
		t.Fatalf("update password returned error: %v", err)
	}
	if token != "token-1" {
		t.Fatalf("unexpected token %q", token)
	}
	if _, _, err := f.uc.Authenticate(ctx, "gus@shop.test", "newpassword"); err != nil {
		t.Fatalf("expected login with new password, got %v", err)
	}
}

func TestAuthUseCaseForgotAndResetPassword(t *testing.T) {
	f := newAuthFixture(testhelpers.HasherStub{}, newStrategyStub())
	ctx := context.Background()
	if _, _, err := f.uc.Register(ctx, "Hal", "hal@shop.test", "password"); err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	if err := f.uc.ForgotPassword(ctx, "nobody@shop.test"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found for unknown email, got %v", err)
	}
	if err := f.uc.ForgotPassword(ctx, "HAL@shop.test"); err != nil {
		t.Fatalf("forgot password returned error: %v", err)
	}
	if len(f.mailer.Sent) != 1 {
		t.Fatalf("expected one email, got %d", len(f.mailer.Sent))
	}
	msg := f.mailer.Sent[0]
	prefix := "https://shop.test/api/auth/reset-password/"
	idx := strings.Index(msg.Body, prefix)
	if msg.To != "hal@shop.test" || idx < 0 {
		t.Fatalf("unexpected message %+v", msg)
	}
	token := msg.Body[idx+len(prefix):]

	stored := f.resets.Tokens()
	if len(stored) != 1 || stored[0] == token || stored[0] != pkgAuth.HashResetToken(token) {
		t.Fatalf("expected hashed token to be stored, got %v", stored)
	}

	user, issued, err := f.uc.ResetPassword(ctx, token, "brandnew")
	if err != nil {
		t.Fatalf("reset password returned error: %v", err)
	}
	if issued != fmt.Sprintf("token-%d", user.ID) {
		t.Fatalf("unexpected token %q", issued)
	}
	if _, _, err := f.uc.Authenticate(ctx, "hal@shop.test", "brandnew"); err != nil {
		t.Fatalf("expected login with reset password, got %v", err)
	}

	if _, _, err := f.uc.ResetPassword(ctx, token, "another1"); !errors.Is(err, domainErrors.ErrInvalidResetToken) {
		t.Fatalf("expected token to be single use, got %v", err)
	}
}

func TestAuthUseCaseResetPasswordKeepsTokenWhenStoreFails(t *testing.T) {
	f := newAuthFixture(testhelpers.HasherStub{}, newStrategyStub())
	ctx := context.Background()
	if _, _, err := f.uc.Register(ctx, "Jo", "jo@shop.test", "password"); err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if err := f.uc.ForgotPassword(ctx, "jo@shop.test"); err != nil {
		t.Fatalf("forgot password returned error: %v", err)
	}
	body := f.mailer.Sent[0].Body
	token := body[strings.LastIndex(body, "/")+1:]

	if _, _, err := f.uc.ResetPassword(ctx, token, "123"); !errors.Is(err, domainErrors.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for short password, got %v", err)
	}

	f.users.PasswordErr = errors.New("db down")
	if _, _, err := f.uc.ResetPassword(ctx, token, "brandnew"); err == nil || errors.Is(err, domainErrors.ErrInvalidResetToken) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if len(f.resets.Tokens()) != 1 {
		t.Fatalf("token must survive a failed reset, got %v", f.resets.Tokens())
	}

	f.users.PasswordErr = nil
	if _, _, err := f.uc.ResetPassword(ctx, token, "brandnew"); err != nil {
		t.Fatalf("retry with the same token returned error: %v", err)
	}
	if len(f.resets.Tokens()) != 0 {
		t.Fatalf("token must be spent after a successful reset, got %v", f.resets.Tokens())
	}
	if _, _, err := f.uc.Authenticate(ctx, "jo@shop.test", "brandnew"); err != nil {
		t.Fatalf("expected login with reset password, got %v", err)
	}
}

func TestAuthUseCaseResetPasswordExpired(t *testing.T) {
	f := newAuthFixture(testhelpers.HasherStub{}, newStrategyStub())
	ctx := context.Background()
	if _, _, err := f.uc.Register(ctx, "Ivy", "ivy@shop.test", "password"); err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if err := f.uc.ForgotPassword(ctx, "ivy@shop.test"); err != nil {
		t.Fatalf("forgot password returned error: %v", err)
	}
	body := f.mailer.Sent[0].Body
	token := body[strings.LastIndex(body, "/")+1:]

	f.resets.Now = func() time.Time { return time.Now().Add(11 * time.Minute) }
	if _, _, err := f.uc.ResetPassword(ctx, token, "brandnew"); !errors.Is(err, domainErrors.ErrInvalidResetToken) {
		t.Fatalf("expected expired token error, got %v", err)
	}
	if _, _, err := f.uc.ResetPassword(ctx, "", "brandnew"); !errors.Is(err, domainErrors.ErrInvalidResetToken) {
		t.Fatalf("expected invalid token for empty value, got %v", err)
	}
}

func TestAuthUseCaseForgotPasswordMailerError(t *testing.T) {
	f := newAuthFixture(testhelpers.HasherStub{}, newStrategyStub())
	ctx := context.Background()
	if _, _, err := f.uc.Register(ctx, "Jo", "jo@shop.test", "password"); err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	f.mailer.Err = fmt.Errorf("smtp down")
	if err := f.uc.ForgotPassword(ctx, "jo@shop.test"); err == nil {
		t.Fatal("expected mailer error")
	}
}

func TestAuthUseCaseGetByID(t *testing.T) {
	f := newAuthFixture(testhelpers.HasherStub{}, newStrategyStub())
	user, _, err := f.uc.Register(context.Background(), "Dave", "dave@shop.test", "password")
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	fetched, err := f.uc.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get by id returned error: %v", err)
	}
	if fetched.Email != user.Email {
		t.Fatalf("expected email %q, got %q", user.Email, fetched.Email)
	}
	if _, err := f.uc.GetByID(context.Background(), 999); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
