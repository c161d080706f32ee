package service

import (
	"context"
	"strings"
	"testing"

	"digital-goods-store/internal/model"
	"digital-goods-store/internal/repository"
	"digital-goods-store/internal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (AuthService, *memOTPStore, *fakeMailer, repository.UserRepository) {
	t.Helper()
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	otp := newMemOTPStore()
	mailer := &fakeMailer{}
	tokens := token.NewManager("test-signing-secret", 1)
	return NewAuthService(userRepo, otp, mailer, tokens), otp, mailer, userRepo
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	auth, otp, mailer, _ := newAuthFixture(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "Alice", "Alice@Example.COM", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email, "email normalized")
	assert.Equal(t, model.RoleCustomer, user.Role)
	assert.False(t, user.IsVerified)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	// The verification mail carries the same code the store holds.
	require.Len(t, mailer.sent, 1)
	code, ok, err := otp.Get(ctx, "otp", "alice@example.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, code, 6)
	assert.Contains(t, mailer.sent[0].Body, code)

	// Unverified accounts cannot log in yet.
	_, _, err = auth.Login(ctx, "alice@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrNotVerified)

	// Wrong codes are rejected, including prefixes and padded variants of
	// the real one.
	for _, wrong := range []string{"000000", code[:5], code + "0", ""} {
		if wrong == code {
			continue
		}
		err := auth.VerifyOTP(ctx, "alice@example.com", wrong)
		assert.ErrorIs(t, err, ErrInvalidOTP)
	}

	require.NoError(t, auth.VerifyOTP(ctx, "alice@example.com", code))

	signed, logged, err := auth.Login(ctx, "alice@example.com", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, signed)
	assert.Equal(t, user.ID, logged.ID)

	// The consumed code does not verify twice.
	err = auth.VerifyOTP(ctx, "alice@example.com", code)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestRegisterValidation(t *testing.T) {
	auth, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "x", "not-an-email", "longenough")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = auth.Register(ctx, "x", "a@b.test", "short")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = auth.Register(ctx, "x", "a@b.test", "longenough")
	require.NoError(t, err)
	_, err = auth.Register(ctx, "y", "A@B.test", "longenough")
	assert.ErrorIs(t, err, repository.ErrEmailTaken, "case-folded duplicate email")
}

func TestLoginRejectsBadCredentialsUniformly(t *testing.T) {
	auth, otp, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "Bob", "bob@test", "password-1")
	require.NoError(t, err)
	code, _, err := otp.Get(ctx, "otp", "bob@test")
	require.NoError(t, err)
	require.NoError(t, auth.VerifyOTP(ctx, "bob@test", code))

	_, _, err = auth.Login(ctx, "bob@test", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = auth.Login(ctx, "nobody@test", "password-1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResendOTPOnlyForUnverified(t *testing.T) {
	auth, otp, mailer, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "Bob", "bob@test", "password-1")
	require.NoError(t, err)

	require.NoError(t, auth.ResendOTP(ctx, "bob@test"))
	assert.Len(t, mailer.sent, 2)

	code, _, err := otp.Get(ctx, "otp", "bob@test")
	require.NoError(t, err)
	require.NoError(t, auth.VerifyOTP(ctx, "bob@test", code))

	err = auth.ResendOTP(ctx, "bob@test")
	assert.ErrorIs(t, err, ErrValidation)

	err = auth.ResendOTP(ctx, "ghost@test")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestForgotAndResetPassword(t *testing.T) {
	auth, otp, mailer, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "Bob", "bob@test", "password-1")
	require.NoError(t, err)
	code, _, err := otp.Get(ctx, "otp", "bob@test")
	require.NoError(t, err)
	require.NoError(t, auth.VerifyOTP(ctx, "bob@test", code))

	// Unknown addresses get the same silent answer.
	require.NoError(t, auth.ForgotPassword(ctx, "ghost@test"))
	assert.Len(t, mailer.sent, 1, "no mail for unknown address")

	require.NoError(t, auth.ForgotPassword(ctx, "bob@test"))
	require.Len(t, mailer.sent, 2)

	// Pull the reset token out of the mail body.
	body := mailer.sent[1].Body
	fields := strings.Fields(body)
	var resetToken string
	for i, f := range fields {
		if f == "is" && i+1 < len(fields) {
			resetToken = strings.TrimSuffix(fields[i+1], ".")
		}
	}
	require.NotEmpty(t, resetToken)

	err = auth.ResetPassword(ctx, resetToken, "tiny")
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, auth.ResetPassword(ctx, resetToken, "password-2"))

	_, _, err = auth.Login(ctx, "bob@test", "password-1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = auth.Login(ctx, "bob@test", "password-2")
	assert.NoError(t, err)

	// A reset token is single-use.
	err = auth.ResetPassword(ctx, resetToken, "password-3")
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestChangePassword(t *testing.T) {
	auth, otp, _, _ := newAuthFixture(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "Bob", "bob@test", "password-1")
	require.NoError(t, err)
	code, _, err := otp.Get(ctx, "otp", "bob@test")
	require.NoError(t, err)
	require.NoError(t, auth.VerifyOTP(ctx, "bob@test", code))

	err = auth.ChangePassword(ctx, user.ID, "wrong", "password-2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = auth.ChangePassword(ctx, user.ID, "password-1", "tiny")
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, auth.ChangePassword(ctx, user.ID, "password-1", "password-2"))
	_, _, err = auth.Login(ctx, "bob@test", "password-2")
	assert.NoError(t, err)
}
