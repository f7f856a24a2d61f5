package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/get30seconds/auth-api/internal/apperror"
	"github.com/get30seconds/auth-api/internal/dto"
	"github.com/get30seconds/auth-api/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForgotPassword_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	err := env.svc.ForgotPassword(context.Background(), &dto.ForgotPasswordRequest{Email: "ghost@x.com"})
	require.ErrorIs(t, err, apperror.ErrNotFound)
	assert.EqualError(t, err, "User does not exist.")
	assert.Empty(t, env.mailer.sent)
}

func TestForgotPassword_IssuesCodeAndSendsMail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.svc.Register(ctx, registerRequest("a@x.com", "secret1"))
	require.NoError(t, err)

	before := time.Now()
	require.NoError(t, env.svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "a@x.com"}))

	user, err := env.users.GetByID(ctx, result.User.ID)
	require.NoError(t, err)
	require.NotNil(t, user.PasswordResetCode)
	require.NotNil(t, user.CodeExpiresAt)

	code, err := strconv.Atoi(*user.PasswordResetCode)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, code, 100000)
	assert.LessOrEqual(t, code, 999999)

	// Expiry is now+24h
	assert.WithinDuration(t, before.Add(24*time.Hour), *user.CodeExpiresAt, 5*time.Second)

	require.Len(t, env.mailer.sent, 1)
	assert.Equal(t, "a@x.com", env.mailer.sent[0].to)
	assert.Equal(t, *user.PasswordResetCode, env.mailer.sent[0].code)
}

func TestForgotPassword_MailFailureKeepsCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.svc.Register(ctx, registerRequest("a@x.com", "secret1"))
	require.NoError(t, err)

	env.mailer.err = errSMTPDown
	err = env.svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "a@x.com"})
	require.ErrorIs(t, err, apperror.ErrDelivery)
	assert.EqualError(t, err, "Email sending error.")

	// No rollback: the code stays persisted even though the mail failed
	user, err := env.users.GetByID(ctx, result.User.ID)
	require.NoError(t, err)
	assert.NotNil(t, user.PasswordResetCode)
	assert.NotNil(t, user.CodeExpiresAt)
}

func TestCheckResetCode_Valid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.svc.Register(ctx, registerRequest("a@x.com", "secret1"))
	require.NoError(t, err)
	require.NoError(t, env.users.SetResetCode(ctx, result.User.ID, "123456", time.Now().Add(time.Hour)))

	err = env.svc.CheckResetCode(ctx, &dto.CheckResetCodeRequest{Email: "a@x.com", Code: "123456"})
	require.NoError(t, err)

	// A valid check leaves the code intact
	user, err := env.users.GetByID(ctx, result.User.ID)
	require.NoError(t, err)
	assert.NotNil(t, user.PasswordResetCode)
}

func TestCheckResetCode_WrongCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.svc.Register(ctx, registerRequest("a@x.com", "secret1"))
	require.NoError(t, err)
	require.NoError(t, env.users.SetResetCode(ctx, result.User.ID, "123456", time.Now().Add(time.Hour)))

	err = env.svc.CheckResetCode(ctx, &dto.CheckResetCodeRequest{Email: "a@x.com", Code: "654321"})
	require.ErrorIs(t, err, apperror.ErrNotFound)
	assert.EqualError(t, err, "User does not exist.")
}

func TestCheckResetCode_ExpiredClearsCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.svc.Register(ctx, registerRequest("a@x.com", "secret1"))
	require.NoError(t, err)
	require.NoError(t, env.users.SetResetCode(ctx, result.User.ID, "123456", time.Now().Add(-time.Minute)))

	err = env.svc.CheckResetCode(ctx, &dto.CheckResetCodeRequest{Email: "a@x.com", Code: "123456"})
	require.ErrorIs(t, err, apperror.ErrAuth)
	assert.EqualError(t, err, "Code is expired.")

	user, err := env.users.GetByID(ctx, result.User.ID)
	require.NoError(t, err)
	assert.Nil(t, user.PasswordResetCode)
	assert.Nil(t, user.CodeExpiresAt)

	// The code was cleared, so the same check now reports not-found
	err = env.svc.CheckResetCode(ctx, &dto.CheckResetCodeRequest{Email: "a@x.com", Code: "123456"})
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestResetPassword_ConsumesCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.svc.Register(ctx, registerRequest("a@x.com", "secret1"))
	require.NoError(t, err)
	require.NoError(t, env.users.SetResetCode(ctx, result.User.ID, "123456", time.Now().Add(time.Hour)))

	resetResult, err := env.svc.ResetPassword(ctx, &dto.ResetPasswordRequest{
		Email:                "a@x.com",
		Password:             "newpass1",
		PasswordConfirmation: "newpass1",
		Code:                 "123456",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resetResult.Token)

	user, err := env.users.GetByID(ctx, result.User.ID)
	require.NoError(t, err)
	assert.Nil(t, user.PasswordResetCode)
	assert.Nil(t, user.CodeExpiresAt)
	require.NotNil(t, user.PasswordHash)
	assert.True(t, utils.CheckPasswordHash("newpass1", *user.PasswordHash))

	// The consumed code cannot be replayed
	_, err = env.svc.ResetPassword(ctx, &dto.ResetPasswordRequest{
		Email:                "a@x.com",
		Password:             "another1",
		PasswordConfirmation: "another1",
		Code:                 "123456",
	})
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestResetPassword_AcceptsExpiredButUncheckedCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.svc.Register(ctx, registerRequest("a@x.com", "secret1"))
	require.NoError(t, err)
	require.NoError(t, env.users.SetResetCode(ctx, result.User.ID, "123456", time.Now().Add(-time.Minute)))

	// The lookup matches the stored code only; an expired code that was
	// never run through the check endpoint still resets the password
	_, err = env.svc.ResetPassword(ctx, &dto.ResetPasswordRequest{
		Email:                "a@x.com",
		Password:             "newpass1",
		PasswordConfirmation: "newpass1",
		Code:                 "123456",
	})
	require.NoError(t, err)

	user, err := env.users.GetByID(ctx, result.User.ID)
	require.NoError(t, err)
	require.NotNil(t, user.PasswordHash)
	assert.True(t, utils.CheckPasswordHash("newpass1", *user.PasswordHash))
}

func TestResetPassword_UnknownCode(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.ResetPassword(context.Background(), &dto.ResetPasswordRequest{
		Email:                "ghost@x.com",
		Password:             "newpass1",
		PasswordConfirmation: "newpass1",
		Code:                 "123456",
	})
	require.ErrorIs(t, err, apperror.ErrNotFound)
	assert.EqualError(t, err, "User does not exist.")
}

func TestGenerateResetCode_Range(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := generateResetCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}
