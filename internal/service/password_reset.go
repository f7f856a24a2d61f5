package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/get30seconds/auth-api/internal/apperror"
	"github.com/get30seconds/auth-api/internal/dto"
	"github.com/get30seconds/auth-api/internal/repository"
	"github.com/get30seconds/auth-api/internal/utils"
)

// ForgotPassword issues a reset code, persists it with its expiry, and
// emails it to the user. The code stays persisted even when the email
// send fails; only the response differs.
func (s *authService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	if err := utils.ValidateRequest(req); err != nil {
		return err
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("User does not exist.")
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	code, err := generateResetCode()
	if err != nil {
		return fmt.Errorf("failed to generate reset code: %w", err)
	}

	expiresAt := time.Now().Add(s.resetCodeTTL)
	if err := s.userRepo.SetResetCode(ctx, user.ID, code, expiresAt); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}

	if err := s.mailer.SendPasswordResetCode(ctx, user.Email, code); err != nil {
		return apperror.Delivery("Email sending error.")
	}

	return nil
}

// CheckResetCode verifies that the (email, code) pair matches a user and
// that the code has not expired. An expired code is cleared as a side
// effect, so a second check with the same code reports not-found.
func (s *authService) CheckResetCode(ctx context.Context, req *dto.CheckResetCodeRequest) error {
	if err := utils.ValidateRequest(req); err != nil {
		return err
	}

	user, err := s.userRepo.GetByEmailAndResetCode(ctx, req.Email, req.Code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("User does not exist.")
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsResetCodeExpired(time.Now()) {
		if err := s.userRepo.ClearResetCode(ctx, user.ID); err != nil {
			return fmt.Errorf("failed to clear expired reset code: %w", err)
		}
		return apperror.Auth("Code is expired.")
	}

	return nil
}

// ResetPassword consumes the stored code and sets a new password. The
// lookup matches the stored code only: a code past its expiry that was
// never run through CheckResetCode is still accepted here.
func (s *authService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) (*AuthResult, error) {
	if err := utils.ValidateRequest(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmailAndResetCode(ctx, req.Email, req.Code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("User does not exist.")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	passwordHash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Sets the hash and clears the code and expiry in one statement
	if err := s.userRepo.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	user.PasswordHash = &passwordHash
	user.PasswordResetCode = nil
	user.CodeExpiresAt = nil

	return s.issueToken(ctx, user)
}

// generateResetCode returns a uniformly random 6-digit code in
// [100000, 999999].
func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
