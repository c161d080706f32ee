package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"digital-goods-store/internal/client"
	"digital-goods-store/internal/model"
	"digital-goods-store/internal/repository"
	"digital-goods-store/internal/token"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	otpKind       = "otp"
	resetKind     = "reset"
	otpTTL        = 10 * time.Minute
	resetTokenTTL = 15 * time.Minute
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, error)
	VerifyOTP(ctx context.Context, email, code string) error
	ResendOTP(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (string, *model.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}

type authServiceImpl struct {
	userRepo repository.UserRepository
	otpStore client.OTPStore
	mailer   client.Mailer
	tokens   *token.Manager
}

func NewAuthService(
	userRepo repository.UserRepository,
	otpStore client.OTPStore,
	mailer client.Mailer,
	tokens *token.Manager,
) AuthService {
	return &authServiceImpl{
		userRepo: userRepo,
		otpStore: otpStore,
		mailer:   mailer,
		tokens:   tokens,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		Role:         model.RoleCustomer,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.sendOTP(ctx, email); err != nil {
		// The account exists either way; verification can be re-requested.
		log.Println("send verification otp:", err)
	}
	return user, nil
}

func (s *authServiceImpl) sendOTP(ctx context.Context, email string) error {
	code, err := randomDigits(6)
	if err != nil {
		return err
	}
	if err := s.otpStore.Put(ctx, otpKind, email, code, otpTTL); err != nil {
		return err
	}
	return s.mailer.Send(email, "Verify your account",
		fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(otpTTL.Minutes())))
}

func (s *authServiceImpl) VerifyOTP(ctx context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	stored, ok, err := s.otpStore.Get(ctx, otpKind, email)
	if err != nil {
		return err
	}
	if !ok || subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return ErrInvalidOTP
	}

	if err := s.userRepo.Updates(ctx, user.ID, map[string]interface{}{"is_verified": true}); err != nil {
		return err
	}
	return s.otpStore.Delete(ctx, otpKind, email)
}

func (s *authServiceImpl) ResendOTP(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return fmt.Errorf("%w: account already verified", ErrValidation)
	}
	return s.sendOTP(ctx, email)
}

func (s *authServiceImpl) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		// Same answer for unknown email and wrong password.
		return "", nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsVerified {
		return "", nil, ErrNotVerified
	}

	signed, err := s.tokens.Mint(user.ID, string(user.Role))
	if err != nil {
		return "", nil, err
	}
	return signed, user, nil
}

func (s *authServiceImpl) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.userRepo.FindByEmail(ctx, email); err != nil {
		// Do not leak which emails exist.
		return nil
	}

	resetToken := uuid.NewString()
	if err := s.otpStore.Put(ctx, resetKind, resetToken, email, resetTokenTTL); err != nil {
		return err
	}
	return s.mailer.Send(email, "Password reset",
		fmt.Sprintf("Your password reset code is %s. It expires in %d minutes.", resetToken, int(resetTokenTTL.Minutes())))
}

func (s *authServiceImpl) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	email, ok, err := s.otpStore.Get(ctx, resetKind, resetToken)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidOTP
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.Updates(ctx, user.ID, map[string]interface{}{"password_hash": string(hash)}); err != nil {
		return err
	}
	return s.otpStore.Delete(ctx, resetKind, resetToken)
}

func (s *authServiceImpl) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.userRepo.Updates(ctx, userID, map[string]interface{}{"password_hash": string(hash)})
}

func randomDigits(n int) (string, error) {
	var b strings.Builder
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generate otp: %w", err)
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}
