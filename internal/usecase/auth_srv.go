package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pizzeria-backend/internal/data/entity"
	"pizzeria-backend/internal/data/repository"
	"pizzeria-backend/internal/dto/request"
	"pizzeria-backend/internal/dto/response"
	"pizzeria-backend/pkg/apperror"
	"pizzeria-backend/pkg/metrics"
	"pizzeria-backend/pkg/token"
	"pizzeria-backend/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials       = apperror.New(apperror.Unauthorized, "invalid username or password")
	ErrAccountLocked            = apperror.New(apperror.Forbidden, "account is locked")
	ErrAccountNotVerified       = apperror.New(apperror.Forbidden, "account email not verified")
	ErrAccountNotFound          = apperror.New(apperror.NotFound, "account not found")
	ErrAlreadyVerified          = apperror.New(apperror.Conflict, "account already verified")
	ErrInvalidVerificationToken = apperror.FieldError(apperror.InvalidInput, "token", "invalid verification token")
	ErrInvalidResetToken        = apperror.FieldError(apperror.InvalidInput, "token", "invalid or already used reset token")
	ErrWrongPassword            = apperror.FieldError(apperror.Unauthorized, "old_password", "current password is incorrect")
	ErrUseGoogleSignIn          = apperror.New(apperror.Conflict, "account is registered with Google; use Google sign-in")
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.PendingAccountResponse, error)
	VerifyEmail(ctx context.Context, req *request.VerifyEmailRequest) (*response.VerifyEmailResponse, error)
	ResendVerification(ctx context.Context, req *request.EmailRequest) error
	Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	Refresh(ctx context.Context, req *request.RefreshRequest) (*response.AuthResponse, error)
	RequestPasswordReset(ctx context.Context, req *request.EmailRequest) error
	ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) error
	ChangePassword(ctx context.Context, principal entity.Principal, req *request.ChangePasswordRequest) error
}

type authService struct {
	repo     *repository.Repository
	hasher   PasswordHasher
	sessions *sessionIssuer
	mail     *mailDispatcher
	log      *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	hasher PasswordHasher,
	sessions *sessionIssuer,
	mail *mailDispatcher,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:     repo,
		hasher:   hasher,
		sessions: sessions,
		mail:     mail,
		log:      log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (resp *response.PendingAccountResponse, err error) {
	defer func() {
		metrics.RegistrationsTotal.WithLabelValues(string(entity.ProviderLocal), metrics.Result(err)).Inc()
	}()

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	// 1. Username and email must be free
	existing, err := s.repo.User.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if existing != nil {
		return nil, repository.ErrUsernameTaken
	}

	existing, err = s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, repository.ErrEmailRegistered
	}

	// 2. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Register validation failed", zap.Any("errors", errs))
		return nil, apperror.Validation(errs)
	}

	// 3. Hash password
	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// 4. Verification token
	verificationToken, err := utils.GenerateAccountToken(req.Username)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Username:          req.Username,
		Email:             req.Email,
		PasswordHash:      hashed,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Address:           req.Address,
		Role:              entity.RoleCustomer,
		IsEnabled:         false,
		Provider:          entity.ProviderLocal,
		VerificationToken: &verificationToken,
	}

	// 5+6. User and basket are created together. A unique violation here
	// means a concurrent registration won the race.
	err = s.repo.Tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.User.Create(ctx, user); err != nil {
			return err
		}
		return s.repo.Basket.Create(ctx, newBasket(user.ID, now))
	})
	if err != nil {
		if apperror.IsKind(err, apperror.AlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	// 7. Fire-and-forget
	s.mail.verification(user.Email, verificationToken)

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	return &response.PendingAccountResponse{User: response.UserToResponse(user)}, nil
}

func (s *authService) VerifyEmail(ctx context.Context, req *request.VerifyEmailRequest) (*response.VerifyEmailResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}

	user, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if user == nil {
		return nil, ErrAccountNotFound
	}
	if user.IsEnabled {
		return &response.VerifyEmailResponse{Status: response.VerifyStatusAlreadyVerified}, nil
	}

	consumed, err := s.repo.User.ConsumeVerificationToken(ctx, req.Email, req.Token)
	if err != nil {
		return nil, fmt.Errorf("consume verification token: %w", err)
	}
	if !consumed {
		// a concurrent call may have consumed it first
		user, err = s.repo.User.FindByID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("reload user: %w", err)
		}
		if user != nil && user.IsEnabled {
			return &response.VerifyEmailResponse{Status: response.VerifyStatusAlreadyVerified}, nil
		}
		return nil, ErrInvalidVerificationToken
	}

	s.log.Info("Email verified", zap.String("user_id", user.ID.String()))
	return &response.VerifyEmailResponse{Status: response.VerifyStatusVerified}, nil
}

func (s *authService) ResendVerification(ctx context.Context, req *request.EmailRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return apperror.Validation(errs)
	}

	user, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("find user by email: %w", err)
	}
	if user == nil {
		return ErrAccountNotFound
	}
	if user.Provider != entity.ProviderLocal {
		return ErrUseGoogleSignIn
	}
	if user.IsEnabled {
		return ErrAlreadyVerified
	}

	verificationToken, err := utils.GenerateAccountToken(user.Username)
	if err != nil {
		return err
	}
	if err := s.repo.User.SetVerificationToken(ctx, user.ID, verificationToken); err != nil {
		return fmt.Errorf("rotate verification token: %w", err)
	}

	s.mail.verification(user.Email, verificationToken)
	return nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (resp *response.AuthResponse, err error) {
	defer func() {
		metrics.LoginsTotal.WithLabelValues(string(entity.ProviderLocal), metrics.Result(err)).Inc()
	}()

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}

	user, err := s.findByLogin(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if user.Provider != entity.ProviderLocal {
		return nil, ErrUseGoogleSignIn
	}
	if !s.hasher.Matches(req.Password, user.PasswordHash) {
		s.log.Warn("Login failed", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}
	if err := signInAllowed(user); err != nil {
		return nil, err
	}

	resp, err = s.sessions.session(user, req.RememberMe)
	if err != nil {
		return nil, err
	}

	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.Bool("remember_me", req.RememberMe))

	return resp, nil
}

// findByLogin looks the user up by username first, then by email.
func (s *authService) findByLogin(ctx context.Context, login string) (*entity.User, error) {
	user, err := s.repo.User.FindByUsername(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	if user != nil || !strings.Contains(login, "@") {
		return user, nil
	}

	user, err = s.repo.User.FindByEmail(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

func signInAllowed(user *entity.User) error {
	if user.IsLocked {
		return ErrAccountLocked
	}
	if !user.IsEnabled {
		return ErrAccountNotVerified
	}
	return nil
}

// Refresh exchanges a refresh or remember-me token for a new access token.
// The account state is re-read so a locked user cannot keep refreshing.
func (s *authService) Refresh(ctx context.Context, req *request.RefreshRequest) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}

	claims, err := s.sessions.tokens.Verify(req.RefreshToken, token.PurposeRefresh, token.PurposeRememberMe)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.User.FindByID(ctx, claims.SubjectID())
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, token.ErrTokenInvalid
	}
	if err := signInAllowed(user); err != nil {
		return nil, err
	}

	access, err := s.sessions.issue(user, token.PurposeAccess)
	if err != nil {
		return nil, err
	}

	return &response.AuthResponse{
		User:        response.UserToResponse(user),
		AccessToken: *access,
	}, nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, req *request.EmailRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return apperror.Validation(errs)
	}

	user, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("find user by email: %w", err)
	}
	if user == nil {
		return ErrAccountNotFound
	}
	if user.Provider != entity.ProviderLocal {
		return ErrUseGoogleSignIn
	}

	resetToken, err := utils.GenerateAccountToken(user.Username)
	if err != nil {
		return err
	}
	if err := s.repo.User.SetResetToken(ctx, user.ID, resetToken); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	s.mail.passwordReset(user.Email, resetToken)

	s.log.Info("Password reset requested", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return apperror.Validation(errs)
	}

	user, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("find user by email: %w", err)
	}
	if user == nil {
		return ErrAccountNotFound
	}

	hashed, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	consumed, err := s.repo.User.ConsumeResetToken(ctx, req.Email, req.Token, hashed)
	if err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}
	if !consumed {
		return ErrInvalidResetToken
	}

	s.log.Info("Password reset", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, principal entity.Principal, req *request.ChangePasswordRequest) error {
	if _, ok := principal.(entity.LocalPrincipal); !ok {
		return ErrUseGoogleSignIn
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return apperror.Validation(errs)
	}

	user, err := s.repo.User.FindByID(ctx, principal.Subject())
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return ErrAccountNotFound
	}
	if !s.hasher.Matches(req.OldPassword, user.PasswordHash) {
		return ErrWrongPassword
	}

	hashed, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.User.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.log.Info("Password changed", zap.String("user_id", user.ID.String()))
	return nil
}

func newBasket(userID uuid.UUID, now time.Time) *entity.Basket {
	return &entity.Basket{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID: userID,
	}
}
