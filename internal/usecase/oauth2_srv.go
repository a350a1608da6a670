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
	"pizzeria-backend/pkg/oauth"
	"pizzeria-backend/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrOAuthDisabled       = apperror.New(apperror.NotFound, "google sign-in is not enabled")
	ErrOAuthFailed         = apperror.New(apperror.Unauthorized, "google sign-in failed")
	ErrUseStandardSignIn   = apperror.New(apperror.Conflict, "email is registered with username and password; use standard sign-in")
	ErrCompletionRequired  = apperror.New(apperror.Forbidden, "profile completion requires a completion token")
	ErrProfileAlreadyReady = apperror.New(apperror.Conflict, "profile already completed")
)

type OAuth2Service interface {
	AuthURL(state string) (string, error)
	// HandleCallback exchanges the authorization code and signs the
	// external identity in.
	HandleCallback(ctx context.Context, code string) (*response.OAuthLoginResponse, error)
	SignIn(ctx context.Context, identity *oauth.ExternalIdentity) (*response.OAuthLoginResponse, error)
	CompleteProfile(ctx context.Context, principal entity.Principal, req *request.CompleteProfileRequest) (*response.AuthResponse, error)
}

type oauth2Service struct {
	repo     *repository.Repository
	provider OAuthProvider
	hasher   PasswordHasher
	sessions *sessionIssuer
	log      *zap.Logger
}

func NewOAuth2Service(
	repo *repository.Repository,
	provider OAuthProvider,
	hasher PasswordHasher,
	sessions *sessionIssuer,
	log *zap.Logger,
) OAuth2Service {
	return &oauth2Service{
		repo:     repo,
		provider: provider,
		hasher:   hasher,
		sessions: sessions,
		log:      log.With(zap.String("service", "oauth2")),
	}
}

func (s *oauth2Service) AuthURL(state string) (string, error) {
	if s.provider == nil {
		return "", ErrOAuthDisabled
	}
	return s.provider.AuthCodeURL(state), nil
}

func (s *oauth2Service) HandleCallback(ctx context.Context, code string) (*response.OAuthLoginResponse, error) {
	if s.provider == nil {
		return nil, ErrOAuthDisabled
	}
	if code == "" {
		return nil, apperror.FieldError(apperror.InvalidInput, "code", "missing authorization code")
	}

	identity, err := s.provider.Exchange(ctx, code)
	if err != nil {
		s.log.Warn("OAuth exchange failed", zap.Error(err))
		metrics.LoginsTotal.WithLabelValues(string(entity.ProviderGoogle), metrics.Result(ErrOAuthFailed)).Inc()
		return nil, apperror.Wrap(apperror.Unauthorized, err, ErrOAuthFailed.Message)
	}

	return s.SignIn(ctx, identity)
}

// SignIn maps an external identity onto a local account:
//
//	no account            -> create disabled GOOGLE account, completion token
//	GOOGLE, enabled       -> session tokens
//	GOOGLE, not enabled   -> completion token again
//	LOCAL                 -> Conflict, account untouched
func (s *oauth2Service) SignIn(ctx context.Context, identity *oauth.ExternalIdentity) (resp *response.OAuthLoginResponse, err error) {
	defer func() {
		metrics.LoginsTotal.WithLabelValues(string(entity.ProviderGoogle), metrics.Result(err)).Inc()
	}()

	email := strings.TrimSpace(identity.Email)
	if email == "" || !identity.EmailVerified {
		return nil, apperror.New(apperror.Unauthorized, "google account has no verified email")
	}

	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	if user == nil {
		user, err = s.createFederated(ctx, identity, email)
		if err != nil {
			return nil, err
		}
	}

	if user.Provider != entity.ProviderGoogle {
		s.log.Warn("Federated sign-in rejected for local account", zap.String("user_id", user.ID.String()))
		return nil, ErrUseStandardSignIn
	}

	if !user.IsEnabled {
		completion, err := s.sessions.completion(user)
		if err != nil {
			return nil, err
		}
		return &response.OAuthLoginResponse{
			Outcome:    response.OAuthOutcomeProfileCompletion,
			Completion: completion,
		}, nil
	}

	if user.IsLocked {
		return nil, ErrAccountLocked
	}

	session, err := s.sessions.session(user, true)
	if err != nil {
		return nil, err
	}

	s.log.Info("Federated sign-in", zap.String("user_id", user.ID.String()))
	return &response.OAuthLoginResponse{
		Outcome: response.OAuthOutcomeSession,
		Session: session,
	}, nil
}

// createFederated inserts a disabled GOOGLE account and its basket. When a
// concurrent callback already created the account, that row is returned.
func (s *oauth2Service) createFederated(ctx context.Context, identity *oauth.ExternalIdentity, email string) (*entity.User, error) {
	placeholder, err := utils.GenerateRandomString(32)
	if err != nil {
		return nil, err
	}
	hashed, err := s.hasher.Hash(placeholder)
	if err != nil {
		return nil, fmt.Errorf("hash placeholder password: %w", err)
	}

	now := time.Now()
	id := uuid.New()
	user := &entity.User{
		Base: entity.Base{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		},
		// replaced during profile completion
		Username:     "g_" + strings.ReplaceAll(id.String(), "-", ""),
		Email:        email,
		PasswordHash: hashed,
		FirstName:    identity.GivenName,
		LastName:     identity.FamilyName,
		Role:         entity.RoleCustomer,
		IsEnabled:    false,
		Provider:     entity.ProviderGoogle,
	}

	err = s.repo.Tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.User.Create(ctx, user); err != nil {
			return err
		}
		return s.repo.Basket.Create(ctx, newBasket(user.ID, now))
	})
	metrics.RegistrationsTotal.WithLabelValues(string(entity.ProviderGoogle), metrics.Result(err)).Inc()

	if err == nil {
		s.log.Info("Federated account created", zap.String("user_id", user.ID.String()))
		return user, nil
	}
	if !apperror.IsKind(err, apperror.AlreadyExists) {
		return nil, fmt.Errorf("create federated account: %w", err)
	}

	existing, findErr := s.repo.User.FindByEmail(ctx, email)
	if findErr != nil {
		return nil, fmt.Errorf("find user by email: %w", findErr)
	}
	if existing == nil {
		return nil, err
	}
	return existing, nil
}

func (s *oauth2Service) CompleteProfile(ctx context.Context, principal entity.Principal, req *request.CompleteProfileRequest) (*response.AuthResponse, error) {
	federated, ok := principal.(entity.FederatedPrincipal)
	if !ok || !federated.ProfileIncomplete {
		return nil, ErrCompletionRequired
	}

	req.Username = strings.TrimSpace(req.Username)
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}

	user, err := s.repo.User.FindByID(ctx, federated.UserID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrAccountNotFound
	}
	if user.IsEnabled {
		return nil, ErrProfileAlreadyReady
	}
	if user.IsLocked {
		return nil, ErrAccountLocked
	}

	taken, err := s.repo.User.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken != nil && taken.ID != user.ID {
		return nil, repository.ErrUsernameTaken
	}

	user.Username = req.Username
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Address = req.Address
	user.IsEnabled = true
	user.UpdatedAt = time.Now()

	if err := s.repo.User.Update(ctx, user); err != nil {
		if apperror.IsKind(err, apperror.AlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("complete profile: %w", err)
	}

	s.log.Info("Federated profile completed", zap.String("user_id", user.ID.String()))
	return s.sessions.session(user, true)
}
