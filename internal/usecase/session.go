package usecase

import (
	"fmt"

	"pizzeria-backend/internal/data/entity"
	"pizzeria-backend/internal/dto/response"
	"pizzeria-backend/pkg/metrics"
	"pizzeria-backend/pkg/token"
	"pizzeria-backend/pkg/utils"
)

// sessionIssuer applies the token lifetime tiers on top of a TokenIssuer.
type sessionIssuer struct {
	tokens TokenIssuer
	ttl    utils.JWTConfig
}

func newSessionIssuer(tokens TokenIssuer, ttl utils.JWTConfig) *sessionIssuer {
	return &sessionIssuer{tokens: tokens, ttl: ttl}
}

func subjectOf(user *entity.User) token.Subject {
	return token.Subject{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
		Provider: string(user.Provider),
	}
}

func (s *sessionIssuer) issue(user *entity.User, purpose token.Purpose) (*response.TokenResponse, error) {
	var ttl = s.ttl.AccessTTL
	switch purpose {
	case token.PurposeRefresh:
		ttl = s.ttl.RefreshTTL
	case token.PurposeRememberMe:
		ttl = s.ttl.RememberMeTTL
	case token.PurposeCompletion:
		ttl = s.ttl.CompletionTTL
	}

	signed, expiresAt, err := s.tokens.Issue(subjectOf(user), purpose, ttl)
	if err != nil {
		return nil, fmt.Errorf("issue %s token for user %s: %w", purpose, user.ID, err)
	}

	metrics.TokensIssuedTotal.WithLabelValues(string(purpose)).Inc()
	return &response.TokenResponse{Token: signed, ExpiresAt: expiresAt}, nil
}

// session issues access and refresh tokens, plus remember-me when asked.
// Callers must have checked that the user may sign in.
func (s *sessionIssuer) session(user *entity.User, rememberMe bool) (*response.AuthResponse, error) {
	access, err := s.issue(user, token.PurposeAccess)
	if err != nil {
		return nil, err
	}

	refresh, err := s.issue(user, token.PurposeRefresh)
	if err != nil {
		return nil, err
	}

	resp := &response.AuthResponse{
		User:         response.UserToResponse(user),
		AccessToken:  *access,
		RefreshToken: refresh,
	}

	if rememberMe {
		if resp.RememberMeToken, err = s.issue(user, token.PurposeRememberMe); err != nil {
			return nil, err
		}
	}

	return resp, nil
}

func (s *sessionIssuer) completion(user *entity.User) (*response.CompletionResponse, error) {
	completion, err := s.issue(user, token.PurposeCompletion)
	if err != nil {
		return nil, err
	}

	return &response.CompletionResponse{
		UserID:          user.ID.String(),
		Email:           user.Email,
		CompletionToken: *completion,
	}, nil
}
