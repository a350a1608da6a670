package middleware

import (
	"net/http"
	"strings"

	"pizzeria-backend/internal/data/entity"
	"pizzeria-backend/internal/data/repository"
	"pizzeria-backend/pkg/apperror"
	"pizzeria-backend/pkg/token"
	"pizzeria-backend/pkg/utils"

	"go.uber.org/zap"
)

type TokenVerifier interface {
	Verify(tokenStr string, allowed ...token.Purpose) (*token.Claims, error)
}

// Authenticate accepts access tokens only and stores the resolved
// Principal in the request context.
func Authenticate(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireToken(verifier, logger, token.PurposeAccess)
}

// AuthenticateCompletion accepts profile-completion tokens only.
func AuthenticateCompletion(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireToken(verifier, logger, token.PurposeCompletion)
}

func RequireToken(verifier TokenVerifier, logger *zap.Logger, purposes ...token.Purpose) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			claims, err := verifier.Verify(parts[1], purposes...)
			if err != nil {
				logger.Warn("Rejected bearer token",
					zap.String("reason", err.Error()),
					zap.String("path", r.URL.Path))

				if apperror.KindOf(err) == apperror.Forbidden {
					utils.ResponseForbidden(w, err.Error())
					return
				}
				utils.ResponseUnauthorized(w, err.Error())
				return
			}

			ctx := utils.SetPrincipalContext(r.Context(), PrincipalFromClaims(claims))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromClaims picks the Principal variant from the provider claim.
func PrincipalFromClaims(claims *token.Claims) entity.Principal {
	if entity.AuthProvider(claims.Provider) == entity.ProviderGoogle {
		return entity.FederatedPrincipal{
			UserID:            claims.SubjectID(),
			Email:             claims.Email,
			Role:              entity.UserRole(claims.Role),
			Provider:          entity.ProviderGoogle,
			ProfileIncomplete: claims.Purpose == token.PurposeCompletion,
		}
	}

	return entity.LocalPrincipal{
		UserID:   claims.SubjectID(),
		Username: claims.Username,
		Role:     entity.UserRole(claims.Role),
	}
}

// Admin - middleware cek role admin. The role is re-read from the store so
// a demoted or locked administrator loses access before the token expires.
func Admin(userRepo repository.UserRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := utils.GetUserIDFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			user, err := userRepo.FindByID(r.Context(), userID)
			if err != nil {
				logger.Error("Admin check: failed to get user",
					zap.Error(err), zap.String("user_id", userID.String()))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			if user == nil || user.Role != entity.RoleAdministrator || user.IsLocked {
				logger.Warn("Admin check: non-admin access attempt",
					zap.String("user_id", userID.String()),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
