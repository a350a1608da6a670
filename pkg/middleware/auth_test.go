package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pizzeria-backend/internal/data/entity"
	"pizzeria-backend/pkg/token"
	"pizzeria-backend/pkg/utils"
)

func newIssuer(t *testing.T) *token.Issuer {
	t.Helper()
	issuer, err := token.NewIssuer("middleware-secret", "pizzeria-test")
	require.NoError(t, err)
	return issuer
}

func issue(t *testing.T, issuer *token.Issuer, provider entity.AuthProvider, purpose token.Purpose) (string, uuid.UUID) {
	t.Helper()
	id := uuid.New()
	tok, _, err := issuer.Issue(token.Subject{
		UserID:   id,
		Username: "tony",
		Email:    "tony@example.com",
		Role:     string(entity.RoleCustomer),
		Provider: string(provider),
	}, purpose, time.Minute)
	require.NoError(t, err)
	return tok, id
}

func serve(mw func(http.Handler) http.Handler, authHeader string) (*httptest.ResponseRecorder, entity.Principal) {
	var seen entity.Principal
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = utils.GetPrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/basket", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, seen
}

func TestAuthenticateResolvesLocalPrincipal(t *testing.T) {
	issuer := newIssuer(t)
	tok, id := issue(t, issuer, entity.ProviderLocal, token.PurposeAccess)

	rec, principal := serve(Authenticate(issuer, zap.NewNop()), "Bearer "+tok)

	require.Equal(t, http.StatusNoContent, rec.Code)
	local, ok := principal.(entity.LocalPrincipal)
	require.True(t, ok)
	assert.Equal(t, id, local.UserID)
	assert.Equal(t, "tony", local.Username)
}

func TestAuthenticateResolvesFederatedPrincipal(t *testing.T) {
	issuer := newIssuer(t)
	tok, id := issue(t, issuer, entity.ProviderGoogle, token.PurposeAccess)

	rec, principal := serve(Authenticate(issuer, zap.NewNop()), "Bearer "+tok)

	require.Equal(t, http.StatusNoContent, rec.Code)
	federated, ok := principal.(entity.FederatedPrincipal)
	require.True(t, ok)
	assert.Equal(t, id, federated.UserID)
	assert.False(t, federated.ProfileIncomplete)
}

func TestAuthenticateRejectsCompletionToken(t *testing.T) {
	issuer := newIssuer(t)
	tok, _ := issue(t, issuer, entity.ProviderGoogle, token.PurposeCompletion)

	rec, principal := serve(Authenticate(issuer, zap.NewNop()), "Bearer "+tok)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Nil(t, principal)
}

func TestAuthenticateCompletionRejectsSessionToken(t *testing.T) {
	issuer := newIssuer(t)
	tok, _ := issue(t, issuer, entity.ProviderGoogle, token.PurposeAccess)

	rec, _ := serve(AuthenticateCompletion(issuer, zap.NewNop()), "Bearer "+tok)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	completion, _ := issue(t, issuer, entity.ProviderGoogle, token.PurposeCompletion)
	rec, principal := serve(AuthenticateCompletion(issuer, zap.NewNop()), "Bearer "+completion)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, principal.(entity.FederatedPrincipal).ProfileIncomplete)
}

func TestAuthenticateRejectsMalformedHeader(t *testing.T) {
	issuer := newIssuer(t)
	tok, _ := issue(t, issuer, entity.ProviderLocal, token.PurposeAccess)

	for _, header := range []string{"", tok, "Basic " + tok, "Bearer ", "Bearer garbage"} {
		rec, _ := serve(Authenticate(issuer, zap.NewNop()), header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestRecoverReturnsInternalError(t *testing.T) {
	handler := Recover(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("oven on fire")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
