package adaptor

import (
	"net/http"
	"net/url"

	"pizzeria-backend/internal/dto/request"
	"pizzeria-backend/internal/dto/response"
	"pizzeria-backend/internal/usecase"
	"pizzeria-backend/pkg/utils"

	"go.uber.org/zap"
)

const oauthStateCookie = "oauth_state"

type OAuth2Handler struct {
	service usecase.OAuth2Service
	config  utils.OAuthConfig
	log     *zap.Logger
}

func NewOAuth2Handler(service usecase.OAuth2Service, config utils.OAuthConfig, log *zap.Logger) *OAuth2Handler {
	return &OAuth2Handler{
		service: service,
		config:  config,
		log:     log.With(zap.String("handler", "oauth2")),
	}
}

// Start handles GET /api/oauth2/google
func (h *OAuth2Handler) Start(w http.ResponseWriter, r *http.Request) {
	state, err := utils.GenerateRandomString(24)
	if err != nil {
		handleServiceError(w, h.log, err, "start google sign-in")
		return
	}

	authURL, err := h.service.AuthURL(state)
	if err != nil {
		handleServiceError(w, h.log, err, "start google sign-in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/oauth2",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback handles GET /api/oauth2/google/callback. With redirect targets
// configured the tokens go to the frontend in the URL fragment, otherwise
// they are returned as JSON.
func (h *OAuth2Handler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != query.Get("state") {
		utils.ResponseBadRequest(w, "Invalid OAuth state", nil)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Path:     "/api/oauth2",
		MaxAge:   -1,
		HttpOnly: true,
	})

	if providerErr := query.Get("error"); providerErr != "" {
		utils.ResponseUnauthorized(w, "Google sign-in was cancelled: "+providerErr)
		return
	}

	result, err := h.service.HandleCallback(r.Context(), query.Get("code"))
	if err != nil {
		handleServiceError(w, h.log, err, "google sign-in")
		return
	}

	if target := h.redirectTarget(result); target != "" {
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	utils.ResponseSuccess(w, "success", result)
}

func (h *OAuth2Handler) redirectTarget(result *response.OAuthLoginResponse) string {
	fragment := url.Values{}

	switch result.Outcome {
	case response.OAuthOutcomeProfileCompletion:
		if h.config.CompletionURL == "" {
			return ""
		}
		fragment.Set("completion_token", result.Completion.CompletionToken.Token)
		return h.config.CompletionURL + "#" + fragment.Encode()

	case response.OAuthOutcomeSession:
		if h.config.SuccessURL == "" {
			return ""
		}
		fragment.Set("access_token", result.Session.AccessToken.Token)
		if result.Session.RefreshToken != nil {
			fragment.Set("refresh_token", result.Session.RefreshToken.Token)
		}
		if result.Session.RememberMeToken != nil {
			fragment.Set("remember_me_token", result.Session.RememberMeToken.Token)
		}
		return h.config.SuccessURL + "#" + fragment.Encode()
	}

	return ""
}

// CompleteProfile handles POST /api/oauth2/complete-profile (completion token)
func (h *OAuth2Handler) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := utils.GetPrincipalFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CompleteProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.service.CompleteProfile(r.Context(), principal, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "complete profile")
		return
	}

	utils.ResponseSuccess(w, "Profile completed", session)
}
