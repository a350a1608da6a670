package adaptor

import (
	"net/http"

	"pizzeria-backend/internal/dto/request"
	"pizzeria-backend/internal/dto/response"
	"pizzeria-backend/internal/usecase"
	"pizzeria-backend/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.AuthService
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log.With(zap.String("handler", "auth")),
	}
}

// Register handles POST /api/register. Validation happens in the service,
// after the uniqueness checks.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	response, err := h.service.Register(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "register")
		return
	}

	utils.ResponseCreated(w, "Registration successful. Check your email to verify the account.", response)
}

// VerifyEmail handles POST /api/verify-email
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.verify(w, r, &req)
}

// VerifyEmailLink handles GET /api/verify-email?email=&token=, the link sent
// by email.
func (h *AuthHandler) VerifyEmailLink(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	h.verify(w, r, &request.VerifyEmailRequest{
		Email: query.Get("email"),
		Token: query.Get("token"),
	})
}

func (h *AuthHandler) verify(w http.ResponseWriter, r *http.Request, req *request.VerifyEmailRequest) {
	response, err := h.service.VerifyEmail(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "verify email")
		return
	}

	utils.ResponseSuccess(w, "success", response)
}

// ResetPasswordLink handles GET /api/password/reset, the target of the reset
// email when no frontend page is configured. It echoes the link parameters so
// a client can submit them with the new password.
func (h *AuthHandler) ResetPasswordLink(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	link := response.PasswordResetLinkResponse{
		Email: query.Get("email"),
		Token: query.Get("token"),
	}

	errs := map[string]string{}
	if link.Email == "" {
		errs["email"] = "email is required"
	}
	if link.Token == "" {
		errs["token"] = "token is required"
	}
	if len(errs) > 0 {
		utils.ResponseBadRequest(w, "Invalid reset link", errs)
		return
	}

	utils.ResponseSuccess(w, "Submit new_password to POST /api/password/reset", link)
}

// ResendVerification handles POST /api/resend-verification
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req request.EmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ResendVerification(r.Context(), &req); err != nil {
		handleServiceError(w, h.log, err, "resend verification")
		return
	}

	utils.ResponseSuccess(w, "Verification email sent", nil)
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	response, err := h.service.Login(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "login")
		return
	}

	utils.ResponseSuccess(w, "Login successful", response)
}

// Refresh handles POST /api/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req request.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	response, err := h.service.Refresh(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "refresh token")
		return
	}

	utils.ResponseSuccess(w, "success", response)
}

// ForgotPassword handles POST /api/password/forgot
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req request.EmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), &req); err != nil {
		handleServiceError(w, h.log, err, "request password reset")
		return
	}

	utils.ResponseSuccess(w, "Password reset email sent", nil)
}

// ResetPassword handles POST /api/password/reset
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ResetPassword(r.Context(), &req); err != nil {
		handleServiceError(w, h.log, err, "reset password")
		return
	}

	utils.ResponseSuccess(w, "Password has been reset", nil)
}

// ChangePassword handles PUT /api/user/password (protected)
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := utils.GetPrincipalFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ChangePassword(r.Context(), principal, &req); err != nil {
		handleServiceError(w, h.log, err, "change password")
		return
	}

	utils.ResponseSuccess(w, "Password changed", nil)
}
