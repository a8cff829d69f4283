package httpapi

import (
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/AelaNieve/appsalon/internal/account"
)

// clientAddr reduces RemoteAddr to the bare address. On a direct
// connection RemoteAddr carries an ephemeral port, which would give
// every TCP connection its own throttle bucket; RealIP-resolved values
// have no port and pass through unchanged.
func clientAddr(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

type authHandler struct {
	engine   *account.Engine
	validate *validator.Validate
	log      zerolog.Logger
}

type registerPayload struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type emailPayload struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPayload struct {
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Admin bool   `json:"admin"`
}

// writeAccountError maps engine sentinel errors to HTTP responses.
// Unmapped errors are logged server-side and surface as a generic 500.
func (h *authHandler) writeAccountError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, account.ErrValidation), errors.Is(err, account.ErrPasswordPolicy):
		writeMsg(w, h.log, http.StatusBadRequest, err.Error())
	case errors.Is(err, account.ErrLoginFailed):
		writeMsg(w, h.log, http.StatusUnauthorized, msgLoginFailed)
	case errors.Is(err, account.ErrTokenNotFound), errors.Is(err, account.ErrTokenExpired):
		writeMsg(w, h.log, http.StatusUnauthorized, msgInvalidToken)
	case errors.Is(err, account.ErrRateLimited):
		writeMsg(w, h.log, http.StatusTooManyRequests, msgRateLimited)
	case errors.Is(err, account.ErrUnknownEmail):
		writeMsg(w, h.log, http.StatusNotFound, "email is not registered")
	default:
		h.log.Error().Err(err).Msg("account operation failed")
		writeMsg(w, h.log, http.StatusInternalServerError, msgInternal)
	}
}

func (h *authHandler) register(w http.ResponseWriter, r *http.Request) {
	var payload registerPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeMsg(w, h.log, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeMsg(w, h.log, http.StatusBadRequest, "name, email and password are required")
		return
	}

	_, err := h.engine.Register(r.Context(), account.RegisterRequest{
		Name:       payload.Name,
		Email:      payload.Email,
		Password:   payload.Password,
		ClientAddr: clientAddr(r),
	})
	if err != nil {
		h.writeAccountError(w, err)
		return
	}

	writeMsg(w, h.log, http.StatusCreated, "account created, check your email to confirm it")
}

func (h *authHandler) verify(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if err := h.engine.VerifyAccount(r.Context(), token); err != nil {
		h.writeAccountError(w, err)
		return
	}
	writeMsg(w, h.log, http.StatusOK, "account confirmed, you can now log in")
}

func (h *authHandler) login(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeMsg(w, h.log, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeMsg(w, h.log, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := h.engine.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		h.writeAccountError(w, err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, loginResponse{
		Name:  result.Name,
		Email: result.Email,
		Admin: result.Admin,
	})
}

func (h *authHandler) requestDeletion(w http.ResponseWriter, r *http.Request) {
	var payload emailPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeMsg(w, h.log, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeMsg(w, h.log, http.StatusBadRequest, "a valid email is required")
		return
	}

	result, err := h.engine.RequestAccountDeletion(r.Context(), payload.Email)
	if err != nil {
		h.writeAccountError(w, err)
		return
	}

	switch {
	case result.DeletedImmediately:
		writeMsg(w, h.log, http.StatusOK, "account deleted")
	case result.AlreadyPending:
		writeMsg(w, h.log, http.StatusOK, "a confirmation email is already on its way, check your inbox")
	default:
		writeMsg(w, h.log, http.StatusOK, "check your email to confirm the deletion")
	}
}

func (h *authHandler) confirmDeletion(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if err := h.engine.ConfirmAccountDeletion(r.Context(), token); err != nil {
		h.writeAccountError(w, err)
		return
	}
	writeMsg(w, h.log, http.StatusOK, "account deleted")
}

func (h *authHandler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload emailPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeMsg(w, h.log, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeMsg(w, h.log, http.StatusBadRequest, "a valid email is required")
		return
	}

	if err := h.engine.ForgotPassword(r.Context(), payload.Email); err != nil {
		h.writeAccountError(w, err)
		return
	}
	writeMsg(w, h.log, http.StatusOK, "if that email is registered, a recovery link is on its way")
}

func (h *authHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var payload resetPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeMsg(w, h.log, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeMsg(w, h.log, http.StatusBadRequest, "a new password is required")
		return
	}

	if err := h.engine.ResetPassword(r.Context(), token, payload.Password); err != nil {
		h.writeAccountError(w, err)
		return
	}
	writeMsg(w, h.log, http.StatusOK, "password updated, you can now log in")
}
