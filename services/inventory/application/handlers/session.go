package handlers

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/ghuser/stockledger/pkg/auth"
	"github.com/ghuser/stockledger/pkg/errhttp"
	"github.com/ghuser/stockledger/pkg/httpx"
	"github.com/ghuser/stockledger/pkg/logger"
	pkgvalidator "github.com/ghuser/stockledger/pkg/validator"
)

// LoginRequest is the request body for POST /session.
type LoginRequest struct {
	Secret string `json:"secret" validate:"required"`
}

// SessionResponse reports the role bound to the caller's session.
type SessionResponse struct {
	Role string `json:"role"`
}

// PostSessionHandler handles POST /session.
type PostSessionHandler struct {
	authn *auth.Authenticator
	store sessions.Store
	log   logger.Logger
}

// NewPostSessionHandler returns a PostSessionHandler.
func NewPostSessionHandler(authn *auth.Authenticator, store sessions.Store, log logger.Logger) *PostSessionHandler {
	return &PostSessionHandler{authn: authn, store: store, log: log}
}

// Execute matches the secret against both roles and starts a session.
func (h *PostSessionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[LoginRequest](w, r)
	if !ok {
		return
	}

	role, err := h.authn.Authenticate(req.Secret)
	if err != nil {
		h.log.WarnContext(r.Context(), "login rejected")
		errhttp.WriteError(w, r, err)
		return
	}
	if err := auth.Login(w, r, h.store, role); err != nil {
		errhttp.WriteError(w, r, err)
		return
	}

	h.log.InfoContext(r.Context(), "login", "role", role)
	httpx.JSON(w, http.StatusOK, SessionResponse{Role: string(role)})
}

// GetSessionHandler handles GET /session.
type GetSessionHandler struct{}

// Execute returns the role injected by auth.RequireRole.
func (GetSessionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	role, err := auth.RoleFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, SessionResponse{Role: string(role)})
}

// DeleteSessionHandler handles DELETE /session.
type DeleteSessionHandler struct {
	store sessions.Store
}

// NewDeleteSessionHandler returns a DeleteSessionHandler.
func NewDeleteSessionHandler(store sessions.Store) *DeleteSessionHandler {
	return &DeleteSessionHandler{store: store}
}

// Execute expires the session cookie.
func (h *DeleteSessionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	if err := auth.Logout(w, r, h.store); err != nil {
		errhttp.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
