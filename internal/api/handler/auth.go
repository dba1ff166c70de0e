package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/brentkao/roomcoord/internal/api/apierr"
	"github.com/brentkao/roomcoord/internal/api/middleware"
	"github.com/brentkao/roomcoord/internal/api/request"
	"github.com/brentkao/roomcoord/internal/api/response"
	"github.com/brentkao/roomcoord/internal/model"
	"github.com/brentkao/roomcoord/internal/services/auth"
)

const maxDisplayNameLength = 32

// AuthHandler handles credential endpoints
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Guest handles POST /api/v1/auth/guest
func (h *AuthHandler) Guest(w http.ResponseWriter, r *http.Request) {
	var req request.GuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("display_name is required"))
		return
	}
	if len(name) > maxDisplayNameLength {
		apierr.WriteError(w, apierr.NewInvalidRequestError("display_name is too long"))
		return
	}

	cred, err := h.authService.CreateGuestPlayer(r.Context(), name)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponseFromCredential(cred))
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	cred, err := h.authService.RegisterPlayer(r.Context(), req.Username, req.Password)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponseFromCredential(cred))
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	cred, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromCredential(cred))
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())
	resp := response.MeResponse{
		UserID: string(identity.PlayerID),
		Role:   string(identity.Role),
	}

	// Service identities have no stored player
	player, err := h.authService.GetPlayer(r.Context(), identity.PlayerID)
	switch {
	case err == nil:
		p := response.PlayerFromModel(player)
		resp.Player = &p
	case !errors.Is(err, model.ErrPlayerNotFound):
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, resp)
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (request.CredentialsRequest, bool) {
	var req request.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return req, false
	}
	if req.Username == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("username is required"))
		return req, false
	}
	if req.Password == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("password is required"))
		return req, false
	}
	return req, true
}
