package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/telemetry/tracing"
	"github.com/vjpowerhouse/Basketball-Tracking-system/pkg"

	log "github.com/sirupsen/logrus"
)

const TokenHeader = "X-HOOP-TOKEN"

type LoginResponse struct {
	Token string `json:"token"`
}

type Handler struct {
	authService *Service
}

func NewHandler(authService *Service) *Handler {
	return &Handler{
		authService: authService,
	}
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.login")
	defer span.End()

	var credentials Credentials
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		http.Error(w, "invalid login request", http.StatusBadRequest)
		return
	}
	if credentials.Username == "" || credentials.Password == "" {
		http.Error(w, "username or password empty", http.StatusBadRequest)
		return
	}

	token, err := h.authService.Login(ctx, credentials)
	if errors.Is(err, ErrWrongCredentials) {
		log.Warnf("failed login attempt for [%s]", credentials.Username)
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	if err != nil {
		log.Errorf("login [%s]: %s", credentials.Username, err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(LoginResponse{Token: token})
	if err != nil {
		log.Errorf("failed to marshal login response: %s", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	log.Debugf("user [%s] logged in", credentials.Username)
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.logout")
	defer span.End()

	token := r.Header.Get(TokenHeader)
	if token == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	existed, err := h.authService.Logout(ctx, token)
	if err != nil {
		log.Errorf("logout: %s", err)
		http.Error(w, "logout failed", http.StatusInternalServerError)
		return
	}
	if !existed {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	pkg.WriteTextResponseOK(w, "logged out")
}
