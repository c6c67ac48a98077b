package handler

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/pesio-ai/be-plt-login/internal/logger"
	"github.com/pesio-ai/be-plt-login/internal/metrics"
	"github.com/pesio-ai/be-plt-login/internal/service"
)

const (
	authTokenHeader = "auth-token"
	unknownIP       = "Unknown IP"

	logoutSuccessMessage  = "User logout successful."
	sessionExpiredMessage = "Your session is expired"
)

// LoginUseCase is the login and logout flow served over HTTP
type LoginUseCase interface {
	Login(ctx context.Context, req *service.LoginRequest) (*service.LoginResponse, error)
	Logout(ctx context.Context, token, sourceIP string) (service.LogoutResult, error)
}

// HTTPHandler handles HTTP requests
type HTTPHandler struct {
	service LoginUseCase
	log     *logger.Logger
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(service LoginUseCase, log *logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		service: service,
		log:     log,
	}
}

// NewRouter wires the login API, health probes and metrics
func NewRouter(h *HTTPHandler, readiness *Readiness, m *metrics.Metrics) *mux.Router {
	router := mux.NewRouter()
	router.Use(m.Instrument)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/logout", h.Logout).Methods(http.MethodPost)

	router.HandleFunc("/healthz", readiness.Live).Methods(http.MethodGet)
	router.HandleFunc("/readyz", readiness.Ready).Methods(http.MethodGet)
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	return router
}

type loginRequestBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type institutionBody struct {
	ID            string `json:"oid"`
	Name          string `json:"name"`
	LicenseNumber string `json:"licenseNumber"`
}

type branchBody struct {
	ID   string `json:"oid"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type loginResponseBody struct {
	Token                 string           `json:"token"`
	Username              string           `json:"username"`
	PasswordResetRequired string           `json:"passwordResetRequired"`
	FullName              string           `json:"fullName"`
	RoleName              string           `json:"roleName"`
	Email                 string           `json:"email"`
	MobileNumber          string           `json:"mobileNumber"`
	Designation           string           `json:"designation"`
	Institution           *institutionBody `json:"institution,omitempty"`
	Branch                *branchBody      `json:"branch,omitempty"`
}

func newLoginResponseBody(resp *service.LoginResponse) *loginResponseBody {
	body := &loginResponseBody{
		Token:                 resp.Token,
		Username:              resp.Username,
		PasswordResetRequired: resp.PasswordResetRequired,
		FullName:              resp.FullName,
		RoleName:              resp.RoleName,
		Email:                 resp.Email,
		MobileNumber:          resp.MobileNumber,
		Designation:           resp.Designation,
	}
	if resp.Institution != nil {
		body.Institution = &institutionBody{
			ID:            resp.Institution.ID,
			Name:          resp.Institution.Name,
			LicenseNumber: resp.Institution.LicenseNumber,
		}
	}
	if resp.Branch != nil {
		body.Branch = &branchBody{
			ID:   resp.Branch.ID,
			Code: resp.Branch.Code,
			Name: resp.Branch.Name,
		}
	}
	return body
}

// Login handles login HTTP requests
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Invalid Login Request")
		return
	}

	resp, err := h.service.Login(r.Context(), &service.LoginRequest{
		Username: req.Username,
		Password: req.Password,
		SourceIP: sourceIP(r),
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newLoginResponseBody(resp))
}

// Logout handles logout HTTP requests
func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Logout(r.Context(), authToken(r), sourceIP(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	msg := logoutSuccessMessage
	if result == service.SessionAlreadyExpired {
		msg = sessionExpiredMessage
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(msg))
}

func (h *HTTPHandler) writeServiceError(w http.ResponseWriter, err error) {
	kind := service.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("kind", string(kind)).Msg("Request failed")
	}
	writeError(w, status, service.MessageOf(err))
}

func statusFor(kind service.Kind) int {
	switch kind {
	case service.NotFound:
		return http.StatusNotFound
	case service.Forbidden, service.Inactive:
		return http.StatusForbidden
	case service.TokenExpired:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// authToken reads the logout token from the auth-token header, falling back
// to a bearer Authorization header
func authToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(authTokenHeader)); token != "" {
		return token
	}
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// sourceIP returns the client address, preferring proxy headers
func sourceIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}
	return unknownIP
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
