package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"amazetimes/internal/handler/http/middleware"
	"amazetimes/internal/handler/http/respond"
	"amazetimes/internal/observability/logging"
	authservice "amazetimes/internal/service/auth"
)

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse describes the current session.
type SessionResponse struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	Token string `json:"token"`
	SessionResponse
}

// Handlers serves /auth/token, /auth/session and /auth/logout.
type Handlers struct {
	Service      *authservice.Service
	Issuer       *Issuer
	Guard        *Guard
	Revoked      *Revocations
	Limiter      *LoginLimiter
	IPs          middleware.IPExtractor
	SecureCookie bool
	Logger       *slog.Logger
}

// Register mounts the session routes on mux.
func Register(mux *http.ServeMux, h *Handlers) {
	mux.HandleFunc("POST /auth/token", h.Token)
	mux.HandleFunc("GET /auth/session", h.Session)
	mux.HandleFunc("POST /auth/logout", h.Logout)
}

func (h *Handlers) logger(r *http.Request) *slog.Logger {
	base := h.Logger
	if base == nil {
		base = slog.Default()
	}
	return logging.ForRequest(r.Context(), base)
}

// Token authenticates a username/password pair and issues a session token,
// both in the body and as an HttpOnly cookie.
func (h *Handlers) Token(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := h.logger(r)

	if h.Limiter != nil && h.IPs != nil {
		ip, err := h.IPs.ExtractIP(r)
		if err != nil {
			ip = "unknown"
		}
		if !h.Limiter.Allow(ip) {
			RecordLogin("rate_limited", time.Since(start).Seconds())
			logger.Warn("login rate limited", slog.String("ip", ip))
			w.Header().Set("Retry-After", strconv.Itoa(int(h.Limiter.RetryAfter().Seconds()+0.5)))
			respond.Error(w, http.StatusTooManyRequests, "too many login attempts")
			return
		}
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RecordLogin("failure", time.Since(start).Seconds())
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" {
		req.Username = req.Email
	}

	acc, err := h.Service.Authenticate(r.Context(), authservice.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		RecordLogin("failure", time.Since(start).Seconds())
		logger.Warn("login failed", slog.Any("error", err))
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	signed, claims, err := h.Issuer.Issue(acc)
	if err != nil {
		RecordLogin("failure", time.Since(start).Seconds())
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(h.Issuer.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	RecordLogin("success", time.Since(start).Seconds())
	logger.Info("login succeeded",
		slog.String("user", acc.Username),
		slog.String("role", acc.Role))
	respond.JSON(w, http.StatusOK, TokenResponse{
		Token: signed,
		SessionResponse: SessionResponse{
			Username:  acc.Username,
			Role:      acc.Role,
			ExpiresAt: claims.ExpiresAt.Time,
		},
	})
}

// Session reports the current session, or 401.
func (h *Handlers) Session(w http.ResponseWriter, r *http.Request) {
	claims, err := h.Guard.Authenticate(r)
	if err != nil {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	respond.JSON(w, http.StatusOK, SessionResponse{
		Username:  claims.Subject,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	})
}

// Logout revokes the current token, if any, and clears the cookie.
// It always answers 204.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if claims, err := h.Guard.Authenticate(r); err == nil && h.Revoked != nil {
		h.Revoked.Revoke(claims.ID)
		h.logger(r).Info("logout", slog.String("user", claims.Subject))
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
