package server

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	goToken "github.com/MrEthical07/goToken"
	"github.com/MrEthical07/goToken/internal/rate"
	"github.com/MrEthical07/goToken/middleware"
)

type handlers struct {
	svc          *goToken.Service
	limiter      *rate.Limiter
	issuerAPIKey []byte
	logger       *slog.Logger
	maxBody      int64
}

type issueRequest struct {
	Claims goToken.Claims `json:"claims"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type claimsResponse struct {
	Claims goToken.Claims `json:"claims"`
}

type errorResponse struct {
	Error string `json:"error"`
}

const errInvalidTokenBody = "invalid token"

func (h *handlers) issue(w http.ResponseWriter, r *http.Request) {
	if len(h.issuerAPIKey) == 0 {
		http.NotFound(w, r)
		return
	}
	if subtle.ConstantTimeCompare([]byte(r.Header.Get("X-API-Key")), h.issuerAPIKey) != 1 {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !h.allow(w, r, rate.OpIssue) {
		return
	}

	var req issueRequest
	if !h.decode(w, r, &req) {
		return
	}

	token, err := h.svc.Issue(req.Claims)
	if err != nil {
		switch {
		case errors.Is(err, goToken.ErrConfig), errors.Is(err, goToken.ErrEncoding):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.logger.ErrorContext(r.Context(), "issue failed", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Token: token})
}

func (h *handlers) verify(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if !h.decode(w, r, &req) {
		return
	}
	claims, err := h.svc.Verify(req.Token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, errInvalidTokenBody)
		return
	}
	writeJSON(w, http.StatusOK, claimsResponse{Claims: claims})
}

func (h *handlers) refresh(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, rate.OpRefresh) {
		return
	}
	var req tokenRequest
	if !h.decode(w, r, &req) {
		return
	}
	token, err := h.svc.Refresh(req.Token)
	if err != nil {
		if errors.Is(err, goToken.ErrInvalidToken) {
			writeError(w, http.StatusUnauthorized, errInvalidTokenBody)
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (h *handlers) claims(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	writeJSON(w, http.StatusOK, claimsResponse{Claims: claims})
}

// allow writes 429 or 503 and returns false when the limiter refuses the request.
// Redis failures fail closed.
func (h *handlers) allow(w http.ResponseWriter, r *http.Request, op rate.Op) bool {
	if h.limiter == nil {
		return true
	}
	err := h.limiter.Allow(r.Context(), op, clientIP(r))
	switch {
	case err == nil:
		return true
	case errors.Is(err, rate.ErrRateLimited):
		wait := h.limiter.RetryAfter(r.Context(), op, clientIP(r))
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		writeError(w, http.StatusTooManyRequests, "rate limited")
	default:
		h.logger.WarnContext(r.Context(), "rate limiter unavailable", slog.String("op", string(op)), slog.Any("error", err))
		writeError(w, http.StatusServiceUnavailable, "rate limiter unavailable")
	}
	return false
}

// decode reads a JSON body with numbers kept as json.Number, so integer claims keep
// their exact value.
func (h *handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBody))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	if dec.More() {
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

// clientIP is the rate limit key. RemoteAddr is the transport peer unless the router
// was built with TrustProxyHeaders.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
