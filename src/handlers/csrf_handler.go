package handlers

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/username/tradejournal/src/logger"
	"github.com/username/tradejournal/src/utils"
)

const csrfCookieName = "_tradejournal_csrf"

// GetCSRFToken issues a double-submit token, once as an HttpOnly cookie and once in the body.
// The token is a random nonce signed with csrfKey.
func GetCSRFToken(csrfKey []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := newCSRFToken(csrfKey)
		if err != nil {
			logger.FromContext(r.Context()).Error("Error generating CSRF token", "error", err)
			utils.SendJSONError(w, "failed to generate CSRF token", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     csrfCookieName,
			Value:    token,
			Path:     "/",
			SameSite: http.SameSiteLaxMode,
			HttpOnly: true,
			Secure:   r.TLS != nil,
			MaxAge:   3600,
		})

		w.Header().Set("X-CSRF-Token", token)
		utils.WriteJSON(w, http.StatusOK, map[string]string{"csrfToken": token})
	}
}

func newCSRFToken(csrfKey []byte) (string, error) {
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(nonce)
	return encoded + "." + signCSRF(csrfKey, encoded), nil
}

func signCSRF(csrfKey []byte, nonce string) string {
	mac := hmac.New(sha256.New, csrfKey)
	mac.Write([]byte(nonce))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func validCSRFToken(csrfKey []byte, token string) bool {
	nonce, sig, ok := strings.Cut(token, ".")
	if !ok || nonce == "" {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(signCSRF(csrfKey, nonce)))
}

// CSRFMiddleware rejects state-changing requests unless the X-CSRF-Token header equals
// the CSRF cookie and carries a valid signature.
func CSRFMiddleware(csrfKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			headerToken := r.Header.Get("X-CSRF-Token")
			cookie, errCookie := r.Cookie(csrfCookieName)
			if headerToken != "" && errCookie == nil && headerToken == cookie.Value && validCSRFToken(csrfKey, headerToken) {
				next.ServeHTTP(w, r)
				return
			}

			var cookieErrorForLog any
			if errCookie != nil {
				cookieErrorForLog = errCookie.Error()
			}
			logger.FromContext(r.Context()).Warn("CSRF Validation Failed",
				slog.String("method", r.Method),
				slog.String("url", r.URL.String()),
				slog.Bool("headerTokenExists", headerToken != ""),
				slog.Any("cookieError", cookieErrorForLog),
				slog.String("origin", r.Header.Get("Origin")),
			)
			utils.SendJSONError(w, "CSRF token validation failed", http.StatusForbidden)
		})
	}
}
