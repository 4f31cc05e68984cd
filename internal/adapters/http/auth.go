package httpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/huson-app/huson/internal/core/domain"
)

const (
	sessionCookieName = "huson_session"
	signInPath        = "/auth"
	heartbeatInterval = 25 * time.Second
)

type sessionContextKey struct{}

func sessionFromContext(ctx context.Context) *domain.Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*domain.Session)
	return sess
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (rt *Router) signUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	authSession, err := rt.services.Auth.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	rt.setSessionCookie(w, authSession)
	writeJSON(w, http.StatusCreated, authSession)
}

func (rt *Router) signIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	authSession, err := rt.services.Auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	rt.setSessionCookie(w, authSession)
	writeJSON(w, http.StatusOK, authSession)
}

func (rt *Router) signOut(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if err := rt.services.Auth.SignOut(r.Context(), sess.ID); err != nil {
		writeError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   rt.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "signed_out", "redirect": signInPath})
}

// currentSession answers with a null session rather than 401 so that pages
// can decide for themselves whether to redirect.
func (rt *Router) currentSession(w http.ResponseWriter, r *http.Request) {
	token := accessToken(r)
	if token == "" {
		writeJSON(w, http.StatusOK, map[string]any{"session": nil})
		return
	}

	sess, err := rt.services.Auth.CurrentSession(r.Context(), token)
	if err != nil {
		if domain.IsKind(err, domain.ErrUnauthorized) {
			writeJSON(w, http.StatusOK, map[string]any{"session": nil})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": sess})
}

// requireSession rejects the request before any handler runs when there is
// no valid session, so protected pages never fetch data for anonymous users.
func (rt *Router) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := accessToken(r)
		if token == "" {
			rejectAnonymous(w, r)
			return
		}

		sess, err := rt.services.Auth.CurrentSession(r.Context(), token)
		if err != nil {
			if domain.IsKind(err, domain.ErrUnauthorized) {
				rejectAnonymous(w, r)
				return
			}
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func rejectAnonymous(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		http.Redirect(w, r, signInPath, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized", "redirect": signInPath})
}

func accessToken(r *http.Request) string {
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}

func (rt *Router) setSessionCookie(w http.ResponseWriter, authSession *domain.AuthSession) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    authSession.AccessToken,
		Path:     "/",
		Expires:  authSession.ExpiresAt,
		HttpOnly: true,
		Secure:   rt.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionEvents streams the caller's sign-in/sign-out events as SSE until the
// client goes away or the streaming session itself is signed out.
func (rt *Router) sessionEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming is not supported"})
		return
	}

	sess := sessionFromContext(r.Context())
	events, unsubscribe := rt.services.Sessions.Subscribe(sess.UserID)
	defer unsubscribe()

	if rt.metrics != nil {
		rt.metrics.SessionStreamOpened()
		defer rt.metrics.SessionStreamClosed()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeSSEEvent(w, "session", event); err != nil {
				slog.Warn("session_stream_write_failed",
					"request_id", requestIDFromContext(r.Context()),
					"user_id", sess.UserID,
					"error", err.Error(),
				)
				return
			}
			flusher.Flush()
			if event.Type == domain.SessionSignedOut && event.SessionID == sess.ID {
				return
			}
		}
	}
}

func writeSSEEvent(w http.ResponseWriter, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sse payload: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
