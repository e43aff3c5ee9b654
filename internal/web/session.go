package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vbonduro/briefdesk/internal/api"
	"github.com/vbonduro/briefdesk/internal/domain"
)

const (
	sessionCookie = "sid"
	tokenCookie   = "token"
	sessionMaxAge = 30 * 24 * time.Hour
)

type ctxKey int

const (
	sessionKey ctxKey = iota
	userKey
)

// tokenClaims is the payload of the backend session token.
type tokenClaims struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	UserType string `json:"userType"`
	jwt.RegisteredClaims
}

// parseToken decodes the session token into a user. With a secret the HMAC
// signature is verified; without one only expiry is checked.
func parseToken(raw, secret string) (*domain.User, error) {
	var claims tokenClaims
	if secret != "" {
		_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
			return nil, err
		}
		if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
			return nil, jwt.ErrTokenExpired
		}
	}

	id := claims.ID
	if id == "" {
		id = claims.Subject
	}
	if id == "" {
		return nil, fmt.Errorf("token has no user id")
	}
	return &domain.User{
		ID:    id,
		Name:  claims.FullName,
		Email: claims.Email,
		Role:  claims.UserType,
		Token: raw,
	}, nil
}

// session makes sure every browser has a session id and attaches the
// signed-in user, if any, to the request context. The user's token is
// forwarded on backend calls made for the request.
func (s *Server) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := ""
		if c, err := r.Cookie(sessionCookie); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				sid = c.Value
			}
		}
		if sid == "" {
			sid = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    sid,
				Path:     "/",
				MaxAge:   int(sessionMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   s.opts.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), sessionKey, sid)

		if c, err := r.Cookie(tokenCookie); err == nil && c.Value != "" {
			user, err := parseToken(c.Value, s.opts.JWTSecret)
			if err != nil {
				s.logger.Debug("ignoring invalid session token", "error", err)
			} else {
				ctx = context.WithValue(ctx, userKey, user)
				ctx = api.WithToken(ctx, user.Token)
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(r *http.Request) string {
	sid, _ := r.Context().Value(sessionKey).(string)
	return sid
}

func currentUser(r *http.Request) *domain.User {
	u, _ := r.Context().Value(userKey).(*domain.User)
	return u
}

// requireUser sends anonymous visitors to the home page.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r) == nil {
			redirect(w, r, "/")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAgent only lets agents through; everyone else lands on the home page.
func (s *Server) requireAgent(next http.Handler) http.Handler {
	return s.requireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !currentUser(r).IsAgent() {
			redirect(w, r, "/")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// expireToken clears the session token after the backend rejected it.
func (s *Server) expireToken(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
