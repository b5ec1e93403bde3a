package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"gigflow/globals"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

// JWT claims
type Claims struct {
	Name   string `json:"name"`
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenFromRequest pulls the JWT from the Authorization header or, for
// browser clients, from the httpOnly "token" cookie set at login.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie("token"); err == nil {
		return c.Value
	}
	return ""
}

func Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		tokenString := TokenFromRequest(r)
		if tokenString == "" {
			http.Error(w, "Not authorized to access this route", http.StatusUnauthorized)
			return
		}

		claims, err := parseClaims(tokenString)
		if err != nil {
			http.Error(w, "Not authorized to access this route", http.StatusUnauthorized)
			return
		}

		// Store identity in context
		ctx := context.WithValue(r.Context(), globals.UserIDKey, claims.UserID)
		next(w, r.WithContext(ctx), ps)
	}
}

// OptionalAuth attaches the caller's identity when a valid token is present
// and proceeds regardless. Public gig listings use it.
func OptionalAuth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if tokenString := TokenFromRequest(r); tokenString != "" {
			if claims, err := parseClaims(tokenString); err == nil {
				ctx := context.WithValue(r.Context(), globals.UserIDKey, claims.UserID)
				r = r.WithContext(ctx)
			}
		}
		next(w, r, ps)
	}
}

func parseClaims(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return globals.JwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// UserIDFromContext returns the authenticated caller's id, or "".
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(globals.UserIDKey).(string)
	return id
}
