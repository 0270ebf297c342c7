package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/chisomo-phiri/studyhub/internal/config"
	"github.com/chisomo-phiri/studyhub/internal/utils"
)

type contextKey string

const UserIDKey contextKey = "userID"

var jwtSecret = config.Envs.JWTSecret

// UserID returns the authenticated user's id from the request context, or ""
// for anonymous requests.
func UserID(r *http.Request) string {
	id, _ := r.Context().Value(UserIDKey).(string)
	return id
}

// identityFromRequest accepts either an Authorization bearer header or the
// cookie set at login; both carry the same JWT.
func identityFromRequest(r *http.Request) (string, bool) {
	tokenStr := ""
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		tokenStr = strings.TrimPrefix(auth, "Bearer ")
	} else if c, err := r.Cookie("token"); err == nil {
		tokenStr = c.Value
	}
	if tokenStr == "" {
		return "", false
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}

	userID, ok := claims["userId"].(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// AuthMiddleware rejects requests without a valid identity.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		userID, ok := identityFromRequest(r)
		if !ok {
			utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
				Success: false,
				Message: "Unauthorized",
			})
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth attaches the identity when a valid token is present but never
// rejects. Handlers that require identity in auth-enforcing deployments check
// for themselves.
func OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, ok := identityFromRequest(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), UserIDKey, userID))
		}
		next.ServeHTTP(w, r)
	})
}
