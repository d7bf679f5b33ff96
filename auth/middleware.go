package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/microblog-go/config"
)

// ResolveIdentity returns middleware that resolves the request's bearer token
// into an Identity and stores it in the request context.
//
// Resolution never rejects a request: a missing, malformed or expired token,
// or a token whose user no longer exists, all resolve to anonymous. Whether
// anonymous access is acceptable is the authorization policy's decision, made
// per action in the handlers, not in the resolver.
func ResolveIdentity(cfg *config.AuthConfig, users UserFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := resolve(r, cfg, users)
			if identity != nil {
				r = r.WithContext(NewContextWithIdentity(r.Context(), identity))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolve(r *http.Request, cfg *config.AuthConfig, users UserFinder) *Identity {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil
	}
	// Refresh tokens are only good for the refresh endpoint, never as a session.
	if claims.TokenType != tokenTypeAccess || claims.UserID == 0 {
		return nil
	}

	// Load the user record so the identity carries the current admin flag
	// rather than a stale claim. A deleted user resolves to anonymous.
	user, err := users.FindByID(r.Context(), claims.UserID)
	if err != nil {
		return nil
	}
	return IdentityOf(user)
}
