package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vtarasov/blog-service/internal/models"
	"github.com/vtarasov/blog-service/internal/token"
)

// AuthHeader is the request header carrying the bearer token
const AuthHeader = "x-auth-token"

type ctxKey int

const userKey ctxKey = 0

// UserFinder loads users for token resolution
type UserFinder interface {
	FindUserByID(id int64) (*models.User, error)
}

// NewContext returns a context carrying the authenticated user
func NewContext(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated user attached by AuthMiddleware
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}

// AuthMiddleware verifies the x-auth-token header, resolves the acting user
// and attaches it to the request context. Requests with no token, an invalid
// token, or a user that no longer exists get 401.
func AuthMiddleware(tokens *token.Manager, users UserFinder, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := r.Header.Get(AuthHeader)
			if tokenString == "" {
				unauthorized(w, "no token, authorization denied")
				return
			}

			userID, err := tokens.Verify(tokenString)
			if err != nil {
				unauthorized(w, "token is not valid")
				return
			}

			user, err := users.FindUserByID(userID)
			if err != nil {
				log.Debugf("token resolved to unknown user %d: %v", userID, err)
				unauthorized(w, "token is not valid")
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), user)))
		})
	}
}

// OptionalAuthMiddleware attaches the acting user when a valid token is
// present and lets the request through anonymously otherwise. Used on public
// routes whose responses vary for authenticated callers.
func OptionalAuthMiddleware(tokens *token.Manager, users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := r.Header.Get(AuthHeader)
			if tokenString != "" {
				if userID, err := tokens.Verify(tokenString); err == nil {
					if user, err := users.FindUserByID(userID); err == nil {
						r = r.WithContext(NewContext(r.Context(), user))
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminMiddleware wraps AuthMiddleware and additionally requires the
// admin flag. Authenticated non-admins get 403.
func AdminMiddleware(tokens *token.Manager, users UserFinder, log *logrus.Logger) func(http.Handler) http.Handler {
	auth := AuthMiddleware(tokens, users, log)
	return func(next http.Handler) http.Handler {
		return auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || !user.IsAdmin {
				writeJSONError(w, http.StatusForbidden, "access denied: admins only")
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	writeJSONError(w, http.StatusUnauthorized, message)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
