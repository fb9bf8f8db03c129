package middlewares

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jsonzilla/template-go-mongodb/internal/apperrors"
	"github.com/jsonzilla/template-go-mongodb/internal/models"
	"github.com/jsonzilla/template-go-mongodb/internal/services"
	"github.com/jsonzilla/template-go-mongodb/internal/utils"
)

const TokenHeader = "x-token"

type contextKey string

const userContextKey contextKey = "user"

// UserFromContext returns the user authenticated by BasicAuthMiddleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}

func tokenMatches(r *http.Request, token string) bool {
	got := r.Header.Get(TokenHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(token)) == 1
}

// TokenMiddleware rejects requests whose x-token header is not the API token.
func TokenMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !tokenMatches(r, token) {
				utils.SendJSONError(w, "Missing Authorization Header", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TokenAppMiddleware also requires the identifier and client headers.
func TokenAppMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !tokenMatches(r, token) {
				utils.SendJSONError(w, "Missing Authorization Header", http.StatusUnauthorized)
				return
			}
			if len(r.Header.Values(services.IdentifierHeader)) == 0 {
				utils.SendJSONError(w, "Missing Identifier", http.StatusUnauthorized)
				return
			}
			if len(r.Header.Values(services.ClientHeader)) == 0 {
				utils.SendJSONError(w, "Missing Client", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BasicAuthMiddleware authenticates HTTP Basic credentials against stored users.
func BasicAuthMiddleware(auth services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				unauthorized(w, "Not authenticated")
				return
			}

			user, err := auth.ValidateAuth(r.Context(), username, password)
			if err != nil {
				if errors.Is(err, apperrors.ErrUnauthorized) {
					unauthorized(w, apperrors.Message(err))
					return
				}
				utils.WriteError(w, err)
				return
			}

			zerolog.Ctx(r.Context()).Debug().Str("username", user.Username).Msg("Basic auth succeeded")
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Basic")
	utils.SendJSONError(w, message, http.StatusUnauthorized)
}
