package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsonzilla/template-go-mongodb/internal/apperrors"
	"github.com/jsonzilla/template-go-mongodb/internal/models"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
})

type fakeAuth struct {
	err error
}

func (f fakeAuth) ValidateAuth(_ context.Context, username, password string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if username == "admin" && password == "adminsecret1" {
		return &models.User{ID: "1", Username: username}, nil
	}
	return nil, apperrors.Unauthorized("Incorrect username or password")
}

func TestTokenMiddleware(t *testing.T) {
	h := TokenMiddleware("secret")(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"detail":"Missing Authorization Header"}`, rr.Body.String())

	req.Header.Set(TokenHeader, "secret")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestTokenAppMiddleware(t *testing.T) {
	h := TokenAppMiddleware("secret")(okHandler)

	tests := []struct {
		name    string
		headers map[string]string
		code    int
		detail  string
	}{
		{"bad token", map[string]string{"x-token": "nope", "identifier": "a b c", "client": "x"}, http.StatusUnauthorized, "Missing Authorization Header"},
		{"missing identifier", map[string]string{"x-token": "secret", "client": "x"}, http.StatusUnauthorized, "Missing Identifier"},
		{"missing client", map[string]string{"x-token": "secret", "identifier": "a b c"}, http.StatusUnauthorized, "Missing Client"},
		{"ok", map[string]string{"x-token": "secret", "identifier": "a b c", "client": "x"}, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tt.code, rr.Code)
			if tt.detail != "" {
				assert.JSONEq(t, `{"detail":"`+tt.detail+`"}`, rr.Body.String())
			}
		})
	}
}

func TestBasicAuthMiddleware(t *testing.T) {
	var seen *models.User
	h := BasicAuthMiddleware(fakeAuth{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("no credentials", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Basic", rr.Header().Get("WWW-Authenticate"))
	})

	t.Run("wrong password", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.SetBasicAuth("admin", "wrong")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Basic", rr.Header().Get("WWW-Authenticate"))
		assert.JSONEq(t, `{"detail":"Incorrect username or password"}`, rr.Body.String())
	})

	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.SetBasicAuth("admin", "adminsecret1")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "admin", seen.Username)
	})

	t.Run("store failure", func(t *testing.T) {
		failing := BasicAuthMiddleware(fakeAuth{err: errors.New("db down")})(okHandler)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.SetBasicAuth("admin", "adminsecret1")
		rr := httptest.NewRecorder()
		failing.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestCorsMiddleware(t *testing.T) {
	h := NewCorsMiddleware([]string{"http://allowed.example", " "})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://allowed.example")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "http://allowed.example", rr.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))

	preflight := httptest.NewRequest(http.MethodOptions, "/", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, preflight)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestRequestLogger(t *testing.T) {
	h := RequestLogger(okHandler)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rr.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get(RequestIDHeader))
}

func TestInstrumentUsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Instrument)
	r.Handle("/v1/person/{id}", okHandler)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/person/42", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, "unmatched", routeTemplate(httptest.NewRequest(http.MethodGet, "/v1/person/42", nil)))
}
