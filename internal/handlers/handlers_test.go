package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsonzilla/template-go-mongodb/internal/models"
	"github.com/jsonzilla/template-go-mongodb/internal/repositories/repotest"
	"github.com/jsonzilla/template-go-mongodb/internal/services"
)

type stubHealth map[string]string

func (s stubHealth) Health() map[string]string { return s }

func TestHealthHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	NewCommonHandler(stubHealth{"message": "It's healthy"}).HealthHandler(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	NewCommonHandler(stubHealth{"message": "db down", "error": "timeout"}).HealthHandler(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.JSONEq(t, `{"message":"db down","error":"timeout"}`, rr.Body.String())
}

func TestParsePersonFilter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/person/?name=Ann&age=3&hobby=chess&friend_name=Bo&created_at=2024-01-02T03:04:05Z&sort=age&page=2&per_page=5", nil)
	filter, opts, err := parsePersonFilter(req)
	require.NoError(t, err)

	assert.Equal(t, models.PersonFilter{
		Name:       "Ann",
		Age:        3,
		Hobby:      "chess",
		FriendName: "Bo",
		CreatedAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}, filter)
	assert.Equal(t, services.ListOptions{Sort: "age", Page: 2, PerPage: 5}, opts)

	for _, query := range []string{"age=x", "page=one", "per_page=-", "created_at=yesterday", "last_update=1"} {
		_, _, err := parsePersonFilter(httptest.NewRequest(http.MethodGet, "/v1/person/?"+query, nil))
		assert.Error(t, err, query)
	}
}

func TestGetPersonMissingID(t *testing.T) {
	h := NewPersonHandler(services.NewPersonService(repotest.NewMemory[models.Person]()))
	rr := httptest.NewRecorder()
	h.GetPerson(rr, httptest.NewRequest(http.MethodGet, "/v1/person/", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreatePersonHandler(t *testing.T) {
	h := NewPersonHandler(services.NewPersonService(repotest.NewMemory[models.Person]()))
	r := mux.NewRouter()
	r.HandleFunc("/v1/person/", h.CreatePerson).Methods("POST")
	r.HandleFunc("/v1/person/{id}", h.DeletePerson).Methods("DELETE")

	body := `{"name":"Ann","age":3,"occupation":"Kid","hobbies":[],"friends":[]}`
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/person/", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"name":"Ann"`)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/person/", strings.NewReader(`{"name":`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/v1/person/missing", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDataHandlerRequiresBody(t *testing.T) {
	h := NewDataHandler(services.NewIdentityService(repotest.NewMemory[models.ApplicationData](), repotest.NewMemory[models.ApplicationData]()))
	req := httptest.NewRequest(http.MethodPost, "/v1/data/", strings.NewReader(`{}`))
	req.Header.Set(services.IdentifierHeader, "app 1.0 main")
	req.Header.Set(services.ClientHeader, "desktop")

	rr := httptest.NewRecorder()
	h.CreateClientData(rr, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}
