package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsonzilla/template-go-mongodb/internal/handlers"
	"github.com/jsonzilla/template-go-mongodb/internal/middlewares"
	"github.com/jsonzilla/template-go-mongodb/internal/utils"
)

// gzipMinSize leaves small JSON bodies uncompressed.
const gzipMinSize = 1000

func (s *Server) RegisterRoutes() (http.Handler, error) {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.SendJSONError(w, "Not Found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.SendJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})

	r.Use(middlewares.RequestLogger)
	r.Use(middlewares.Instrument)
	r.Use(middlewares.NewCorsMiddleware(s.cfg.AllowedOrigins))

	ch := handlers.NewCommonHandler(s.db)
	r.HandleFunc("/", ch.RootHandler).Methods("GET")
	r.HandleFunc("/health", ch.HealthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()
	s.registerPersonRoutes(v1.PathPrefix("/person").Subrouter())
	s.registerUserRoutes(v1.PathPrefix("/admin/user").Subrouter())
	s.registerDataRoutes(v1.PathPrefix("/data").Subrouter())

	gzip, err := gzhttp.NewWrapper(gzhttp.MinSize(gzipMinSize))
	if err != nil {
		return nil, err
	}
	return gzip(r), nil
}

// handleRoot registers h for both the bare prefix and the prefix with a trailing slash.
func handleRoot(r *mux.Router, h http.HandlerFunc, methods ...string) {
	r.Handle("", h).Methods(methods...)
	r.Handle("/", h).Methods(methods...)
}

func (s *Server) registerPersonRoutes(r *mux.Router) {
	ph := handlers.NewPersonHandler(s.personService)

	handleRoot(r, ph.ListPersons, "GET", "OPTIONS")
	handleRoot(r, ph.CreatePerson, "POST", "OPTIONS")
	handleRoot(r, ph.UpdatePersons, "PATCH", "OPTIONS")
	r.HandleFunc("/batch", ph.CreatePersons).Methods("POST", "OPTIONS")
	r.HandleFunc("/{id}", ph.GetPerson).Methods("GET", "OPTIONS")
	r.HandleFunc("/{id}", ph.UpdatePerson).Methods("PATCH", "OPTIONS")
	r.HandleFunc("/{id}", ph.DeletePerson).Methods("DELETE", "OPTIONS")
}

func (s *Server) registerUserRoutes(r *mux.Router) {
	uh := handlers.NewUserHandler(s.userService)
	r.Use(middlewares.TokenMiddleware(s.cfg.APIToken))
	r.Use(middlewares.BasicAuthMiddleware(s.authService))

	handleRoot(r, uh.ListUsers, "GET", "OPTIONS")
	handleRoot(r, uh.CreateUser, "POST", "OPTIONS")
	r.HandleFunc("/{id}", uh.GetUser).Methods("GET", "OPTIONS")
	r.HandleFunc("/{id}", uh.UpdateUser).Methods("PUT", "OPTIONS")
	r.HandleFunc("/{id}", uh.DeleteUser).Methods("DELETE", "OPTIONS")
}

func (s *Server) registerDataRoutes(r *mux.Router) {
	dh := handlers.NewDataHandler(s.identityService)
	r.Use(middlewares.TokenAppMiddleware(s.cfg.APIToken))

	handleRoot(r, dh.GetClientData, "GET", "OPTIONS")
	handleRoot(r, dh.CreateClientData, "POST", "OPTIONS")
	handleRoot(r, dh.UpdateClientData, "PATCH", "OPTIONS")
	r.HandleFunc("/default", dh.GetDefaultData).Methods("GET", "OPTIONS")
	r.HandleFunc("/default", dh.CreateDefaultData).Methods("POST", "OPTIONS")
	r.HandleFunc("/default/exists", dh.DefaultDataExists).Methods("GET", "OPTIONS")
}
