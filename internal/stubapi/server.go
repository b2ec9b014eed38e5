package stubapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"simuorg/internal/logging"
)

// Server serves the SimuOrg API contract from a local SQLite database.
type Server struct {
	store  *store
	jwt    *jwtService
	router *mux.Router
	log    logging.Logger
}

// NewServer builds a stub server persisting to the SQLite file at dbPath
// (use ":memory:" for throwaway state) and signing tokens with secret.
func NewServer(dbPath string, secret []byte, log logging.Logger) (*Server, error) {
	if log == nil {
		log = logging.NopLogger{}
	}

	st, err := openStore(dbPath)
	if err != nil {
		return nil, err
	}

	s := &Server{
		store: st,
		jwt:   &jwtService{secret: secret},
		log:   log.With("component", "stubapi"),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/sim/policies", s.handlePolicies).Methods(http.MethodGet)

	protected := api.NewRoute().Subrouter()
	protected.Use(s.requireAuth)
	protected.HandleFunc("/employees", s.handleEmployees).Methods(http.MethodGet)
	protected.HandleFunc("/upload/dataset", s.handleUpload).Methods(http.MethodPost)

	s.router = r
}

// Router exposes the handler for http.Server or httptest.
func (s *Server) Router() http.Handler { return s.router }

// Close releases the underlying database.
func (s *Server) Close() error { return s.store.close() }

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}
