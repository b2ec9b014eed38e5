package stubapi

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type userPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.store.getUserByEmail(r.Context(), req.Email)
	if err != nil {
		s.log.Error(r.Context(), "user lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := s.jwt.issue(*user)
	if err != nil {
		s.log.Error(r.Context(), "token issue failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"user":  userPayload{ID: user.ID, Email: user.Email, Name: user.Name},
		"token": token,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	existing, err := s.store.getUserByEmail(r.Context(), req.Email)
	if err != nil {
		s.log.Error(r.Context(), "user lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		respondError(w, http.StatusConflict, "email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user := User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
	}
	if err := s.store.createUser(r.Context(), user); err != nil {
		s.log.Error(r.Context(), "user creation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

func (s *Server) handleEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := s.store.listEmployees(r.Context())
	if err != nil {
		s.log.Error(r.Context(), "roster query failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, employees)
}

func (s *Server) handlePolicies(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string][]string{
		"policies": {"baseline", "remote_work", "kpi_pressure", "hiring_freeze", "layoff", "promotion_freeze"},
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		respondError(w, http.StatusBadRequest, "only CSV files are accepted")
		return
	}

	rows, err := parseEmployeeCSV(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read CSV")
		return
	}

	datasetID := uuid.NewString()
	for i := range rows {
		rows[i].DatasetID = datasetID
	}

	if c, ok := r.Context().Value(identityKey).(*claims); ok {
		s.log.Info(r.Context(), "dataset upload", "dataset_id", datasetID, "rows", len(rows), "user", c.Email)
	}

	if err := s.store.insertEmployees(r.Context(), rows); err != nil {
		s.log.Error(r.Context(), "ingest failed", "error", err)
		respondError(w, http.StatusInternalServerError, "ingestion failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"dataset_id": datasetID,
		"total_rows": len(rows),
		"ingested":   len(rows),
	})
}

// parseEmployeeCSV reads the columns the stub understands (name,
// department, satisfaction_score, matched case-insensitively) and leaves
// anything missing as null.
func parseEmployeeCSV(r io.Reader) ([]EmployeeRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols := map[string]int{}
	for i, h := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}

	rows := make([]EmployeeRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		var row EmployeeRow
		if v, ok := field(rec, cols, "name"); ok {
			row.Name = &v
		}
		if v, ok := field(rec, cols, "department"); ok {
			row.Department = &v
		}
		if v, ok := field(rec, cols, "satisfaction_score"); ok {
			if score, err := strconv.ParseFloat(v, 64); err == nil {
				row.SatisfactionScore = &score
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func field(rec []string, cols map[string]int, name string) (string, bool) {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return "", false
	}
	v := strings.TrimSpace(rec[i])
	if v == "" {
		return "", false
	}
	return v, true
}
