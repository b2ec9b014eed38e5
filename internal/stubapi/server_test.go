package stubapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(":memory:", []byte("test-secret"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func doJSON(t *testing.T, s *Server, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, s *Server) string {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, "/api/register", "", map[string]string{
		"email": "a@x.com", "name": "Ann", "password": "pw",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, s, http.MethodPost, "/api/login", "", map[string]string{
		"email": "a@x.com", "password": "pw",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reply struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	require.NotEmpty(t, reply.Token)
	assert.Equal(t, "a@x.com", reply.User.Email)
	return reply.Token
}

func uploadCSV(t *testing.T, s *Server, token, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/dataset", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestServer_RegisterDuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	registerAndLogin(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/register", "", map[string]string{
		"email": "a@x.com", "password": "other",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestServer_LoginWrongPassword(t *testing.T) {
	s := newTestServer(t)
	registerAndLogin(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/login", "", map[string]string{
		"email": "a@x.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServer_EmployeesRequiresToken(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/employees", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/employees", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServer_UploadThenListEmployees(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s)

	w := uploadCSV(t, s, token, "roster.csv",
		"name,department,satisfaction_score\nAnn,Sales,4\nBo,,\n")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var uploadReply struct {
		Status   string `json:"status"`
		Ingested int    `json:"ingested"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uploadReply))
	assert.Equal(t, "success", uploadReply.Status)
	assert.Equal(t, 2, uploadReply.Ingested)

	w = doJSON(t, s, http.MethodGet, "/api/employees", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var employees []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &employees))
	require.Len(t, employees, 2)

	assert.Equal(t, "Ann", employees[0]["name"])
	assert.Equal(t, "Sales", employees[0]["department"])
	assert.Equal(t, 4.0, employees[0]["satisfaction_score"])

	// Sparse rows are served with nulls, not empty strings.
	assert.Nil(t, employees[1]["department"])
	assert.Nil(t, employees[1]["satisfaction_score"])
}

func TestServer_UploadRejectsNonCSV(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s)

	w := uploadCSV(t, s, token, "roster.xlsx", "binary garbage")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "CSV")
}

func TestServer_UploadRequiresToken(t *testing.T) {
	s := newTestServer(t)

	w := uploadCSV(t, s, "", "roster.csv", "name\nAnn\n")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServer_PoliciesArePublic(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/sim/policies", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var reply struct {
		Policies []string `json:"policies"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.Contains(t, reply.Policies, "baseline")
	assert.Contains(t, reply.Policies, "kpi_pressure")
}

func TestServer_IssuedTokenCarriesIdentityClaims(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s)

	c, err := s.jwt.verify(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", c.Email)
	assert.Equal(t, "Ann", c.Name)
	assert.NotEmpty(t, c.Subject)
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	a := &jwtService{secret: []byte("one")}
	b := &jwtService{secret: []byte("two")}

	token, err := a.issue(User{ID: "u1", Email: "a@x.com"})
	require.NoError(t, err)

	_, err = b.verify(token)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unauthorized"))
}
