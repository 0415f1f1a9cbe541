package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpHandlers "github.com/tidytasks/api/internal/adapters/http"
	"github.com/tidytasks/api/internal/adapters/repository"
	"github.com/tidytasks/api/internal/application/services"
	"github.com/tidytasks/api/internal/infrastructure/auth"
	"github.com/tidytasks/api/internal/infrastructure/config"
	"github.com/tidytasks/api/internal/infrastructure/logger"
)

const testSecret = "wire-test-secret-32-characters!!!!!!"

// newTestServer wires the real routes, auth middleware, validator and
// error handler over the in-memory repository. No database or network
// listeners are involved.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	nop := logger.NewNop()

	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}
	e.HTTPErrorHandler = customErrorHandler(nop)

	verifier, err := auth.NewVerifier(config.AuthConfig{
		Mode:        config.AuthModeHS256,
		HS256Secret: testSecret,
	})
	require.NoError(t, err)

	taskRepo := repository.NewMemoryTaskRepository()
	taskService := services.NewTaskService(taskRepo, nop)
	taskHandler := httpHandlers.NewTaskHandler(taskService, nop)

	s := &Server{
		echo:     e,
		config:   &config.Config{},
		logger:   nop,
		verifier: verifier,
	}
	s.setupRoutes(taskHandler)

	return s
}

func bearerToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func doRequest(s *Server, method, target, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, token)
	}

	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func createTask(t *testing.T, s *Server, token, body string) map[string]interface{} {
	t.Helper()

	rec := doRequest(s, http.MethodPost, "/api/tasks", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var task map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	return task
}

func TestRoutesRequireAuthentication(t *testing.T) {
	s := newTestServer(t)

	targets := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/api/tasks"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodGet, "/api/tasks/1"},
		{http.MethodPatch, "/api/tasks/1"},
		{http.MethodDelete, "/api/tasks/1"},
	}

	for _, tt := range targets {
		rec := doRequest(s, tt.method, tt.target, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tt.method, tt.target)
		assert.Contains(t, rec.Body.String(), "Invalid or missing token")
	}

	rec := doRequest(s, http.MethodGet, "/api/tasks", "Bearer not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(s, http.MethodGet, "/api/tasks", "Basic dXNlcjpwYXNz", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateAndListRoundTrip(t *testing.T) {
	s := newTestServer(t)
	token := bearerToken(t, uuid.New())

	task := createTask(t, s, token, `{"title":"Buy milk","priority":"high"}`)
	assert.Equal(t, "Buy milk", task["title"])
	assert.Equal(t, "high", task["priority"])
	assert.NotZero(t, task["id"])

	rec := doRequest(s, http.MethodGet, "/api/tasks", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var listing struct {
		Tasks []map[string]interface{} `json:"tasks"`
		Total int                      `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Equal(t, 1, listing.Total)
	assert.Equal(t, "Buy milk", listing.Tasks[0]["title"])
}

func TestListReturnsEmptyArrayNotNull(t *testing.T) {
	s := newTestServer(t)
	token := bearerToken(t, uuid.New())

	rec := doRequest(s, http.MethodGet, "/api/tasks", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tasks":[]`)
}

func TestListHonorsFilterParameters(t *testing.T) {
	s := newTestServer(t)
	token := bearerToken(t, uuid.New())

	createTask(t, s, token, `{"title":"urgent thing","priority":"high"}`)
	createTask(t, s, token, `{"title":"someday thing","priority":"low"}`)

	rec := doRequest(s, http.MethodGet, "/api/tasks?priority=high", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var listing struct {
		Tasks []map[string]interface{} `json:"tasks"`
		Total int                      `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Equal(t, 1, listing.Total)
	assert.Equal(t, "urgent thing", listing.Tasks[0]["title"])
}

func TestCreateValidationFailureReturns422(t *testing.T) {
	s := newTestServer(t)
	token := bearerToken(t, uuid.New())

	rec := doRequest(s, http.MethodPost, "/api/tasks", token, `{"title":""}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation failed", body.Message)
	assert.Contains(t, body.Fields, "title")

	// The rejected task was not persisted.
	rec = doRequest(s, http.MethodGet, "/api/tasks", token, "")
	assert.Contains(t, rec.Body.String(), `"total":0`)
}

func TestCreateRejectsUnknownPriority(t *testing.T) {
	s := newTestServer(t)
	token := bearerToken(t, uuid.New())

	rec := doRequest(s, http.MethodPost, "/api/tasks", token, `{"title":"ok","priority":"urgent"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "priority")
}

func TestCreateRejectsMalformedJSON(t *testing.T) {
	s := newTestServer(t)
	token := bearerToken(t, uuid.New())

	rec := doRequest(s, http.MethodPost, "/api/tasks", token, `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCrossUserAccessLooksLikeNotFound(t *testing.T) {
	s := newTestServer(t)
	tokenA := bearerToken(t, uuid.New())
	tokenB := bearerToken(t, uuid.New())

	task := createTask(t, s, tokenA, `{"title":"private"}`)
	taskPath := fmt.Sprintf("/api/tasks/%v", task["id"])

	// User B's listing is empty.
	rec := doRequest(s, http.MethodGet, "/api/tasks", tokenB, "")
	assert.Contains(t, rec.Body.String(), `"total":0`)

	// Reads, updates and deletes by B return the same 404 a missing
	// task would.
	rec = doRequest(s, http.MethodGet, taskPath, tokenB, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(s, http.MethodPatch, taskPath, tokenB, `{"title":"stolen"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(s, http.MethodDelete, taskPath, tokenB, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// A still owns the unmodified task.
	rec = doRequest(s, http.MethodGet, taskPath, tokenA, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "private")
}

func TestUpdateNonexistentTaskReturns404(t *testing.T) {
	s := newTestServer(t)
	token := bearerToken(t, uuid.New())

	rec := doRequest(s, http.MethodPatch, "/api/tasks/9999", token, `{"title":"x"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Task not found")
}

func TestUpdatePartialFields(t *testing.T) {
	s := newTestServer(t)
	token := bearerToken(t, uuid.New())

	task := createTask(t, s, token, `{"title":"Buy milk","description":"2 liters"}`)
	taskPath := fmt.Sprintf("/api/tasks/%v", task["id"])

	rec := doRequest(s, http.MethodPatch, taskPath, token, `{"is_completed":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, true, updated["is_completed"])
	assert.Equal(t, "Buy milk", updated["title"])
	assert.Equal(t, "2 liters", updated["description"])
}

func TestDeleteThenGetReturns404(t *testing.T) {
	s := newTestServer(t)
	token := bearerToken(t, uuid.New())

	task := createTask(t, s, token, `{"title":"temporary"}`)
	taskPath := fmt.Sprintf("/api/tasks/%v", task["id"])

	rec := doRequest(s, http.MethodDelete, taskPath, token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = doRequest(s, http.MethodGet, taskPath, token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNonNumericTaskIDReturns404(t *testing.T) {
	s := newTestServer(t)
	token := bearerToken(t, uuid.New())

	rec := doRequest(s, http.MethodGet, "/api/tasks/abc", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
