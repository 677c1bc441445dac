package controllers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/askora/askora/config"
	"github.com/askora/askora/models"
	"github.com/askora/askora/routes"
	"github.com/askora/askora/store"
)

// newTestAPI builds the full router on top of an empty in-memory store.
func newTestAPI(t *testing.T) (*gin.Engine, *store.Memory) {
	t.Helper()
	config.Set(config.AppConfig{
		GinMode:            "test",
		JWTSecret:          "unit-test-secret",
		TokenTTL:           60,
		RateLimitPerMinute: 100000,
		AllowedOrigins:     []string{"*"},
	})
	s := store.NewMemory()
	return routes.SetupRouter(s), s
}

func do(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// decodeData unmarshals one key out of the response envelope's data object.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, key string, v interface{}) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &fields))
	require.Contains(t, fields, key)
	require.NoError(t, json.Unmarshal(fields[key], v))
}

// register creates an account and returns its id plus a bearer token.
func register(t *testing.T, r *gin.Engine, name string) (uint, string) {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":"password123"}`, name)
	w := do(r, http.MethodPost, "/auth/register", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var data struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotZero(t, data.User.ID)
	require.NotEmpty(t, data.Token)
	return data.User.ID, data.Token
}

// createQuestion posts a question and returns the enriched response body.
func createQuestion(t *testing.T, r *gin.Engine, token, title string, tags ...string) models.Question {
	t.Helper()
	payload := map[string]interface{}{
		"title":   title,
		"content": "body of " + title,
		"tags":    tags,
	}
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	w := do(r, http.MethodPost, "/questions", string(b), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var q models.Question
	decodeData(t, w, "question", &q)
	require.NotZero(t, q.ID)
	return q
}

// createAnswer posts an answer and returns the enriched response body.
func createAnswer(t *testing.T, r *gin.Engine, token string, questionID uint, text string) models.Answer {
	t.Helper()
	path := fmt.Sprintf("/questions/%d/answers", questionID)
	w := do(r, http.MethodPost, path, fmt.Sprintf(`{"answer":%q}`, text), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var a models.Answer
	decodeData(t, w, "answer", &a)
	require.NotZero(t, a.ID)
	return a
}

func getQuestion(t *testing.T, r *gin.Engine, token string, id uint) (models.Question, int) {
	t.Helper()
	w := do(r, http.MethodGet, fmt.Sprintf("/questions/%d", id), "", token)
	if w.Code != http.StatusOK {
		return models.Question{}, w.Code
	}
	var q models.Question
	decodeData(t, w, "question", &q)
	return q, w.Code
}
