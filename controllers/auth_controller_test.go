package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askora/askora/models"
)

func TestRegisterAndLogin(t *testing.T) {
	r, _ := newTestAPI(t)

	uid, _ := register(t, r, "alice")

	w := do(r, http.MethodPost, "/auth/login", `{"username":"alice","password":"password123"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var u models.User
	decodeData(t, w, "user", &u)
	assert.Equal(t, uid, u.ID)
	assert.Equal(t, "alice", u.Username)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	r, _ := newTestAPI(t)

	register(t, r, "alice")
	w := do(r, http.MethodPost, "/auth/register", `{"username":"alice","password":"password123"}`, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	r, _ := newTestAPI(t)

	// Short password.
	w := do(r, http.MethodPost, "/auth/register", `{"username":"bob","password":"short"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/auth/register", `{"username":"","password":"password123"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r, _ := newTestAPI(t)

	register(t, r, "alice")

	w := do(r, http.MethodPost, "/auth/login", `{"username":"alice","password":"wrongpassword"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Unknown usernames fail the same way as wrong passwords.
	w = do(r, http.MethodPost, "/auth/login", `{"username":"nobody","password":"password123"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe(t *testing.T) {
	r, _ := newTestAPI(t)

	uid, token := register(t, r, "alice")

	w := do(r, http.MethodGet, "/auth/me", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	var u models.User
	decodeData(t, w, "user", &u)
	assert.Equal(t, uid, u.ID)

	w = do(r, http.MethodGet, "/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/auth/me", "", "not-a-real-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPasswordHashNeverSerialized(t *testing.T) {
	r, _ := newTestAPI(t)

	_, token := register(t, r, "alice")
	w := do(r, http.MethodGet, "/auth/me", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "$2a$")
}
