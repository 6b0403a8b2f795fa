package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/oceanview/internal/auth"
	"github.com/Domenick1991/oceanview/internal/repository"
	"github.com/Domenick1991/oceanview/internal/service/users"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func doJSON(router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func newUsersRouter(exposeTokens bool) *gin.Engine {
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	service := users.NewUsersService(repository.NewMemoryStore(), issuer, users.WithBcryptCost(bcrypt.MinCost))

	router := gin.New()
	NewUserHandler(service, exposeTokens).Register(router.Group("/api"), auth.Required(issuer))
	return router
}

func registerAndLogin(t *testing.T, router http.Handler) string {
	t.Helper()
	w := doJSON(router, "POST", "/api/register", "", users.RegisterInput{
		Username: "ann", Email: "ann@example.com", Password: "s3cretpass", FirstName: "Ann",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(router, "POST", "/api/login", "", gin.H{"username": "ann", "password": "s3cretpass"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := decode(t, w)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestUserHandler_RegisterLoginProfile(t *testing.T) {
	router := newUsersRouter(false)
	token := registerAndLogin(t, router)

	w := doJSON(router, "GET", "/api/user", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)
	assert.Equal(t, "ann", me["username"])
	assert.NotContains(t, w.Body.String(), "s3cretpass")

	w = doJSON(router, "PATCH", "/api/profile", token, gin.H{"city": "Miami"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Miami")

	w = doJSON(router, "POST", "/api/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserHandler_Errors(t *testing.T) {
	router := newUsersRouter(false)
	token := registerAndLogin(t, router)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		status int
	}{
		{"duplicate username", "POST", "/api/register", "", users.RegisterInput{Username: "ann", Email: "other@example.com", Password: "s3cretpass"}, http.StatusConflict},
		{"short password", "POST", "/api/register", "", users.RegisterInput{Username: "bob", Email: "bob@example.com", Password: "short"}, http.StatusBadRequest},
		{"wrong password", "POST", "/api/login", "", gin.H{"username": "ann", "password": "nope-nope"}, http.StatusUnauthorized},
		{"missing login fields", "POST", "/api/login", "", gin.H{"username": "ann"}, http.StatusBadRequest},
		{"profile without token", "GET", "/api/user", "", nil, http.StatusUnauthorized},
		{"bad current password", "POST", "/api/profile/change-password", token, gin.H{"current_password": "wrong-one", "new_password": "another-pass"}, http.StatusUnauthorized},
		{"unknown reset token", "POST", "/api/reset-password", "", gin.H{"token": "nope", "password": "another-pass"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestUserHandler_ChangePassword(t *testing.T) {
	router := newUsersRouter(false)
	token := registerAndLogin(t, router)

	w := doJSON(router, "POST", "/api/profile/change-password", token, gin.H{"current_password": "s3cretpass", "new_password": "n3wpassword"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "POST", "/api/login", "", gin.H{"username": "ann", "password": "n3wpassword"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserHandler_PasswordReset(t *testing.T) {
	t.Run("token hidden by default", func(t *testing.T) {
		router := newUsersRouter(false)
		registerAndLogin(t, router)

		w := doJSON(router, "POST", "/api/reset-password-request", "", gin.H{"email": "ann@example.com"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, decode(t, w), "token")

		unknown := doJSON(router, "POST", "/api/reset-password-request", "", gin.H{"email": "ghost@example.com"})
		assert.Equal(t, http.StatusOK, unknown.Code)
		assert.Equal(t, w.Body.String(), unknown.Body.String())
	})

	t.Run("exposed token resets password", func(t *testing.T) {
		router := newUsersRouter(true)
		registerAndLogin(t, router)

		w := doJSON(router, "POST", "/api/reset-password-request", "", gin.H{"email": "ann@example.com"})
		require.Equal(t, http.StatusOK, w.Code)
		token, _ := decode(t, w)["token"].(string)
		require.NotEmpty(t, token)

		w = doJSON(router, "POST", "/api/reset-password", "", gin.H{"token": token, "password": "reset-pass-1"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doJSON(router, "POST", "/api/login", "", gin.H{"username": "ann", "password": "reset-pass-1"})
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(router, "POST", "/api/reset-password", "", gin.H{"token": token, "password": "reset-pass-2"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
