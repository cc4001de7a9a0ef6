package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "github.com/artem13815/accounts/api/http"
	"github.com/artem13815/accounts/api/http/handlers"
	"github.com/artem13815/accounts/pkg/account"
	"github.com/artem13815/accounts/pkg/health"
	jwtauth "github.com/artem13815/accounts/pkg/security/jwt"
	"github.com/artem13815/accounts/pkg/security/password"
)

type memoryRepo struct {
	users map[string]account.User
	order []string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[string]account.User)}
}

func (m *memoryRepo) Create(_ context.Context, user account.User) error {
	if _, ok := m.users[user.Username]; ok {
		return account.ErrUsernameTaken
	}
	m.users[user.Username] = user
	m.order = append(m.order, user.Username)
	return nil
}

func (m *memoryRepo) GetByUsername(_ context.Context, username string) (account.User, error) {
	user, ok := m.users[username]
	if !ok {
		return account.User{}, account.ErrNotFound
	}
	return user, nil
}

func (m *memoryRepo) List(_ context.Context) ([]account.User, error) {
	out := make([]account.User, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.users[name])
	}
	return out, nil
}

type okChecker struct{}

func (okChecker) Name() string                  { return "noop" }
func (okChecker) Check(_ context.Context) error { return nil }

func newTestApp(t *testing.T) (*fiber.App, *memoryRepo) {
	t.Helper()

	repo := newMemoryRepo()
	issuer, err := jwtauth.NewIssuer("test-secret", "HS256", 30*time.Minute)
	require.NoError(t, err)

	useCase := account.NewService(repo, password.NewHasher(), issuer)
	authMW := jwtauth.NewAuthMiddleware(issuer, repo.GetByUsername)

	app := fiber.New()
	httpapi.Register(app,
		handlers.NewUsersHandler(useCase),
		handlers.NewHealthHandler(health.NewService(okChecker{})),
		authMW)
	return app, repo
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

const aliceJSON = `{"username":"alice","fullname":"Alice A","email":"a@x.com","password":"pw123"}`

func TestRegisterEndpoint(t *testing.T) {
	t.Run("creates user and returns public view only", func(t *testing.T) {
		app, repo := newTestApp(t)

		resp := postJSON(t, app, "/users/register", aliceJSON)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.JSONEq(t, `{"username":"alice","email":"a@x.com"}`, readBody(t, resp))

		stored := repo.users["alice"]
		assert.NotEmpty(t, stored.PasswordHash)
	})

	t.Run("mixed-case email is echoed and listed unchanged", func(t *testing.T) {
		app, _ := newTestApp(t)

		resp := postJSON(t, app, "/users/register",
			`{"username":"carol","fullname":"Carol C","email":"Carol@X.com","password":"pw123"}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.JSONEq(t, `{"username":"carol","email":"Carol@X.com"}`, readBody(t, resp))

		resp = postJSON(t, app, "/users/login", `{"username":"carol","password":"pw123"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body struct {
			AccessToken string `json:"access_token"`
		}
		require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &body))

		req := httptest.NewRequest(http.MethodGet, "/users/all", nil)
		req.Header.Set("Authorization", "Bearer "+body.AccessToken)
		listResp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, listResp.StatusCode)
		assert.JSONEq(t, `[{"username":"carol","email":"Carol@X.com"}]`, readBody(t, listResp))
	})

	t.Run("duplicate username is a 400", func(t *testing.T) {
		app, _ := newTestApp(t)

		resp := postJSON(t, app, "/users/register", aliceJSON)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = postJSON(t, app, "/users/register", aliceJSON)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"detail":"Username already exists"}`, readBody(t, resp))
	})

	t.Run("malformed body is a 422", func(t *testing.T) {
		app, _ := newTestApp(t)

		resp := postJSON(t, app, "/users/register", `{"username": `)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("missing fields are a 422", func(t *testing.T) {
		app, _ := newTestApp(t)

		resp := postJSON(t, app, "/users/register", `{"username":"alice"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestLoginEndpoint(t *testing.T) {
	t.Run("wrong password is a generic 401", func(t *testing.T) {
		app, _ := newTestApp(t)
		postJSON(t, app, "/users/register", aliceJSON)

		resp := postJSON(t, app, "/users/login", `{"username":"alice","password":"wrong"}`)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.JSONEq(t, `{"detail":"Invalid username or password"}`, readBody(t, resp))
	})

	t.Run("unknown user gets the same 401", func(t *testing.T) {
		app, _ := newTestApp(t)

		resp := postJSON(t, app, "/users/login", `{"username":"ghost","password":"pw123"}`)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.JSONEq(t, `{"detail":"Invalid username or password"}`, readBody(t, resp))
	})

	t.Run("correct password yields a bearer token", func(t *testing.T) {
		app, _ := newTestApp(t)
		postJSON(t, app, "/users/register", aliceJSON)

		resp := postJSON(t, app, "/users/login", `{"username":"alice","password":"pw123"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Message         string `json:"message"`
			Username        string `json:"username"`
			AccessToken     string `json:"access_token"`
			AccessTokenType string `json:"access_token_type"`
		}
		require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &body))
		assert.Equal(t, "Login successful", body.Message)
		assert.Equal(t, "alice", body.Username)
		assert.NotEmpty(t, body.AccessToken)
		assert.Equal(t, "bearer", body.AccessTokenType)
	})
}

func TestListEndpoint(t *testing.T) {
	login := func(t *testing.T, app *fiber.App) string {
		t.Helper()
		resp := postJSON(t, app, "/users/login", `{"username":"alice","password":"pw123"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body struct {
			AccessToken string `json:"access_token"`
		}
		require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &body))
		return body.AccessToken
	}

	t.Run("without Authorization header is a 401 challenge", func(t *testing.T) {
		app, _ := newTestApp(t)

		req := httptest.NewRequest(http.MethodGet, "/users/all", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
	})

	t.Run("with a valid token lists registered users", func(t *testing.T) {
		app, _ := newTestApp(t)
		postJSON(t, app, "/users/register", aliceJSON)
		token := login(t, app)

		req := httptest.NewRequest(http.MethodGet, "/users/all", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `[{"username":"alice","email":"a@x.com"}]`, readBody(t, resp))
	})
}

func TestHealthEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	for _, path := range []string{"/health", "/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}
