package handlers_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatekeep/auth"
	"gatekeep/handlers"
	"gatekeep/redact"
	"gatekeep/store"
	"gatekeep/utils"
)

func newTestLogger() *slog.Logger {
	return redact.NewLogger(io.Discard, nil)
}

// newServer wires the handlers onto a mux the same way main does, over an
// in-memory store.
func newServer() (*http.ServeMux, *auth.Auth) {
	a := auth.New(store.NewMemory())
	logger := newTestLogger()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		handlers.Home(w, r)
	})
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		handlers.RegisterUser(w, r, a, logger)
	})
	mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
		handlers.Sessions(w, r, a, logger)
	})
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		handlers.Profile(w, r, a, logger)
	})
	mux.HandleFunc("/reset_password", func(w http.ResponseWriter, r *http.Request) {
		handlers.ResetPassword(w, r, a, logger)
	})
	return mux, a
}

func formRequest(method, path string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func doForm(t *testing.T, mux *http.ServeMux, method, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := formRequest(method, path, form)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func registerUser(t *testing.T, mux *http.ServeMux, email, password string) {
	t.Helper()
	rec := doForm(t, mux, http.MethodPost, "/users", url.Values{
		"email":    {email},
		"password": {password},
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func loginUser(t *testing.T, mux *http.ServeMux, email, password string) *http.Cookie {
	t.Helper()
	rec := doForm(t, mux, http.MethodPost, "/sessions", url.Values{
		"email":    {email},
		"password": {password},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == utils.SessionCookieName {
			require.NotEmpty(t, c.Value)
			return c
		}
	}
	t.Fatal("no session_id cookie set")
	return nil
}

func TestHome(t *testing.T) {
	mux, _ := newServer()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, map[string]string{"message": "Bienvenue"}, decodeBody(t, rec))
}

func TestRegisterUser(t *testing.T) {
	mux, _ := newServer()

	t.Run("creates the user", func(t *testing.T) {
		rec := doForm(t, mux, http.MethodPost, "/users", url.Values{
			"email":    {"bob@dylan.com"},
			"password": {"bobby2019"},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "bob@dylan.com", body["email"])
		assert.Equal(t, "user created", body["message"])
	})

	t.Run("duplicate email", func(t *testing.T) {
		rec := doForm(t, mux, http.MethodPost, "/users", url.Values{
			"email":    {"bob@dylan.com"},
			"password": {"other"},
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "email already registered", decodeBody(t, rec)["message"])
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := doForm(t, mux, http.MethodPost, "/users", url.Values{"email": {"x@y.com"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed email", func(t *testing.T) {
		rec := doForm(t, mux, http.MethodPost, "/users", url.Values{
			"email":    {"not-an-email"},
			"password": {"bobby2019"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLogin(t *testing.T) {
	mux, _ := newServer()
	registerUser(t, mux, "bob@dylan.com", "bobby2019")

	t.Run("valid credentials set the session cookie", func(t *testing.T) {
		cookie := loginUser(t, mux, "bob@dylan.com", "bobby2019")
		assert.True(t, cookie.HttpOnly)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := doForm(t, mux, http.MethodPost, "/sessions", url.Values{
			"email":    {"bob@dylan.com"},
			"password": {"wrong"},
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("unknown email", func(t *testing.T) {
		rec := doForm(t, mux, http.MethodPost, "/sessions", url.Values{
			"email":    {"nobody@dylan.com"},
			"password": {"bobby2019"},
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestProfile(t *testing.T) {
	mux, _ := newServer()
	registerUser(t, mux, "bob@dylan.com", "bobby2019")
	cookie := loginUser(t, mux, "bob@dylan.com", "bobby2019")

	t.Run("with a valid session", func(t *testing.T) {
		rec := doForm(t, mux, http.MethodGet, "/profile", nil, cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, map[string]string{"email": "bob@dylan.com"}, decodeBody(t, rec))
	})

	t.Run("without a cookie", func(t *testing.T) {
		rec := doForm(t, mux, http.MethodGet, "/profile", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("with a garbage session id", func(t *testing.T) {
		rec := doForm(t, mux, http.MethodGet, "/profile", nil,
			&http.Cookie{Name: utils.SessionCookieName, Value: "garbage"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestLogout(t *testing.T) {
	mux, _ := newServer()
	registerUser(t, mux, "bob@dylan.com", "bobby2019")
	cookie := loginUser(t, mux, "bob@dylan.com", "bobby2019")

	t.Run("destroys the session and redirects home", func(t *testing.T) {
		rec := doForm(t, mux, http.MethodDelete, "/sessions", nil, cookie)
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))

		// The old session no longer grants access.
		profile := doForm(t, mux, http.MethodGet, "/profile", nil, cookie)
		assert.Equal(t, http.StatusForbidden, profile.Code)
	})

	t.Run("without a valid session", func(t *testing.T) {
		rec := doForm(t, mux, http.MethodDelete, "/sessions", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestResetPassword(t *testing.T) {
	mux, _ := newServer()
	registerUser(t, mux, "bob@dylan.com", "bobby2019")

	t.Run("unknown email", func(t *testing.T) {
		rec := doForm(t, mux, http.MethodPost, "/reset_password", url.Values{
			"email": {"nobody@dylan.com"},
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	var token string
	t.Run("issues a token", func(t *testing.T) {
		rec := doForm(t, mux, http.MethodPost, "/reset_password", url.Values{
			"email": {"bob@dylan.com"},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "bob@dylan.com", body["email"])
		token = body["reset_token"]
		require.NotEmpty(t, token)
	})

	t.Run("consumes the token", func(t *testing.T) {
		rec := doForm(t, mux, http.MethodPut, "/reset_password", url.Values{
			"email":        {"bob@dylan.com"},
			"reset_token":  {token},
			"new_password": {"NewPass456!"},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Password updated", body["message"])

		// Old password is dead, new one works.
		old := doForm(t, mux, http.MethodPost, "/sessions", url.Values{
			"email":    {"bob@dylan.com"},
			"password": {"bobby2019"},
		})
		assert.Equal(t, http.StatusUnauthorized, old.Code)
		loginUser(t, mux, "bob@dylan.com", "NewPass456!")
	})

	t.Run("token is single-use", func(t *testing.T) {
		rec := doForm(t, mux, http.MethodPut, "/reset_password", url.Values{
			"email":        {"bob@dylan.com"},
			"reset_token":  {token},
			"new_password": {"AnotherPass789!"},
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("bogus token", func(t *testing.T) {
		rec := doForm(t, mux, http.MethodPut, "/reset_password", url.Values{
			"email":        {"bob@dylan.com"},
			"reset_token":  {"garbage"},
			"new_password": {"x"},
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
