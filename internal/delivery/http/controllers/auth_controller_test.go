package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"videoinvites/internal/delivery/http/helpers"
	"videoinvites/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserService implements domain.UserService for handler tests.
type fakeUserService struct {
	inUse      bool
	inUseErr   *domain.AppError
	creds      *domain.UserCredentials
	credsErr   *domain.AppError
	addErr     *domain.AppError
	lastAdded  []string
	lastSigned []string
}

func (f *fakeUserService) IsUsernameEmailInUse(ctx context.Context, username, email string) domain.Result[bool] {
	if f.inUseErr != nil {
		return domain.Fail[bool](f.inUseErr)
	}
	return domain.Ok(f.inUse)
}

func (f *fakeUserService) AddNewUser(ctx context.Context, username, email, password string) domain.Result[string] {
	f.lastAdded = []string{username, email, password}
	if f.addErr != nil {
		return domain.Fail[string](f.addErr)
	}
	return domain.Ok("user-1")
}

func (f *fakeUserService) GetCredentials(ctx context.Context, login string) domain.Result[*domain.UserCredentials] {
	if f.credsErr != nil {
		return domain.Fail[*domain.UserCredentials](f.credsErr)
	}
	return domain.Ok(f.creds)
}

func (f *fakeUserService) GenerateJWT(userID, username, email string) domain.Result[string] {
	f.lastSigned = []string{userID, username, email}
	return domain.Ok("token-" + userID)
}

func (f *fakeUserService) ComparePasswords(password, hash string) bool {
	return hash == "hash-"+password
}

func TestAuthController_SignUp(t *testing.T) {
	body := `{"email":" Alice@Example.com","username":"Alice ","password":"secret1"}`

	t.Run("created with normalized identity", func(t *testing.T) {
		svc := &fakeUserService{}
		rr := httptest.NewRecorder()
		NewAuthController(testLogger, svc).SignUp(rr, httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(body)))

		require.Equal(t, http.StatusCreated, rr.Code)
		var data TokenResponse
		require.Nil(t, decodeEnvelope(t, rr, &data))
		assert.Equal(t, "token-user-1", data.Token)
		assert.Equal(t, []string{"alice", "alice@example.com", "secret1"}, svc.lastAdded)
		assert.Equal(t, []string{"user-1", "alice", "alice@example.com"}, svc.lastSigned)
	})

	t.Run("username or email taken", func(t *testing.T) {
		svc := &fakeUserService{inUse: true}
		rr := httptest.NewRecorder()
		NewAuthController(testLogger, svc).SignUp(rr, httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(body)))

		require.Equal(t, http.StatusConflict, rr.Code)
		apiErr := decodeEnvelope(t, rr, nil)
		assert.Equal(t, helpers.ErrCodeConflict, apiErr.Code)
		assert.Equal(t, "The username or email is already in use", apiErr.Message)
		assert.Nil(t, svc.lastAdded)
	})

	t.Run("validation", func(t *testing.T) {
		rr := httptest.NewRecorder()
		bad := `{"email":"nope","username":"a","password":"123"}`
		NewAuthController(testLogger, &fakeUserService{}).SignUp(rr, httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(bad)))

		require.Equal(t, http.StatusBadRequest, rr.Code)
		msg := decodeEnvelope(t, rr, nil).Message
		assert.Contains(t, msg, "Required valid email")
		assert.Contains(t, msg, "Required length between 2 and 32")
		assert.Contains(t, msg, "Required length between 6 and 32")
	})

	t.Run("markup in username", func(t *testing.T) {
		rr := httptest.NewRecorder()
		bad := `{"email":"a@example.com","username":"<b>al</b>","password":"secret1"}`
		NewAuthController(testLogger, &fakeUserService{}).SignUp(rr, httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(bad)))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAuthController_Login(t *testing.T) {
	creds := &domain.UserCredentials{ID: "user-1", Username: "alice", Email: "alice@example.com", PasswordHash: "hash-secret1"}
	tests := []struct {
		name       string
		svc        *fakeUserService
		body       string
		wantStatus int
		wantMsg    string
	}{
		{name: "ok", svc: &fakeUserService{creds: creds}, body: `{"login":"alice","password":"secret1"}`, wantStatus: http.StatusOK},
		{name: "wrong password", svc: &fakeUserService{creds: creds}, body: `{"login":"alice","password":"secret2"}`,
			wantStatus: http.StatusBadRequest, wantMsg: "Invalid login or password"},
		{name: "unknown login", svc: &fakeUserService{credsErr: domain.NewNotFoundError("User was not found: bob")}, body: `{"login":"bob","password":"secret1"}`,
			wantStatus: http.StatusBadRequest, wantMsg: "Invalid login or password"},
		{name: "database failure", svc: &fakeUserService{credsErr: domain.NewDatabaseError("connection refused")}, body: `{"login":"bob","password":"secret1"}`,
			wantStatus: http.StatusInternalServerError, wantMsg: "connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			NewAuthController(testLogger, tt.svc).Login(rr, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tt.body)))

			require.Equal(t, tt.wantStatus, rr.Code)
			var data TokenResponse
			apiErr := decodeEnvelope(t, rr, &data)
			if tt.wantMsg != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantMsg, apiErr.Message)
				return
			}
			assert.Equal(t, "token-user-1", data.Token)
		})
	}
}

func TestAuthController_MeAndLogout(t *testing.T) {
	c := NewAuthController(testLogger, &fakeUserService{})

	rr := httptest.NewRecorder()
	c.Me(rr, newRequest(http.MethodGet, "/me", nil, alice))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":{"iss":"owner-1","username":"alice","email":"alice@example.com"},"error":null}`, rr.Body.String())

	rr = httptest.NewRecorder()
	c.Me(rr, newRequest(http.MethodGet, "/me", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	c.Logout(rr, newRequest(http.MethodPost, "/logout", nil, alice))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}
