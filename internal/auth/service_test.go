package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vjpowerhouse/Basketball-Tracking-system/pkg"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const (
	testUsername = "coach"
	testPassword = "fastbreak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

func testUsers(t *testing.T) []User {
	t.Helper()
	hash, err := pkg.HashPassword(testPassword)
	require.NoError(t, err)
	return []User{{Username: testUsername, PasswordHash: hash}}
}

func TestParseUsers(t *testing.T) {
	users, err := ParseUsers("coach:$2a$12$abc, player:$2a$12$def ,")
	require.NoError(t, err)
	assert.Equal(t, []User{
		{Username: "coach", PasswordHash: "$2a$12$abc"},
		{Username: "player", PasswordHash: "$2a$12$def"},
	}, users)

	users, err = ParseUsers("")
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = ParseUsers("coach")
	assert.ErrorIs(t, err, ErrInvalidUsers)
	_, err = ParseUsers("coach:$2a$x,coach:$2a$y")
	assert.ErrorIs(t, err, ErrInvalidUsers)
	_, err = ParseUsers(":hash")
	assert.ErrorIs(t, err, ErrInvalidUsers)
}

func TestService_LoginLogout(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	authService := NewAuthService(testUsers(t), time.Hour, db)
	authService.RandStringFunc = func(s int) (string, error) {
		assert.Equal(t, tokenLength, s)
		return "test-token", nil
	}

	ctx := context.Background()
	sessionKey := sessionKeyPrefix + "test-token"

	mock.ExpectSet(sessionKey, testUsername, time.Hour).SetVal("OK")
	token, err := authService.Login(ctx, Credentials{Username: testUsername, Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, "test-token", token)

	token, err = authService.Login(ctx, Credentials{Username: testUsername, Password: "wrong"})
	assert.ErrorIs(t, err, ErrWrongCredentials)
	assert.Empty(t, token)

	token, err = authService.Login(ctx, Credentials{Username: "nobody", Password: testPassword})
	assert.ErrorIs(t, err, ErrWrongCredentials)
	assert.Empty(t, token)

	mock.ExpectDel(sessionKey).SetVal(1)
	existed, err := authService.Logout(ctx, "test-token")
	require.NoError(t, err)
	assert.True(t, existed)

	mock.ExpectDel(sessionKey).SetVal(0)
	existed, err = authService.Logout(ctx, "test-token")
	require.NoError(t, err)
	assert.False(t, existed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Login_RedisFailure(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	authService := NewAuthService(testUsers(t), time.Hour, db)
	authService.RandStringFunc = func(int) (string, error) { return "tkn", nil }

	mock.ExpectSet(sessionKeyPrefix+"tkn", testUsername, time.Hour).SetErr(errors.New("redis down"))
	_, err := authService.Login(context.Background(), Credentials{Username: testUsername, Password: testPassword})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
}

func TestLoginChecker_LoggedUser(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	loginChecker := NewLoginChecker(db)
	ctx := context.Background()

	mock.ExpectGet(sessionKeyPrefix + "invalid token").RedisNil()
	user, err := loginChecker.LoggedUser(ctx, "invalid token")
	require.NoError(t, err)
	assert.Empty(t, user)

	mock.ExpectGet(sessionKeyPrefix + "test-token").SetVal(testUsername)
	user, err = loginChecker.LoggedUser(ctx, "test-token")
	require.NoError(t, err)
	assert.Equal(t, testUsername, user)

	mock.ExpectGet(sessionKeyPrefix + "test-token").SetErr(errors.New("conn refused"))
	_, err = loginChecker.LoggedUser(ctx, "test-token")
	assert.EqualError(t, err, "conn refused")
}

func TestUserContext(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)

	_, ok = UserFromContext(WithUser(context.Background(), ""))
	assert.False(t, ok)

	user, ok := UserFromContext(WithUser(context.Background(), testUsername))
	assert.True(t, ok)
	assert.Equal(t, testUsername, user)
}

func TestHandler_Login(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	authService := NewAuthService(testUsers(t), time.Hour, db)
	authService.RandStringFunc = func(int) (string, error) { return "tkn", nil }
	h := NewHandler(authService)

	mock.ExpectSet(sessionKeyPrefix+"tkn", testUsername, time.Hour).SetVal("OK")
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/a/login", strings.NewReader(`{"username":"coach","password":"fastbreak"}`))
	h.HandleLogin(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"token":"tkn"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/a/login", strings.NewReader(`{"username":"coach","password":"nope"}`))
	h.HandleLogin(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/a/login", strings.NewReader(`{"username":"coach"}`))
	h.HandleLogin(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/a/login", strings.NewReader(`not json`))
	h.HandleLogin(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_Logout(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	h := NewHandler(NewAuthService(nil, time.Hour, db))

	rr := httptest.NewRecorder()
	h.HandleLogout(rr, httptest.NewRequest(http.MethodGet, "/a/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	mock.ExpectDel(sessionKeyPrefix + "tkn").SetVal(1)
	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/a/logout", nil)
	req.Header.Set(TokenHeader, "tkn")
	h.HandleLogout(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "logged out", rr.Body.String())

	mock.ExpectDel(sessionKeyPrefix + "gone").SetVal(0)
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/a/logout", nil)
	req.Header.Set(TokenHeader, "gone")
	h.HandleLogout(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
