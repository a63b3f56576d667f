package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frotalog/fleet-api/internal/auth"
)

func testIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer("middleware-test-secret", time.Hour, 24*time.Hour)
}

// protectedEcho wires Protect in front of a handler that echoes the
// attached user id.
func protectedEcho(tokens *auth.TokenIssuer) *echo.Echo {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"user_id": c.Get(UserIDKey)})
	}, Protect(tokens))
	return e
}

func doGet(e *echo.Echo, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestProtectMissingHeader(t *testing.T) {
	rec := doGet(protectedEcho(testIssuer()), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "not authenticated")
}

func TestProtectMalformedHeader(t *testing.T) {
	e := protectedEcho(testIssuer())

	for _, header := range []string{"Bearer ", "Basic abc", "token-without-scheme"} {
		rec := doGet(e, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestProtectInvalidToken(t *testing.T) {
	rec := doGet(protectedEcho(testIssuer()), "Bearer not-a-real-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or expired token")
}

func TestProtectRejectsRefreshToken(t *testing.T) {
	tokens := testIssuer()
	refresh, err := tokens.IssueRefreshToken(5)
	require.NoError(t, err)

	rec := doGet(protectedEcho(tokens), "Bearer "+refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or expired token")
}

func TestProtectValidToken(t *testing.T) {
	tokens := testIssuer()
	access, err := tokens.IssueAccessToken(5)
	require.NoError(t, err)

	rec := doGet(protectedEcho(tokens), "Bearer "+access)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":5`)
}

func TestOptionalAuth(t *testing.T) {
	tokens := testIssuer()
	e := echo.New()
	e.GET("/open", func(c echo.Context) error {
		if id, ok := c.Get(UserIDKey).(uint64); ok {
			return c.JSON(http.StatusOK, echo.Map{"user_id": id})
		}
		return c.JSON(http.StatusOK, echo.Map{"user_id": nil})
	}, OptionalAuth(tokens))

	get := func(authorization string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		if authorization != "" {
			req.Header.Set(echo.HeaderAuthorization, authorization)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	// Anonymous and garbage tokens pass through without an id.
	rec := get("")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":null`)

	rec = get("Bearer garbage")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":null`)

	// A valid access token attaches the id.
	access, err := tokens.IssueAccessToken(9)
	require.NoError(t, err)
	rec = get("Bearer " + access)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":9`)

	// A refresh token does not.
	refresh, err := tokens.IssueRefreshToken(9)
	require.NoError(t, err)
	rec = get("Bearer " + refresh)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":null`)
}
