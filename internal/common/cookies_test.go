package common

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validToken = "aGVhZGVy.cGF5bG9hZA.c2lnbmF0dXJl"

func TestReadSessionCookie_NoCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	result := ReadSessionCookie(req)
	assert.Equal(t, StateNoSession, result.State)
	assert.Empty(t, result.Token)
}

func TestReadSessionCookie_EmptyValue(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: ""})

	result := ReadSessionCookie(req)
	assert.Equal(t, StateNoSession, result.State)
}

func TestReadSessionCookie_Malformed(t *testing.T) {
	cases := []string{
		"garbage",
		"two.parts",
		"a.b.c.d",
		"..",
		"a..c",
	}
	for _, value := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: value})

		result := ReadSessionCookie(req)
		assert.Equal(t, StateMalformed, result.State, "value %q", value)
		assert.Empty(t, result.Token)
	}
}

func TestReadSessionCookie_WellFormed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: validToken})

	result := ReadSessionCookie(req)
	assert.Equal(t, StateSession, result.State)
	assert.Equal(t, validToken, result.Token)
}

func TestWriteSessionCookie_SetsAttributes(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	err := WriteSessionCookie(c, validToken, false)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, SessionCookieName, cookie.Name)
	assert.Equal(t, validToken, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, 0, cookie.MaxAge, "session-scoped cookie has no max age")
}

func TestWriteSessionCookie_RememberSetsMaxAge(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	err := WriteSessionCookie(c, validToken, true)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, int((30 * 24 * 60 * 60)), cookies[0].MaxAge)
}

func TestWriteSessionCookie_RejectsMalformedToken(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	err := WriteSessionCookie(c, "not-a-token", false)
	assert.Error(t, err)
	assert.Empty(t, rec.Result().Cookies(), "nothing is written for a malformed token")
}

func TestClearSessionCookie(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	ClearSessionCookie(c)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Empty(t, cookies[0].Value)
}

func TestActiveTenantCookie_RoundTrip(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	WriteActiveTenantCookie(c, "acme")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	assert.Equal(t, "acme", ReadActiveTenantCookie(req))
}

func TestReadActiveTenantCookie_Absent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, ReadActiveTenantCookie(req))
}
