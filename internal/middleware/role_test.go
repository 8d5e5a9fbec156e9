package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roleRequest(t *testing.T, role interface{}, allowed ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != nil {
		c.Set("role", role)
	}

	h := RequireRole(allowed...)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec
}

func TestRequireRoleAllowsMatch(t *testing.T) {
	rec := roleRequest(t, "admin", "admin")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleRejectsMismatch(t *testing.T) {
	rec := roleRequest(t, "user", "admin")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleRejectsMissingClaim(t *testing.T) {
	rec := roleRequest(t, nil, "admin")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleAcceptsAnyListed(t *testing.T) {
	rec := roleRequest(t, "user", "admin", "user")
	assert.Equal(t, http.StatusOK, rec.Code)
}
