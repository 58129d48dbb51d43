package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func doWithRole(mw gin.HandlerFunc, role string) int {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	if role != "" {
		c.Set(ContextUserRole, role)
	}
	mw(c)
	if !c.IsAborted() {
		c.Status(http.StatusOK)
	}
	return w.Code
}

func TestRequireAdmin(t *testing.T) {
	assert.Equal(t, http.StatusOK, doWithRole(RequireAdmin(), "admin"))
	assert.Equal(t, http.StatusForbidden, doWithRole(RequireAdmin(), "user"))
	assert.Equal(t, http.StatusUnauthorized, doWithRole(RequireAdmin(), ""))
}
