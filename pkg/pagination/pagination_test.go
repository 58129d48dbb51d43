package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func ctxWithQuery(t *testing.T, query string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestFromQueryDefaults(t *testing.T) {
	p := FromQuery(ctxWithQuery(t, ""))
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)
}

func TestFromQueryParsesValues(t *testing.T) {
	p := FromQuery(ctxWithQuery(t, "limit=25&offset=75"))
	assert.Equal(t, 25, p.Limit)
	assert.Equal(t, 75, p.Offset)
}

func TestFromQueryClamps(t *testing.T) {
	p := FromQuery(ctxWithQuery(t, "limit=9999&offset=-5"))
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)

	p = FromQuery(ctxWithQuery(t, "limit=0"))
	assert.Equal(t, DefaultLimit, p.Limit)

	p = FromQuery(ctxWithQuery(t, "limit=abc&offset=xyz"))
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)
}

func TestSortFromQuery(t *testing.T) {
	allowed := map[string]bool{"started_at": true, "created_at": true}

	assert.Equal(t, "started_at DESC", SortFromQuery(ctxWithQuery(t, ""), allowed, "started_at"))
	assert.Equal(t, "created_at ASC", SortFromQuery(ctxWithQuery(t, "sort=created_at&order=asc"), allowed, "started_at"))
	assert.Equal(t, "started_at DESC", SortFromQuery(ctxWithQuery(t, "sort=password;DROP"), allowed, "started_at"),
		"unknown sort keys fall back to the default")
	assert.Equal(t, "created_at DESC", SortFromQuery(ctxWithQuery(t, "sort=created_at&order=sideways"), allowed, "started_at"))
}
