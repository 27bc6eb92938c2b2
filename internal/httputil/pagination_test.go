package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestContext(t *testing.T, query string) *gin.Context {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		offset, limit, err := ParsePagination(newTestContext(t, ""))
		assert.NoError(t, err)
		assert.Equal(t, 0, offset)
		assert.Equal(t, 50, limit)
	})

	t.Run("custom values", func(t *testing.T) {
		offset, limit, err := ParsePagination(newTestContext(t, "offset=10&limit=25"))
		assert.NoError(t, err)
		assert.Equal(t, 10, offset)
		assert.Equal(t, 25, limit)
	})

	t.Run("negative offset", func(t *testing.T) {
		_, _, err := ParsePagination(newTestContext(t, "offset=-1"))
		assert.Error(t, err)
	})

	t.Run("limit above maximum", func(t *testing.T) {
		_, _, err := ParsePagination(newTestContext(t, "limit=101"))
		assert.Error(t, err)
	})

	t.Run("non-numeric", func(t *testing.T) {
		_, _, err := ParsePagination(newTestContext(t, "offset=abc"))
		assert.Error(t, err)
	})
}
