package ginutil

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestQueryHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/?page=3&limit=abc&all=on&flag=nope", nil)

	assert.Equal(t, 3, QueryInt(c, "page", 1))
	assert.Equal(t, 20, QueryInt(c, "limit", 20))
	assert.True(t, QueryBool(c, "all", false))
	assert.True(t, QueryBool(c, "flag", true))
	assert.False(t, QueryBool(c, "missing", false))
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"true", true}, {"TRUE", true}, {"1", true}, {"on", true},
		{"false", false}, {"0", false}, {"off", false}, {"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseBool(tt.in, false), tt.in)
	}
}
