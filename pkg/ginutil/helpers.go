package ginutil

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// QueryInt extracts an integer from query parameters with default value
func QueryInt(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// QueryBool reads a boolean query parameter; unparsable values yield defaultValue
func QueryBool(c *gin.Context, key string, defaultValue bool) bool {
	return ParseBool(c.Query(key), defaultValue)
}

// ParseBool accepts the spellings HTML forms and JSON clients send
func ParseBool(s string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	case "0", "false", "off", "no":
		return false
	default:
		return defaultValue
	}
}

// ParamID extracts a non-empty trimmed path parameter
func ParamID(c *gin.Context, key string) (string, bool) {
	v := strings.TrimSpace(c.Param(key))
	return v, v != ""
}
