package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func makeEngine() (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)

	var captured string
	engine := gin.New()
	engine.GET("/protected", RequireBearer(), func(c *gin.Context) {
		if token, ok := BearerToken(c); ok {
			captured = token
		}
		c.Status(http.StatusOK)
	})
	return engine, &captured
}

func TestRequireBearer_ExtractsToken(t *testing.T) {
	engine, captured := makeEngine()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer the-token")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "the-token", *captured)
}

func TestRequireBearer_MissingHeader(t *testing.T) {
	engine, _ := makeEngine()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authorization header required")
}

func TestRequireBearer_BadFormat(t *testing.T) {
	engine, _ := makeEngine()

	for _, header := range []string{"Bearer", "Bearer ", "Basic dXNlcg==", "the-token"} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestBearerToken_NotSet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := BearerToken(c)
	assert.False(t, ok)
}
