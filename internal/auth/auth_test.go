package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey    = "test-signing-key"
	testIssuer = "campusride-test"
)

func TestIssueAndParse(t *testing.T) {
	tok, err := Issue("2", "driver", testIssuer, testKey, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, 5*time.Second)

	claims, err := Parse(tok.AccessToken, testKey, testIssuer)
	require.NoError(t, err)
	assert.Equal(t, "2", claims.UserID)
	assert.Equal(t, "2", claims.Subject)
	assert.Equal(t, "driver", claims.Role)
}

func TestParseRejects(t *testing.T) {
	good, err := Issue("1", "student", testIssuer, testKey, time.Hour)
	require.NoError(t, err)
	expired, err := Issue("1", "student", testIssuer, testKey, -time.Minute)
	require.NoError(t, err)

	_, err = Parse(good.AccessToken, "other-key", testIssuer)
	assert.Error(t, err)

	_, err = Parse(good.AccessToken, testKey, "someone-else")
	assert.ErrorIs(t, err, ErrIssuerMismatch)

	_, err = Parse(expired.AccessToken, testKey, testIssuer)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = Parse("not-a-token", testKey, testIssuer)
	assert.Error(t, err)
}

func TestBearerAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", BearerAuth(testKey, testIssuer), func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		require.True(t, ok)
		c.String(http.StatusOK, claims.UserID)
	})

	tok, err := Issue("3", "admin", testIssuer, testKey, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer abc", http.StatusUnauthorized},
		{"valid", "Bearer " + tok.AccessToken, http.StatusOK},
		{"lowercase scheme", "bearer " + tok.AccessToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "3", w.Body.String())
			}
		})
	}
}
