package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/tigabum/christian-platform/internal/identity/middleware"
	"github.com/tigabum/christian-platform/internal/identity/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func mintToken(t *testing.T, userID int64, role string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := struct {
		Role      string `json:"role"`
		TokenType string `json:"typ"`
		jwt.RegisteredClaims
	}{
		Role:      role,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    "christian-platform",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        "test-token",
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	return raw
}

func newTestRouter(policy middleware.AuthPolicy) *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := service.NewAuthService(nil, nil, service.AuthServiceConfig{JWTSecret: []byte(testSecret)})
	router := gin.New()
	router.GET("/protected", middleware.AuthMiddleware(auth, policy), func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		role, _ := c.Get("user_role")
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": role})
	})
	return router
}

func doRequest(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	router := newTestRouter(middleware.AuthPolicy{})
	recorder := doRequest(router, "")
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	router := newTestRouter(middleware.AuthPolicy{})
	token := mintToken(t, 42, "responder", time.Hour)
	recorder := doRequest(router, token)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	router := newTestRouter(middleware.AuthPolicy{})
	token := mintToken(t, 42, "responder", -time.Minute)
	recorder := doRequest(router, token)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", recorder.Code)
	}
}

func TestAuthMiddlewareRoleEnforcement(t *testing.T) {
	router := newTestRouter(middleware.AuthPolicy{Roles: []string{"admin"}})

	asker := mintToken(t, 42, "asker", time.Hour)
	recorder := doRequest(router, asker)
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for asker on admin route, got %d", recorder.Code)
	}

	admin := mintToken(t, 1, "admin", time.Hour)
	recorder = doRequest(router, admin)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", recorder.Code)
	}
}

func TestAuthMiddlewarePublicMode(t *testing.T) {
	router := newTestRouter(middleware.AuthPolicy{Mode: "public"})
	recorder := doRequest(router, "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected public route to pass without token, got %d", recorder.Code)
	}
}
