package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fitcoach-api/internal/models"
	appErrors "github.com/noah-isme/fitcoach-api/pkg/errors"
)

type stubValidator struct {
	claims *models.JWTClaims
}

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return s.claims, nil
}

type observedRequest struct {
	method, path string
	status       int
}

type recordingObserver struct {
	requests []observedRequest
}

func (r *recordingObserver) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	r.requests = append(r.requests, observedRequest{method: method, path: path, status: status})
}

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router *gin.Engine, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func protectedRouter(role models.UserRole) *gin.Engine {
	router := gin.New()
	validator := stubValidator{claims: &models.JWTClaims{UserID: "coach-1", Role: role}}
	router.GET("/me", JWT(validator), func(c *gin.Context) {
		claims, _ := Claims(c)
		c.String(http.StatusOK, claims.UserID)
	})
	router.GET("/admin", JWT(validator), RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestJWTRequiresBearerToken(t *testing.T) {
	router := protectedRouter(models.RoleCoach)

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/me", "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/me", "Bearer ").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/me", "Bearer bad").Code)

	rec := serve(router, http.MethodGet, "/me", "bearer good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "coach-1", rec.Body.String())
}

func TestRequireRoles(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, serve(protectedRouter(models.RoleCoach), http.MethodGet, "/admin", "Bearer good").Code)
	assert.Equal(t, http.StatusNoContent, serve(protectedRouter(models.RoleAdmin), http.MethodGet, "/admin", "Bearer good").Code)

	router := gin.New()
	router.GET("/", RequireRoles(models.RoleCoach), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/", "").Code)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	observer := &recordingObserver{}
	router := gin.New()
	router.Use(Metrics(observer))
	router.GET("/clients/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(router, http.MethodGet, "/clients/abc", "")
	serve(router, http.MethodGet, "/nowhere", "")

	require.Len(t, observer.requests, 2)
	assert.Equal(t, observedRequest{method: http.MethodGet, path: "/clients/:id", status: http.StatusOK}, observer.requests[0])
	assert.Equal(t, "unmatched", observer.requests[1].path)
	assert.Equal(t, http.StatusNotFound, observer.requests[1].status)
}

func TestResponseMeta(t *testing.T) {
	router := gin.New()
	router.Use(WithResponseMeta())
	router.GET("/plain", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"meta": ExtractMeta(c)})
	})
	router.GET("/cached", func(c *gin.Context) {
		SetCacheHit(c, true)
		SetDataSource(c, "fixture")
		SetDataSource(c, "")
		c.JSON(http.StatusOK, gin.H{"meta": ExtractMeta(c)})
	})

	var plain struct {
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(serve(router, http.MethodGet, "/plain", "").Body.Bytes(), &plain))
	assert.Nil(t, plain.Meta)

	var cached struct {
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(serve(router, http.MethodGet, "/cached", "").Body.Bytes(), &cached))
	assert.Equal(t, true, cached.Meta["cache_hit"])
	assert.Equal(t, "fixture", cached.Meta["source"])
	assert.Contains(t, cached.Meta, "processing_time_ms")
}

func rateLimitedRouter(t *testing.T, opts RateLimitOptions) *gin.Engine {
	t.Helper()
	limit, err := RateLimit(opts)
	require.NoError(t, err)
	router := gin.New()
	router.POST("/login", limit, func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestRateLimitInMemory(t *testing.T) {
	router := rateLimitedRouter(t, RateLimitOptions{Rate: "2-M"})

	first := serve(router, http.MethodPost, "/login", "")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/login", "").Code)

	rec := serve(router, http.MethodPost, "/login", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), appErrors.ErrRateLimited.Code)
}

func TestRateLimitSharedThroughRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	opts := RateLimitOptions{Rate: "1-H", Prefix: "test-login", Redis: client}

	assert.Equal(t, http.StatusOK, serve(rateLimitedRouter(t, opts), http.MethodPost, "/login", "").Code)
	// A second instance sees the same counter.
	assert.Equal(t, http.StatusTooManyRequests, serve(rateLimitedRouter(t, opts), http.MethodPost, "/login", "").Code)
}

func TestRateLimitDisabledAndInvalid(t *testing.T) {
	router := rateLimitedRouter(t, RateLimitOptions{})
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/login", "").Code)
	}

	_, err := RateLimit(RateLimitOptions{Rate: "lots"})
	assert.Error(t, err)
}
