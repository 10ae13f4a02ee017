package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subsidyledger/pkg/rbac"
	"subsidyledger/pkg/trace"
	"subsidyledger/pkg/util"
)

const testSecret = "test-secret"

func protectedRouter(permission string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	grp := r.Group("/")
	grp.Use(AuthMiddleware(testSecret))
	grp.GET("/protected", RequirePermission(permission), func(c *gin.Context) {
		c.JSON(200, gin.H{
			"email": c.GetString("email"),
			"role":  c.GetString("role"),
		})
	})
	return r
}

func doGet(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	r := protectedRouter(rbac.PermissionCreateProgram)
	w := doGet(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	r := protectedRouter(rbac.PermissionCreateProgram)
	w := doGet(r, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareWrongSecret(t *testing.T) {
	token, err := util.GenerateJWT("gov@example.com", "gov", "other-secret")
	require.NoError(t, err)

	r := protectedRouter(rbac.PermissionCreateProgram)
	w := doGet(r, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequirePermissionAllowed(t *testing.T) {
	token, err := util.GenerateJWT("gov@example.com", "gov", testSecret)
	require.NoError(t, err)

	r := protectedRouter(rbac.PermissionCreateProgram)
	w := doGet(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gov@example.com")
}

func TestRequirePermissionForbiddenRole(t *testing.T) {
	token, err := util.GenerateJWT("producer@example.com", "producer", testSecret)
	require.NoError(t, err)

	r := protectedRouter(rbac.PermissionCreateProgram)
	w := doGet(r, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequirePermissionDefaultRoleForbidden(t *testing.T) {
	token, err := util.GenerateJWT("someone@example.com", "user", testSecret)
	require.NoError(t, err)

	r := protectedRouter(rbac.PermissionApplyProject)
	w := doGet(r, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTraceMiddlewareGeneratesAndEchoes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"trace": trace.FromContext(c.Request.Context())})
	})

	// generated when absent
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(trace.HeaderName()))

	// reused when present
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(trace.HeaderName(), "trace-abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "trace-abc", w.Header().Get(trace.HeaderName()))
	assert.Contains(t, w.Body.String(), "trace-abc")
}
