package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-pos-retail/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type staticChecker map[string]bool

func (s staticChecker) HasPermission(role, module, action string) bool {
	return s[role+":"+module+":"+action]
}

func newEngine(t *testing.T, tokens *auth.Issuer, guards ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(tokens)}, guards...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetString(CtxUsername)})
	})
	r.GET("/x", handlers...)
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewIssuer("k", time.Hour)
	r := newEngine(t, tokens)

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tok, err := tokens.GenerateToken(3, "mia", "cashier")
	require.NoError(t, err)
	w = get(r, tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mia")
}

func TestRequirePermission(t *testing.T) {
	tokens := auth.NewIssuer("k", time.Hour)
	checker := staticChecker{"cashier:invoices:add": true}

	allowed := newEngine(t, tokens, RequirePermission(checker, "invoices", "add"))
	denied := newEngine(t, tokens, RequirePermission(checker, "inventory", "add"))

	tok, err := tokens.GenerateToken(3, "mia", "cashier")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(allowed, tok).Code)
	w := get(denied, tok)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "forbidden")
}

func TestRequireRole(t *testing.T) {
	tokens := auth.NewIssuer("k", time.Hour)
	r := newEngine(t, tokens, RequireRole("admin"))

	admin, _ := tokens.GenerateToken(1, "root", "Admin")
	cashier, _ := tokens.GenerateToken(2, "mia", "cashier")
	assert.Equal(t, http.StatusOK, get(r, admin).Code)
	assert.Equal(t, http.StatusForbidden, get(r, cashier).Code)
}

func TestLoginRateLimiter_NilClientPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", LoginRateLimiter(nil, 1, zap.NewNop()), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}

func TestRequestLogger_TagsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "/ping", entries[0].ContextMap()["route"])
}
