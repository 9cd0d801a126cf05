package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protected(tokens *Tokens, roles ...string) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{tokens.RequireAuth()}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetUint(ContextUserID),
			"email":   c.GetString(ContextEmail),
			"role":    c.GetString(ContextRole),
		})
	})
	r.GET("/me", handlers...)
	return r
}

func get(h http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	tok, err := tokens.GenerateToken(42, "ana@example.com", "driver")
	assert.NilError(t, err)

	claims, err := tokens.ValidateToken(tok)
	assert.NilError(t, err)
	id, err := claims.UserID()
	assert.NilError(t, err)
	assert.Check(t, is.Equal(id, uint(42)))
	assert.Check(t, is.Equal(claims.Email, "ana@example.com"))
	assert.Check(t, is.Equal(claims.Role, "driver"))
}

func TestValidateTokenRejects(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	tok, err := tokens.GenerateToken(1, "a@b.c", "admin")
	assert.NilError(t, err)

	_, err = NewTokens("other", time.Hour).ValidateToken(tok)
	assert.Check(t, err != nil, "token signed with another secret accepted")

	expired := NewTokens("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.GenerateToken(1, "a@b.c", "admin")
	assert.NilError(t, err)
	_, err = tokens.ValidateToken(old)
	assert.Check(t, err != nil, "expired token accepted")
}

func TestRequireAuth(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	r := protected(tokens)

	rec := get(r, "/me", "")
	assert.Check(t, is.Equal(rec.Code, http.StatusUnauthorized))

	rec = get(r, "/me", "garbage")
	assert.Check(t, is.Equal(rec.Code, http.StatusUnauthorized))

	tok, err := tokens.GenerateToken(7, "m@example.com", "monitor")
	assert.NilError(t, err)
	rec = get(r, "/me", tok)
	assert.Check(t, is.Equal(rec.Code, http.StatusOK))
	assert.Check(t, is.Contains(rec.Body.String(), `"user_id":7`))
	assert.Check(t, is.Contains(rec.Body.String(), `"role":"monitor"`))
}

func TestRequireRole(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	r := protected(tokens, "admin")

	monitor, err := tokens.GenerateToken(7, "m@example.com", "monitor")
	assert.NilError(t, err)
	assert.Check(t, is.Equal(get(r, "/me", monitor).Code, http.StatusForbidden))

	admin, err := tokens.GenerateToken(1, "a@example.com", "admin")
	assert.NilError(t, err)
	assert.Check(t, is.Equal(get(r, "/me", admin).Code, http.StatusOK))
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextRequestID))
	})

	rec := get(r, "/", "")
	id := rec.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(rec.Body.String(), id))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Check(t, is.Equal(rec.Header().Get(RequestIDHeader), "abc-123"))
}

func TestEnableCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name    string
		allowed []string
		origin  string
		method  string
		code    int
		echoed  string
	}{
		{name: "any origin", origin: "http://localhost:3000", method: http.MethodGet, code: http.StatusTeapot, echoed: "http://localhost:3000"},
		{name: "allowed", allowed: []string{"https://app.example.com"}, origin: "https://app.example.com", method: http.MethodGet, code: http.StatusTeapot, echoed: "https://app.example.com"},
		{name: "not allowed", allowed: []string{"https://app.example.com"}, origin: "https://evil.example.com", method: http.MethodGet, code: http.StatusTeapot},
		{name: "preflight", origin: "http://localhost:3000", method: http.MethodOptions, code: http.StatusNoContent, echoed: "http://localhost:3000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/routes", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			EnableCORS(next, tt.allowed).ServeHTTP(rec, req)

			assert.Check(t, is.Equal(rec.Code, tt.code))
			assert.Check(t, is.Equal(rec.Header().Get("Access-Control-Allow-Origin"), tt.echoed))
			assert.Check(t, is.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "PATCH"))
		})
	}
}
