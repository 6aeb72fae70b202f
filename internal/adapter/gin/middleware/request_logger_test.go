package middleware

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func setupLoggedRouter(t *testing.T, maxContent int) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core), maxContent))
	return r, logs
}

func TestRequestLogger_PostBodyRedacted(t *testing.T) {
	r, logs := setupLoggedRouter(t, 0)
	var handlerBody string
	r.POST("/users", func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		handlerBody = string(b)
		c.JSON(http.StatusCreated, gin.H{"id": 1})
	})

	payload := `{"name":"Ann","password":"secret","password_confirmation":"secret"}`
	req := httptest.NewRequest(http.MethodPost, "/users?x=1", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, payload, handlerBody, "body must be rewound for the handler")

	entries := logs.All()
	require.Len(t, entries, 2)

	reqEntry := entries[0].ContextMap()
	assert.Equal(t, "Request", entries[0].Message)
	assert.Equal(t, "POST", reqEntry["method"])
	assert.Equal(t, "http://example.com/users?x=1", reqEntry["url"])
	assert.Equal(t, "test-agent", reqEntry["user_agent"])
	body, ok := reqEntry["body"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ann", body["name"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "password_confirmation")

	respEntry := entries[1].ContextMap()
	assert.Equal(t, "Response", entries[1].Message)
	assert.EqualValues(t, http.StatusCreated, respEntry["status"])
	assert.Equal(t, "Created", respEntry["status_text"])
	assert.JSONEq(t, `{"id":1}`, respEntry["content"].(string))
}

func TestRequestLogger_GetHasNoBody(t *testing.T) {
	r, logs := setupLoggedRouter(t, 0)
	r.GET("/users", func(c *gin.Context) {
		c.JSON(http.StatusOK, []string{})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.NotContains(t, entries[0].ContextMap(), "body")
}

func TestRequestLogger_FileUploadHasNoBody(t *testing.T) {
	r, logs := setupLoggedRouter(t, 0)
	r.POST("/upload", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Ann"))
	fw, err := mw.CreateFormFile("avatar", "a.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("png"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.NotContains(t, entries[0].ContextMap(), "body")
}

func TestRequestLogger_LargeContentReplaced(t *testing.T) {
	r, logs := setupLoggedRouter(t, 10)
	r.GET("/big", func(c *gin.Context) {
		c.String(http.StatusOK, strings.Repeat("x", 11))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/big", nil))

	assert.Equal(t, strings.Repeat("x", 11), w.Body.String())
	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, ContentTooLarge, entries[1].ContextMap()["content"])
}

func TestRequestLogger_ShortCircuitStillLogged(t *testing.T) {
	r, logs := setupLoggedRouter(t, 0)
	r.POST("/users", func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"message": "Validasi gagal"})
	}, func(c *gin.Context) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.EqualValues(t, http.StatusUnprocessableEntity, entries[1].ContextMap()["status"])
	assert.Equal(t, "Unprocessable Entity", entries[1].ContextMap()["status_text"])
}

func TestSafely(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	assert.NotPanics(t, func() {
		safely(zap.New(core), func() { panic("log sink gone") })
	})
	assert.Equal(t, 1, logs.FilterMessage("request logging failed").Len())
}
