package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-crud-service/pkg/logger"
)

const (
	// DefaultMaxLoggedContent is the response size above which content is replaced.
	DefaultMaxLoggedContent = 10000
	// ContentTooLarge replaces response bodies above the configured limit.
	ContentTooLarge = "[Content too large to log]"

	logTimeLayout = "2006-01-02 15:04:05"
)

// redactedFields never reach the request log.
var redactedFields = []string{"password", "password_confirmation"}

// bodyCaptureWriter tees everything written to the client into body.
type bodyCaptureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyCaptureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// RequestLogger writes a "Request" entry before the rest of the chain runs and
// a "Response" entry after it, both on the requests channel. Bodies of GET
// requests and of file uploads are not logged. Response content longer than
// maxContent characters is replaced by ContentTooLarge.
// Nothing that goes wrong while logging affects the response.
func RequestLogger(log *zap.Logger, maxContent int) gin.HandlerFunc {
	if maxContent <= 0 {
		maxContent = DefaultMaxLoggedContent
	}

	return func(c *gin.Context) {
		safely(log, func() { logRequest(c, log) })

		w := &bodyCaptureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w

		c.Next()

		safely(log, func() { logResponse(c, log, w.body, maxContent) })
	}
}

func logRequest(c *gin.Context, log *zap.Logger) {
	r := c.Request
	fields := []zap.Field{
		zap.String("time", time.Now().Format(logTimeLayout)),
		zap.String("ip", c.ClientIP()),
		zap.String("method", r.Method),
		zap.String("url", fullURL(r)),
		zap.String("user_agent", r.UserAgent()),
		zap.Any("headers", r.Header),
	}

	if r.Method != http.MethodGet {
		if body, hasFiles := readPayload(r); !hasFiles {
			for _, k := range redactedFields {
				delete(body, k)
			}
			fields = append(fields, zap.Any("body", body))
		}
	}

	logger.WithContext(r.Context(), log).Info("Request", fields...)
}

func logResponse(c *gin.Context, log *zap.Logger, body *bytes.Buffer, maxContent int) {
	content := body.String()
	if len(content) > maxContent {
		content = ContentTooLarge
	}

	status := c.Writer.Status()
	logger.WithContext(c.Request.Context(), log).Info("Response",
		zap.String("time", time.Now().Format(logTimeLayout)),
		zap.String("url", fullURL(c.Request)),
		zap.Int("status", status),
		zap.String("status_text", http.StatusText(status)),
		zap.String("content", content),
	)
}

// safely runs fn and swallows any panic it raises.
func safely(log *zap.Logger, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Warn("request logging failed", zap.Any("panic", rec))
		}
	}()
	fn()
}

func fullURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
