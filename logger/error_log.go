package logger

import (
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LogHTTPError logs a failed request. Client errors (4xx) are logged at warn
// level without a stack trace; everything else is an error and, outside
// production, carries the caller's stack.
func LogHTTPError(c *gin.Context, err error, statusCode int, message string) {
	log := GetLogger().Desugar()

	fields := requestFields(c)
	fields = append(fields,
		zap.Error(err),
		zap.String("error_type", errorTypeName(err)),
		zap.Int("status_code", statusCode),
	)

	if statusCode >= http.StatusBadRequest && statusCode < http.StatusInternalServerError {
		log.Warn(message, fields...)
		return
	}

	fields = append(fields, zap.Any("headers", filterSensitiveHeaders(c.Request.Header)))
	if os.Getenv("ENVIRONMENT") != "production" {
		fields = append(fields, zap.String("stack_trace", stackTrace(3)))
	}
	log.Error(message, fields...)
}

// requestFields extracts the routing context shared by every planner route.
func requestFields(c *gin.Context) []zap.Field {
	fields := []zap.Field{
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("client_ip", c.ClientIP()),
	}
	if id := c.GetString("request_id"); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if tripID := c.Param("id"); tripID != "" {
		fields = append(fields, zap.String("trip_id", tripID))
	}
	if itemID := c.Param("itemId"); itemID != "" {
		fields = append(fields, zap.String("item_id", itemID))
	}
	return fields
}

func errorTypeName(err error) string {
	if err == nil {
		return ""
	}
	name := fmt.Sprintf("%T", err)
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

func stackTrace(skip int) string {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, "runtime.") {
			b.WriteString(frame.Function)
			b.WriteString("\n\t")
			b.WriteString(frame.File)
			b.WriteString(":")
			b.WriteString(strconv.Itoa(frame.Line))
			b.WriteString("\n")
		}
		if !more {
			break
		}
	}
	return b.String()
}

// filterSensitiveHeaders redacts credentials before headers reach the log.
func filterSensitiveHeaders(headers http.Header) map[string]string {
	filtered := make(map[string]string, len(headers))
	for name, values := range headers {
		lower := strings.ToLower(name)
		if lower == "authorization" || lower == "cookie" ||
			strings.Contains(lower, "token") || strings.Contains(lower, "key") || strings.Contains(lower, "secret") {
			filtered[name] = "[REDACTED]"
			continue
		}
		if len(values) > 0 {
			filtered[name] = values[0]
		}
	}
	return filtered
}
