// Package logger provides the shared Zap sugared logger for the planner service.
// Level and encoder come from LOG_LEVEL and ENVIRONMENT; helpers mask API keys
// and connection strings before they reach the log stream.
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.SugaredLogger
	once   sync.Once
)

// IsTest should be set to true when running in a test environment so output
// goes to stdout with the development encoder.
var IsTest bool

// newConfig picks the zap preset for an environment. Production logs JSON to
// stdout with errors on stderr; everything else uses the console encoder.
func newConfig(environment, levelStr string, test bool) zap.Config {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		level = zapcore.InfoLevel
	}

	var cfg zap.Config
	switch {
	case test:
		cfg = zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stdout"}
	case environment == "production":
		cfg = zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.InitialFields = map[string]interface{}{"service": "planner"}
	return cfg
}

func initLoggerInternal() {
	zapLogger, err := newConfig(os.Getenv("ENVIRONMENT"), os.Getenv("LOG_LEVEL"), IsTest).Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	logger = zapLogger.Sugar()
}

// InitLogger builds the global logger once. Later calls are no-ops.
func InitLogger() {
	once.Do(initLoggerInternal)
}

// GetLogger returns the shared logger, building it on first use.
func GetLogger() *zap.SugaredLogger {
	once.Do(initLoggerInternal)
	return logger
}

// Close flushes buffered entries. Call it before the process exits.
func Close() error {
	if logger == nil || IsTest {
		return nil
	}
	if err := logger.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "Error syncing logger: %v\n", err)
		return err
	}
	return nil
}

// MaskSensitiveString keeps the first prefixLen and last suffixLen
// characters. Short strings are fully starred so their length is all that
// leaks.
func MaskSensitiveString(s string, prefixLen, suffixLen int) string {
	if s == "" {
		return ""
	}
	if len(s) < prefixLen+suffixLen+3 {
		return strings.Repeat("*", len(s))
	}
	return s[:prefixLen] + "..." + s[len(s)-suffixLen:]
}

// MaskAPIKey masks a Places, Gemini or Pexels key for logging.
func MaskAPIKey(key string) string {
	return MaskSensitiveString(key, 4, 2)
}

// MaskConnectionString hides the password of a postgres:// URL or a
// key=value DSN.
func MaskConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}
	masked := connStr

	if scheme := strings.Index(masked, "://"); scheme != -1 {
		rest := masked[scheme+3:]
		if at := strings.Index(rest, "@"); at != -1 {
			userInfo := rest[:at]
			if colon := strings.Index(userInfo, ":"); colon != -1 {
				masked = masked[:scheme+3] + userInfo[:colon] + ":***" + rest[at:]
			}
		}
	}

	const key = "password="
	if idx := strings.Index(masked, key); idx != -1 {
		start := idx + len(key)
		end := strings.IndexByte(masked[start:], ' ')
		if end == -1 {
			masked = masked[:start] + "***"
		} else {
			masked = masked[:start] + "***" + masked[start+end:]
		}
	}
	return masked
}
