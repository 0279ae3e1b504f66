package config

import (
	"crypto/sha256"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName is attached to every log line.
const ServiceName = "identity-hooks"

// NewLogger creates a new Zap logger based on configuration.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	var config zap.Config

	if strings.ToLower(cfg.LogFormat) == "console" {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "ts"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(level)

	logger, err := config.Build(
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("service", ServiceName)),
	)
	if err != nil {
		return nil, err
	}

	zap.ReplaceGlobals(logger)

	return logger, nil
}

// MustNewLogger creates a logger and exits on error (for initialization).
func MustNewLogger(cfg *Config) *zap.Logger {
	logger, err := NewLogger(cfg)
	if err != nil {
		os.Stderr.WriteString("failed to create logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	return logger
}

// EmailHash logs an address as the first 8 hex characters of its SHA-256
// digest so log lines can be correlated without storing the address.
func EmailHash(email string) zap.Field {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return zap.String("email_hash", "")
	}
	h := sha256.Sum256([]byte(email))
	return zap.String("email_hash", fmt.Sprintf("%x", h[:4]))
}
