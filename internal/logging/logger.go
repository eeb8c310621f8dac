// Package logging provides structured, per-request logging built on logrus.
package logging

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus.Logger with the fields the game server always wants.
type Logger struct {
	*logrus.Logger
	service string
}

// Options configures a new Logger.
type Options struct {
	Service string
	Level   string
	Format  string // "json" or "text"
}

// New builds a Logger from explicit options.
func New(opts Options) *Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.EqualFold(opts.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		}})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	l.SetOutput(os.Stdout)

	return &Logger{Logger: l, service: opts.Service}
}

// NewFromEnv builds a Logger using LOG_LEVEL/LOG_FORMAT, defaulting to
// info/json, and tagging every entry with the given service name.
func NewFromEnv(service string) *Logger {
	level := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if level == "" {
		level = "info"
	}
	format := strings.TrimSpace(os.Getenv("LOG_FORMAT"))
	if format == "" {
		format = "json"
	}
	return New(Options{Service: service, Level: level, Format: format})
}

// WithContext returns an Entry carrying trace id, account id and role pulled
// from the request context, so call chains never reach for a global logger.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	fields := logrus.Fields{"service": l.service}
	if traceID, ok := ctx.Value(ctxTraceIDKey).(string); ok && traceID != "" {
		fields["request_id"] = traceID
	}
	if accountID, ok := ctx.Value(ctxAccountIDKey).(string); ok && accountID != "" {
		fields["account_id"] = accountID
	}
	if role, ok := ctx.Value(ctxRoleKey).(string); ok && role != "" {
		fields["role"] = role
	}
	return l.Logger.WithFields(fields)
}

// LogRequest records one completed HTTP request at info level, tagged
// with the method, path, status, and duration.
func (l *Logger) LogRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	l.WithContext(ctx).WithFields(logrus.Fields{
		"method":      method,
		"path":        path,
		"status":      status,
		"duration_ms": duration.Milliseconds(),
	}).Info("request")
}

// LogSecurityEvent records a security-relevant occurrence (rate limiting,
// abuse-detection flags, audit-adjacent signals) at warn level.
func (l *Logger) LogSecurityEvent(ctx context.Context, event string, fields map[string]interface{}) {
	entry := l.WithContext(ctx).WithField("security_event", event)
	for k, v := range fields {
		entry = entry.WithField(k, v)
	}
	entry.Warn(event)
}

type ctxKey string

const (
	ctxTraceIDKey   ctxKey = "trace_id"
	ctxAccountIDKey ctxKey = "account_id"
	ctxRoleKey      ctxKey = "role"
)

// WithTraceID returns a context carrying the request-id to be logged.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, ctxTraceIDKey, traceID)
}

// WithAccount returns a context carrying the authenticated account id/role.
func WithAccount(ctx context.Context, accountID, role string) context.Context {
	ctx = context.WithValue(ctx, ctxAccountIDKey, accountID)
	return context.WithValue(ctx, ctxRoleKey, role)
}

// TraceIDFrom extracts the request-id previously attached with WithTraceID.
func TraceIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(ctxTraceIDKey).(string)
	return v
}

// AccountIDFrom extracts the account id previously attached with WithAccount.
func AccountIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(ctxAccountIDKey).(string)
	return v
}

// RoleFrom extracts the role previously attached with WithAccount.
func RoleFrom(ctx context.Context) string {
	v, _ := ctx.Value(ctxRoleKey).(string)
	return v
}
