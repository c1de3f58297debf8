package composables

import (
	"context"

	"github.com/sirupsen/logrus"
)

type contextKey int

const (
	subjectKey contextKey = iota
	loggerKey
)

// Subject is the authenticated caller for the current request. A person may
// hold several roles, but exactly one role and one unit context are active
// per session; both are inputs to every authorization decision.
type Subject struct {
	ID           string
	ActiveRole   string
	ActiveUnitID int64
}

// UseSubject returns the ambient subject from the context.
// If no subject was attached, the second return value is false.
func UseSubject(ctx context.Context) (*Subject, bool) {
	subject, ok := ctx.Value(subjectKey).(*Subject)
	return subject, ok
}

// WithSubject returns a new context carrying the authenticated subject.
func WithSubject(ctx context.Context, subject *Subject) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

// UseLogger returns the request logger from the context, falling back to the
// standard logger so callers never receive nil.
func UseLogger(ctx context.Context) *logrus.Entry {
	logger, ok := ctx.Value(loggerKey).(*logrus.Entry)
	if !ok {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return logger
}

// WithLogger returns a new context carrying the request logger.
func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}
