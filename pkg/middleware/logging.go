package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/sgc-hq/sgc/pkg/composables"
)

type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
		w.ResponseWriter.WriteHeader(code)
	}
}

func (w *statusWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// WithLogger attaches a request-scoped logger to the context, logs request
// completion and recovers panics into a 500.
func WithLogger(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := r.Header.Get("X-Request-Id")
			if requestID == "" {
				requestID = uuid.New().String()
			}

			entry := logger.WithFields(logrus.Fields{
				"request_id": requestID,
				"method":     r.Method,
				"path":       r.URL.Path,
			})
			w.Header().Set("X-Request-Id", requestID)

			ww := &statusWriter{ResponseWriter: w}
			r = r.WithContext(composables.WithLogger(r.Context(), entry))

			defer func() {
				if recovered := recover(); recovered != nil {
					entry.WithFields(logrus.Fields{
						"panic": recovered,
						"stack": string(debug.Stack()),
					}).Error("panic recovered in request handler")
					if !ww.written {
						http.Error(ww, "Internal Server Error", http.StatusInternalServerError)
					}
				}
			}()

			next.ServeHTTP(ww, r)

			entry.WithFields(logrus.Fields{
				"status":   ww.Status(),
				"duration": time.Since(start),
			}).Info("request completed")
		})
	}
}
