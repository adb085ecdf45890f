package middleware

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/slimloans/hanami/utils"
)

const filteredValue = "[FILTERED]"

// RequestLogger logs one line per request with params scrubbed by filters
func RequestLogger(logger *logrus.Logger, filters []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entry := logrus.NewEntry(logger).WithFields(logrus.Fields{
				"http.request_id": RequestIDFromRequest(r),
				"http.method":     r.Method,
				"http.path":       r.URL.Path,
			})

			writer := NewWrapResponseWriter(w)

			defer func(t time.Time) {
				elapsed := time.Since(t)
				status := writer.Status()

				l := entry.WithFields(logrus.Fields{
					"http.status_code":      status,
					"http.params":           FilterParams(r.URL.Query(), filters),
					"network.bytes_written": writer.BytesWritten(),
					"duration":              elapsed.Nanoseconds(),
				})

				str := fmt.Sprintf("Completed request [%v] [%d %s]", elapsed, status, http.StatusText(status))

				if status < 400 {
					l.Info(str)
				} else if status < 500 {
					l.Warn(str)
				} else {
					l.Error(str)
				}
			}(time.Now())

			next.ServeHTTP(writer, r.WithContext(WithLogger(r.Context(), entry)))
		})
	}
}

// FilterParams flattens values replacing any key matching a filter
func FilterParams(values url.Values, filters []string) map[string]string {
	ret := make(map[string]string, len(values))

	for key, vals := range values {
		if isFiltered(key, filters) {
			ret[key] = filteredValue
			continue
		}
		ret[key] = strings.Join(vals, ",")
	}
	return ret
}

func isFiltered(key string, filters []string) bool {
	lower := strings.ToLower(key)
	for _, f := range filters {
		if strings.Contains(lower, strings.ToLower(f)) {
			return true
		}
	}
	return utils.StringSliceContains(filters, key)
}
