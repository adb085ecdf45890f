package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// Recoverer middleware that adds panic recovering. It goes after
// RequestLogger so the panic is logged by the request logger and the 500 is
// written through its writer.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				Logger(r.Context()).WithFields(logrus.Fields{
					"stack": string(debug.Stack()),
				}).Errorf("%#v", rec)

				w.WriteHeader(http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
