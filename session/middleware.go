package session

import (
	"net/http"

	"github.com/slimloans/hanami/middleware"
)

// Middleware loads the session before the handler and persists it right
// before the response headers go out
func Middleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := middleware.Logger(ctx)

			s, err := store.Load(ctx, r)
			if err != nil {
				logger.WithError(err).Error("unable to load session")
				s = New("")
			}

			writer := middleware.NewWrapResponseWriter(w)

			saved := false
			save := func(int) {
				if saved {
					return
				}
				saved = true

				if err := store.Save(ctx, writer, s); err != nil {
					logger.WithError(err).Error("unable to save session")
				}
			}

			writer.BeforeWriteHeader(save)

			next.ServeHTTP(writer, r.WithContext(WithSession(ctx, s)))

			// nothing was written, headers are still open
			save(http.StatusOK)
		})
	}
}
