package hanami

import "context"

type contextKey struct{}

// WithApplication returns a copy of ctx carrying the application, commands
// and event handlers receive it this way
func WithApplication(ctx context.Context, a *Application) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

// ApplicationFromContext returns the application stored in ctx, nil when
// there is none
func ApplicationFromContext(ctx context.Context) *Application {
	if ctx == nil {
		return nil
	}

	a, _ := ctx.Value(contextKey{}).(*Application)
	return a
}
