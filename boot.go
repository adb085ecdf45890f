package hanami

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/slimloans/hanami/errors"
)

// Run executes the CLI of the application with the process arguments and
// exits with status 1 on error
func Run(options Options) {
	if err := Execute(context.Background(), options, os.Args[1:]...); err != nil {
		errorString := err.Error()

		var e errors.Error
		if errors.As(err, &e) && e.Caller != "" {
			errorString = fmt.Sprintf("(%s) %s", e.Error(), e.Caller)
		}

		fmt.Fprintf(os.Stderr, "Application Error: %s\n", errorString)
		os.Exit(1)
	}
}

// Execute builds the application and runs the command named by args
func Execute(ctx context.Context, options Options, args ...string) error {
	app := NewApplication(options)

	root := app.RootCommand()
	root.SetArgs(args)

	return root.ExecuteContext(WithApplication(ctx, app))
}

// handleSignals returns a context cancelled on SIGINT or SIGTERM
func handleSignals(parent context.Context, app *Application) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func(c <-chan os.Signal) {
		defer signal.Stop(sig)

		select {
		case s := <-c:
			app.logger.Infof("issuing shutdown due to signal (%s)", s.String())
			cancel()
		case <-ctx.Done():
		}
	}(sig)

	return ctx, cancel
}
