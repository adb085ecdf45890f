package hanami

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/slimloans/hanami/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// CLICommand is a function type representing a CLI command handler.
// It receives the application, a Cobra command, and the command's arguments.
//
// Example:
//
//	func importBooks(app *hanami.Application, cmd *cobra.Command, args []string) error {
//	    app.Logger().WithField("files", args).Info("importing books")
//	    return nil
//	}
type CLICommand func(*Application, *cobra.Command, []string) error

// Command wraps a CLICommand to execute within the application the CLI was
// started with. Returning ErrorExit stops the command without an error.
//
// Example:
//
//	{
//	    Use:  "import-books [file...]",
//	    RunE: hanami.Command(importBooks),
//	}
func Command(command CLICommand) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app := ApplicationFromContext(cmd.Context())
		if app == nil {
			return ErrorNoApplication.Errorf("%s must run through hanami.Execute", cmd.Name())
		}

		if err := command(app, cmd, args); err != nil && !errors.Is(err, ErrorExit) {
			return err
		}
		return nil
	}
}

// RootCommand is the CLI of the application, the built-in commands plus
// Options.Commands
func (a *Application) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           a.options.Name,
		Short:         fmt.Sprintf("%s command line", a.options.Name),
		Version:       a.options.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(builtinCommands()...)
	root.AddCommand(a.options.Commands...)

	return root
}

func builtinCommands() []*cobra.Command {
	server := &cobra.Command{
		Use:     "server",
		Short:   "Start the web server",
		Aliases: []string{"s", "web"},
		RunE:    Command(runServer),
	}
	server.Flags().String("bind", "", "address to listen on, defaults to server.bind")

	routes := &cobra.Command{
		Use:     "routes",
		Short:   "Display the currently defined routes",
		Aliases: []string{"route"},
		RunE:    Command(listRoutes),
	}
	routes.Flags().String("format", formatText, "output format: text, json or yaml")

	container := &cobra.Command{
		Use:   "container [slice]",
		Short: "List the components of the app or a slice",
		Args:  cobra.MaximumNArgs(1),
		RunE:  Command(listComponents),
	}

	settings := &cobra.Command{
		Use:   "settings",
		Short: "Display the effective configuration",
		RunE:  Command(showSettings),
	}
	settings.Flags().String("format", formatYAML, "output format: json or yaml")

	return []*cobra.Command{
		server,
		routes,
		container,
		settings,
		{
			Use:   "slices",
			Short: "List the slices and their state",
			RunE:  Command(listSlices),
		},
		{
			Use:   "version",
			Short: "Print the application version",
			RunE: Command(func(app *Application, cmd *cobra.Command, args []string) error {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", app.options.Name, app.options.Version, app.config.Env.Get())
				return nil
			}),
		},
	}
}

func runServer(app *Application, cmd *cobra.Command, args []string) error {
	bind, _ := cmd.Flags().GetString("bind")

	ws, err := NewWebService(app, bind)
	if err != nil {
		return err
	}

	ctx, cancel := handleSignals(cmd.Context(), app)
	defer cancel()

	return ws.Run(ctx)
}

func listRoutes(app *Application, cmd *cobra.Command, args []string) error {
	if err := app.Prepare(); err != nil {
		return err
	}

	routes := app.router.Inspect()
	format, _ := cmd.Flags().GetString("format")

	if format != formatText {
		return encode(cmd.OutOrStdout(), format, routes)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, rt := range routes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", rt.Method, rt.Path, rt.To, rt.Name)
	}
	return w.Flush()
}

func listSlices(app *Application, cmd *cobra.Command, args []string) error {
	if err := app.Prepare(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	return app.slices.WithNested(func(s *Slice) error {
		fmt.Fprintf(out, "%s\t%s\t%s\n", s.name, s.Root(), s.State())
		return nil
	})
}

func listComponents(app *Application, cmd *cobra.Command, args []string) error {
	if err := app.Boot(); err != nil {
		return err
	}

	s := app.Slice
	if len(args) == 1 {
		var err error
		if s, err = app.slices.Get(args[0]); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	for _, key := range s.container.Keys() {
		fmt.Fprintln(out, key)
	}
	return nil
}

func showSettings(app *Application, cmd *cobra.Command, args []string) error {
	if err := app.Prepare(); err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	return encode(cmd.OutOrStdout(), format, app.config.Describe())
}

func encode(w io.Writer, format string, v interface{}) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}

	return ErrorUnknownFormat.Errorf("unknown output format %q", format)
}
