package hanami

import (
	"github.com/slimloans/hanami/config"
	"github.com/slimloans/hanami/container"
	"github.com/slimloans/hanami/router"
	"github.com/spf13/cobra"
)

// SliceFunc runs against a slice while it prepares, the place to register
// components, actions, views and providers
type SliceFunc func(*Slice) error

type Options struct {
	// Name of the application, also the name of its root slice
	Name    string
	Version string

	// Root is the directory holding config/ and the dotenv files
	Root string

	// Namespace is the Go package path of the application, auto registered
	// component keys are relative to it
	Namespace string

	// Env overrides the detected environment
	Env string

	Configure func(*config.Config)

	// Settings is a pointer to the settings struct, see the settings package
	Settings interface{}

	Providers []container.Provider
	Prepare   SliceFunc

	// Routes draws the application routes, slices mounted without a block
	// draw their own Routes
	Routes func(*router.Scope)

	Slices map[string]SliceOptions

	// Commands are added to the CLI next to the built-in ones
	Commands []*cobra.Command
}

type SliceOptions struct {
	// Root defaults to slices/<name> below the parent root
	Root string

	// Namespace defaults to <parent namespace>/slices/<name>
	Namespace string

	Configure func(*config.Config)
	Settings  interface{}
	Providers []container.Provider
	Prepare   SliceFunc
	Routes    func(*router.Scope)

	// ImportFromParent imports every exported parent component under the
	// parent's name
	ImportFromParent bool

	// Export limits the components other slices may import
	Export []string

	Slices map[string]SliceOptions
}

func (o Options) sliceOptions() SliceOptions {
	return SliceOptions{
		Root:      o.Root,
		Namespace: o.Namespace,
		Configure: o.Configure,
		Settings:  o.Settings,
		Providers: o.Providers,
		Prepare:   o.Prepare,
		Routes:    o.Routes,
		Slices:    o.Slices,
	}
}
