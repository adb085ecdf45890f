/*
Package hanami is the core of a web application framework: an application
split into slices, a dependency container per slice, routing onto actions and
configuration cascading from the application down to nested slices.

# Overview

An Application is the root slice. Slices are named parts of it with their own
root directory, container, configuration and nested slices. Components are
registered on a slice container, imported between slices and resolved lazily
until the slice boots, after which every container is final.

Routes map paths onto endpoint identifiers ("books.show") that resolve to the
action registered under "actions.books.show" in the container of the slice
owning the route. Actions get their paired view ("views.books.show"), the
slice's view context and the routes helper injected when they are built.

# Usage

	package main

	import (
		"github.com/slimloans/hanami"
		"github.com/slimloans/hanami/action"
		"github.com/slimloans/hanami/router"
	)

	func main() {
		hanami.Run(hanami.Options{
			Name: "bookshelf",
			Prepare: func(s *hanami.Slice) error {
				return s.Action("home.show", action.HandlerFunc(func(req *action.Request, res *action.Response) error {
					res.SetBody("Hello Hanami!")
					return nil
				}))
			},
			Routes: func(r *router.Scope) {
				r.Root("home.show")
				r.Slice("admin", "/admin", nil)
			},
			Slices: map[string]hanami.SliceOptions{
				"admin": {ImportFromParent: true},
			},
		})
	}

# Lifecycle

  - Prepare: configures every loaded slice, registers providers and
    components, draws the routes. Containers resolve lazily.
  - Boot: finalizes every container, starting the providers, and builds the
    router resolving each endpoint up front.
  - Shutdown: stops the providers, nested slices first.

# Components

  - container: keys to values, factories and providers, with imports between slices.
  - config: cascading configuration, frozen once finalized.
  - router: the routing DSL compiled onto chi.
  - action, view: request handling and rendering.
  - session, middleware: the request stack.
  - providers/db, providers/redis: gorm and redis connections.
*/
package hanami
