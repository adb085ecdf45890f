// Package testapp is a small bookshelf application the framework tests
// auto register and route through.
package testapp

import (
	"github.com/slimloans/hanami/internal/testapp/actions/books"
	"github.com/slimloans/hanami/internal/testapp/entities"
	"github.com/slimloans/hanami/internal/testapp/repos"
	"github.com/slimloans/hanami/internal/testapp/slices/admin/actions/dashboard"
	viewbooks "github.com/slimloans/hanami/internal/testapp/views/books"
)

const (
	Namespace      = "github.com/slimloans/hanami/internal/testapp"
	AdminNamespace = Namespace + "/slices/admin"
)

// Components are the application components, keyed by their package
func Components() []interface{} {
	return []interface{}{
		&repos.BookRepo{Books: []entities.Book{
			{ID: 1, Title: "Practical Object-Oriented Design"},
			{ID: 2, Title: "Domain Modeling Made Functional"},
		}},
		&books.Show{},
		&books.Index{},
		viewbooks.Show{},
		entities.Book{},
	}
}

// AdminComponents are the components of the admin slice
func AdminComponents() []interface{} {
	return []interface{}{&dashboard.Show{}}
}
