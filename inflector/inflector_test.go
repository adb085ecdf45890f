package inflector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnderscore(t *testing.T) {
	i := New("API")

	examples := []struct{ in, out string }{
		{"BookRepo", "book_repo"},
		{"Books", "books"},
		{"APIKey", "api_key"},
		{"HTMLParser", "html_parser"},
		{"book-repo", "book_repo"},
		{"already_snake", "already_snake"},
	}

	for _, example := range examples {
		t.Run("it should underscore "+example.in, func(t *testing.T) {
			assert.Equal(t, example.out, i.Underscore(example.in))
		})
	}
}

func TestCamelize(t *testing.T) {
	i := New("API", "HTML")

	examples := []struct{ in, out string }{
		{"book_repo", "BookRepo"},
		{"api_key", "APIKey"},
		{"html", "HTML"},
		{"admin/books", "AdminBooks"},
		{"", ""},
	}

	for _, example := range examples {
		t.Run("it should camelize "+example.in, func(t *testing.T) {
			assert.Equal(t, example.out, i.Camelize(example.in))
		})
	}
}

func TestInflections(t *testing.T) {
	i := New()

	t.Run("it should pluralize and singularize", func(t *testing.T) {
		assert.Equal(t, "books", i.Pluralize("book"))
		assert.Equal(t, "people", i.Pluralize("person"))
		assert.Equal(t, "book", i.Singularize("books"))
	})

	t.Run("it should humanize", func(t *testing.T) {
		assert.Equal(t, "Book repo", i.Humanize("book_repo"))
		assert.Equal(t, "Author", i.Humanize("author_id"))
	})

	t.Run("it should dasherize", func(t *testing.T) {
		assert.Equal(t, "book-repo", i.Dasherize("book_repo"))
	})

	t.Run("it should honor irregular words", func(t *testing.T) {
		i.Irregular("octopus", "octopodes")
		assert.Equal(t, "octopodes", i.Pluralize("octopus"))
	})
}
