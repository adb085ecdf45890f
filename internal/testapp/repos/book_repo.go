package repos

import (
	"github.com/slimloans/hanami/errors"
	"github.com/slimloans/hanami/internal/testapp/entities"
)

var ErrorBookNotFound = errors.Error{Key: "ERROR.BOOK_NOT_FOUND", Status: 404}

// BookRepo is an in memory store of books
type BookRepo struct {
	Books []entities.Book
}

func (r *BookRepo) Find(id int) (entities.Book, error) {
	for _, b := range r.Books {
		if b.ID == id {
			return b, nil
		}
	}
	return entities.Book{}, ErrorBookNotFound.Errorf("book %d not found", id)
}
