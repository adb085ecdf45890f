package books

import (
	"fmt"

	"github.com/slimloans/hanami/internal/testapp/entities"
	"github.com/slimloans/hanami/view"
)

type Show struct{}

func (Show) Render(ctx *view.Context, exposures view.Exposures) (string, error) {
	book, _ := exposures["book"].(entities.Book)

	path, err := ctx.Routes.Path("book", map[string]interface{}{"id": book.ID})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("<h1>%s</h1><a href=%q>%s</a>", book.Title, path, ctx.Slice), nil
}
