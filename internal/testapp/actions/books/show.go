package books

import (
	"github.com/slimloans/hanami/action"
	"github.com/slimloans/hanami/internal/testapp/repos"
)

// Show exposes the book named by the id param, the paired view renders it
type Show struct {
	Repo *repos.BookRepo `inject:"repos.book_repo"`
}

func (s *Show) Handle(req *action.Request, res *action.Response) error {
	book, err := s.Repo.Find(req.Params().Int("id"))
	if err != nil {
		return err
	}

	res.Expose("book", book)
	return nil
}

// Index renders the books as json
type Index struct {
	Repo *repos.BookRepo `inject:"repos.book_repo"`
}

func (i *Index) Handle(req *action.Request, res *action.Response) error {
	return res.JSON(i.Repo.Books)
}
